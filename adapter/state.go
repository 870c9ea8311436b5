package adapter

// State is the adapter lifecycle position. Transitions run strictly
// forward; a failed construction jumps straight to StateClosed.
type State int32

const (
	// StateUninitialized is the zero value before construction begins.
	StateUninitialized State = iota

	// StateAwaitingEnvironment covers the async environment bootstrap.
	StateAwaitingEnvironment

	// StateAwaitingController covers the async controller bootstrap.
	StateAwaitingController

	// StateReady means bootstrap finished and Run may be called.
	StateReady

	// StateRunning means the message loop is pumping.
	StateRunning

	// StateClosing means the loop has exited and teardown has begun.
	StateClosing

	// StateClosed means all engine and window resources are released.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingEnvironment:
		return "awaiting-environment"
	case StateAwaitingController:
		return "awaiting-controller"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
