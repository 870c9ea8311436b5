package engine

import (
	"github.com/a3st/ABOVE/window"
)

// Dispatcher posts a function to the UI thread's message queue. Backends
// use it to deliver completions and events; it is safe to call from any
// goroutine. Posting fails when the UI queue is at capacity or the
// target window is gone.
type Dispatcher func(fn func()) error

// Options configures environment creation.
type Options struct {
	// AppName isolates the environment's profile directory per
	// application.
	AppName string

	// DataDir is the directory the environment keeps profile state in.
	// Empty selects a per-user default derived from AppName.
	DataDir string

	// Debug enables developer tooling on pages created under this
	// environment.
	Debug bool

	// DisableOriginChecks permits documents to load subresources across
	// origins.
	DisableOriginChecks bool

	// Dispatch is the UI thread poster. Required.
	Dispatch Dispatcher
}

// EnvironmentCompleted receives the result of CreateEnvironment. Exactly
// one of env or err is set.
type EnvironmentCompleted func(env Environment, err error)

// ControllerCompleted receives the result of CreateController. Exactly
// one of ctrl or err is set.
type ControllerCompleted func(ctrl Controller, err error)

// Runtime is an installed engine runtime.
type Runtime interface {
	// Check reports the runtime version, failing when the runtime is not
	// available on this machine.
	Check() (version string, err error)

	// CreateEnvironment starts environment bootstrap. An immediate error
	// means the request was never issued; otherwise the result arrives
	// through done via the Dispatcher.
	CreateEnvironment(opts Options, done EnvironmentCompleted) error
}

// Environment is a configured engine instance sharing one profile
// directory.
type Environment interface {
	// ID returns a stable identifier for log correlation.
	ID() string

	// CreateController starts controller bootstrap against a target
	// window. The result arrives through done via the Dispatcher.
	CreateController(target *window.Window, done ControllerCompleted) error

	// Close releases the environment. Controllers created from it must
	// be closed first.
	Close() error
}

// Controller owns the composition of a page onto a window.
type Controller interface {
	// Page returns the page hosted by this controller.
	Page() Page

	// SetBounds positions the page within the window's client area.
	SetBounds(r window.Rect) error

	// SetVisible toggles page visibility. Controllers start hidden so a
	// half-initialized page is never presented.
	SetVisible(visible bool) error

	// Close detaches the page from the window. Idempotent.
	Close() error
}

// NavigationEvent reports the outcome of a document load.
type NavigationEvent struct {
	URL     string
	Success bool
	Err     error // set when Success is false
}

// Encoding identifies the byte encoding of a script message payload.
type Encoding uint8

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
)

// Message is a payload posted by page script to the host.
type Message struct {
	Data     []byte
	Encoding Encoding
}

// Page is the scriptable document surface.
type Page interface {
	// AddInitScript registers source to run in every new document before
	// the document's own scripts. Scripts run in registration order.
	AddInitScript(src string) error

	// Navigate loads a document by URL.
	Navigate(url string) error

	// ExecuteScript runs source in the current document, fire and
	// forget. Script exceptions are reported through the backend's
	// logging, not through the returned error; a non-nil error means the
	// engine call itself failed.
	ExecuteScript(src string) error

	// OnNavigationCompleted registers the permanent navigation
	// subscription.
	OnNavigationCompleted(fn func(NavigationEvent))

	// OnMessageReceived registers the permanent script message
	// subscription.
	OnMessageReceived(fn func(Message))

	// Settings returns the page's mutable settings block.
	Settings() *Settings
}
