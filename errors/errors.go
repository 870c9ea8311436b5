package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the window/engine lifecycle the error occurred
type Phase string

const (
	PhaseConstruct Phase = "construct" // window creation and engine bootstrap
	PhaseNavigate  Phase = "navigate"  // document loading
	PhaseScript    Phase = "script"    // script injection and execution
	PhaseDispatch  Phase = "dispatch"  // message and work dispatch
	PhaseRunLoop   Phase = "runloop"   // the running message loop
	PhaseTeardown  Phase = "teardown"  // controller/environment/window shutdown
)

// Kind categorizes the error
type Kind string

const (
	KindWindowCreate   Kind = "window_create"
	KindScaleLookup    Kind = "scale_lookup"
	KindRuntimeMissing Kind = "runtime_missing"
	KindEnvironment    Kind = "environment"
	KindController     Kind = "controller"
	KindNotReady       Kind = "not_ready"
	KindAlreadyRunning Kind = "already_running"
	KindClosed         Kind = "closed"
	KindQueueFull      Kind = "queue_full"
	KindProtocol       Kind = "protocol"
	KindEngineCall     Kind = "engine_call"
	KindInvalidInput   Kind = "invalid_input"
	KindIO             Kind = "io"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string // operation that failed, e.g. "CreateController"
	Target string // resource the operation addressed: url, path, function name
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Target != "" {
		b.WriteString(" (")
		b.WriteString(e.Target)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the failing operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Target sets the resource the operation addressed
func (b *Builder) Target(t string) *Builder {
	b.err.Target = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// WindowCreate creates a window construction error
func WindowCreate(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindWindowCreate,
		Detail: detail,
		Cause:  cause,
	}
}

// ScaleLookup creates a display scale query error
func ScaleLookup(cause error) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindScaleLookup,
		Detail: "query display scale factor",
		Cause:  cause,
	}
}

// RuntimeMissing creates an engine-runtime-unavailable error
func RuntimeMissing(cause error) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindRuntimeMissing,
		Detail: "engine runtime not installed",
		Cause:  cause,
	}
}

// Environment creates an environment bootstrap error
func Environment(op string, cause error) *Error {
	return &Error{
		Phase: PhaseConstruct,
		Kind:  KindEnvironment,
		Op:    op,
		Cause: cause,
	}
}

// Controller creates a controller bootstrap error
func Controller(op string, cause error) *Error {
	return &Error{
		Phase: PhaseConstruct,
		Kind:  KindController,
		Op:    op,
		Cause: cause,
	}
}

// NotReady creates an error for operations attempted before bootstrap completed
func NotReady(op string, state string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindNotReady,
		Op:     op,
		Detail: fmt.Sprintf("adapter state is %s", state),
	}
}

// AlreadyRunning creates an error for re-entering the run loop
func AlreadyRunning(state string) *Error {
	return &Error{
		Phase:  PhaseRunLoop,
		Kind:   KindAlreadyRunning,
		Detail: fmt.Sprintf("run loop already active (state %s)", state),
	}
}

// Closed creates an error for operations on a torn-down component
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// QueueFull creates an error for a message queue at capacity
func QueueFull(limit int, cause error) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindQueueFull,
		Detail: fmt.Sprintf("message queue at capacity (%d)", limit),
		Value:  limit,
		Cause:  cause,
	}
}

// Protocol creates a bridge protocol violation error
func Protocol(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindProtocol,
		Detail: detail,
	}
}

// EngineCall wraps a failed engine API call
func EngineCall(phase Phase, op string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindEngineCall,
		Op:    op,
		Cause: cause,
	}
}

// Navigate creates a document loading error
func Navigate(url string, cause error) *Error {
	return &Error{
		Phase:  PhaseNavigate,
		Kind:   KindEngineCall,
		Op:     "Navigate",
		Target: url,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// IO wraps a filesystem or network error
func IO(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Target: path,
		Cause:  cause,
	}
}

// Is is a passthrough to the standard library, so callers matching on
// Phase and Kind need a single errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is a passthrough to the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
