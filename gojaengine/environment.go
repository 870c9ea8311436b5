package gojaengine

import (
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/a3st/ABOVE/engine"
	"github.com/a3st/ABOVE/errors"
	"github.com/a3st/ABOVE/window"
)

// environment is a configured engine instance. All controllers created
// from it share the profile directory and dispatcher.
type environment struct {
	id        string
	appName   string
	dataDir   string
	debug     bool
	anyOrigin bool
	dispatch  engine.Dispatcher
	client    *http.Client

	mu          sync.Mutex
	controllers int
	closed      bool

	scriptErrors atomic.Uint64
}

var _ engine.Environment = (*environment)(nil)

func (e *environment) ID() string {
	return e.id
}

// CreateController binds a page to the target window. The controller
// arrives through done via the Dispatcher; it starts hidden with an
// empty document already scriptable.
func (e *environment) CreateController(target *window.Window, done engine.ControllerCompleted) error {
	if done == nil {
		return errors.InvalidInput(errors.PhaseConstruct, "controller completion must not be nil")
	}
	if target == nil {
		return errors.InvalidInput(errors.PhaseConstruct, "controller target window must not be nil")
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return errors.Closed(errors.PhaseConstruct, "environment")
	}
	e.controllers++
	e.mu.Unlock()

	return e.dispatch(func() {
		ctrl := newController(e, target)
		Logger().Debug("controller created",
			zap.String("environment", e.id),
			zap.Uint64("window", uint64(target.Handle())))
		done(ctrl, nil)
	})
}

// Close releases the environment. Controllers must be closed first so
// teardown ordering bugs surface instead of leaking renderer loops.
func (e *environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	if e.controllers > 0 {
		return errors.New(errors.PhaseTeardown, errors.KindController).
			Detail("%d controller(s) still open", e.controllers).
			Build()
	}
	e.closed = true

	Logger().Debug("environment closed", zap.String("environment", e.id))
	return nil
}

// ScriptErrors reports how many page script exceptions this environment
// has swallowed and logged.
func (e *environment) ScriptErrors() uint64 {
	return e.scriptErrors.Load()
}

func (e *environment) controllerClosed() {
	e.mu.Lock()
	if e.controllers > 0 {
		e.controllers--
	}
	e.mu.Unlock()
}
