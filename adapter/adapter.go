package adapter

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/a3st/ABOVE/bridge"
	"github.com/a3st/ABOVE/engine"
	"github.com/a3st/ABOVE/errors"
	"github.com/a3st/ABOVE/window"
)

// Config configures an Adapter.
type Config struct {
	// AppName isolates the engine profile directory. Empty selects
	// "above".
	AppName string

	// Title, Width, and Height describe the window at creation. Width
	// and Height are logical units, scaled by the display factor.
	Title  string
	Width  int32
	Height int32

	// Resizable gives the window a sizing border and a maximize box.
	Resizable bool

	// Debug enables developer tooling and default context menus on the
	// page.
	Debug bool

	// Desktop supplies the window system. Required.
	Desktop *window.Desktop

	// Runtime supplies the rendering engine. Required.
	Runtime engine.Runtime

	// DataDir overrides the engine profile directory. Empty selects the
	// per-user default derived from AppName.
	DataDir string

	// MaxPendingResults bounds the script-side correlation pool. Zero
	// selects bridge.DefaultMaxResults.
	MaxPendingResults int
}

// Adapter owns a native window, an engine controller bound to it, and
// the message loop connecting them. See the package documentation for
// the threading rules.
type Adapter struct {
	cfg     Config
	desktop *window.Desktop
	queue   *window.Queue
	win     *window.Window
	scale   int

	state atomic.Int32

	env  engine.Environment
	ctrl engine.Controller
	page engine.Page

	registry *bridge.Registry
	router   *bridge.Router
	work     *workQueue

	mu      sync.Mutex
	minSize window.Point
	maxSize window.Point
	idle    func()
	shown   bool
	runErr  error
}

// New constructs an adapter: window, scale lookup, runtime check, then
// the async environment and controller bootstrap. It must be called on
// the goroutine that will later call Run; the UI queue is pumped here
// while the async steps complete. On failure the window is destroyed
// and the error carries the failing phase.
func New(cfg Config) (*Adapter, error) {
	if cfg.Desktop == nil {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "config requires a desktop")
	}
	if cfg.Runtime == nil {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "config requires an engine runtime")
	}
	if cfg.AppName == "" {
		cfg.AppName = "above"
	}
	if cfg.MaxPendingResults <= 0 {
		cfg.MaxPendingResults = bridge.DefaultMaxResults
	}

	a := &Adapter{
		cfg:      cfg,
		desktop:  cfg.Desktop,
		queue:    cfg.Desktop.Queue(),
		registry: bridge.NewRegistry(),
		work:     newWorkQueue(),
	}
	a.router = bridge.NewRouter(a.registry)

	scale, err := cfg.Desktop.Scale()
	if err != nil {
		return nil, errors.ScaleLookup(err)
	}
	a.scale = scale

	size := a.scalePoint(cfg.Width, cfg.Height)
	win, err := cfg.Desktop.CreateWindow(window.WindowConfig{
		Title:     cfg.Title,
		Width:     size.X,
		Height:    size.Y,
		Resizable: cfg.Resizable,
	})
	if err != nil {
		return nil, errors.WindowCreate(
			fmt.Sprintf("create %dx%d window", cfg.Width, cfg.Height), err)
	}
	a.win = win
	win.SetProc(a.proc)

	version, err := cfg.Runtime.Check()
	if err != nil {
		a.abort()
		return nil, errors.RuntimeMissing(err)
	}
	Logger().Debug("engine runtime located",
		zap.String("version", version),
		zap.String("app", cfg.AppName))

	a.setState(StateAwaitingEnvironment)

	envDone := make(chan struct{})
	var envErr error
	err = cfg.Runtime.CreateEnvironment(engine.Options{
		AppName:             cfg.AppName,
		DataDir:             cfg.DataDir,
		Debug:               cfg.Debug,
		DisableOriginChecks: true,
		Dispatch:            a.Dispatch,
	}, func(env engine.Environment, err error) {
		a.env = env
		envErr = err
		close(envDone)
	})
	if err == nil {
		a.pumpWait(envDone)
		err = envErr
	}
	if err != nil {
		a.abort()
		return nil, errors.Environment("create", err)
	}

	a.setState(StateAwaitingController)

	ctrlDone := make(chan struct{})
	var ctrlErr error
	err = a.env.CreateController(win, func(ctrl engine.Controller, err error) {
		a.ctrl = ctrl
		ctrlErr = err
		close(ctrlDone)
	})
	if err == nil {
		a.pumpWait(ctrlDone)
		err = ctrlErr
	}
	if err != nil {
		a.abort()
		return nil, errors.Controller("create", err)
	}

	a.page = a.ctrl.Page()
	a.page.OnNavigationCompleted(a.onNavigation)
	a.page.OnMessageReceived(a.onMessage)

	settings := a.page.Settings()
	settings.SetDevToolsEnabled(cfg.Debug)
	settings.SetDefaultContextMenusEnabled(cfg.Debug)

	if err := a.ctrl.SetBounds(win.Bounds()); err != nil {
		a.abort()
		return nil, errors.Controller("bounds", err)
	}

	a.setState(StateReady)
	Logger().Info("adapter ready",
		zap.String("app", cfg.AppName),
		zap.String("title", cfg.Title),
		zap.Int("scale", a.scale),
		zap.Bool("debug", cfg.Debug))
	return a, nil
}

// pumpWait blocks on done while continuing to service the UI queue.
// Bootstrap completions arrive through Dispatch, so the queue must keep
// draining here or construction would deadlock. A quit posted this
// early is discarded; there is no loop for it to stop yet.
func (a *Adapter) pumpWait(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}

		if msg, ok := a.queue.TryNext(); ok {
			if msg.Kind == window.KindQuit {
				Logger().Debug("quit discarded during bootstrap")
				continue
			}
			a.desktop.Dispatch(msg)
			continue
		}

		select {
		case <-done:
			return
		case <-a.queue.Ready():
		}
	}
}

// abort tears down a partially constructed adapter.
func (a *Adapter) abort() {
	if a.ctrl != nil {
		_ = a.ctrl.Close()
	}
	if a.env != nil {
		_ = a.env.Close()
	}
	if a.win != nil {
		a.win.Destroy()
	}
	a.setState(StateClosed)
}

// proc is the window procedure.
func (a *Adapter) proc(w *window.Window, msg *window.Message) bool {
	switch msg.Kind {
	case window.KindDestroy:
		a.desktop.PostQuit()
		return true

	case window.KindSize:
		// Tolerated before the controller exists; sizes arriving during
		// bootstrap are picked up by the Ready bounds pass.
		if a.ctrl == nil {
			return true
		}
		err := a.ctrl.SetBounds(window.Rect{Width: msg.Size.X, Height: msg.Size.Y})
		if err != nil {
			a.fail(errors.EngineCall(errors.PhaseRunLoop, "resize controller", err))
		}
		return true

	case window.KindConstraints:
		a.mu.Lock()
		minSize, maxSize := a.minSize, a.maxSize
		a.mu.Unlock()

		msg.MinMax.MinSize = minSize
		if maxSize != (window.Point{}) {
			msg.MinMax.MaxSize = maxSize
		}
		return true

	case window.KindCallback:
		if msg.Fn != nil {
			msg.Fn()
		}
		return true
	}
	return false
}

// fail records the first steady-state engine failure and stops the run
// loop. The first error names the root cause; later ones are dropped.
func (a *Adapter) fail(err error) {
	a.mu.Lock()
	if a.runErr == nil {
		a.runErr = err
	}
	a.mu.Unlock()

	Logger().Error("engine call failed, stopping", zap.Error(err))
	a.desktop.PostQuit()
}

// onNavigation is the permanent navigation-completed subscription. The
// window is shown, focused, and sized on the first successful
// completion only; redirects and later navigations change nothing.
func (a *Adapter) onNavigation(ev engine.NavigationEvent) {
	if !ev.Success {
		Logger().Warn("navigation failed",
			zap.String("url", ev.URL),
			zap.Error(ev.Err))
		return
	}

	a.mu.Lock()
	first := !a.shown
	a.shown = true
	a.mu.Unlock()
	if !first {
		return
	}

	a.win.Show()
	a.win.Focus()
	if err := a.ctrl.SetVisible(true); err != nil {
		a.fail(errors.EngineCall(errors.PhaseRunLoop, "show controller", err))
		return
	}
	if err := a.ctrl.SetBounds(a.win.Bounds()); err != nil {
		a.fail(errors.EngineCall(errors.PhaseRunLoop, "size controller", err))
		return
	}
	Logger().Debug("window shown", zap.String("url", ev.URL))
}

// onMessage is the permanent message-received subscription.
func (a *Adapter) onMessage(msg engine.Message) {
	a.router.Route(msg)
}

// Run injects the bridge shim, navigates to url, and pumps the message
// loop until quit. It blocks the calling goroutine, which it pins to an
// OS thread, and returns the first steady-state engine failure, or nil
// on a clean quit. The url may be an http(s) URL or a local path.
func (a *Adapter) Run(url string) error {
	if !a.state.CompareAndSwap(int32(StateReady), int32(StateRunning)) {
		s := a.State()
		switch s {
		case StateRunning:
			return errors.AlreadyRunning(s.String())
		case StateClosing, StateClosed:
			return errors.Closed(errors.PhaseRunLoop, "adapter")
		default:
			return errors.NotReady("run", s.String())
		}
	}
	Logger().Debug("state transition",
		zap.Stringer("from", StateReady),
		zap.Stringer("to", StateRunning))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := a.page.AddInitScript(bridge.InitScript(a.cfg.MaxPendingResults)); err != nil {
		a.setState(StateReady)
		return errors.EngineCall(errors.PhaseScript, "inject shim", err)
	}

	target, err := classifyURL(url)
	if err != nil {
		a.setState(StateReady)
		return err
	}
	Logger().Info("navigating", zap.String("url", target))
	if err := a.page.Navigate(target); err != nil {
		a.setState(StateReady)
		return errors.Navigate(target, err)
	}

	a.loop()
	a.setState(StateClosing)

	if err := a.ctrl.Close(); err != nil {
		a.mu.Lock()
		if a.runErr == nil {
			a.runErr = errors.EngineCall(errors.PhaseTeardown, "close controller", err)
		}
		a.mu.Unlock()
	}

	a.mu.Lock()
	runErr := a.runErr
	a.mu.Unlock()
	return runErr
}

// loop pumps until a quit message. Native messages take priority; when
// none are pending the work queue drains completely in FIFO order and
// the idle callback runs once. With no idle callback registered the
// loop parks until a message or work item arrives.
func (a *Adapter) loop() {
	for {
		if msg, ok := a.queue.TryNext(); ok {
			if msg.Kind == window.KindQuit {
				Logger().Debug("quit received")
				return
			}
			a.desktop.Dispatch(msg)
			continue
		}

		drained := false
		for {
			item, ok := a.work.pop()
			if !ok {
				break
			}
			drained = true
			item.run()
			if item.release != nil {
				item.release()
			}
		}

		a.mu.Lock()
		idle := a.idle
		a.mu.Unlock()
		if idle != nil {
			idle()
			continue
		}
		if drained {
			continue
		}

		select {
		case <-a.queue.Ready():
		case <-a.work.wake():
		}
	}
}

// Quit posts the synthetic quit message. Safe from any goroutine and
// from inside bound handlers.
func (a *Adapter) Quit() {
	a.desktop.PostQuit()
}

// Dispatch posts fn to the UI message queue as a callback message. Safe
// from any goroutine; it is also the dispatcher handed to the engine
// backend for completion delivery.
func (a *Adapter) Dispatch(fn func()) error {
	if fn == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "nil callback")
	}
	err := a.desktop.Post(window.Message{
		Window: a.win,
		Kind:   window.KindCallback,
		Fn:     fn,
	})
	if err != nil {
		return errors.QueueFull(a.queue.Limit(), err)
	}
	return nil
}

// Post appends fn to the work queue. Work runs on the UI thread in FIFO
// order whenever the native queue is momentarily empty. Safe from any
// goroutine.
func (a *Adapter) Post(fn func()) error {
	return a.PostReleasing(fn, nil)
}

// PostReleasing appends fn plus a resource release that runs right
// after it on the UI thread.
func (a *Adapter) PostReleasing(fn, release func()) error {
	if fn == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "nil work function")
	}
	if s := a.State(); s == StateClosing || s == StateClosed {
		return errors.Closed(errors.PhaseDispatch, "adapter")
	}
	a.work.push(workItem{run: fn, release: release})
	return nil
}

// OnIdle registers fn to run once per loop iteration in which both the
// native queue and the work queue are empty. A nil fn unregisters; the
// loop then parks between arrivals again.
func (a *Adapter) OnIdle(fn func()) {
	a.mu.Lock()
	a.idle = fn
	a.mu.Unlock()
}

// Bind registers a named host callback. Rebinding a name replaces the
// previous handler with a warning.
func (a *Adapter) Bind(name string, h bridge.Handler) error {
	if s := a.State(); s == StateClosing || s == StateClosed {
		return errors.Closed(errors.PhaseDispatch, "adapter")
	}
	return a.registry.Bind(name, h)
}

// ExecuteScript schedules src in the current page. Valid from Ready on.
func (a *Adapter) ExecuteScript(src string) error {
	switch s := a.State(); s {
	case StateReady, StateRunning:
	case StateClosing, StateClosed:
		return errors.Closed(errors.PhaseScript, "adapter")
	default:
		return errors.NotReady("execute script", s.String())
	}

	if err := a.page.ExecuteScript(src); err != nil {
		return errors.EngineCall(errors.PhaseScript, "execute script", err)
	}
	return nil
}

// CompleteResult settles the page-side pending result for index by
// executing the completion call in the page. The payload must be a
// JSON value; it becomes the resolution or rejection value.
func (a *Adapter) CompleteResult(index uint64, ok bool, payload string) error {
	return a.ExecuteScript(bridge.CompletionScript(index, ok, payload))
}

// EmitEvent pushes a named event with a JSON payload to the page-side
// event handler registered under that name, if any.
func (a *Adapter) EmitEvent(event, payload string) error {
	if event == "" {
		return errors.InvalidInput(errors.PhaseScript, "empty event name")
	}
	return a.ExecuteScript(bridge.EmitScript(event, payload))
}

// SetSize resizes the window to a logical size, scaled by the display
// factor and clamped against the current constraints.
func (a *Adapter) SetSize(width, height int32) error {
	if width <= 0 || height <= 0 {
		return errors.InvalidInput(errors.PhaseRunLoop, "size must be positive")
	}
	p := a.scalePoint(width, height)
	if err := a.win.Resize(p.X, p.Y); err != nil {
		return errors.EngineCall(errors.PhaseRunLoop, "resize window", err)
	}
	return nil
}

// SetMinSize sets the minimum client size in logical units. The scaled
// value is served to every later constraints query.
func (a *Adapter) SetMinSize(width, height int32) error {
	if width < 0 || height < 0 {
		return errors.InvalidInput(errors.PhaseRunLoop, "min size must not be negative")
	}

	a.mu.Lock()
	a.minSize = a.scalePoint(width, height)
	a.mu.Unlock()
	return nil
}

// SetMaxSize sets the maximum client size in logical units. (0,0) is
// the no-maximum sentinel: it clears the bound and restores the
// maximize box; any other pair disables the box and clamps to the
// scaled values.
func (a *Adapter) SetMaxSize(width, height int32) error {
	if width < 0 || height < 0 {
		return errors.InvalidInput(errors.PhaseRunLoop, "max size must not be negative")
	}

	if width == 0 && height == 0 {
		a.mu.Lock()
		a.maxSize = window.Point{}
		a.mu.Unlock()
		a.win.SetMaximizable(true)
		return nil
	}

	a.mu.Lock()
	a.maxSize = a.scalePoint(width, height)
	a.mu.Unlock()
	a.win.SetMaximizable(false)
	return nil
}

// Close releases everything run left alive: controller if still open,
// then environment, then window. The first failure is reported; later
// steps still run. Idempotent.
func (a *Adapter) Close() error {
	if a.State() == StateClosed {
		return nil
	}
	a.setState(StateClosing)

	var first error
	if a.ctrl != nil {
		if err := a.ctrl.Close(); err != nil && first == nil {
			first = errors.EngineCall(errors.PhaseTeardown, "close controller", err)
		}
	}
	if a.env != nil {
		if err := a.env.Close(); err != nil && first == nil {
			first = errors.EngineCall(errors.PhaseTeardown, "close environment", err)
		}
	}
	if a.win != nil {
		a.win.Destroy()
	}

	a.setState(StateClosed)
	Logger().Debug("adapter closed")
	return first
}

// State returns the current lifecycle state.
func (a *Adapter) State() State {
	return State(a.state.Load())
}

// Stats returns a snapshot of the protocol counters.
func (a *Adapter) Stats() bridge.Stats {
	return a.router.Stats()
}

// Router returns the message router, for diagnostic taps.
func (a *Adapter) Router() *bridge.Router {
	return a.router
}

// Bound returns the names of the registered callbacks.
func (a *Adapter) Bound() []string {
	return a.registry.Names()
}

// Window returns the adapter's window.
func (a *Adapter) Window() *window.Window {
	return a.win
}

// Scale returns the display scale percentage captured at construction.
func (a *Adapter) Scale() int {
	return a.scale
}

func (a *Adapter) setState(s State) {
	old := State(a.state.Swap(int32(s)))
	if old != s {
		Logger().Debug("state transition",
			zap.Stringer("from", old),
			zap.Stringer("to", s))
	}
}

// scalePoint applies the display scale factor to a logical size.
func (a *Adapter) scalePoint(width, height int32) window.Point {
	return window.Point{
		X: width * int32(a.scale) / 100,
		Y: height * int32(a.scale) / 100,
	}
}
