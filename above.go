package above

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/a3st/ABOVE/adapter"
	"github.com/a3st/ABOVE/bridge"
	"github.com/a3st/ABOVE/engine"
	"github.com/a3st/ABOVE/errors"
	"github.com/a3st/ABOVE/gojaengine"
	"github.com/a3st/ABOVE/window"
)

// Config configures an App. Only the first six fields are usually
// needed; the rest override infrastructure for embedding and tests.
type Config struct {
	AppName   string
	Title     string
	Width     int32
	Height    int32
	Resizable bool
	Debug     bool

	// Desktop overrides the window system. Nil creates a desktop owned
	// and closed by the App.
	Desktop *window.Desktop

	// Runtime overrides the engine backend. Nil selects gojaengine.
	Runtime engine.Runtime

	// DataDir overrides the engine profile directory.
	DataDir string

	// MaxPendingResults bounds the script-side correlation pool.
	MaxPendingResults int
}

// App is the public face of the library, a thin wrapper over the engine
// adapter.
type App struct {
	adapter    *adapter.Adapter
	desktop    *window.Desktop
	ownDesktop bool
}

// New builds the adapter and its infrastructure. It must be called on
// the goroutine that will call Run.
func New(cfg Config) (*App, error) {
	desktop := cfg.Desktop
	own := false
	if desktop == nil {
		desktop = window.NewDesktop(window.Config{})
		own = true
	}

	rt := cfg.Runtime
	if rt == nil {
		rt = gojaengine.New()
	}

	a, err := adapter.New(adapter.Config{
		AppName:           cfg.AppName,
		Title:             cfg.Title,
		Width:             cfg.Width,
		Height:            cfg.Height,
		Resizable:         cfg.Resizable,
		Debug:             cfg.Debug,
		Desktop:           desktop,
		Runtime:           rt,
		DataDir:           cfg.DataDir,
		MaxPendingResults: cfg.MaxPendingResults,
	})
	if err != nil {
		if own {
			_ = desktop.Close()
		}
		return nil, err
	}

	return &App{adapter: a, desktop: desktop, ownDesktop: own}, nil
}

// Run navigates to url and pumps the message loop until Quit. The url
// may be an http(s) URL or a local path relative to the working
// directory.
func (app *App) Run(url string) error {
	return app.adapter.Run(url)
}

// Quit ends the run loop. Safe from any goroutine.
func (app *App) Quit() {
	app.adapter.Quit()
}

// Close releases the adapter and, when owned, the desktop.
func (app *App) Close() error {
	err := app.adapter.Close()
	if app.ownDesktop {
		if cerr := app.desktop.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// SetSize resizes the window to a logical size.
func (app *App) SetSize(width, height int32) error {
	return app.adapter.SetSize(width, height)
}

// SetMinSize sets the minimum client size.
func (app *App) SetMinSize(width, height int32) error {
	return app.adapter.SetMinSize(width, height)
}

// SetMaxSize sets the maximum client size. (0,0) removes the bound.
func (app *App) SetMaxSize(width, height int32) error {
	return app.adapter.SetMaxSize(width, height)
}

// Bind registers a named callback invoked with the raw correlation
// index and argument payload. The handler must answer with
// CompleteResult eventually or the page-side index stays allocated.
func (app *App) Bind(name string, h bridge.Handler) error {
	return app.adapter.Bind(name, h)
}

// BindFunc registers a typed callback: fn receives the JSON argument
// array and its return value is serialized back as the resolution. A
// returned error rejects the page-side promise with the error text.
func (app *App) BindFunc(name string, fn func(args []byte) (any, error)) error {
	if fn == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "nil bind function")
	}
	return app.adapter.Bind(name, func(index uint64, args []byte) {
		value, err := fn(args)
		app.complete(name, index, value, err)
	})
}

func (app *App) complete(name string, index uint64, value any, err error) {
	ok := err == nil
	var payload []byte
	if ok {
		var merr error
		payload, merr = json.Marshal(value)
		if merr != nil {
			ok = false
			err = merr
		}
	}
	if !ok {
		payload, _ = json.Marshal(err.Error())
	}

	if cerr := app.adapter.CompleteResult(index, ok, string(payload)); cerr != nil {
		Logger().Warn("result completion failed",
			zap.String("func", name),
			zap.Uint64("index", index),
			zap.Error(cerr))
	}
}

// ExecuteScript schedules script in the current page.
func (app *App) ExecuteScript(src string) error {
	return app.adapter.ExecuteScript(src)
}

// CompleteResult settles the page-side pending result for index.
func (app *App) CompleteResult(index uint64, ok bool, payload string) error {
	return app.adapter.CompleteResult(index, ok, payload)
}

// EmitEvent pushes a named event with a JSON payload to the page.
func (app *App) EmitEvent(event, payload string) error {
	return app.adapter.EmitEvent(event, payload)
}

// Dispatch posts fn to the UI message queue. Safe from any goroutine.
func (app *App) Dispatch(fn func()) error {
	return app.adapter.Dispatch(fn)
}

// Post appends fn to the UI work queue. Safe from any goroutine.
func (app *App) Post(fn func()) error {
	return app.adapter.Post(fn)
}

// OnIdle registers the idle callback of the run loop.
func (app *App) OnIdle(fn func()) {
	app.adapter.OnIdle(fn)
}

// Stats returns a snapshot of the protocol counters.
func (app *App) Stats() bridge.Stats {
	return app.adapter.Stats()
}

// Adapter exposes the underlying engine adapter for diagnostics.
func (app *App) Adapter() *adapter.Adapter {
	return app.adapter
}
