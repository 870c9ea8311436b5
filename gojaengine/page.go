package gojaengine

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/a3st/ABOVE/engine"
	"github.com/a3st/ABOVE/errors"
)

// page is the scriptable document surface. It owns at most one live
// document; navigation replaces the document wholesale.
type page struct {
	env *environment

	mu          sync.Mutex
	initScripts []string
	settings    *engine.Settings
	navFn       func(engine.NavigationEvent)
	msgFn       func(engine.Message)
	active      *document
	closed      bool
}

var _ engine.Page = (*page)(nil)

func newPage(env *environment) *page {
	p := &page{env: env, settings: engine.NewSettings()}

	// The initial blank document exists so script execution has a target
	// before the first navigation. It fires no navigation event.
	doc := p.newDocument("about:blank")
	p.active = doc
	doc.start(&loadedDocument{}, nil, false)
	return p
}

func (p *page) AddInitScript(src string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.Closed(errors.PhaseScript, "page")
	}
	p.initScripts = append(p.initScripts, src)
	return nil
}

// Navigate loads a document. Load failures keep the current document and
// surface asynchronously through the navigation event, matching how a
// browser engine reports them; only a closed page fails synchronously.
func (p *page) Navigate(rawURL string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.Closed(errors.PhaseNavigate, "page")
	}
	inits := append([]string(nil), p.initScripts...)
	p.mu.Unlock()

	loaded, err := loadDocument(p.env, rawURL)
	if err != nil {
		Logger().Debug("navigation failed",
			zap.String("environment", p.env.id),
			zap.String("url", rawURL),
			zap.Error(err))
		p.postNavigation(engine.NavigationEvent{URL: rawURL, Success: false, Err: err})
		return nil
	}

	doc := p.newDocument(rawURL)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.Closed(errors.PhaseNavigate, "page")
	}
	prev := p.active
	p.active = doc
	p.mu.Unlock()

	if prev != nil {
		prev.stop()
	}
	doc.start(loaded, inits, true)
	return nil
}

// ExecuteScript schedules src on the active document's loop, fire and
// forget. Script exceptions are logged and counted, never returned.
func (p *page) ExecuteScript(src string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.Closed(errors.PhaseScript, "page")
	}
	doc := p.active
	p.mu.Unlock()

	doc.loop.RunOnLoop(func(vm *goja.Runtime) {
		doc.run(vm, "execute-script", src)
	})
	return nil
}

func (p *page) OnNavigationCompleted(fn func(engine.NavigationEvent)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navFn = fn
}

func (p *page) OnMessageReceived(fn func(engine.Message)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgFn = fn
}

func (p *page) Settings() *engine.Settings {
	return p.settings
}

func (p *page) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	doc := p.active
	p.active = nil
	p.mu.Unlock()

	if doc != nil {
		doc.stop()
	}
}

func (p *page) current() *document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// postMessage forwards a script payload to the host subscription through
// the dispatcher. Messages from a replaced document are dropped.
func (p *page) postMessage(from *document, payload string) {
	if p.current() != from {
		Logger().Debug("dropped message from stale document",
			zap.String("url", from.url))
		return
	}

	p.mu.Lock()
	fn := p.msgFn
	p.mu.Unlock()
	if fn == nil {
		Logger().Debug("dropped script message, no host subscription",
			zap.String("url", from.url))
		return
	}

	err := p.env.dispatch(func() {
		fn(engine.Message{Data: []byte(payload), Encoding: engine.EncodingUTF8})
	})
	if err != nil {
		Logger().Warn("dropped script message, dispatch failed",
			zap.String("url", from.url),
			zap.Error(err))
	}
}

func (p *page) postNavigation(ev engine.NavigationEvent) {
	p.mu.Lock()
	fn := p.navFn
	p.mu.Unlock()
	if fn == nil {
		return
	}

	if err := p.env.dispatch(func() { fn(ev) }); err != nil {
		Logger().Warn("dropped navigation event, dispatch failed",
			zap.String("url", ev.URL),
			zap.Error(err))
	}
}

// document is one script context: a dedicated event loop whose runtime
// lives until the next navigation or page close.
type document struct {
	p    *page
	url  string
	loop *eventloop.EventLoop
}

func (p *page) newDocument(url string) *document {
	registry := require.NewRegistry()
	registry.RegisterNativeModule(console.ModuleName,
		console.RequireWithPrinter(&consolePrinter{env: p.env}))

	return &document{
		p:    p,
		url:  url,
		loop: eventloop.NewEventLoop(eventloop.WithRegistry(registry)),
	}
}

// start boots the document loop, installs the page globals, then runs
// init scripts and document scripts in order. The navigation event is
// posted only after every document script has run.
func (d *document) start(content *loadedDocument, inits []string, fireNav bool) {
	d.loop.Start()
	d.loop.RunOnLoop(func(vm *goja.Runtime) {
		d.installGlobals(vm, content)

		for i, src := range inits {
			d.run(vm, fmt.Sprintf("init-script-%d", i), src)
		}
		for _, s := range content.scripts {
			d.run(vm, s.name, s.source)
		}

		if fireNav {
			d.p.postNavigation(engine.NavigationEvent{URL: d.url, Success: true})
		}
	})
}

func (d *document) stop() {
	d.loop.StopNoWait()
}

func (d *document) run(vm *goja.Runtime, name, src string) {
	if _, err := vm.RunScript(name, src); err != nil {
		d.p.env.scriptErrors.Add(1)
		Logger().Debug("page script exception",
			zap.String("environment", d.p.env.id),
			zap.String("script", name),
			zap.String("url", d.url),
			zap.Error(err))
	}
}

// installGlobals seeds the browser-shaped globals the shim and page
// scripts expect: window as the global alias, chrome.webview.postMessage
// as the outbound channel, and a minimal document/location pair.
func (d *document) installGlobals(vm *goja.Runtime, content *loadedDocument) {
	global := vm.GlobalObject()
	_ = vm.Set("window", global)

	webviewObj := vm.NewObject()
	_ = webviewObj.Set("postMessage", func(call goja.FunctionCall) goja.Value {
		payload, ok := call.Argument(0).Export().(string)
		if !ok {
			Logger().Debug("dropped non-string postMessage payload",
				zap.String("url", d.url))
			return goja.Undefined()
		}
		d.p.postMessage(d, payload)
		return goja.Undefined()
	})

	chrome := vm.NewObject()
	_ = chrome.Set("webview", webviewObj)
	_ = vm.Set("chrome", chrome)

	docObj := vm.NewObject()
	_ = docObj.Set("title", content.title)
	_ = docObj.Set("URL", d.url)
	_ = vm.Set("document", docObj)

	location := vm.NewObject()
	_ = location.Set("href", d.url)
	_ = vm.Set("location", location)
}

// consolePrinter routes page console output into the engine logger.
// Debug environments promote console.log to info level.
type consolePrinter struct {
	env *environment
}

func (c *consolePrinter) Log(msg string) {
	if c.env.debug {
		Logger().Info("console", zap.String("environment", c.env.id), zap.String("msg", msg))
		return
	}
	Logger().Debug("console", zap.String("environment", c.env.id), zap.String("msg", msg))
}

func (c *consolePrinter) Warn(msg string) {
	Logger().Warn("console", zap.String("environment", c.env.id), zap.String("msg", msg))
}

func (c *consolePrinter) Error(msg string) {
	Logger().Error("console", zap.String("environment", c.env.id), zap.String("msg", msg))
}
