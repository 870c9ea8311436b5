package adapter

import (
	"sync"

	"github.com/a3st/ABOVE/engine"
	"github.com/a3st/ABOVE/window"
)

// fakeBackend is an engine.Runtime test double. Completions are
// delivered through the adapter's dispatcher exactly like a real
// backend, so construction only succeeds if the adapter pumps its queue
// while waiting.
type fakeBackend struct {
	checkErr  error
	createErr error
	envErr    error
	ctrlErr   error

	// preEnvHook is dispatched before the environment completion, to
	// observe pump ordering.
	preEnvHook func()

	opts engine.Options
	env  *fakeEnvironment
}

var _ engine.Runtime = (*fakeBackend)(nil)

func (b *fakeBackend) Check() (string, error) {
	if b.checkErr != nil {
		return "", b.checkErr
	}
	return "fake/1.0", nil
}

func (b *fakeBackend) CreateEnvironment(opts engine.Options, done engine.EnvironmentCompleted) error {
	if b.createErr != nil {
		return b.createErr
	}
	b.opts = opts

	if b.preEnvHook != nil {
		if err := opts.Dispatch(b.preEnvHook); err != nil {
			return err
		}
	}
	return opts.Dispatch(func() {
		if b.envErr != nil {
			done(nil, b.envErr)
			return
		}
		b.env = &fakeEnvironment{backend: b}
		done(b.env, nil)
	})
}

type fakeEnvironment struct {
	backend *fakeBackend
	ctrl    *fakeController
	closed  bool
}

func (e *fakeEnvironment) ID() string { return "fake-env" }

func (e *fakeEnvironment) CreateController(target *window.Window, done engine.ControllerCompleted) error {
	return e.backend.opts.Dispatch(func() {
		if e.backend.ctrlErr != nil {
			done(nil, e.backend.ctrlErr)
			return
		}
		e.ctrl = &fakeController{page: newFakePage()}
		done(e.ctrl, nil)
	})
}

func (e *fakeEnvironment) Close() error {
	e.closed = true
	return nil
}

type fakeController struct {
	page *fakePage

	mu         sync.Mutex
	bounds     []window.Rect
	visible    []bool
	closed     bool
	boundsErr  error
	visibleErr error
}

func (c *fakeController) Page() engine.Page { return c.page }

func (c *fakeController) SetBounds(r window.Rect) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.boundsErr != nil {
		return c.boundsErr
	}
	c.bounds = append(c.bounds, r)
	return nil
}

func (c *fakeController) SetVisible(v bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visibleErr != nil {
		return c.visibleErr
	}
	c.visible = append(c.visible, v)
	return nil
}

func (c *fakeController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeController) setBoundsErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boundsErr = err
}

func (c *fakeController) visibleCalls() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.visible...)
}

func (c *fakeController) boundsCalls() []window.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]window.Rect(nil), c.bounds...)
}

// fakePage records engine calls. Navigate fires a successful
// navigation-completed event inline unless manualNav is set.
type fakePage struct {
	mu        sync.Mutex
	inits     []string
	navs      []string
	scripts   []string
	navFn     func(engine.NavigationEvent)
	msgFn     func(engine.Message)
	navErr    error
	manualNav bool
	settings  *engine.Settings
}

func newFakePage() *fakePage {
	return &fakePage{settings: engine.NewSettings()}
}

func (p *fakePage) AddInitScript(src string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inits = append(p.inits, src)
	return nil
}

func (p *fakePage) Navigate(url string) error {
	p.mu.Lock()
	if p.navErr != nil {
		err := p.navErr
		p.mu.Unlock()
		return err
	}
	p.navs = append(p.navs, url)
	fn := p.navFn
	manual := p.manualNav
	p.mu.Unlock()

	if !manual && fn != nil {
		fn(engine.NavigationEvent{URL: url, Success: true})
	}
	return nil
}

func (p *fakePage) ExecuteScript(src string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts = append(p.scripts, src)
	return nil
}

func (p *fakePage) OnNavigationCompleted(fn func(engine.NavigationEvent)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navFn = fn
}

func (p *fakePage) OnMessageReceived(fn func(engine.Message)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgFn = fn
}

func (p *fakePage) Settings() *engine.Settings { return p.settings }

func (p *fakePage) fire(ev engine.NavigationEvent) {
	p.mu.Lock()
	fn := p.navFn
	p.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (p *fakePage) deliver(m engine.Message) {
	p.mu.Lock()
	fn := p.msgFn
	p.mu.Unlock()
	if fn != nil {
		fn(m)
	}
}

func (p *fakePage) initScripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.inits...)
}

func (p *fakePage) navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navs...)
}

func (p *fakePage) executed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.scripts...)
}
