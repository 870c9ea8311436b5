package gojaengine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/a3st/ABOVE/engine"
	"github.com/a3st/ABOVE/errors"
	"github.com/a3st/ABOVE/window"
)

// controller composes a page onto a window. It tracks bounds and
// visibility; the page carries the script machinery.
type controller struct {
	env    *environment
	target *window.Window
	page   *page

	mu      sync.Mutex
	bounds  window.Rect
	visible bool
	closed  bool
}

var _ engine.Controller = (*controller)(nil)

func newController(env *environment, target *window.Window) *controller {
	c := &controller{
		env:    env,
		target: target,
		bounds: target.Bounds(),
	}
	c.page = newPage(env)
	return c
}

func (c *controller) Page() engine.Page {
	return c.page
}

func (c *controller) SetBounds(r window.Rect) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.Closed(errors.PhaseRunLoop, "controller")
	}
	c.bounds = r
	Logger().Debug("controller bounds",
		zap.String("environment", c.env.id),
		zap.Int32("width", r.Width),
		zap.Int32("height", r.Height))
	return nil
}

func (c *controller) SetVisible(visible bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.Closed(errors.PhaseRunLoop, "controller")
	}
	c.visible = visible
	return nil
}

// Bounds returns the page composition rectangle.
func (c *controller) Bounds() window.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

// Visible reports whether the page is presented.
func (c *controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Close detaches the page from the window and stops its script context.
// Idempotent.
func (c *controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.page.close()
	c.env.controllerClosed()

	Logger().Debug("controller closed", zap.String("environment", c.env.id))
	return nil
}
