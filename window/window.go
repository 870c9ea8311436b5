package window

import (
	"sync"
)

// Proc is a window procedure. It returns true when it fully handled the
// message; returning false forwards the message to DefaultProc.
type Proc func(w *Window, msg *Message) bool

// Window is a native window surface. All operations except Destroy are
// intended for the thread pumping the desktop queue.
type Window struct {
	desktop *Desktop
	handle  Handle

	mu          sync.Mutex
	proc        Proc
	title       string
	bounds      Rect
	visible     bool
	resizable   bool
	maximizable bool
	destroyed   bool
}

// Handle returns the window handle.
func (w *Window) Handle() Handle {
	return w.handle
}

// Title returns the window title.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// Bounds returns the client rectangle.
func (w *Window) Bounds() Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

// Visible reports whether the window has been shown.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Resizable reports whether the window was created with a sizing border.
func (w *Window) Resizable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resizable
}

// Maximizable reports whether the maximize box is enabled.
func (w *Window) Maximizable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maximizable
}

// Destroyed reports whether the window has been torn down.
func (w *Window) Destroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

// HasFocus reports whether this window holds the desktop focus.
func (w *Window) HasFocus() bool {
	return w.desktop.Focused() == w.handle
}

// SetProc registers the window procedure. A nil procedure restores
// default processing.
func (w *Window) SetProc(p Proc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.proc = p
}

// Show makes the window visible.
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.destroyed {
		w.visible = true
	}
}

// Focus gives the window the desktop focus.
func (w *Window) Focus() {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	h := w.handle
	w.mu.Unlock()

	w.desktop.setFocused(h)
}

// SetMaximizable toggles the maximize box. Disabling it is how a fixed
// upper size bound is reflected in the window chrome.
func (w *Window) SetMaximizable(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.destroyed {
		w.maximizable = enabled
	}
}

// Resize applies a new client size. The size is first clamped against a
// synchronous constraints query, then stored, then announced with a
// posted size message.
func (w *Window) Resize(width, height int32) error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return ErrWindowDestroyed
	}
	w.mu.Unlock()

	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}

	info := w.desktop.constraints(w)
	width = clamp(width, info.MinSize.X, info.MaxSize.X)
	height = clamp(height, info.MinSize.Y, info.MaxSize.Y)

	w.mu.Lock()
	w.bounds = Rect{Width: width, Height: height}
	w.mu.Unlock()

	return w.desktop.Post(Message{
		Window: w,
		Kind:   KindSize,
		Size:   Point{X: width, Y: height},
	})
}

// RequestClose posts a close message. The default procedure responds by
// destroying the window.
func (w *Window) RequestClose() error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return ErrWindowDestroyed
	}
	w.mu.Unlock()

	return w.desktop.Post(Message{Window: w, Kind: KindClose})
}

// Destroy tears the window down: the destroy notification is delivered to
// the procedure synchronously, then the handle is released for reuse.
// Destroy is idempotent.
func (w *Window) Destroy() {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.mu.Unlock()

	w.Dispatch(Message{Window: w, Kind: KindDestroy})

	w.mu.Lock()
	w.proc = nil
	w.mu.Unlock()

	w.desktop.release(w.handle)
}

// Dispatch runs the window procedure for a message, falling back to
// DefaultProc when no procedure is registered or the procedure declines
// the message.
func (w *Window) Dispatch(msg Message) {
	w.mu.Lock()
	proc := w.proc
	w.mu.Unlock()

	if proc != nil && proc(w, &msg) {
		return
	}
	w.DefaultProc(&msg)
}

// DefaultProc is the fallback message handling every window gets.
func (w *Window) DefaultProc(msg *Message) {
	switch msg.Kind {
	case KindClose:
		w.Destroy()
	case KindCallback:
		if msg.Fn != nil {
			msg.Fn()
		}
	}
}

func clamp(v, lo, hi int32) int32 {
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
