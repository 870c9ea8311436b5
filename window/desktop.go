package window

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrDesktopClosed   = errors.New("desktop closed")
	ErrWindowDestroyed = errors.New("window destroyed")
	ErrInvalidSize     = errors.New("window size must be positive")
)

// Config configures a Desktop.
type Config struct {
	// ScalePercent is the display scale factor as a percentage.
	// Zero selects 100.
	ScalePercent int

	// ScreenWidth and ScreenHeight are the virtual screen extent used to
	// seed constraint queries. Zero selects 3840x2160.
	ScreenWidth  int32
	ScreenHeight int32

	// QueueLimit is the posted-message capacity of the UI queue.
	// Zero selects DefaultQueueLimit.
	QueueLimit int
}

// Desktop owns windows and the UI message queue. Window handles are
// allocated from a free list, so a destroyed window's handle is reused by
// a later CreateWindow.
type Desktop struct {
	queue *Queue

	mu       sync.RWMutex
	entries  []wentry
	freeList []Handle
	focused  Handle
	closed   bool

	scale  int
	screen Point
}

type wentry struct {
	win   *Window
	valid bool
}

// NewDesktop creates a virtual desktop.
func NewDesktop(cfg Config) *Desktop {
	if cfg.ScalePercent <= 0 {
		cfg.ScalePercent = 100
	}
	if cfg.ScreenWidth <= 0 {
		cfg.ScreenWidth = 3840
	}
	if cfg.ScreenHeight <= 0 {
		cfg.ScreenHeight = 2160
	}
	return &Desktop{
		queue:    NewQueue(cfg.QueueLimit),
		entries:  make([]wentry, 0, 4),
		freeList: make([]Handle, 0, 4),
		scale:    cfg.ScalePercent,
		screen:   Point{X: cfg.ScreenWidth, Y: cfg.ScreenHeight},
	}
}

// WindowConfig configures a window at creation.
type WindowConfig struct {
	Title     string
	Width     int32
	Height    int32
	Resizable bool
}

// CreateWindow allocates a window handle and returns the window. The
// window starts hidden with no procedure registered.
func (d *Desktop) CreateWindow(cfg WindowConfig) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidSize
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDesktopClosed
	}

	w := &Window{
		desktop:     d,
		title:       cfg.Title,
		bounds:      Rect{Width: cfg.Width, Height: cfg.Height},
		resizable:   cfg.Resizable,
		maximizable: cfg.Resizable,
	}

	e := wentry{win: w, valid: true}
	if len(d.freeList) > 0 {
		h := d.freeList[len(d.freeList)-1]
		d.freeList = d.freeList[:len(d.freeList)-1]
		d.entries[h-1] = e
		w.handle = h
	} else {
		d.entries = append(d.entries, e)
		w.handle = Handle(len(d.entries))
	}

	Logger().Debug("window created",
		zap.Uint64("handle", uint64(w.handle)),
		zap.String("title", cfg.Title),
		zap.Int32("width", cfg.Width),
		zap.Int32("height", cfg.Height),
		zap.Bool("resizable", cfg.Resizable))
	return w, nil
}

// Window looks up a live window by handle.
func (d *Desktop) Window(h Handle) (*Window, bool) {
	if h == 0 {
		return nil, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := h - 1
	if int(idx) >= len(d.entries) {
		return nil, false
	}
	e := d.entries[idx]
	if !e.valid {
		return nil, false
	}
	return e.win, true
}

// Len returns the number of live windows.
func (d *Desktop) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	count := 0
	for _, e := range d.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Queue returns the desktop's UI message queue.
func (d *Desktop) Queue() *Queue {
	return d.queue
}

// Post puts a message on the UI queue.
func (d *Desktop) Post(msg Message) error {
	return d.queue.Post(msg)
}

// PostQuit requests the message loop to exit once the queue drains.
func (d *Desktop) PostQuit() {
	d.queue.PostQuit()
}

// Scale returns the display scale factor as a percentage. It fails once
// the desktop is closed, which models an unavailable display.
func (d *Desktop) Scale() (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return 0, ErrDesktopClosed
	}
	return d.scale, nil
}

// Screen returns the virtual screen extent.
func (d *Desktop) Screen() Point {
	return d.screen
}

// Focused returns the handle of the focused window, or 0.
func (d *Desktop) Focused() Handle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.focused
}

// Dispatch routes a dequeued message to its window procedure. Messages
// without a window (quit) are ignored here; the pump handles them.
func (d *Desktop) Dispatch(msg Message) {
	if msg.Window == nil {
		return
	}
	msg.Window.Dispatch(msg)
}

// Close destroys all live windows and rejects further window creation.
func (d *Desktop) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	var wins []*Window
	for _, e := range d.entries {
		if e.valid {
			wins = append(wins, e.win)
		}
	}
	d.mu.Unlock()

	for _, w := range wins {
		w.Destroy()
	}
	return nil
}

// constraints seeds a MinMaxInfo with the desktop defaults and runs a
// synchronous constraints query against the window procedure.
func (d *Desktop) constraints(w *Window) MinMaxInfo {
	info := MinMaxInfo{
		MinSize: Point{},
		MaxSize: d.screen,
	}
	w.Dispatch(Message{Window: w, Kind: KindConstraints, MinMax: &info})
	return info
}

func (d *Desktop) release(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := h - 1
	if int(idx) >= len(d.entries) || !d.entries[idx].valid {
		return
	}
	d.entries[idx] = wentry{}
	d.freeList = append(d.freeList, h)
	if d.focused == h {
		d.focused = 0
	}
	Logger().Debug("window handle released", zap.Uint64("handle", uint64(h)))
}

func (d *Desktop) setFocused(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focused = h
}
