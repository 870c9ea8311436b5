package window

// Handle identifies a window. Handle 0 is never valid.
type Handle uint64

// Kind identifies a message type.
type Kind uint32

const (
	// KindClose asks a window to close. DefaultProc responds by
	// destroying the window.
	KindClose Kind = iota + 1

	// KindDestroy notifies the procedure that the window is being torn
	// down. Sent synchronously from Destroy, never posted.
	KindDestroy

	// KindSize notifies the procedure that the client area changed.
	KindSize

	// KindConstraints queries the procedure for size limits. Sent
	// synchronously with a mutable MinMaxInfo.
	KindConstraints

	// KindCallback carries a function to run on the UI thread.
	KindCallback

	// KindQuit ends a message loop. Quit messages carry no window.
	KindQuit
)

// String returns the message kind label used in logs.
func (k Kind) String() string {
	switch k {
	case KindClose:
		return "close"
	case KindDestroy:
		return "destroy"
	case KindSize:
		return "size"
	case KindConstraints:
		return "constraints"
	case KindCallback:
		return "callback"
	case KindQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Point is a pair of pixel coordinates or extents.
type Point struct {
	X int32
	Y int32
}

// Rect is a client-area rectangle.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// MinMaxInfo carries window size limits during a constraints query.
// The desktop seeds it before dispatch; the procedure overwrites the
// fields it wants to constrain.
type MinMaxInfo struct {
	MinSize Point
	MaxSize Point
}

// Message is a single unit of UI work.
type Message struct {
	Window *Window
	Kind   Kind
	Size   Point       // KindSize: the new client extent
	MinMax *MinMaxInfo // KindConstraints: mutable limits block
	Fn     func()      // KindCallback: function to run
}
