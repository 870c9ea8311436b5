// Package window provides the native windowing model the adapter runs on:
// a virtual desktop that owns window handles, a single UI message queue,
// per-window procedures with default processing, and size constraint
// queries.
//
// # Architecture
//
//	Desktop ──> handle table ──> *Window (procedure, bounds, style)
//	   │
//	   └──> Queue (FIFO, posted from any goroutine, drained by the UI thread)
//
// Messages are posted from any goroutine but dispatched only by the thread
// pumping the queue. A window with no registered procedure falls back to
// DefaultProc, which implements the close/destroy chain. Constraint queries
// are delivered synchronously to the procedure, never queued.
//
// # Delivery rules
//
//	Close       posted; DefaultProc destroys the window
//	Destroy     sent synchronously during Destroy
//	Size        posted after a resize is applied
//	Constraints sent synchronously, carries a mutable MinMaxInfo
//	Callback    posted; carries a function for the UI thread
//	Quit        returned only once the queue has drained
package window
