// Package adapter binds a rendering engine to a native window and runs
// the message loop that carries the script-to-host call protocol.
//
// # Bootstrap
//
// Construction walks a fixed sequence: create the window and associate
// the procedure, look up the display scale, verify the engine runtime,
// then perform the two asynchronous bootstrap steps, environment and
// controller creation. Each async step completes through the adapter's
// own dispatcher, so the constructing thread pumps the UI queue while it
// waits; blocking without pumping would deadlock the completion
// delivery. Any failure aborts construction and destroys the window.
//
// # Running
//
// Run navigates and then pumps: pending UI messages first, then the
// work queue drained completely in FIFO order, then the idle callback
// once per empty-queue moment. Without an idle callback the loop blocks
// until a message or work item arrives instead of spinning. A quit
// message ends the loop, after which the controller is closed
// synchronously. The environment stays alive until Close.
//
// # Threading
//
// One goroutine owns the window, the pump, and all controller and page
// calls. Run pins it to an OS thread. From other goroutines only
// Dispatch, Post, and Quit are safe; everything else must be reached
// through one of those.
//
// # Protocol
//
// Inbound script messages are decoded, parsed as {index, func, args}
// envelopes, and routed to bound handlers by exact name. Malformed and
// unrouted messages are dropped without an error but counted, and the
// counters are visible through Stats. Handlers answer by executing
// script back into the page, normally via CompleteResult.
package adapter
