// Package gojaengine is the in-process engine backend: it satisfies the
// engine contract with a goja JavaScript runtime instead of an external
// browser process.
//
// # Document model
//
// Every navigation tears down the previous document and starts a fresh
// script context: a dedicated goja_nodejs event loop running on its own
// goroutine, seeded with the page globals (window, chrome.webview) and
// the registered init scripts, then the document's own scripts in
// document order. Timers and promise jobs keep running on the loop until
// the next navigation or page close.
//
// Script-to-host messages leave the loop through
// window.chrome.webview.postMessage, which forwards string payloads to
// the host through the environment's Dispatcher. Non-string payloads are
// dropped, mirroring the host-side permissive channel.
//
// # Documents
//
//	about:blank    empty document, present from controller creation
//	file://...     read from the local filesystem
//	http(s)://...  fetched over the network
//
// External <script src> references resolve against the document URL.
// Cross-origin fetches are refused unless the environment was created
// with DisableOriginChecks.
//
// # Profile
//
// Each environment owns a profile directory, by default the per-user
// configuration directory joined with the application name, and an ID
// used to correlate its log output.
package gojaengine
