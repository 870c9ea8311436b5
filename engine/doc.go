// Package engine defines the contract between the adapter and a web
// rendering engine backend.
//
// # Bootstrap
//
// An engine comes up in two asynchronous steps, each reported through a
// completion callback:
//
//	Runtime.Check            verify the engine runtime is installed
//	CreateEnvironment   ──>  EnvironmentCompleted(env, err)
//	env.CreateController ──> ControllerCompleted(ctrl, err)
//
// Completions are never invoked inline. A backend delivers every
// completion and every event through the Dispatcher supplied in Options,
// which posts the callback to the UI thread's message queue. The creating
// thread therefore has to pump messages between requesting a step and
// observing its completion; this mirrors how real embedded browser
// runtimes deliver results to the thread that owns the window.
//
// # Threading
//
// All Environment, Controller, Page and Settings methods must be called
// from the UI thread. The Dispatcher is the only engine-facing entry
// point that is safe from any goroutine.
//
// # Events
//
// A Page exposes two permanent subscriptions: navigation completion and
// script messages. Both are registered once during adapter bootstrap and
// stay attached for the life of the page. Script messages carry their
// payload encoding; UTF-16 payloads are converted by the bridge before
// protocol parsing.
package engine
