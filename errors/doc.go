// Package errors provides structured error types for the library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: the failing operation, an optional target and
// value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRunLoop, errors.KindEngineCall).
//		Op("SetBounds").
//		Target("controller").
//		Cause(cause).
//		Detail("resize to %dx%d", width, height).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Navigate("file:///tmp/index.html", cause)
//	err := errors.Closed(errors.PhaseScript, "adapter")
//
// Matching is by Phase and Kind together:
//
//	target := &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindQueueFull}
//	if errors.Is(err, target) {
//		// back off and retry later
//	}
//
// All errors implement the standard error interface; Is and As are re-exported so
// callers match structured targets with a single import.
package errors
