// Package bridge implements the wire protocol between page script and
// host callbacks.
//
// # Wire format
//
// Script posts one JSON object per message through the engine's native
// channel:
//
//	{"index": <uint>, "func": "<name>", "args": [...]}
//
// index correlates the call with its completion, func selects the host
// callback, args is passed to the callback as raw JSON. The reverse leg
// has no schema: the host completes a call by executing script that
// settles the pending promise for that index.
//
// # Drop policy
//
// The inbound channel is fed by untrusted page script, so the parser is
// permissive: malformed payloads and unknown function names are dropped
// without surfacing an error to either side. Drops are counted and
// logged at debug level so they stay observable.
//
// # Shim
//
// InitScript returns the script injected into every new document. It
// installs the page global `webview` with the correlation allocator, the
// pending-result map, invoke, named events, and the completion entry
// points the host calls through executed script.
package bridge
