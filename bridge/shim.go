package bridge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxResults is the size of the shim's correlation index pool.
const DefaultMaxResults = 100000

//go:embed shim.js
var shimSource string

const maxResultsToken = "__ABOVE_MAX_RESULTS__"

// InitScript returns the shim source to inject into every new document.
// maxResults bounds the number of in-flight calls; a non-positive value
// selects DefaultMaxResults.
func InitScript(maxResults int) string {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return strings.ReplaceAll(shimSource, maxResultsToken, strconv.Itoa(maxResults))
}

// CompletionScript builds the script that settles the pending call for
// index. payload must be a JSON value; empty selects null. The shim
// settles the promise, removes the pending entry, and only then returns
// the index to the free list.
func CompletionScript(index uint64, ok bool, payload string) string {
	if payload == "" {
		payload = "null"
	}
	return fmt.Sprintf("webview.__complete_result(%d, %t, %s);", index, ok, payload)
}

// EmitScript builds the script that fires a named page event. payload
// must be a JSON value; empty selects null.
func EmitScript(event string, payload string) string {
	if payload == "" {
		payload = "null"
	}
	name, _ := json.Marshal(event)
	return fmt.Sprintf("webview.__emit_event(%s, %s);", name, payload)
}
