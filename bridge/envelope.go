package bridge

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/a3st/ABOVE/errors"
)

// Envelope is a parsed script-to-host call request.
type Envelope struct {
	Index uint64
	Func  string
	Args  []byte // raw JSON of the args field, "null" when absent
}

// ParseEnvelope extracts the call envelope from a message payload.
// index must be a non-negative integer JSON number and func must be a
// JSON string; anything else fails. args is carried through verbatim.
func ParseEnvelope(data []byte) (Envelope, error) {
	if !gjson.ValidBytes(data) {
		return Envelope{}, errors.Protocol("payload is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Envelope{}, errors.Protocol("payload is not a JSON object")
	}

	idx := root.Get("index")
	if idx.Type != gjson.Number {
		return Envelope{}, errors.Protocol("field %q missing or not a number", "index")
	}
	index, err := strconv.ParseUint(idx.Raw, 10, 64)
	if err != nil {
		return Envelope{}, errors.Protocol("field %q is not a non-negative integer", "index")
	}

	fn := root.Get("func")
	if fn.Type != gjson.String {
		return Envelope{}, errors.Protocol("field %q missing or not a string", "func")
	}

	args := []byte("null")
	if a := root.Get("args"); a.Exists() {
		args = []byte(a.Raw)
	}

	return Envelope{Index: index, Func: fn.String(), Args: args}, nil
}
