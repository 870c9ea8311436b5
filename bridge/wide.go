package bridge

import (
	"unicode/utf16"

	"github.com/a3st/ABOVE/engine"
)

// DecodeText converts a script message payload to a UTF-8 string.
// UTF-16 payloads follow the platform wide-string convention: decoding
// stops at the first NUL code unit, and unpaired surrogates become the
// replacement character.
func DecodeText(msg engine.Message) string {
	switch msg.Encoding {
	case engine.EncodingUTF16LE:
		return decodeWide(msg.Data)
	default:
		return string(msg.Data)
	}
}

func decodeWide(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}
