package adapter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/a3st/ABOVE/errors"
)

// classifyURL implements the navigation target rule: absolute http(s)
// URLs pass through untouched, anything else is treated as a local path,
// resolved against the working directory, and rewritten as a file URL
// with forward slashes.
func classifyURL(raw string) (string, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw, nil
	}

	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", errors.InvalidInput(errors.PhaseNavigate,
			fmt.Sprintf("resolve path %q: %v", raw, err))
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p, nil
}
