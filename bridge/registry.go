package bridge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/a3st/ABOVE/errors"
)

// Handler is a host callback. It receives the correlation index and the
// raw JSON of the call arguments, and is responsible for eventually
// completing the call by executing script against the page.
type Handler func(index uint64, args []byte)

// Registry maps callback names to handlers. Each adapter instance owns
// its own registry; there is no process-wide registration.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Bind registers a handler under a name. Re-binding an existing name
// replaces the previous handler; the replacement is logged as a warning
// because it is usually a programming mistake.
func (r *Registry) Bind(name string, h Handler) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseDispatch, "callback name must not be empty")
	}
	if h == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "callback handler must not be nil")
	}

	r.mu.Lock()
	_, replaced := r.handlers[name]
	r.handlers[name] = h
	r.mu.Unlock()

	if replaced {
		Logger().Warn("callback re-bound, previous handler replaced",
			zap.String("name", name))
	}
	return nil
}

// Lookup returns the handler bound to name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Len returns the number of bound names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Names returns the bound names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
