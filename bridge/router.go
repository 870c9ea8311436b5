package bridge

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/a3st/ABOVE/engine"
)

// Outcome classifies what routing did with an inbound message.
type Outcome uint8

const (
	OutcomeDispatched Outcome = iota
	OutcomeDroppedMalformed
	OutcomeDroppedUnrouted
)

// String returns the outcome label used in logs and the devtools view.
func (o Outcome) String() string {
	switch o {
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeDroppedMalformed:
		return "dropped:malformed"
	case OutcomeDroppedUnrouted:
		return "dropped:unrouted"
	default:
		return "unknown"
	}
}

// Trace describes one routed message for diagnostic taps.
type Trace struct {
	Outcome Outcome
	Index   uint64
	Func    string
	Payload string
}

// Stats is a point-in-time snapshot of routing counters.
type Stats struct {
	Received         uint64
	Dispatched       uint64
	DroppedMalformed uint64
	DroppedUnrouted  uint64
}

// Router decodes inbound script messages and dispatches them to the
// callback registry. Drops stay silent on the wire but are counted and
// reported to the optional tap.
type Router struct {
	registry *Registry

	received         atomic.Uint64
	dispatched       atomic.Uint64
	droppedMalformed atomic.Uint64
	droppedUnrouted  atomic.Uint64

	tapMu sync.RWMutex
	tap   func(Trace)
}

// NewRouter creates a router over a registry.
func NewRouter(reg *Registry) *Router {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Router{registry: reg}
}

// Registry returns the router's callback registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

// SetTap installs a diagnostic callback observing every routed message.
// A nil tap removes it. The tap runs on the routing thread and must be
// fast.
func (r *Router) SetTap(fn func(Trace)) {
	r.tapMu.Lock()
	r.tap = fn
	r.tapMu.Unlock()
}

// Route processes one inbound script message: decode to UTF-8, parse
// the envelope, look up the callback, invoke it. Malformed payloads and
// unknown names are dropped.
func (r *Router) Route(msg engine.Message) {
	r.received.Add(1)

	text := DecodeText(msg)
	env, err := ParseEnvelope([]byte(text))
	if err != nil {
		r.droppedMalformed.Add(1)
		Logger().Debug("dropped malformed script message",
			zap.Error(err),
			zap.Int("payload_bytes", len(text)))
		r.emit(Trace{Outcome: OutcomeDroppedMalformed, Payload: text})
		return
	}

	handler, ok := r.registry.Lookup(env.Func)
	if !ok {
		r.droppedUnrouted.Add(1)
		Logger().Debug("dropped script call to unbound function",
			zap.String("func", env.Func),
			zap.Uint64("index", env.Index))
		r.emit(Trace{Outcome: OutcomeDroppedUnrouted, Index: env.Index, Func: env.Func, Payload: text})
		return
	}

	r.dispatched.Add(1)
	r.emit(Trace{Outcome: OutcomeDispatched, Index: env.Index, Func: env.Func, Payload: text})
	handler(env.Index, env.Args)
}

// Stats returns a snapshot of the routing counters.
func (r *Router) Stats() Stats {
	return Stats{
		Received:         r.received.Load(),
		Dispatched:       r.dispatched.Load(),
		DroppedMalformed: r.droppedMalformed.Load(),
		DroppedUnrouted:  r.droppedUnrouted.Load(),
	}
}

func (r *Router) emit(t Trace) {
	r.tapMu.RLock()
	tap := r.tap
	r.tapMu.RUnlock()
	if tap != nil {
		tap(t)
	}
}
