// Package events implements the in-process pub/sub used by every I/O
// object (sockets, streams, the fetch client) and the AbortSignal/
// AbortController pair, per spec.md §4.5.1 note under Event Emitter /
// Abort and §5 "Cancellation". Grounded on
// infrastructure/txproxy ordered-delivery channel pattern, generalised
// from a single request/response pair into a named multi-listener emitter.
package events

import "sync"

// Listener receives the arguments passed to Emit.
type Listener func(args ...any)

// Emitter is a minimal synchronous, ordered pub/sub primitive: Emit
// invokes each listener in registration order before returning, unless
// defer=true is requested, in which case each listener is handed to the
// configured Scheduler instead (spec.md §5 "emit(..., defer=true) which
// enqueues each listener as a microtask").
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]*registration
	// Scheduler defers listener invocation onto the embedding engine's job
	// queue; nil means Emit(defer=true) behaves like a synchronous call.
	Scheduler Scheduler
}

// Scheduler hands a callback to whatever drives deferred (microtask-like)
// work; internal/engine supplies one bound to goja's job queue.
type Scheduler interface {
	Defer(func())
}

type registration struct {
	fn   Listener
	once bool
}

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{listeners: make(map[string][]*registration)}
}

// On registers fn to run on every future Emit(event, ...).
func (e *Emitter) On(event string, fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], &registration{fn: fn})
}

// Once registers fn to run at most once.
func (e *Emitter) Once(event string, fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], &registration{fn: fn, once: true})
}

// Off removes every registration of fn for event. Listeners are compared
// by function code pointer (see sameFunc), so callers that need removal
// should keep the Listener they passed to On/Once.
func (e *Emitter) Off(event string, target Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	regs := e.listeners[event]
	out := regs[:0]
	for _, r := range regs {
		if !sameFunc(r.fn, target) {
			out = append(out, r)
		}
	}
	e.listeners[event] = out
}

// ListenerCount returns how many listeners are currently registered for
// event (used by callers that want to short-circuit emitting to nobody,
// e.g. netio's Socket.Connect returning the error instead of emitting it
// when no "error" listener exists per spec.md §4.7).
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// Emit invokes every listener registered for event, in registration order.
// When defer is true and a Scheduler is configured, each listener runs as
// a separately scheduled callback instead of inline.
func (e *Emitter) Emit(event string, deferred bool, args ...any) {
	e.mu.Lock()
	regs := make([]*registration, len(e.listeners[event]))
	copy(regs, e.listeners[event])
	if len(regs) > 0 {
		kept := e.listeners[event][:0]
		for _, r := range e.listeners[event] {
			if !r.once {
				kept = append(kept, r)
			}
		}
		e.listeners[event] = kept
	}
	e.mu.Unlock()

	for _, r := range regs {
		r := r
		if deferred && e.Scheduler != nil {
			e.Scheduler.Defer(func() { r.fn(args...) })
			continue
		}
		r.fn(args...)
	}
}

func sameFunc(a, b Listener) bool {
	// Go has no portable function-value equality; reflect.Value.Pointer
	// equality is the conventional approximation used by EventEmitter
	// ports, good enough to remove the exact closure that was registered.
	return funcPointer(a) == funcPointer(b)
}
