package events

import (
	"sync"
	"time"

	"github.com/r3e-network/llrt-go/internal/framework"
)

// Signal is a one-shot AbortSignal (spec.md §3 "Abort signal", §5
// "Cancellation"): aborted flips to true at most once, reason is frozen on
// first abort, and every subscriber — whether registered before or after
// the abort — observes the same reason exactly once.
type Signal struct {
	mu          sync.Mutex
	aborted     bool
	reason      any
	subscribers []func(reason any)
}

// NewSignal creates a Signal that has not fired.
func NewSignal() *Signal {
	return &Signal{}
}

// Aborted reports whether the signal has fired.
func (s *Signal) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Reason returns the frozen abort reason, or nil if not yet aborted.
func (s *Signal) Reason() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// OnAbort subscribes fn to the single abort broadcast. If the signal has
// already fired, fn is invoked synchronously and immediately (spec.md:
// "post-fire subscriptions observe it synchronously").
func (s *Signal) OnAbort(fn func(reason any)) {
	s.mu.Lock()
	if s.aborted {
		reason := s.reason
		s.mu.Unlock()
		fn(reason)
		return
	}
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// abort fires the signal exactly once; subsequent calls are no-ops
// (spec.md §3 invariant).
func (s *Signal) abort(reason any) {
	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		return
	}
	s.aborted = true
	s.reason = reason
	subs := s.subscribers
	s.subscribers = nil
	s.mu.Unlock()

	for _, fn := range subs {
		fn(reason)
	}
}

// Controller is an AbortController: the only thing that can fire its
// Signal.
type Controller struct {
	Signal *Signal
}

// NewController creates a Controller with a fresh, unfired Signal.
func NewController() *Controller {
	return &Controller{Signal: NewSignal()}
}

// Abort fires the controller's signal with the given reason. A nil reason
// is replaced with an AbortError, matching AbortController.abort()'s
// default.
func (c *Controller) Abort(reason any) {
	if reason == nil {
		reason = framework.New(framework.KindAbortError, "Abort", errAborted)
	}
	c.Signal.abort(reason)
}

var errAborted = aborted("signal is aborted without reason")

type aborted string

func (a aborted) Error() string { return string(a) }

// Timeout returns a Signal that aborts with a TimeoutError after d.
func Timeout(d time.Duration) *Signal {
	s := NewSignal()
	timer := time.AfterFunc(d, func() {
		s.abort(framework.Newf(framework.KindTimeoutError, "AbortSignal.timeout", "timed out after %s", d))
	})
	s.OnAbort(func(any) { timer.Stop() })
	return s
}

// Any returns a Signal that aborts as soon as any of signals aborts,
// copying that signal's reason (spec.md §5 "AbortSignal.any(signals)").
func Any(signals []*Signal) *Signal {
	out := NewSignal()
	for _, sig := range signals {
		sig.OnAbort(func(reason any) { out.abort(reason) })
	}
	return out
}
