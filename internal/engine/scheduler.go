package engine

import (
	"sync"

	"github.com/dop251/goja"
)

// jobScheduler is the Host's microtask-like job queue: Defer enqueues a
// callback, drain runs everything queued (including callbacks queued by
// callbacks already running) until the queue goes empty. Grounded on
// rizqme-gode's vmQueue channel (internal/runtime/runtime.go's
// eventLoop goroutine draining a channel of func()), simplified from a
// cross-goroutine channel into an in-process FIFO slice because
// RunModule already guarantees single-threaded, synchronous draining
// rather than a background goroutine racing the caller.
type jobScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func newJobScheduler() *jobScheduler {
	return &jobScheduler{}
}

// Defer implements events.Scheduler.
func (s *jobScheduler) Defer(f func()) {
	s.mu.Lock()
	s.queue = append(s.queue, f)
	s.mu.Unlock()
}

func (s *jobScheduler) drain(vm *goja.Runtime) {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		job()
	}
}
