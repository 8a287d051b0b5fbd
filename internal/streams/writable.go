package streams

import (
	"sync"

	"github.com/r3e-network/llrt-go/internal/events"
)

// Sink receives chunks written to a Writable, in FIFO order, one at a
// time. It is the adapter point to whatever actually drains bytes: a
// socket, an HTTP request body, a file descriptor.
type Sink func(chunk []byte) error

type writeJob struct {
	chunk []byte
	cb    func(error)
}

// Writable is a push-based byte sink with Node-style backpressure: Write
// returns false once buffered-but-undrained bytes cross HighWaterMark,
// and a "drain" event fires once the sink has caught up. A single
// goroutine drains the job queue in submission order so Sink never sees
// concurrent calls, matching the txproxy client's guarantee that
// a request body is sent whole before the next one starts.
type Writable struct {
	Emitter *events.Emitter

	mu            sync.Mutex
	sink          Sink
	highWaterMark int
	pending       int
	ended         bool
	destroyed     bool
	err           error

	jobs   chan writeJob
	closed chan struct{}
}

// NewWritable creates a Writable that drains into sink.
func NewWritable(sink Sink, highWaterMark int) *Writable {
	if highWaterMark <= 0 {
		highWaterMark = defaultHighWaterMark
	}
	w := &Writable{
		Emitter:       events.New(),
		sink:          sink,
		highWaterMark: highWaterMark,
		jobs:          make(chan writeJob, 64),
		closed:        make(chan struct{}),
	}
	go w.drainLoop()
	return w
}

func (w *Writable) drainLoop() {
	defer close(w.closed)
	for job := range w.jobs {
		w.mu.Lock()
		destroyed, destroyErr := w.destroyed, w.err
		if destroyed {
			w.pending -= len(job.chunk)
		}
		w.mu.Unlock()
		if destroyed {
			if job.cb != nil {
				job.cb(destroyErr)
			}
			continue
		}

		err := w.sink(job.chunk)

		w.mu.Lock()
		w.pending -= len(job.chunk)
		pending := w.pending
		if err != nil && w.err == nil {
			w.err = err
		}
		w.mu.Unlock()

		if job.cb != nil {
			job.cb(err)
		}
		if err != nil {
			w.Emitter.Emit("error", true, err)
		}
		if pending <= 0 {
			w.Emitter.Emit("drain", true)
		}
	}
}

// Write enqueues chunk for delivery to the sink and reports cb (if non-nil)
// once it has actually been written. The returned bool is false once
// queued-but-undelivered bytes reach HighWaterMark: the caller should stop
// writing until a "drain" event fires.
func (w *Writable) Write(chunk []byte, cb func(error)) bool {
	w.mu.Lock()
	if w.ended || w.destroyed {
		w.mu.Unlock()
		if cb != nil {
			cb(errClosedWritable)
		}
		return false
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	w.pending += len(buf)
	belowMark := w.pending < w.highWaterMark
	w.mu.Unlock()

	w.jobs <- writeJob{chunk: buf, cb: cb}
	return belowMark
}

// End closes the write side after any already-queued writes finish
// draining; cb is invoked (if non-nil) once the underlying job queue has
// been fully drained and "finish" has been emitted.
func (w *Writable) End(cb func(error)) {
	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		if cb != nil {
			cb(errClosedWritable)
		}
		return
	}
	w.ended = true
	w.mu.Unlock()

	close(w.jobs)
	go func() {
		<-w.closed
		w.Emitter.Emit("finish", true)
		if cb != nil {
			cb(w.Err())
		}
	}()
}

// Destroy aborts the stream immediately: queued-but-undelivered jobs are
// dropped, their callbacks fired with err, then "error" (if err != nil)
// and "close" are emitted. Safe to call more than once.
func (w *Writable) Destroy(err error) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	if err != nil && w.err == nil {
		w.err = err
	}
	alreadyEnded := w.ended
	w.ended = true
	w.mu.Unlock()

	if !alreadyEnded {
		close(w.jobs)
	}

	if err != nil {
		w.Emitter.Emit("error", true, err)
	}
	w.Emitter.Emit("close", true)
}

// Err returns the first error recorded by the sink or Destroy.
func (w *Writable) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Pending returns the number of bytes queued but not yet confirmed
// written by the sink.
func (w *Writable) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

type closedWritableError string

func (e closedWritableError) Error() string { return string(e) }

const errClosedWritable closedWritableError = "write after end"
