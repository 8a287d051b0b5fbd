// Package streams implements the Readable/Writable stream pair used for
// request and response bodies and for socket I/O (spec.md §4.6 "Stream
// Pair"). Grounded on infrastructure/txproxy's client, which
// moves a single request/response through an ordered channel with an
// explicit body-size cap; generalised here from one request/response
// exchange into a general FIFO byte stream with backpressure and the
// data/end/error/close event set.
package streams

import (
	"sync"

	"github.com/r3e-network/llrt-go/internal/events"
	"github.com/r3e-network/llrt-go/internal/framework"
)

// defaultHighWaterMark mirrors txproxy's MaxBodyBytes default
// of 1MiB, repurposed here as a flow-control threshold rather than a hard
// body cap.
const defaultHighWaterMark = 1 << 20

// Readable is a lazy, pull-based byte source. Producers call Push to
// deliver chunks; consumers call Read to pull buffered bytes. Once the
// buffered total reaches HighWaterMark, Push returns false so the
// producer can pause (spec.md §4.6 "bounded internal buffer").
type Readable struct {
	Emitter *events.Emitter

	mu            sync.Mutex
	queue         [][]byte
	queued        int
	highWaterMark int
	ended         bool
	destroyed     bool
	err           error
}

// NewReadable creates a Readable with the given high water mark in bytes;
// a non-positive value falls back to defaultHighWaterMark.
func NewReadable(highWaterMark int) *Readable {
	if highWaterMark <= 0 {
		highWaterMark = defaultHighWaterMark
	}
	return &Readable{
		Emitter:       events.New(),
		highWaterMark: highWaterMark,
	}
}

// Push appends a chunk to the internal buffer and emits "data". It returns
// false once the buffered byte count has reached HighWaterMark, signalling
// the producer to pause until Read drains enough of the buffer.
func (r *Readable) Push(chunk []byte) bool {
	r.mu.Lock()
	if r.ended || r.destroyed {
		r.mu.Unlock()
		return false
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	r.queue = append(r.queue, buf)
	r.queued += len(buf)
	belowMark := r.queued < r.highWaterMark
	r.mu.Unlock()

	r.Emitter.Emit("data", true, buf)
	return belowMark
}

// Read pulls up to n bytes (or everything buffered, when n<=0) off the
// front of the queue in FIFO order.
func (r *Readable) Read(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil
	}
	if n <= 0 {
		out := make([]byte, 0, r.queued)
		for _, c := range r.queue {
			out = append(out, c...)
		}
		r.queue = nil
		r.queued = 0
		return out
	}

	out := make([]byte, 0, n)
	for len(out) < n && len(r.queue) > 0 {
		head := r.queue[0]
		need := n - len(out)
		if need >= len(head) {
			out = append(out, head...)
			r.queued -= len(head)
			r.queue = r.queue[1:]
			continue
		}
		out = append(out, head[:need]...)
		r.queue[0] = head[need:]
		r.queued -= need
	}
	return out
}

// Buffered reports how many bytes are currently queued.
func (r *Readable) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queued
}

// End marks the stream as finished; no further Push calls are accepted.
// Emits "end" exactly once.
func (r *Readable) End() {
	r.mu.Lock()
	if r.ended || r.destroyed {
		r.mu.Unlock()
		return
	}
	r.ended = true
	r.mu.Unlock()
	r.Emitter.Emit("end", true)
}

// Destroy aborts the stream with an error (or nil for a clean destroy),
// emitting "error" (if err != nil) followed by "close". Safe to call more
// than once; only the first call has effect.
func (r *Readable) Destroy(err error) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	r.err = err
	r.queue = nil
	r.queued = 0
	r.mu.Unlock()

	if err != nil {
		r.Emitter.Emit("error", true, err)
	}
	r.Emitter.Emit("close", true)
}

// Err returns the error Destroy was called with, if any.
func (r *Readable) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Ended reports whether End has been called.
func (r *Readable) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

// ErrBodyAlreadyConsumed is returned by one-shot body readers (the fetch
// Response.text()/.json() family) when called a second time, per spec.md
// §7's BodyAlreadyConsumed kind.
var ErrBodyAlreadyConsumed = framework.New(framework.KindBodyAlreadyConsumed, "Body.read", errAlreadyConsumed)

type consumedError string

func (e consumedError) Error() string { return string(e) }

const errAlreadyConsumed consumedError = "body stream already read"
