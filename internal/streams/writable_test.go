package streams

import (
	"sync"
	"testing"
	"time"
)

func TestWritableDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string

	w := NewWritable(func(chunk []byte) error {
		mu.Lock()
		got = append(got, string(chunk))
		mu.Unlock()
		return nil
	}, 0)

	done := make(chan error, 1)
	w.Write([]byte("a"), nil)
	w.Write([]byte("b"), nil)
	w.End(func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("end: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestWritableBackpressureAndDrain(t *testing.T) {
	release := make(chan struct{})
	w := NewWritable(func(chunk []byte) error {
		<-release
		return nil
	}, 5)

	ok1 := w.Write([]byte("abcd"), nil)
	if !ok1 {
		t.Fatal("first write should report room (nothing pending yet when queued)")
	}
	ok2 := w.Write([]byte("ef"), nil)
	if ok2 {
		t.Fatal("expected backpressure once pending bytes reach high water mark")
	}

	drained := make(chan struct{}, 1)
	w.Emitter.On("drain", func(args ...any) {
		select {
		case drained <- struct{}{}:
		default:
		}
	})

	close(release)

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for drain")
	}
}

func TestWritableDestroyDropsQueueAndEmitsCloseOnce(t *testing.T) {
	w := NewWritable(func(chunk []byte) error { return nil }, 0)
	var closeCount int
	w.Emitter.On("close", func(args ...any) { closeCount++ })

	boom := errClosedWritable
	w.Destroy(boom)
	w.Destroy(boom)

	if closeCount != 1 {
		t.Fatalf("expected close emitted once, got %d", closeCount)
	}
	if w.Err() != boom {
		t.Fatalf("got %v", w.Err())
	}
}

func TestWriteAfterEndFails(t *testing.T) {
	w := NewWritable(func(chunk []byte) error { return nil }, 0)
	w.End(nil)

	cb := make(chan error, 1)
	ok := w.Write([]byte("x"), func(err error) { cb <- err })
	if ok {
		t.Fatal("expected write after end to report false")
	}
	select {
	case err := <-cb:
		if err == nil {
			t.Fatal("expected error callback")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for callback")
	}
}
