package events

import (
	"testing"
	"time"
)

func TestAbortIsOneShot(t *testing.T) {
	c := NewController()
	c.Abort("first")
	c.Abort("second")
	if c.Signal.Reason() != "first" {
		t.Fatalf("expected frozen reason 'first', got %v", c.Signal.Reason())
	}
}

func TestOnAbortPostFireSynchronous(t *testing.T) {
	c := NewController()
	c.Abort("boom")
	got := make(chan any, 1)
	c.Signal.OnAbort(func(reason any) { got <- reason })
	select {
	case r := <-got:
		if r != "boom" {
			t.Fatalf("got %v", r)
		}
	default:
		t.Fatal("expected synchronous callback")
	}
}

func TestAbortSignalTimeout(t *testing.T) {
	s := Timeout(10 * time.Millisecond)
	done := make(chan any, 1)
	s.OnAbort(func(reason any) { done <- reason })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for abort")
	}
	if !s.Aborted() {
		t.Fatal("expected signal aborted")
	}
}

func TestAbortSignalAny(t *testing.T) {
	a := NewController()
	b := NewController()
	combined := Any([]*Signal{a.Signal, b.Signal})
	b.Abort("from-b")
	if !combined.Aborted() || combined.Reason() != "from-b" {
		t.Fatalf("expected combined signal aborted with from-b, got %v", combined.Reason())
	}
}

func TestEmitterOrderAndOnce(t *testing.T) {
	e := New()
	var order []int
	e.On("x", func(args ...any) { order = append(order, 1) })
	e.Once("x", func(args ...any) { order = append(order, 2) })
	e.On("x", func(args ...any) { order = append(order, 3) })

	e.Emit("x", false)
	e.Emit("x", false)

	if len(order) != 5 || order[0] != 1 || order[1] != 2 || order[2] != 3 || order[3] != 1 || order[4] != 3 {
		t.Fatalf("got %v", order)
	}
}
