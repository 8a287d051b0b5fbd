package engine

import (
	"time"

	"github.com/dop251/goja"
)

// registerTimers installs setTimeout/clearTimeout/setInterval/
// clearInterval backed by real time.Timer/time.Ticker, delivering their
// callbacks through the Host's jobScheduler so they run on the same
// single-threaded drain loop as every other deferred callback (spec.md
// §4.1 "drive the loop until pending jobs and timers are drained").
func (h *Host) registerTimers() {
	timers := map[int64]interface{ Stop() bool }{}
	var nextID int64

	newID := func() int64 {
		nextID++
		return nextID
	}

	_ = h.VM.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		extra := extraArgs(call.Arguments, 2)

		id := newID()
		timer := time.AfterFunc(delay, func() {
			h.scheduler.Defer(func() {
				_, _ = fn(goja.Undefined(), extra...)
			})
		})
		timers[id] = timer
		return h.VM.ToValue(id)
	})

	_ = h.VM.Set("clearTimeout", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).ToInteger()
		if t, ok := timers[id]; ok {
			t.Stop()
			delete(timers, id)
		}
		return goja.Undefined()
	})

	_ = h.VM.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		interval := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		if interval <= 0 {
			interval = time.Millisecond
		}
		extra := extraArgs(call.Arguments, 2)

		id := newID()
		ticker := time.NewTicker(interval)
		timers[id] = tickerStopper{ticker}
		go func() {
			for range ticker.C {
				h.scheduler.Defer(func() {
					_, _ = fn(goja.Undefined(), extra...)
				})
			}
		}()
		return h.VM.ToValue(id)
	})

	_ = h.VM.Set("clearInterval", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).ToInteger()
		if t, ok := timers[id]; ok {
			t.Stop()
			delete(timers, id)
		}
		return goja.Undefined()
	})
}

type tickerStopper struct{ t *time.Ticker }

func (s tickerStopper) Stop() bool {
	s.t.Stop()
	return true
}

func extraArgs(args []goja.Value, from int) []goja.Value {
	if len(args) <= from {
		return nil
	}
	return args[from:]
}
