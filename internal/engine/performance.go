package engine

import (
	"time"

	"github.com/dop251/goja"
)

// registerPerformance installs performance.now(), measured against the
// Host's TimeOrigin stamped at construction (spec.md §4.1).
func (h *Host) registerPerformance() {
	obj := h.VM.NewObject()
	_ = obj.Set("now", func(goja.FunctionCall) goja.Value {
		elapsed := time.Since(h.timeOrigin)
		return h.VM.ToValue(float64(elapsed) / float64(time.Millisecond))
	})
	_ = obj.Set("timeOrigin", float64(h.timeOrigin.UnixNano())/float64(time.Millisecond))
	_ = h.VM.Set("performance", obj)
}
