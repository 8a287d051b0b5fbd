package engine

import "github.com/dop251/goja"

// registerGC installs the __gc global the host exposes to force a
// collection cycle on demand (spec.md §4.1).
func (h *Host) registerGC() {
	_ = h.VM.Set("__gc", func(goja.FunctionCall) goja.Value {
		h.ForceGC()
		return goja.Undefined()
	})
}
