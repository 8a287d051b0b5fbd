package engine

import (
	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/require"
)

// hostRunner implements require.Runner by wrapping module source in a
// CommonJS function shell the way Node's module loader does, running it
// through the Host's goja.Runtime, and copying whatever the script left
// on module.exports back into the shared exports map the Bridge handed
// in (so a require() cycle sees partial mutations, per
// internal/require's two-map design).
type hostRunner struct {
	h      *Host
	bridge *require.Bridge
}

// NewRequireRunner builds a require.Runner bound to h. The returned
// bridge field is filled in by the caller immediately after
// require.New, since the runner needs to issue nested require() calls
// through the very Bridge it is the Runner for.
func NewRequireRunner(h *Host) *hostRunner {
	return &hostRunner{h: h}
}

// Bind completes the runner<->bridge cycle; call once right after
// require.New(resolver, loader, runner).
func (r *hostRunner) Bind(bridge *require.Bridge) { r.bridge = bridge }

func (r *hostRunner) Run(scriptName string, source []byte, exports require.Exports) error {
	wrapped := "(function(module, exports, require) {\n" + string(source) + "\n})"
	fnVal, err := r.h.VM.RunScript(scriptName, wrapped)
	if err != nil {
		return err
	}
	call, ok := goja.AssertFunction(fnVal)
	if !ok {
		return err
	}

	moduleObj := r.h.VM.NewObject()
	exportsObj := r.h.VM.NewObject()
	_ = moduleObj.Set("exports", exportsObj)

	requireFn := r.h.VM.ToValue(func(call goja.FunctionCall) goja.Value {
		specifier := call.Argument(0).String()
		val, err := r.bridge.Require(scriptName, specifier)
		if err != nil {
			panic(r.h.VM.ToValue(err.Error()))
		}
		return r.h.VM.ToValue(val)
	})

	if _, err := call(goja.Undefined(), moduleObj, exportsObj, requireFn); err != nil {
		return err
	}

	final := moduleObj.Get("exports")
	finalObj, ok := final.(*goja.Object)
	if !ok {
		return nil
	}
	for _, k := range finalObj.Keys() {
		// Kept as a goja.Value, not .Export()-ed: a callable export (the
		// common case -- a handler function) must stay invocable via
		// goja.AssertFunction, which a generically exported value loses.
		exports[k] = finalObj.Get(k)
	}
	return nil
}

// AttachRequire installs the top-level require() global an entry
// script sees, resolving specifiers relative to entryName. Modules
// loaded through it get their own require(), scoped to their own
// resolved path, inside hostRunner.Run.
func (h *Host) AttachRequire(bridge *require.Bridge, entryName string) {
	_ = h.VM.Set("require", func(call goja.FunctionCall) goja.Value {
		specifier := call.Argument(0).String()
		val, err := bridge.Require(entryName, specifier)
		if err != nil {
			panic(h.VM.ToValue(err.Error()))
		}
		return h.VM.ToValue(val)
	})
}
