package engine

import (
	"os"
	"runtime"

	"github.com/dop251/goja"
)

// registerProcess installs a minimal Node-compatible process object:
// env, argv, platform, version, exit. Full process.* parity is out of
// scope (spec.md's process surface is whatever internal/config/
// internal/invocation need to expose, not a Node clone).
func (h *Host) registerProcess() {
	obj := h.VM.NewObject()

	env := h.VM.NewObject()
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				_ = env.Set(kv[:i], kv[i+1:])
				break
			}
		}
	}
	_ = obj.Set("env", env)

	argv := make([]any, len(os.Args))
	for i, a := range os.Args {
		argv[i] = a
	}
	_ = obj.Set("argv", h.VM.ToValue(argv))

	_ = obj.Set("platform", runtime.GOOS)
	_ = obj.Set("arch", runtime.GOARCH)
	_ = obj.Set("version", h.opts.version)

	_ = obj.Set("exit", func(call goja.FunctionCall) goja.Value {
		code := 0
		if len(call.Arguments) > 0 {
			code = int(call.Arguments[0].ToInteger())
		}
		os.Exit(code)
		return goja.Undefined()
	})

	_ = h.VM.Set("process", obj)
}
