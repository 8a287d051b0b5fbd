package engine

import (
	"fmt"
	"os"

	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/console"
)

// registerConsole installs console.log/info/warn/error/debug, each
// formatting its arguments with internal/console.Format the way
// system/tee/script_engine.go's gojaScriptEngine wires a closure-backed
// console.log, generalised from a single log-capturing slice into the
// full level set plus the Lambda JSON log mode switch.
func (h *Host) registerConsole() {
	obj := h.VM.NewObject()
	for _, level := range []struct {
		name string
		lvl  console.Level
	}{
		{"log", console.LevelInfo},
		{"info", console.LevelInfo},
		{"debug", console.LevelDebug},
		{"warn", console.LevelWarn},
		{"error", console.LevelError},
		{"trace", console.LevelTrace},
	} {
		level := level
		_ = obj.Set(level.name, func(call goja.FunctionCall) goja.Value {
			args := exportArgs(call.Arguments)
			h.emitLog(level.lvl, args)
			return goja.Undefined()
		})
	}
	_ = h.VM.Set("console", obj)
}

func exportArgs(vals []goja.Value) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v.Export()
	}
	return out
}

// emitLog routes a formatted log line either to plain stdout/stderr or,
// once EnableLambdaLogging has set one, through a console.LambdaEmitter producing one
// JSON object per line (spec.md §4.10).
func (h *Host) emitLog(level console.Level, args []any) {
	if h.lambdaEmitter != nil {
		h.lambdaEmitter.Emit(level, args)
		return
	}
	line := console.Format(args)
	if level >= console.LevelWarn {
		fmt.Fprintln(os.Stderr, line)
		return
	}
	fmt.Fprintln(os.Stdout, line)
}

// EnableLambdaLogging switches the console globals into Lambda JSON log
// mode, filtered at minLevel.
func (h *Host) EnableLambdaLogging(minLevel console.Level, requestID func() string) {
	h.lambdaEmitter = &console.LambdaEmitter{
		MinLevel:  minLevel,
		RequestID: requestID,
		Write:     func(line string) { fmt.Fprintln(os.Stdout, line) },
	}
}
