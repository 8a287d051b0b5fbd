package invocation

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/framework"
	"github.com/r3e-network/llrt-go/internal/require"
)

// ResolveHandler splits a "<module>.<method>" handler spec (spec.md §6
// "_HANDLER, LAMBDA_HANDLER") and requires the module through bridge,
// returning the callable export named by method.
func ResolveHandler(bridge *require.Bridge, entryReferrer, spec string) (goja.Callable, error) {
	module, method, ok := splitHandlerSpec(spec)
	if !ok {
		return nil, framework.Newf(framework.KindHandlerNotCallable, "ResolveHandler",
			"malformed handler spec %q, expected <module>.<method>", spec)
	}

	exportsAny, err := bridge.Require(entryReferrer, "./"+module)
	if err != nil {
		return nil, err
	}
	exports, ok := exportsAny.(require.Exports)
	if !ok {
		return nil, framework.Newf(framework.KindHandlerNotCallable, "ResolveHandler",
			"module %q did not produce an exports object", module)
	}

	raw, ok := exports[method]
	if !ok {
		return nil, framework.Newf(framework.KindHandlerNotCallable, "ResolveHandler",
			"module %q has no export %q", module, method)
	}
	val, ok := raw.(goja.Value)
	if !ok {
		return nil, framework.Newf(framework.KindHandlerNotCallable, "ResolveHandler",
			"export %q of module %q is not a JS value", method, module)
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, framework.Newf(framework.KindHandlerNotCallable, "ResolveHandler",
			"export %q of module %q is not callable", method, module)
	}
	return fn, nil
}

// splitHandlerSpec splits on the last dot, since a module path may
// itself contain dots (e.g. "src/index.handler").
func splitHandlerSpec(spec string) (module, method string, ok bool) {
	idx := strings.LastIndex(spec, ".")
	if idx <= 0 || idx == len(spec)-1 {
		return "", "", false
	}
	return spec[:idx], spec[idx+1:], true
}
