package engine

import (
	"strconv"

	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/jsonfast"
)

// registerJSON replaces goja's own JSON object with one backed by
// internal/jsonfast, so real script call sites get the tape parser and
// hand-rolled stringifier spec.md §4.9 describes -- including the
// CircularReference taxonomy error -- instead of goja's built-in
// implementation. Grounded on the other_examples goja-grpc-client.go
// idiom of panic(runtime.NewTypeError(...)) for host-raised JS errors.
func (h *Host) registerJSON() {
	vm := h.VM
	jsonObj := vm.NewObject()

	_ = jsonObj.Set("parse", func(call goja.FunctionCall) goja.Value {
		v, err := jsonfast.Parse([]byte(call.Argument(0).String()))
		if err != nil {
			errObj := vm.NewSyntaxError(err.Error())
			panic(errObj)
		}
		return vm.ToValue(v)
	})

	_ = jsonObj.Set("stringify", func(call goja.FunctionCall) goja.Value {
		opts := jsonfast.Options{}
		switch r := call.Argument(1).Export().(type) {
		case []any:
			keys := make([]string, 0, len(r))
			for _, k := range r {
				if s, ok := k.(string); ok {
					keys = append(keys, s)
				}
			}
			opts.AllowedKeys = keys
		default:
			if fn, ok := goja.AssertFunction(call.Argument(1)); ok {
				opts.Replacer = func(holder any, key string, value any) any {
					result, err := fn(goja.Undefined(), vm.ToValue(key), vm.ToValue(value))
					if err != nil {
						panic(err)
					}
					return result.Export()
				}
			}
		}
		opts.Indent = spaceIndent(call.Argument(2))

		exp := newJSONExporter(vm)
		exported := exp.export(call.Argument(0))

		s, err := jsonfast.Stringify(exported, opts)
		if err != nil {
			errObj := vm.NewTypeError(err.Error())
			_ = errObj.Set("name", "CircularReference")
			panic(errObj)
		}
		if s == "" {
			return goja.Undefined()
		}
		return vm.ToValue(s)
	})

	_ = vm.Set("JSON", jsonObj)
}

// spaceIndent turns JSON.stringify's third argument into the one-level
// indent jsonfast.Options.Indent expects, per spec.md §4.9's "a string
// (truncated to 10 chars) or a count of spaces (clamped to 10)".
func spaceIndent(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return ""
	}
	switch n := v.Export().(type) {
	case string:
		if len(n) > 10 {
			return n[:10]
		}
		return n
	case int64:
		return spacesOfCount(int(n))
	case float64:
		return spacesOfCount(int(n))
	}
	return ""
}

func spacesOfCount(n int) string {
	if n > 10 {
		n = 10
	}
	if n <= 0 {
		return ""
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}

// jsonUndefined is the sentinel internal/jsonfast's writer recognises as
// "this value does not get serialised" (function/symbol/undefined).
var jsonUndefined = func() any { return nil }

// jsonExporter walks a goja value tree into the plain map[string]any/
// []any/string/float64/bool/nil shape internal/jsonfast.Stringify
// consumes, calling each visited object's toJSON method (if any) the
// way a real JSON.stringify does, and detecting a re-entrant object
// before it ever reaches jsonfast's own ancestor tracking -- which
// only sees freshly allocated Go maps, one per visit, so a cycle in
// the underlying JS object graph would otherwise recurse forever
// instead of being caught.
type jsonExporter struct {
	vm        *goja.Runtime
	ancestors map[*goja.Object]bool
}

func newJSONExporter(vm *goja.Runtime) *jsonExporter {
	return &jsonExporter{vm: vm, ancestors: map[*goja.Object]bool{}}
}

func (e *jsonExporter) export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		if goja.IsNull(v) {
			return nil
		}
		return jsonUndefined
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export()
	}
	if _, isFunc := goja.AssertFunction(v); isFunc {
		return jsonUndefined
	}
	if e.ancestors[obj] {
		errObj := e.vm.NewTypeError(jsonfast.ErrCircularReference.Error())
		_ = errObj.Set("name", "CircularReference")
		panic(errObj)
	}

	if toJSON, ok := goja.AssertFunction(obj.Get("toJSON")); ok {
		e.ancestors[obj] = true
		result, err := toJSON(obj)
		delete(e.ancestors, obj)
		if err != nil {
			panic(err)
		}
		return e.export(result)
	}

	e.ancestors[obj] = true
	defer delete(e.ancestors, obj)

	if obj.ClassName() == "Array" {
		length := int(obj.Get("length").ToInteger())
		arr := make([]any, length)
		for i := 0; i < length; i++ {
			arr[i] = e.export(obj.Get(strconv.Itoa(i)))
		}
		return arr
	}

	keys := obj.Keys()
	m := make(map[string]any, len(keys))
	for _, k := range keys {
		m[k] = e.export(obj.Get(k))
	}
	return m
}
