package testharness

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"
)

// newExpectation builds the object expect(actual) returns: a handful of
// matcher methods, each throwing a JS Error (so the enclosing test()
// callback's invocation returns an error, and runTest's asGoError can
// format it) when the assertion fails.
func newExpectation(vm *goja.Runtime, actual goja.Value) *goja.Object {
	obj := vm.NewObject()

	throwf := func(format string, args ...any) {
		panic(vm.NewGoError(fmt.Errorf(format, args...)))
	}

	_ = obj.Set("toBe", func(call goja.FunctionCall) goja.Value {
		expected := call.Argument(0)
		if !actual.SameAs(expected) {
			throwf("expected %v to be %v", actual, expected)
		}
		return goja.Undefined()
	})

	_ = obj.Set("toEqual", func(call goja.FunctionCall) goja.Value {
		expected := call.Argument(0)
		if !reflect.DeepEqual(actual.Export(), expected.Export()) {
			throwf("expected %v to equal %v", actual, expected)
		}
		return goja.Undefined()
	})

	_ = obj.Set("toBeTruthy", func(call goja.FunctionCall) goja.Value {
		if !actual.ToBoolean() {
			throwf("expected %v to be truthy", actual)
		}
		return goja.Undefined()
	})

	_ = obj.Set("toBeFalsy", func(call goja.FunctionCall) goja.Value {
		if actual.ToBoolean() {
			throwf("expected %v to be falsy", actual)
		}
		return goja.Undefined()
	})

	_ = obj.Set("toThrow", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(actual)
		if !ok {
			throwf("expected %v to be a function", actual)
			return goja.Undefined()
		}
		if _, err := fn(goja.Undefined()); err == nil {
			throwf("expected function to throw")
		}
		return goja.Undefined()
	})

	return obj
}
