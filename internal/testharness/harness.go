// Package testharness is the built-in test harness module spec.md §6's
// "llrt test" subcommand runs each discovered *.test.* file through: a
// small describe/test/expect surface registered as globals on a Host,
// collecting pass/fail results as the file itself runs rather than via
// a separate collection pass. No teacher or pack repo runs a JS test
// suite from Go, so this harness is built directly from the CLI
// contract spec.md §6 names, in the spirit of Jest/Node's
// node:test -- the minimum describe/test/expect surface a *.test.js
// file written against either would still run under.
package testharness

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/engine"
)

// Result is one test's outcome.
type Result struct {
	Name   string
	Suite  string
	Passed bool
	Err    error
}

// Harness collects results as test/it callbacks run.
type Harness struct {
	results []Result
	suite   string
}

// Install registers describe/test/it/expect as globals on host.VM. Tests
// run synchronously and eagerly: calling test(name, fn) inside a
// describe block immediately invokes fn and records the outcome, rather
// than deferring to a later scheduling pass -- matching how a single
// *.test.* file is expected to run top to bottom with no parallelism.
func Install(host *engine.Host) *Harness {
	h := &Harness{}
	vm := host.VM

	var describeFn func(goja.FunctionCall) goja.Value
	describeFn = func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return goja.Undefined()
		}
		prevSuite := h.suite
		h.suite = name
		_, _ = fn(goja.Undefined())
		h.suite = prevSuite
		return goja.Undefined()
	}
	_ = vm.Set("describe", describeFn)

	runTest := func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			h.results = append(h.results, Result{Name: name, Suite: h.suite, Passed: false,
				Err: fmt.Errorf("second argument to test()/it() must be a function")})
			return goja.Undefined()
		}
		_, err := fn(goja.Undefined())
		h.results = append(h.results, Result{Name: name, Suite: h.suite, Passed: err == nil, Err: asGoError(err)})
		return goja.Undefined()
	}
	_ = vm.Set("test", runTest)
	_ = vm.Set("it", runTest)

	_ = vm.Set("expect", func(call goja.FunctionCall) goja.Value {
		return newExpectation(vm, call.Argument(0))
	})

	return h
}

// Results returns every test recorded so far.
func (h *Harness) Results() []Result { return h.results }

// Failed reports whether any recorded test failed.
func (h *Harness) Failed() bool {
	for _, r := range h.results {
		if !r.Passed {
			return true
		}
	}
	return false
}

func asGoError(err error) error {
	if err == nil {
		return nil
	}
	if ex, ok := err.(*goja.Exception); ok {
		return fmt.Errorf("%s", ex.String())
	}
	return err
}
