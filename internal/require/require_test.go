package require

import (
	"testing"

	"github.com/r3e-network/llrt-go/internal/modules"
)

type fakeFS struct {
	files map[string][]byte
}

func (f *fakeFS) exists(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeFS) read(path string) ([]byte, error) {
	return f.files[path], nil
}

func newBridge(t *testing.T, files map[string][]byte, run func(name string, source []byte, exports Exports) error) *Bridge {
	t.Helper()
	fs := &fakeFS{files: files}
	resolver := &modules.Resolver{Builtins: map[string]bool{}, Exists: fs.exists}
	loader := &modules.Loader{ReadFile: fs.read}
	return New(resolver, loader, runnerFunc(run))
}

type runnerFunc func(name string, source []byte, exports Exports) error

func (f runnerFunc) Run(name string, source []byte, exports Exports) error {
	return f(name, source, exports)
}

func TestRequireLoadsAndCachesModule(t *testing.T) {
	calls := 0
	b := newBridge(t, map[string][]byte{
		"/app/foo.js": []byte("exports.value = 1"),
	}, func(name string, source []byte, exports Exports) error {
		calls++
		exports["value"] = float64(1)
		return nil
	})

	exp1, err := b.Require("/app/index.js", "./foo.js")
	if err != nil {
		t.Fatalf("require: %v", err)
	}
	exp2, err := b.Require("/app/index.js", "./foo.js")
	if err != nil {
		t.Fatalf("require: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected module run exactly once, got %d", calls)
	}
	if exp1.(Exports)["value"] != float64(1) {
		t.Fatalf("got %v", exp1)
	}
	if &(exp1.(Exports)) == nil || &(exp2.(Exports)) == nil {
		t.Fatal("expected both requires to return a value")
	}
}

func TestRequireBuiltinShortCircuits(t *testing.T) {
	b := newBridge(t, map[string][]byte{}, func(string, []byte, Exports) error {
		t.Fatal("builtin should not execute source")
		return nil
	})
	b.Resolver.Builtins["fs"] = true
	b.RegisterBuiltin("fs", Exports{"readFileSync": "stub"})

	exp, err := b.Require("/app/index.js", "node:fs")
	if err != nil {
		t.Fatalf("require: %v", err)
	}
	if exp.(Exports)["readFileSync"] != "stub" {
		t.Fatalf("got %v", exp)
	}
}

func TestRequireCycleReturnsPartialExports(t *testing.T) {
	files := map[string][]byte{
		"/app/a.js": []byte("require('./b.js'); exports.a = true"),
		"/app/b.js": []byte("require('./a.js'); exports.b = true"),
	}

	var bridge *Bridge
	bridge = newBridge(t, files, func(name string, source []byte, exports Exports) error {
		switch name {
		case "/app/a.js":
			bExports, err := bridge.Require("/app/a.js", "./b.js")
			if err != nil {
				return err
			}
			_ = bExports
			exports["a"] = true
		case "/app/b.js":
			aExports, err := bridge.Require("/app/b.js", "./a.js")
			if err != nil {
				return err
			}
			// a.js is still mid-execution here; its exports map exists
			// but "a" has not been set yet (cycle tolerance, not magic).
			if _, ok := aExports.(Exports)["a"]; ok {
				t.Fatal("expected cyclic require to observe a's exports before 'a' key is set")
			}
			exports["b"] = true
		}
		return nil
	})

	exp, err := bridge.Require("/app/index.js", "./a.js")
	if err != nil {
		t.Fatalf("require: %v", err)
	}
	if exp.(Exports)["a"] != true {
		t.Fatalf("got %v", exp)
	}
}

func TestRequireResolutionFailure(t *testing.T) {
	b := newBridge(t, map[string][]byte{}, func(string, []byte, Exports) error { return nil })
	_, err := b.Require("/app/index.js", "./missing.js")
	if err == nil {
		t.Fatal("expected resolution failure")
	}
}

func TestRequireJSONModule(t *testing.T) {
	b := newBridge(t, map[string][]byte{
		"/app/data.json": []byte(`{"ok":true}`),
	}, func(string, []byte, Exports) error { return nil })

	v, err := b.Require("/app/index.js", "./data.json")
	if err != nil {
		t.Fatalf("require: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["ok"] != true {
		t.Fatalf("got %v", v)
	}
}
