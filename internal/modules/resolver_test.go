package modules

import (
	"testing"

	"github.com/r3e-network/llrt-go/internal/framework"
)

func fakeFS(paths ...string) map[string]bool {
	m := make(map[string]bool, len(paths))
	for _, p := range paths {
		m[p] = true
	}
	return m
}

func TestResolveBuiltinStripsNodePrefix(t *testing.T) {
	r := &Resolver{Builtins: map[string]bool{"fs": true}, Exists: func(string) bool { return false }}
	got, err := r.Resolve("/app/index.js", "node:fs")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Kind != KindBuiltin || got.Name != "fs" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveRelativeJSWithExtensionProbe(t *testing.T) {
	fs := fakeFS("/app/lib/util.js")
	r := &Resolver{Exists: func(p string) bool { return fs[p] }}
	got, err := r.Resolve("/app/index.js", "./lib/util")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "/app/lib/util.js" || got.Kind != KindSource {
		t.Fatalf("got %+v", got)
	}
}

func TestResolvePrefersSiblingBytecode(t *testing.T) {
	fs := fakeFS("/app/lib/util.js.lrt", "/app/lib/util.js")
	r := &Resolver{Exists: func(p string) bool { return fs[p] }}
	got, err := r.Resolve("/app/index.js", "./lib/util.js")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Kind != KindBytecode || got.Name != "/app/lib/util.js.lrt" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveDotDotNormalises(t *testing.T) {
	fs := fakeFS("/app/shared/mod.js")
	r := &Resolver{Exists: func(p string) bool { return fs[p] }}
	got, err := r.Resolve("/app/nested/index.js", "../shared/mod.js")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "/app/shared/mod.js" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveFallsBackToSearchRoot(t *testing.T) {
	fs := fakeFS("/opt/pseudo/helper.js")
	r := &Resolver{SearchRoots: []string{"/opt/pseudo"}, Exists: func(p string) bool { return fs[p] }}
	got, err := r.Resolve("/app/index.js", "helper.js")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "/opt/pseudo/helper.js" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveFailureIsResolutionFailed(t *testing.T) {
	r := &Resolver{Exists: func(string) bool { return false }}
	_, err := r.Resolve("/app/index.js", "./missing")
	if !framework.Is(err, framework.KindResolutionFailed) {
		t.Fatalf("expected ResolutionFailed, got %v", err)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	fs := fakeFS("/app/lib/util.js")
	r := &Resolver{Exists: func(p string) bool { return fs[p] }}
	first, err := r.Resolve("/app/index.js", "./lib/util")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := r.Resolve("/app/index.js", first.Name)
	if err != nil {
		t.Fatalf("re-resolve: %v", err)
	}
	if second != first {
		t.Fatalf("resolution not idempotent: %+v vs %+v", first, second)
	}
}
