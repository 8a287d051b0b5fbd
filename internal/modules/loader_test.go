package modules

import (
	"testing"

	"github.com/r3e-network/llrt-go/internal/bytecode"
)

func TestLoaderStripsShebang(t *testing.T) {
	src := []byte("#!/usr/bin/env llrt\nconsole.log('hi')\n")
	l := &Loader{ReadFile: func(string) ([]byte, error) { return src, nil }}
	rec, err := l.Load("/app/index.js", Resolved{Name: "/app/index.js", Kind: KindSource})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(rec.Payload) != "console.log('hi')\n" {
		t.Fatalf("got %q", rec.Payload)
	}
	if rec.ImportMetaURL != "file:///app/index.js" {
		t.Fatalf("got %q", rec.ImportMetaURL)
	}
}

func TestLoaderDecodesBytecode(t *testing.T) {
	artifact, err := bytecode.Encode([]byte("fake-bytecode"), false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	l := &Loader{ReadFile: func(string) ([]byte, error) { return artifact, nil }}
	rec, err := l.Load("/app/index.js", Resolved{Name: "/app/index.js.lrt", Kind: KindBytecode})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(rec.Payload) != "fake-bytecode" {
		t.Fatalf("got %q", rec.Payload)
	}
}

func TestLoaderBuiltinHasNoPayload(t *testing.T) {
	l := &Loader{ReadFile: func(string) ([]byte, error) { t.Fatal("should not read file"); return nil, nil }}
	rec, err := l.Load("/app/index.js", Resolved{Name: "fs", Kind: KindBuiltin})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Payload != nil || rec.ImportMetaURL != "" {
		t.Fatalf("expected no payload/url for builtin, got %+v", rec)
	}
}
