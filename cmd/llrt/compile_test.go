package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/r3e-network/llrt-go/internal/bytecode"
)

func TestRunCompileDefaultsOutputPathAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "handler.js")
	source := "exports.handler = function(event) { return event; };\n"
	if err := os.WriteFile(input, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runCompile([]string{input}); err != nil {
		t.Fatalf("runCompile: %v", err)
	}

	wantOutput := filepath.Join(dir, "handler.lrt")
	artifact, err := os.ReadFile(wantOutput)
	if err != nil {
		t.Fatalf("expected artifact at %s: %v", wantOutput, err)
	}

	decoded, err := bytecode.Decode(artifact)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(decoded) != source {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, source)
	}
}

func TestRunCompileHonoursExplicitOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "handler.js")
	if err := os.WriteFile(input, []byte("1;"), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.lrt")

	if err := runCompile([]string{input, output}); err != nil {
		t.Fatalf("runCompile: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected explicit output path to exist: %v", err)
	}
}
