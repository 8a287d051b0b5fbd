package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/r3e-network/llrt-go/internal/bytecode"
	"github.com/r3e-network/llrt-go/internal/modules"
)

// runCompile implements "llrt compile <input.js> [output.lrt]" (spec.md
// §6 "Bytecode file format"). goja has no separate bytecode-compilation
// step the way a bytecode VM does, so the artifact's payload is the
// input's shebang-stripped source text; the codec's signature/flag
// framing and optional dictionary compression are what make the result
// a ".lrt" artifact, not the payload's own encoding.
func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	compress := fs.BoolP("compress", "c", true, "dictionary-compress the payload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("compile: expected an input file")
	}
	input := rest[0]

	output := input[:len(input)-len(filepath.Ext(input))] + modules.BytecodeExt
	if len(rest) >= 2 {
		output = rest[1]
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	source := modules.StripShebang(raw)

	artifact, err := bytecode.Encode(source, *compress)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if err := os.WriteFile(output, artifact, 0644); err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	fmt.Printf("%s -> %s (%d bytes)\n", input, output, len(artifact))
	return nil
}
