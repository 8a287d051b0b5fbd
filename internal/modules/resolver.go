// Package modules implements the module resolver and loader described in
// spec.md §4.3: mapping a (referrer, specifier) pair to a concrete module
// source, and reading that source into a Record. Grounded on rizqme-gode's
// ModuleResolver/ModuleManager split (internal/runtime/runtime.go), which
// keeps "what does this specifier mean" separate from "how do I read it".
package modules

import (
	"path/filepath"
	"strings"

	"github.com/r3e-network/llrt-go/internal/framework"
)

// BytecodeExt is the sibling-bytecode file extension probed during
// resolution (spec.md §4.3 step 5, §6 "Bytecode file format").
const BytecodeExt = ".lrt"

// jsExts are probed, in order, against the normalised path with no
// extension (spec.md §4.3 step 5).
var jsExts = []string{".js", ".mjs", ".cjs"}

// Kind identifies what a resolved specifier ultimately refers to.
type Kind int

const (
	KindBuiltin Kind = iota
	KindBytecode
	KindSource
	KindJSON
)

// Resolved is the result of resolving a specifier against a referrer.
type Resolved struct {
	Name string // logical name: builtin name, or absolute file path
	Kind Kind
}

// Resolver maps a specifier + referrer to a concrete source, per the
// ordered rules in spec.md §4.3.
type Resolver struct {
	// Builtins is the set of known built-in module names (e.g. "fs",
	// "path", "crypto"). Checked after stripping a "node:" prefix.
	Builtins map[string]bool
	// SearchRoots are extra module roots probed, in insertion order, when
	// direct resolution against the referrer fails (LLRT_PSEUDO_MODULE_DIR
	// and any configured pseudo-module directories).
	SearchRoots []string
	// Exists is overridable for tests; defaults to checking the real
	// filesystem via os.Stat.
	Exists func(path string) bool
}

// NewResolver creates a Resolver with the real-filesystem Exists check.
func NewResolver(builtins map[string]bool, searchRoots []string) *Resolver {
	return &Resolver{
		Builtins:    builtins,
		SearchRoots: searchRoots,
		Exists:      statExists,
	}
}

// Resolve implements spec.md §4.3's seven-step resolution order.
func (r *Resolver) Resolve(referrer, specifier string) (Resolved, error) {
	spec := strings.TrimPrefix(specifier, "node:")

	if r.Builtins[spec] {
		return Resolved{Name: spec, Kind: KindBuiltin}, nil
	}

	refDir := filepath.Dir(referrer)

	if strings.HasSuffix(spec, ".json") || strings.HasSuffix(spec, BytecodeExt) {
		abs := absoluteAgainst(refDir, spec)
		if r.Exists(abs) {
			return Resolved{Name: abs, Kind: kindForPath(abs)}, nil
		}
		return Resolved{}, r.fail(referrer, specifier)
	}

	var joined string
	if filepath.IsAbs(spec) {
		joined = normalise(spec)
	} else {
		joined = normalise(filepath.Join(refDir, spec))
	}

	if found, ok := r.probe(joined); ok {
		return found, nil
	}

	for _, root := range r.SearchRoots {
		candidate := normalise(filepath.Join(root, spec))
		if found, ok := r.probe(candidate); ok {
			return found, nil
		}
	}

	return Resolved{}, r.fail(referrer, specifier)
}

// probe checks, in order: a sibling bytecode file, the normalised path
// itself, then the path with each JS extension appended.
func (r *Resolver) probe(path string) (Resolved, bool) {
	bc := path + BytecodeExt
	if r.Exists(bc) {
		return Resolved{Name: bc, Kind: KindBytecode}, true
	}
	if r.Exists(path) {
		return Resolved{Name: path, Kind: kindForPath(path)}, true
	}
	for _, ext := range jsExts {
		withExt := path + ext
		if r.Exists(withExt) {
			return Resolved{Name: withExt, Kind: KindSource}, true
		}
	}
	return Resolved{}, false
}

func (r *Resolver) fail(referrer, specifier string) error {
	return framework.Newf(framework.KindResolutionFailed, "Resolve",
		"could not resolve %q from %q", specifier, referrer)
}

func kindForPath(path string) Kind {
	switch {
	case strings.HasSuffix(path, ".json"):
		return KindJSON
	case strings.HasSuffix(path, BytecodeExt):
		return KindBytecode
	default:
		return KindSource
	}
}

// absoluteAgainst joins dir and spec when spec is relative, and normalises
// the result; absolute specifiers pass through normalise unchanged.
func absoluteAgainst(dir, spec string) string {
	if filepath.IsAbs(spec) {
		return normalise(spec)
	}
	return normalise(filepath.Join(dir, spec))
}

// normalise implements spec.md §4.3 step 4: ".." pops path components, "."
// is dropped, no symlink resolution is performed (filepath.Clean already
// has exactly these semantics on a purely lexical basis).
func normalise(path string) string {
	return filepath.Clean(path)
}
