// Package require implements synchronous require() over the engine's
// naturally async module system (spec.md §4.4 "Require Bridge").
// Grounded on rizqme-gode's require() closure (internal/runtime/runtime.go):
// check a builtin table, then a JS-side module cache, then resolve and
// run source through the module manager, capturing whatever the script
// leaves as its exports. That version does not tolerate require cycles;
// this one generalises it with the two-map cache/progress design spec.md
// §4.4 requires so that `a requires b requires a` resolves to a's
// in-progress (possibly partial) exports instead of recursing forever.
package require

import (
	"sync"

	"github.com/r3e-network/llrt-go/internal/framework"
	"github.com/r3e-network/llrt-go/internal/modules"
)

// Exports is the mutable object a script populates via module.exports /
// exports.foo = ...; Bridge hands the SAME map to Runner.Run for a given
// module and to every caller that requires it, so partial mutations made
// before a cycle resolves are visible to the module that triggered it.
type Exports map[string]any

// Runner executes resolved module source, mutating exports in place the
// way a CommonJS module body mutates its injected `exports` object.
type Runner interface {
	Run(scriptName string, source []byte, exports Exports) error
}

// Bridge is the require() implementation: builtin lookup, resolve,
// cache, cycle-tolerant load.
type Bridge struct {
	Resolver *modules.Resolver
	Loader   *modules.Loader
	Runner   Runner
	Builtins map[string]Exports

	mu       sync.Mutex
	cache    map[string]any
	progress map[string]bool
}

// New creates a Bridge ready to serve require() calls.
func New(resolver *modules.Resolver, loader *modules.Loader, runner Runner) *Bridge {
	return &Bridge{
		Resolver: resolver,
		Loader:   loader,
		Runner:   runner,
		Builtins: map[string]Exports{},
		cache:    map[string]any{},
		progress: map[string]bool{},
	}
}

// Require resolves specifier against referrer and returns its exports,
// loading and running the module at most once; a require cycle returns
// the in-progress module's exports object as-is rather than erroring or
// recursing.
func (b *Bridge) Require(referrer, specifier string) (any, error) {
	if exp, ok := b.Builtins[specifier]; ok {
		return exp, nil
	}

	resolved, err := b.Resolver.Resolve(referrer, specifier)
	if err != nil {
		return nil, err
	}
	if resolved.Kind == modules.KindBuiltin {
		if exp, ok := b.Builtins[resolved.Name]; ok {
			return exp, nil
		}
		return nil, framework.Newf(framework.KindResolutionFailed, "require", "builtin %q has no registered exports", resolved.Name)
	}

	b.mu.Lock()
	if cached, ok := b.cache[resolved.Name]; ok {
		b.mu.Unlock()
		return cached, nil
	}
	b.mu.Unlock()

	record, err := b.Loader.Load(referrer, resolved)
	if err != nil {
		return nil, err
	}

	switch resolved.Kind {
	case modules.KindJSON:
		value, err := parseJSONModule(record.Payload)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.cache[resolved.Name] = value
		b.mu.Unlock()
		return value, nil
	default:
		return b.runSource(resolved.Name, record.Payload)
	}
}

func (b *Bridge) runSource(name string, source []byte) (any, error) {
	exports := make(Exports)

	b.mu.Lock()
	if b.progress[name] {
		// Re-entrant require of a module still executing: hand back the
		// same (possibly partially populated) exports map. This branch
		// is only reachable if the placeholder registration below raced
		// with another goroutine; single-threaded synchronous require
		// call chains hit the cache check above instead.
		cached := b.cache[name]
		b.mu.Unlock()
		return cached, nil
	}
	b.progress[name] = true
	b.cache[name] = exports
	b.mu.Unlock()

	err := b.Runner.Run(name, source, exports)

	b.mu.Lock()
	delete(b.progress, name)
	if err != nil {
		delete(b.cache, name)
	}
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return exports, nil
}

// RegisterBuiltin installs a builtin module's exports, making it
// resolvable by name without touching the filesystem resolver.
func (b *Bridge) RegisterBuiltin(name string, exports Exports) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Builtins[name] = exports
}
