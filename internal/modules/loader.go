package modules

import (
	"bytes"
	"fmt"
	"os"

	"github.com/r3e-network/llrt-go/internal/bytecode"
)

func statExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Record is a loaded module as described in spec.md §3 "Module record":
// (logical name, referrer, kind, payload), consumed once by the engine.
type Record struct {
	Name     string
	Referrer string
	Kind     Kind
	Payload  []byte // engine bytecode (decoded), source JS, or JSON text
	// ImportMetaURL is "file://<absolute-path>" unless Kind is KindBuiltin
	// (spec.md §4.3 "Every loaded module is decorated with...").
	ImportMetaURL string
}

// Loader reads the artifact a Resolved value points at and produces a
// Record, decoding bytecode via the codec and stripping a shebang line
// from source files.
type Loader struct {
	// ReadFile is overridable for tests; defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// NewLoader creates a Loader backed by the real filesystem.
func NewLoader() *Loader {
	return &Loader{ReadFile: os.ReadFile}
}

// Load reads the resolved module. Builtins carry no payload; the caller
// (internal/engine) looks the compiled built-in up by name instead.
func (l *Loader) Load(referrer string, resolved Resolved) (Record, error) {
	rec := Record{Name: resolved.Name, Referrer: referrer, Kind: resolved.Kind}

	if resolved.Kind == KindBuiltin {
		return rec, nil
	}

	rec.ImportMetaURL = "file://" + resolved.Name

	raw, err := l.ReadFile(resolved.Name)
	if err != nil {
		return Record{}, fmt.Errorf("load module %q: %w", resolved.Name, err)
	}

	switch resolved.Kind {
	case KindBytecode:
		decoded, err := bytecode.Decode(raw)
		if err != nil {
			return Record{}, err
		}
		rec.Payload = decoded
		return rec, nil
	case KindJSON:
		rec.Payload = raw
		return rec, nil
	default:
		rec.Payload = StripShebang(raw)
		return rec, nil
	}
}

// StripShebang removes a leading "#!...\n" line, which Node-style scripts
// use to be directly executable (spec.md §4.3 "a shebang-prefixed source
// has the first line stripped").
func StripShebang(src []byte) []byte {
	if len(src) < 2 || src[0] != '#' || src[1] != '!' {
		return src
	}
	if idx := bytes.IndexByte(src, '\n'); idx >= 0 {
		return src[idx+1:]
	}
	return nil
}
