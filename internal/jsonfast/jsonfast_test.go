package jsonfast

import (
	"math"
	"testing"
)

func TestParseRoundTripPrimitives(t *testing.T) {
	cases := map[string]any{
		`"hello"`: "hello",
		`42`:      float64(42),
		`-1.5`:    float64(-1.5),
		`true`:    true,
		`false`:   false,
		`null`:    nil,
	}
	for src, want := range cases {
		got, err := Parse([]byte(src))
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		if got != want {
			t.Fatalf("parse %q = %v, want %v", src, got, want)
		}
	}
}

func TestParseObjectAndArray(t *testing.T) {
	v, err := Parse([]byte(`{"a":1,"b":[1,2,3],"c":{"nested":true}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	if obj["a"] != float64(1) {
		t.Fatalf("expected a=1, got %v", obj["a"])
	}
	arr, ok := obj["b"].([]any)
	if !ok || len(arr) != 3 {
		t.Fatalf("expected 3-element array, got %v", obj["b"])
	}
}

func TestParseEscapes(t *testing.T) {
	v, err := Parse([]byte(`"a\nb\tc\"d\\eé"`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "a\nb\tc\"d\\eé"
	if v != want {
		t.Fatalf("got %q want %q", v, want)
	}
}

func TestParseSurrogatePair(t *testing.T) {
	v, err := Parse([]byte(`"😀"`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v != "😀" {
		t.Fatalf("got %q", v)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, src := range []string{`{`, `[1,2`, `"unterminated`, `nul`, `{"a":}`, `[1,]x`} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

func TestStringifyPrimitives(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{"hi", `"hi"`},
		{float64(3), "3"},
		{float64(3.5), "3.5"},
	}
	for _, c := range cases {
		got, err := Stringify(c.in, Options{})
		if err != nil {
			t.Fatalf("stringify %v: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("stringify %v = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStringifyNonFiniteBecomesNull(t *testing.T) {
	got, err := Stringify(math.Inf(1), Options{})
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}
	if got != "null" {
		t.Fatalf("got %q", got)
	}
}

func TestStringifyObjectSortedKeys(t *testing.T) {
	got, err := Stringify(map[string]any{"b": 1.0, "a": 2.0}, Options{})
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}
	if got != `{"a":2,"b":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestStringifyIndent(t *testing.T) {
	got, err := Stringify(map[string]any{"a": 1.0}, Options{Indent: "  "})
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}
	want := "{\n  \"a\": 1\n}"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStringifyCircularReferenceShallow(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	if _, err := Stringify(m, Options{}); err != ErrCircularReference {
		t.Fatalf("expected ErrCircularReference, got %v", err)
	}
}

func TestStringifyCircularReferenceDeep(t *testing.T) {
	m := map[string]any{}
	cur := m
	for i := 0; i < circularDepthThreshold+1; i++ {
		next := map[string]any{}
		cur["self"] = next
		cur = next
	}
	cur["loop"] = m
	if _, err := Stringify(m, Options{}); err != ErrCircularReference {
		t.Fatalf("expected ErrCircularReference, got %v", err)
	}
}

func TestStringifyAllowedKeys(t *testing.T) {
	got, err := Stringify(map[string]any{"a": 1.0, "b": 2.0}, Options{AllowedKeys: []string{"a"}})
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}
	if got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestStringifyReplacerFunc(t *testing.T) {
	replacer := func(holder any, key string, value any) any {
		if key == "secret" {
			return nil
		}
		return value
	}
	got, err := Stringify(map[string]any{"secret": "x", "ok": 1.0}, Options{Replacer: replacer})
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}
	if got != `{"ok":1,"secret":null}` {
		t.Fatalf("got %q", got)
	}
}

type withToJSON struct{ v int }

func (w withToJSON) ToJSON() any { return float64(w.v * 2) }

func TestStringifyToJSON(t *testing.T) {
	got, err := Stringify(withToJSON{v: 5}, Options{})
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}
	if got != "10" {
		t.Fatalf("got %q", got)
	}
}
