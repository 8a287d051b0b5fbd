package engine

import "testing"

func TestJSONStringifyRoundTrip(t *testing.T) {
	h := New()
	v, err := h.RunModule("<test>", `JSON.stringify({a: 1, b: [1, 2, "x"]})`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := v.String()
	want := `{"a":1,"b":[1,2,"x"]}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJSONStringifyCircularReferenceThrows(t *testing.T) {
	h := New()
	_, err := h.RunModule("<test>", `
		var a = {};
		a.self = a;
		JSON.stringify(a);
	`)
	if err == nil {
		t.Fatal("expected a thrown CircularReference error")
	}
	if want := "CircularReference"; !containsSubstring(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got: %v", want, err)
	}
}

func TestJSONStringifyUsesToJSON(t *testing.T) {
	h := New()
	v, err := h.RunModule("<test>", `
		var obj = { toJSON: function() { return "custom"; } };
		JSON.stringify(obj);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.String(); got != `"custom"` {
		t.Fatalf("got %q, want %q", got, `"custom"`)
	}
}

func TestJSONStringifyReplacerAndSpace(t *testing.T) {
	h := New()
	v, err := h.RunModule("<test>", `
		JSON.stringify({a: 1, b: 2}, ["a"], 2);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := v.String()
	want := "{\n  \"a\": 1\n}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestJSONParseRoundTrip(t *testing.T) {
	h := New()
	v, err := h.RunModule("<test>", `JSON.parse('{"a":1,"b":[2,3]}').b[1]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.ToInteger(); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
