package console

import (
	"strings"
	"testing"
)

func TestInspectRootStringUnquoted(t *testing.T) {
	if got := Inspect("hi", inspectDefaults()); got != "hi" {
		t.Fatalf("got %q", got)
	}
}

func TestInspectNestedStringQuoted(t *testing.T) {
	m := map[string]any{"k": "v"}
	got := Inspect(m, inspectDefaults())
	if got != "{ k: 'v' }" {
		t.Fatalf("got %q", got)
	}
}

func TestInspectCircularMap(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	got := Inspect(m, inspectDefaults())
	if got != "{ self: [Circular] }" {
		t.Fatalf("got %q", got)
	}
}

func TestInspectDepthCollapsesToObject(t *testing.T) {
	v := any(map[string]any{"k": "leaf"})
	for i := 0; i < maxInspectDepth+2; i++ {
		v = map[string]any{"k": v}
	}
	got := Inspect(v, inspectDefaults())
	if !strings.Contains(got, "[Object]") {
		t.Fatalf("expected depth collapse marker, got %q", got)
	}
}

func TestInspectErrorValue(t *testing.T) {
	e := ErrorValue{Name: "TypeError", Message: "bad"}
	got := Inspect(e, inspectDefaults())
	if got != "TypeError: bad" {
		t.Fatalf("got %q", got)
	}
}

func TestInspectManyKeysTruncated(t *testing.T) {
	m := make(map[string]any, maxOwnKeys+5)
	for i := 0; i < maxOwnKeys+5; i++ {
		m[string(rune('a'+i%26))+string(rune('0'+i/26))] = float64(i)
	}
	got := Inspect(m, inspectDefaults())
	if !strings.Contains(got, "more items") {
		t.Fatalf("expected truncation tail, got %q", got)
	}
}

func TestInspectAllOwnPropsSkipsTruncation(t *testing.T) {
	m := make(map[string]any, maxOwnKeys+5)
	for i := 0; i < maxOwnKeys+5; i++ {
		m[string(rune('a'+i%26))+string(rune('0'+i/26))] = float64(i)
	}
	got := Inspect(m, inspectAllOwnProps())
	if strings.Contains(got, "more items") {
		t.Fatalf("expected no truncation tail under AllOwnProps, got %q", got)
	}
}

type structWithHiddenField struct {
	Visible string
	hidden  string
}

func TestInspectAllOwnPropsIncludesUnexportedFields(t *testing.T) {
	v := structWithHiddenField{Visible: "v", hidden: "h"}

	asO := Inspect(v, inspectDefaults())
	if strings.Contains(asO, "hidden") {
		t.Fatalf("%%o should not reveal unexported fields, got %q", asO)
	}

	asCapitalO := Inspect(v, inspectAllOwnProps())
	if !strings.Contains(asCapitalO, "hidden: 'h'") {
		t.Fatalf("%%O should reveal unexported fields, got %q", asCapitalO)
	}
}
