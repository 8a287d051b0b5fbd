package console

import "testing"

func TestFormatStringSpecifier(t *testing.T) {
	got := Format([]any{"hello %s", "world"})
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatNumberSpecifiers(t *testing.T) {
	got := Format([]any{"%d items, %f ratio", 3.9, "1.5"})
	if got != "3 items, 1.5 ratio" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatLiteralPercent(t *testing.T) {
	got := Format([]any{"100%% done"})
	if got != "100% done" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatExtraArgsAppended(t *testing.T) {
	got := Format([]any{"msg %s", "a", "b"})
	if got != "msg a b" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatNoSpecifiersJoinsInspected(t *testing.T) {
	got := Format([]any{"a", "b", float64(3)})
	if got != "a b 3" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatJSONSpecifier(t *testing.T) {
	got := Format([]any{"%j", map[string]any{"a": float64(1)}})
	if got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}
