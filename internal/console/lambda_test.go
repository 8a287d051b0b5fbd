package console

import (
	"strings"
	"testing"
)

func TestLambdaEmitterFiltersBelowMinLevel(t *testing.T) {
	var lines []string
	e := &LambdaEmitter{MinLevel: LevelWarn, Write: func(l string) { lines = append(lines, l) }}
	e.Emit(LevelInfo, []any{"skip me"})
	if len(lines) != 0 {
		t.Fatalf("expected nothing emitted below min level, got %v", lines)
	}
}

func TestLambdaEmitterIncludesRequestID(t *testing.T) {
	var lines []string
	e := &LambdaEmitter{RequestID: func() string { return "req-1" }, Write: func(l string) { lines = append(lines, l) }}
	e.Emit(LevelInfo, []any{"hello"})
	if len(lines) != 1 || !strings.Contains(lines[0], `"requestId":"req-1"`) {
		t.Fatalf("got %v", lines)
	}
	if !strings.Contains(lines[0], `"message":"hello"`) {
		t.Fatalf("got %v", lines)
	}
}

func TestLambdaEmitterPromotesError(t *testing.T) {
	var lines []string
	e := &LambdaEmitter{Write: func(l string) { lines = append(lines, l) }}
	e.Emit(LevelError, []any{ErrorValue{Name: "TypeError", Message: "bad", Stack: "line1\nline2"}})
	if len(lines) != 1 {
		t.Fatalf("got %v", lines)
	}
	if !strings.Contains(lines[0], `"errorType":"TypeError"`) || !strings.Contains(lines[0], `"stackTrace":["line1","line2"]`) {
		t.Fatalf("got %v", lines[0])
	}
}
