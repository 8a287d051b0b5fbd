package jsbuffer

import (
	"testing"

	"github.com/r3e-network/llrt-go/internal/framework"
)

func TestBtoaAtobRoundTrip(t *testing.T) {
	encoded, err := Btoa("hello")
	if err != nil {
		t.Fatalf("btoa: %v", err)
	}
	decoded, err := Atob(encoded)
	if err != nil {
		t.Fatalf("atob: %v", err)
	}
	if decoded != "hello" {
		t.Fatalf("got %q", decoded)
	}
}

func TestBtoaRejectsAboveLatin1(t *testing.T) {
	_, err := Btoa("café中")
	if !framework.Is(err, framework.KindInvalidCharacter) {
		t.Fatalf("got %v", err)
	}
}
