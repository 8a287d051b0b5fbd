package bytecode

import (
	"strings"
	"testing"

	"github.com/r3e-network/llrt-go/internal/framework"
)

func TestEncodeDecodeUncompressedRoundTrip(t *testing.T) {
	src := []byte("fake engine bytecode payload")
	artifact, err := Encode(src, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(artifact)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != string(src) {
		t.Fatalf("round trip mismatch: got %q want %q", got, src)
	}
}

func TestEncodeDecodeCompressedRoundTrip(t *testing.T) {
	src := []byte(strings.Repeat("module.exports = function(){ return 1 }; ", 50))
	artifact, err := Encode(src, true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(artifact) >= len(src) {
		t.Fatalf("expected compressed artifact to be smaller than source")
	}
	got, err := Decode(artifact)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != string(src) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	artifact, err := Encode([]byte("x"), false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	artifact[0] ^= 0xFF
	_, err = Decode(artifact)
	if !framework.Is(err, framework.KindInvalidBytecodeVersion) {
		t.Fatalf("expected InvalidBytecodeVersion, got %v", err)
	}
}

func TestDecodeRejectsBadFlag(t *testing.T) {
	artifact, err := Encode([]byte("x"), false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	artifact[len(Version)] = 0x7F
	_, err = Decode(artifact)
	if !framework.Is(err, framework.KindInvalidBytecodeFlag) {
		t.Fatalf("expected InvalidBytecodeFlag, got %v", err)
	}
}

