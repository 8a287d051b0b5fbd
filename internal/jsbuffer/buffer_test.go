package jsbuffer

import "testing"

func TestAllocIsZeroed(t *testing.T) {
	b := Alloc(4)
	for _, c := range b.Bytes() {
		if c != 0 {
			t.Fatalf("expected zeroed buffer, got %v", b.Bytes())
		}
	}
}

func TestFromStringUTF8RoundTrip(t *testing.T) {
	b, err := FromString("hello", UTF8)
	if err != nil {
		t.Fatalf("from: %v", err)
	}
	s, err := b.ToString(UTF8)
	if err != nil {
		t.Fatalf("to string: %v", err)
	}
	if s != "hello" {
		t.Fatalf("got %q", s)
	}
}

func TestFromStringHexRoundTrip(t *testing.T) {
	b, err := FromString("68656c6c6f", Hex)
	if err != nil {
		t.Fatalf("from: %v", err)
	}
	s, _ := b.ToString(UTF8)
	if s != "hello" {
		t.Fatalf("got %q", s)
	}
}

func TestFromStringBase64URLRoundTrip(t *testing.T) {
	orig := []byte{0xfb, 0xff, 0x01}
	enc, err := Encode(orig, Base64URL)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := FromString(enc, Base64URL)
	if err != nil {
		t.Fatalf("from: %v", err)
	}
	if string(b.Bytes()) != string(orig) {
		t.Fatalf("got %v want %v", b.Bytes(), orig)
	}
}

func TestSubarraySharesStorage(t *testing.T) {
	b := Alloc(8)
	sub := b.Subarray(2, 5)
	sub.Bytes()[0] = 0xff
	if b.Bytes()[2] != 0xff {
		t.Fatal("expected subarray to share underlying storage")
	}
}

func TestCopyReturnsBytesWritten(t *testing.T) {
	src, _ := FromString("hello", UTF8)
	dst := Alloc(3)
	n := src.Copy(dst, 0, 0, src.Len())
	if n != 3 {
		t.Fatalf("expected copy to be clamped to destination length, got %d", n)
	}
	s, _ := dst.ToString(UTF8)
	if s != "hel" {
		t.Fatalf("got %q", s)
	}
}

func TestConcatWithExplicitTotalLength(t *testing.T) {
	a, _ := FromString("ab", UTF8)
	b, _ := FromString("cd", UTF8)
	out := Concat([]*Buffer{a, b}, 3)
	s, _ := out.ToString(UTF8)
	if s != "abc" {
		t.Fatalf("got %q", s)
	}
}

func TestIsBuffer(t *testing.T) {
	b := Alloc(1)
	if !IsBuffer(b) {
		t.Fatal("expected IsBuffer(true) for *Buffer")
	}
	if IsBuffer("not a buffer") {
		t.Fatal("expected IsBuffer(false) for non-buffer")
	}
}

func TestIsEncoding(t *testing.T) {
	if !IsEncoding("utf-16le") || !IsEncoding("Base64") {
		t.Fatal("expected known encodings to validate")
	}
	if IsEncoding("rot13") {
		t.Fatal("expected unknown encoding to be rejected")
	}
}

func TestUInt32LERoundTrip(t *testing.T) {
	b := Alloc(4)
	if err := b.WriteUInt32LE(0, 0xdeadbeef); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := b.ReadUInt32LE(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0xdeadbeef {
		t.Fatalf("got %x", v)
	}
}

func TestDoubleBERoundTrip(t *testing.T) {
	b := Alloc(8)
	if err := b.WriteDoubleBE(0, 3.14159); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := b.ReadDoubleBE(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 3.14159 {
		t.Fatalf("got %v", v)
	}
}

func TestReadOutOfBoundsErrors(t *testing.T) {
	b := Alloc(2)
	if _, err := b.ReadUInt32LE(0); err == nil {
		t.Fatal("expected out-of-bounds read to error")
	}
}
