package jsbuffer

import (
	"math"

	"github.com/r3e-network/llrt-go/internal/framework"
)

// Buffer is a Node-style byte buffer: a view (offset/length) over a
// shared underlying []byte. Subarray shares storage with its parent so
// identity of the underlying bytes is preserved across slicing, per
// spec.md §4.11's invariant.
type Buffer struct {
	data   []byte
	offset int
	length int
}

// Alloc returns a zero-filled Buffer of n bytes.
func Alloc(n int) *Buffer {
	return &Buffer{data: make([]byte, n), length: n}
}

// AllocUnsafe returns an n-byte Buffer without zeroing (Go's make
// already zeroes, so this and Alloc are equivalent here; both are kept
// because spec.md names them as distinct static methods the engine
// binding must expose).
func AllocUnsafe(n int) *Buffer { return Alloc(n) }

// AllocUnsafeSlow is the non-pooled allocUnsafe variant; Go has no
// internal Buffer pool to bypass, so this is identical to AllocUnsafe.
func AllocUnsafeSlow(n int) *Buffer { return Alloc(n) }

// FromBytes wraps an existing []byte without copying.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b, length: len(b)}
}

// FromString decodes s with enc into a new Buffer.
func FromString(s string, enc Encoding) (*Buffer, error) {
	b, err := Decode(s, enc)
	if err != nil {
		return nil, err
	}
	return FromBytes(b), nil
}

// Concat joins list's bytes into one new Buffer, truncated/zero-padded
// to totalLength when >= 0.
func Concat(list []*Buffer, totalLength int) *Buffer {
	sum := 0
	for _, b := range list {
		sum += b.length
	}
	size := sum
	if totalLength >= 0 {
		size = totalLength
	}
	out := make([]byte, size)
	pos := 0
	for _, b := range list {
		if pos >= size {
			break
		}
		n := copy(out[pos:], b.Bytes())
		pos += n
	}
	return FromBytes(out)
}

// Bytes returns the slice this Buffer views.
func (b *Buffer) Bytes() []byte {
	return b.data[b.offset : b.offset+b.length]
}

// Len returns the buffer's byte length.
func (b *Buffer) Len() int { return b.length }

// Subarray returns a Buffer sharing storage with b, covering [start,end)
// clamped to b's bounds. Negative indices count from the end, matching
// Node's Buffer.subarray/slice.
func (b *Buffer) Subarray(start, end int) *Buffer {
	start = clampIndex(start, b.length)
	end = clampIndex(end, b.length)
	if end < start {
		end = start
	}
	return &Buffer{data: b.data, offset: b.offset + start, length: end - start}
}

func clampIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}

// Copy copies from b[srcStart:srcEnd] into target starting at targetStart,
// returning the number of bytes actually written (spec.md §4.11
// invariant).
func (b *Buffer) Copy(target *Buffer, targetStart, srcStart, srcEnd int) int {
	srcStart = clampIndex(srcStart, b.length)
	srcEnd = clampIndex(srcEnd, b.length)
	if srcEnd < srcStart {
		return 0
	}
	targetStart = clampIndex(targetStart, target.length)
	return copy(target.Bytes()[targetStart:], b.Bytes()[srcStart:srcEnd])
}

// ToString decodes b's bytes with enc.
func (b *Buffer) ToString(enc Encoding) (string, error) {
	return Encode(b.Bytes(), enc)
}

// Write encodes s into b starting at offset, returning bytes written.
func (b *Buffer) Write(s string, offset int, enc Encoding) (int, error) {
	decoded, err := Decode(s, enc)
	if err != nil {
		return 0, err
	}
	return copy(b.Bytes()[offset:], decoded), nil
}

// IsBuffer reports whether v is a *Buffer, the behaviour backing the
// static Buffer.isBuffer.
func IsBuffer(v any) bool {
	_, ok := v.(*Buffer)
	return ok
}

func (b *Buffer) checkBounds(offset, size int) error {
	if offset < 0 || offset+size > b.length {
		return framework.Newf(framework.KindInvalidCharacter, "Buffer.read", "offset %d out of range for length %d", offset, b.length)
	}
	return nil
}

// ReadUInt8/WriteUInt8 and the rest of the endian-tagged matrix below
// mirror Node's Buffer read*/write* family (spec.md §4.11 "endian-tagged
// integer/float read/write matrix").

func (b *Buffer) ReadUInt8(offset int) (uint8, error) {
	if err := b.checkBounds(offset, 1); err != nil {
		return 0, err
	}
	return b.Bytes()[offset], nil
}

func (b *Buffer) WriteUInt8(offset int, v uint8) error {
	if err := b.checkBounds(offset, 1); err != nil {
		return err
	}
	b.Bytes()[offset] = v
	return nil
}

func (b *Buffer) ReadInt8(offset int) (int8, error) {
	v, err := b.ReadUInt8(offset)
	return int8(v), err
}

func (b *Buffer) WriteInt8(offset int, v int8) error {
	return b.WriteUInt8(offset, uint8(v))
}

func (b *Buffer) ReadUInt16LE(offset int) (uint16, error) {
	if err := b.checkBounds(offset, 2); err != nil {
		return 0, err
	}
	buf := b.Bytes()
	return uint16(buf[offset]) | uint16(buf[offset+1])<<8, nil
}

func (b *Buffer) ReadUInt16BE(offset int) (uint16, error) {
	if err := b.checkBounds(offset, 2); err != nil {
		return 0, err
	}
	buf := b.Bytes()
	return uint16(buf[offset])<<8 | uint16(buf[offset+1]), nil
}

func (b *Buffer) WriteUInt16LE(offset int, v uint16) error {
	if err := b.checkBounds(offset, 2); err != nil {
		return err
	}
	buf := b.Bytes()
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
	return nil
}

func (b *Buffer) WriteUInt16BE(offset int, v uint16) error {
	if err := b.checkBounds(offset, 2); err != nil {
		return err
	}
	buf := b.Bytes()
	buf[offset] = byte(v >> 8)
	buf[offset+1] = byte(v)
	return nil
}

func (b *Buffer) ReadInt16LE(offset int) (int16, error) {
	v, err := b.ReadUInt16LE(offset)
	return int16(v), err
}

func (b *Buffer) ReadInt16BE(offset int) (int16, error) {
	v, err := b.ReadUInt16BE(offset)
	return int16(v), err
}

func (b *Buffer) WriteInt16LE(offset int, v int16) error { return b.WriteUInt16LE(offset, uint16(v)) }
func (b *Buffer) WriteInt16BE(offset int, v int16) error { return b.WriteUInt16BE(offset, uint16(v)) }

func (b *Buffer) ReadUInt32LE(offset int) (uint32, error) {
	if err := b.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	buf := b.Bytes()
	return uint32(buf[offset]) | uint32(buf[offset+1])<<8 | uint32(buf[offset+2])<<16 | uint32(buf[offset+3])<<24, nil
}

func (b *Buffer) ReadUInt32BE(offset int) (uint32, error) {
	if err := b.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	buf := b.Bytes()
	return uint32(buf[offset])<<24 | uint32(buf[offset+1])<<16 | uint32(buf[offset+2])<<8 | uint32(buf[offset+3]), nil
}

func (b *Buffer) WriteUInt32LE(offset int, v uint32) error {
	if err := b.checkBounds(offset, 4); err != nil {
		return err
	}
	buf := b.Bytes()
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
	buf[offset+2] = byte(v >> 16)
	buf[offset+3] = byte(v >> 24)
	return nil
}

func (b *Buffer) WriteUInt32BE(offset int, v uint32) error {
	if err := b.checkBounds(offset, 4); err != nil {
		return err
	}
	buf := b.Bytes()
	buf[offset] = byte(v >> 24)
	buf[offset+1] = byte(v >> 16)
	buf[offset+2] = byte(v >> 8)
	buf[offset+3] = byte(v)
	return nil
}

func (b *Buffer) ReadInt32LE(offset int) (int32, error) {
	v, err := b.ReadUInt32LE(offset)
	return int32(v), err
}

func (b *Buffer) ReadInt32BE(offset int) (int32, error) {
	v, err := b.ReadUInt32BE(offset)
	return int32(v), err
}

func (b *Buffer) WriteInt32LE(offset int, v int32) error { return b.WriteUInt32LE(offset, uint32(v)) }
func (b *Buffer) WriteInt32BE(offset int, v int32) error { return b.WriteUInt32BE(offset, uint32(v)) }

func (b *Buffer) ReadFloatLE(offset int) (float32, error) {
	v, err := b.ReadUInt32LE(offset)
	return math.Float32frombits(v), err
}

func (b *Buffer) ReadFloatBE(offset int) (float32, error) {
	v, err := b.ReadUInt32BE(offset)
	return math.Float32frombits(v), err
}

func (b *Buffer) WriteFloatLE(offset int, v float32) error {
	return b.WriteUInt32LE(offset, math.Float32bits(v))
}

func (b *Buffer) WriteFloatBE(offset int, v float32) error {
	return b.WriteUInt32BE(offset, math.Float32bits(v))
}

func (b *Buffer) ReadUInt64LE(offset int) (uint64, error) {
	if err := b.checkBounds(offset, 8); err != nil {
		return 0, err
	}
	lo, _ := b.ReadUInt32LE(offset)
	hi, _ := b.ReadUInt32LE(offset + 4)
	return uint64(lo) | uint64(hi)<<32, nil
}

func (b *Buffer) ReadUInt64BE(offset int) (uint64, error) {
	if err := b.checkBounds(offset, 8); err != nil {
		return 0, err
	}
	hi, _ := b.ReadUInt32BE(offset)
	lo, _ := b.ReadUInt32BE(offset + 4)
	return uint64(hi)<<32 | uint64(lo), nil
}

func (b *Buffer) WriteUInt64LE(offset int, v uint64) error {
	if err := b.checkBounds(offset, 8); err != nil {
		return err
	}
	_ = b.WriteUInt32LE(offset, uint32(v))
	return b.WriteUInt32LE(offset+4, uint32(v>>32))
}

func (b *Buffer) WriteUInt64BE(offset int, v uint64) error {
	if err := b.checkBounds(offset, 8); err != nil {
		return err
	}
	_ = b.WriteUInt32BE(offset, uint32(v>>32))
	return b.WriteUInt32BE(offset+4, uint32(v))
}

func (b *Buffer) ReadInt64LE(offset int) (int64, error) {
	v, err := b.ReadUInt64LE(offset)
	return int64(v), err
}

func (b *Buffer) ReadInt64BE(offset int) (int64, error) {
	v, err := b.ReadUInt64BE(offset)
	return int64(v), err
}

func (b *Buffer) WriteInt64LE(offset int, v int64) error { return b.WriteUInt64LE(offset, uint64(v)) }
func (b *Buffer) WriteInt64BE(offset int, v int64) error { return b.WriteUInt64BE(offset, uint64(v)) }

func (b *Buffer) ReadDoubleLE(offset int) (float64, error) {
	v, err := b.ReadUInt64LE(offset)
	return math.Float64frombits(v), err
}

func (b *Buffer) ReadDoubleBE(offset int) (float64, error) {
	v, err := b.ReadUInt64BE(offset)
	return math.Float64frombits(v), err
}

func (b *Buffer) WriteDoubleLE(offset int, v float64) error {
	return b.WriteUInt64LE(offset, math.Float64bits(v))
}

func (b *Buffer) WriteDoubleBE(offset int, v float64) error {
	return b.WriteUInt64BE(offset, math.Float64bits(v))
}
