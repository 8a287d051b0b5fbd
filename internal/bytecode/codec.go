// Package bytecode implements the versioned bytecode artifact format
// described in spec.md §4.2 and §6: a fixed signature, an optional
// dictionary-compressed payload, and the codec that serialises/
// deserialises it. The shared dictionary is built once at package init
// time and baked into the binary, the way infrastructure
// packages build a single process-wide resource at startup (spec.md §5
// "Shared resources").
package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/r3e-network/llrt-go/internal/framework"
)

// Version is the fixed-length signature every artifact starts with. A
// decoder rejects any artifact whose signature does not match exactly
// (spec.md §3 "signature version must match the producer exactly").
const Version = "LRT1"

const (
	flagUncompressed byte = 0x00
	flagCompressed   byte = 0x01
)

// Encode serialises engine bytecode into the wire artifact. When compress
// is true the payload is dictionary-compressed and prefixed with its
// little-endian uncompressed length.
func Encode(engineBytecode []byte, compress bool) ([]byte, error) {
	out := make([]byte, 0, len(Version)+1+len(engineBytecode))
	out = append(out, Version...)

	if !compress {
		out = append(out, flagUncompressed)
		out = append(out, engineBytecode...)
		return out, nil
	}

	compressed, err := compressWithDict(engineBytecode)
	if err != nil {
		return nil, framework.New(framework.KindInvalidBytecodeFlag, "Encode", err)
	}

	out = append(out, flagCompressed)
	var sizePrefix [4]byte
	binary.LittleEndian.PutUint32(sizePrefix[:], uint32(len(engineBytecode)))
	out = append(out, sizePrefix[:]...)
	out = append(out, compressed...)
	return out, nil
}

// Decode validates the signature and returns the original engine bytecode,
// decompressing it first if the flag byte says it is compressed.
func Decode(artifact []byte) ([]byte, error) {
	if len(artifact) < len(Version)+1 {
		return nil, framework.New(framework.KindInvalidBytecodeVersion, "Decode", fmt.Errorf("artifact too short"))
	}
	if string(artifact[:len(Version)]) != Version {
		return nil, framework.New(framework.KindInvalidBytecodeVersion, "Decode", fmt.Errorf("signature mismatch"))
	}

	rest := artifact[len(Version):]
	flag := rest[0]
	rest = rest[1:]

	switch flag {
	case flagUncompressed:
		out := make([]byte, len(rest))
		copy(out, rest)
		return out, nil
	case flagCompressed:
		if len(rest) < 4 {
			return nil, framework.New(framework.KindInvalidBytecodeFlag, "Decode", fmt.Errorf("truncated size prefix"))
		}
		size := binary.LittleEndian.Uint32(rest[:4])
		payload := rest[4:]
		out, err := decompressWithDict(payload, int(size))
		if err != nil {
			return nil, framework.New(framework.KindInvalidBytecodeFlag, "Decode", err)
		}
		if uint32(len(out)) != size {
			return nil, framework.New(framework.KindInvalidBytecodeFlag, "Decode", fmt.Errorf("decompressed size mismatch: got %d want %d", len(out), size))
		}
		return out, nil
	default:
		return nil, framework.New(framework.KindInvalidBytecodeFlag, "Decode", fmt.Errorf("unknown flag byte 0x%02x", flag))
	}
}

func compressWithDict(b []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderDict(SharedDictionary))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b, nil), nil
}

func decompressWithDict(b []byte, sizeHint int) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderDicts(SharedDictionary))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	dst := make([]byte, 0, sizeHint)
	buf := bytes.NewBuffer(dst)
	out, err := dec.DecodeAll(b, buf.Bytes())
	if err != nil {
		return nil, err
	}
	return out, nil
}
