// Package compress implements the synchronous gzip/deflate functions
// behind the "zlib" builtin module (SPEC_FULL.md §4.12): Buffer-to-Buffer
// transforms with no streaming API, matching the one-shot nature of a
// single Lambda invocation's payload rather than Node's full zlib
// streaming surface. Built on klauspost/compress, the same third-party
// compression stack internal/bytecode already uses for its zstd
// dictionary codec, rather than reaching for the standard library's
// compress/gzip and compress/flate.
package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// GzipSync compresses data into gzip format.
func GzipSync(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GunzipSync decompresses gzip-format data.
func GunzipSync(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// DeflateSync compresses data as zlib-wrapped DEFLATE (RFC 1950), the
// format Node's zlib.deflateSync produces.
func DeflateSync(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InflateSync reverses DeflateSync.
func InflateSync(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// DeflateRawSync compresses data as raw DEFLATE (RFC 1951, no zlib
// header), the format Node's zlib.deflateRawSync produces.
func DeflateRawSync(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InflateRawSync reverses DeflateRawSync.
func InflateRawSync(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}
