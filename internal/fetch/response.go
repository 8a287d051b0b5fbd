package fetch

import (
	"github.com/r3e-network/llrt-go/internal/framework"
	"github.com/r3e-network/llrt-go/internal/jsonfast"
)

// Text returns the body decoded as UTF-8 text. The body may only be
// consumed once across Text/JSON/ArrayBuffer/Blob (spec.md §4.8).
func (r *Response) Text() (string, error) {
	b, err := r.take()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// JSON parses the body with the tape-based JSON fast path.
func (r *Response) JSON() (any, error) {
	b, err := r.take()
	if err != nil {
		return nil, err
	}
	return jsonfast.Parse(b)
}

// ArrayBuffer returns the raw body bytes.
func (r *Response) ArrayBuffer() ([]byte, error) {
	return r.take()
}

// Blob is an alias for ArrayBuffer at this layer; the engine bridge is
// responsible for wrapping the bytes in a Blob-shaped JS object.
func (r *Response) Blob() ([]byte, error) {
	return r.take()
}

func (r *Response) take() ([]byte, error) {
	if r.consumed {
		return nil, framework.New(framework.KindBodyAlreadyConsumed, "Response.body", errBodyConsumed)
	}
	r.consumed = true
	return r.body, nil
}

type bodyError string

func (e bodyError) Error() string { return string(e) }

const errBodyConsumed bodyError = "body stream already read"
