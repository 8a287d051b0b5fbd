// Package jsonfast implements the runtime's JSON.parse/JSON.stringify fast
// path: a two-phase tape parser and a hand-rolled stringifier, kept
// independent of the embedded JS engine so it can be unit tested directly
// against plain Go values. internal/engine adapts goja values to/from the
// `any` tree this package produces and consumes (map[string]any,
// []any, string, float64, bool, nil).
//
// This is core-domain code per spec: JSON handling is explicitly not one
// of the "external collaborator" modules, so it is hand-built rather than
// delegated to encoding/json (which would not let us model tape
// construction, custom toJSON, or the exact escape/number semantics below).
package jsonfast

import (
	"fmt"
)

type tapeKind uint8

const (
	tapeString tapeKind = iota
	tapeNumber
	tapeTrue
	tapeFalse
	tapeNull
	tapeObjectStart
	tapeArrayStart
)

// tapeNode is one entry of the flat intermediate representation. For
// tapeObjectStart/tapeArrayStart, length holds the number of key+value (or
// value) entries that immediately follow on the tape.
type tapeNode struct {
	kind   tapeKind
	str    string
	num    float64
	length int
}

// ParseError reports a JSON syntax error with the byte offset it occurred
// at, mirroring the position information V8/QuickJS-class engines surface
// on a JSON.parse SyntaxError.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("json: %s at offset %d", e.Msg, e.Offset)
}

// Parse decodes a JSON document into a Go value tree: map[string]any for
// objects (insertion order is not preserved, matching JS's own object key
// enumeration not being guaranteed equal to JSON source order once engines
// reorder integer-like keys), []any for arrays, string, float64, bool, or
// nil.
func Parse(data []byte) (any, error) {
	p := &tapeParser{data: data}
	tape, err := p.scan()
	if err != nil {
		return nil, err
	}
	if len(tape) == 0 {
		return nil, &ParseError{Offset: 0, Msg: "unexpected end of input"}
	}
	v, rest, err := build(tape)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &ParseError{Offset: p.pos, Msg: "unexpected trailing tape entries"}
	}
	return v, nil
}

// build materialises a value tree from the front of tape, returning the
// unconsumed remainder. This is phase two of the tape parser described in
// spec.md §4.9: object/array headers consume exactly `length` following
// entries (key+value pairs, or values).
func build(tape []tapeNode) (any, []tapeNode, error) {
	if len(tape) == 0 {
		return nil, tape, &ParseError{Msg: "unexpected end of tape"}
	}
	node := tape[0]
	rest := tape[1:]
	switch node.kind {
	case tapeString:
		return node.str, rest, nil
	case tapeNumber:
		return node.num, rest, nil
	case tapeTrue:
		return true, rest, nil
	case tapeFalse:
		return false, rest, nil
	case tapeNull:
		return nil, rest, nil
	case tapeObjectStart:
		obj := make(map[string]any, node.length)
		for i := 0; i < node.length; i++ {
			if len(rest) == 0 {
				return nil, rest, &ParseError{Msg: "truncated object on tape"}
			}
			keyNode := rest[0]
			rest = rest[1:]
			if keyNode.kind != tapeString {
				return nil, rest, &ParseError{Msg: "object key is not a string"}
			}
			var val any
			var err error
			val, rest, err = build(rest)
			if err != nil {
				return nil, rest, err
			}
			obj[keyNode.str] = val
		}
		return obj, rest, nil
	case tapeArrayStart:
		arr := make([]any, 0, node.length)
		for i := 0; i < node.length; i++ {
			var val any
			var err error
			val, rest, err = build(rest)
			if err != nil {
				return nil, rest, err
			}
			arr = append(arr, val)
		}
		return arr, rest, nil
	default:
		return nil, rest, &ParseError{Msg: "corrupt tape node"}
	}
}
