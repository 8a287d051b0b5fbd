// Package jsbuffer implements the Buffer type and the atob/btoa globals
// of spec.md §4.11: a Node-style byte buffer layered over a plain Go
// []byte, with the encoding set {utf-8, utf-16le, latin1, base64,
// base64url, hex}. Grounded on original_source/src/buffer.rs's
// Buffer(Vec<u8>) + Encoder::from_str shape -- that file dispatches
// encode/decode through a shared Encoder enum; here the equivalent is a
// small Encoding type with Encode/Decode methods, expressed the way the
// teacher expresses small closed enums (a typed string constant set).
package jsbuffer

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode/utf16"

	"github.com/r3e-network/llrt-go/internal/framework"
)

// Encoding identifies one of the byte<->string codecs Buffer supports.
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	UTF16LE  Encoding = "utf-16le"
	Latin1   Encoding = "latin1"
	Base64   Encoding = "base64"
	Base64URL Encoding = "base64url"
	Hex      Encoding = "hex"
)

var aliases = map[string]Encoding{
	"utf8":     UTF8,
	"utf-8":    UTF8,
	"utf16le":  UTF16LE,
	"utf-16le": UTF16LE,
	"ucs2":     UTF16LE,
	"ucs-2":    UTF16LE,
	"latin1":   Latin1,
	"binary":   Latin1,
	"base64":   Base64,
	"base64url": Base64URL,
	"hex":      Hex,
}

// ParseEncoding normalises a user-supplied encoding name, defaulting to
// UTF8 for an empty string. ok is false for an unrecognised name.
func ParseEncoding(name string) (Encoding, bool) {
	if name == "" {
		return UTF8, true
	}
	enc, ok := aliases[strings.ToLower(name)]
	return enc, ok
}

// IsEncoding reports whether name is a recognised encoding, the
// behaviour backing Buffer.isEncoding.
func IsEncoding(name string) bool {
	_, ok := ParseEncoding(name)
	return ok
}

// Decode turns a string into bytes per enc.
func Decode(s string, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8, "":
		return []byte(s), nil
	case Latin1:
		out := make([]byte, len(s))
		for i, r := range s {
			if r > 0xff {
				r = '?'
			}
			out[i] = byte(r)
		}
		return out, nil
	case UTF16LE:
		runes := []rune(s)
		units := utf16.Encode(runes)
		out := make([]byte, len(units)*2)
		for i, u := range units {
			out[i*2] = byte(u)
			out[i*2+1] = byte(u >> 8)
		}
		return out, nil
	case Base64:
		return decodeBase64Lenient(s, base64.StdEncoding)
	case Base64URL:
		return decodeBase64Lenient(s, base64.URLEncoding)
	case Hex:
		return hex.DecodeString(s)
	default:
		return nil, framework.Newf(framework.KindInvalidCharacter, "Buffer.from", "unsupported encoding %q", enc)
	}
}

func decodeBase64Lenient(s string, enc *base64.Encoding) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if rem := len(s) % 4; rem != 0 {
		s = s + strings.Repeat("=", 4-rem)
	}
	return enc.DecodeString(s)
}

// Encode turns bytes into a string per enc.
func Encode(b []byte, enc Encoding) (string, error) {
	switch enc {
	case UTF8, "":
		return string(b), nil
	case Latin1:
		runes := make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
		return string(runes), nil
	case UTF16LE:
		if len(b)%2 != 0 {
			b = b[:len(b)-1]
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = uint16(b[i*2]) | uint16(b[i*2+1])<<8
		}
		return string(utf16.Decode(units)), nil
	case Base64:
		return base64.StdEncoding.EncodeToString(b), nil
	case Base64URL:
		return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
	case Hex:
		return hex.EncodeToString(b), nil
	default:
		return "", framework.Newf(framework.KindInvalidCharacter, "Buffer.toString", "unsupported encoding %q", enc)
	}
}
