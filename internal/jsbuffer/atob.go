package jsbuffer

import (
	"encoding/base64"

	"github.com/r3e-network/llrt-go/internal/framework"
)

// Btoa encodes a Latin-1 string to base64, raising InvalidCharacter for
// any code point above 255 (spec.md §4.11).
func Btoa(s string) (string, error) {
	raw := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 255 {
			return "", framework.Newf(framework.KindInvalidCharacter, "btoa", "character code %d is outside the Latin-1 range", r)
		}
		raw = append(raw, byte(r))
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Atob decodes base64 into a string with one char per decoded byte
// (Latin-1 semantics, spec.md §4.11).
func Atob(s string) (string, error) {
	raw, err := decodeBase64Lenient(s, base64.StdEncoding)
	if err != nil {
		return "", framework.New(framework.KindInvalidCharacter, "atob", err)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes), nil
}
