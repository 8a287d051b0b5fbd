package bytecode

import "strings"

// SharedDictionary is the zstd dictionary baked into the host image and
// shared by every compiled module (spec.md §4.2 "Why a shared
// dictionary"). In a release build this would be produced once at package
// time by `zstd --train` over the corpus of built-in module bytecode; here
// it is seeded from the identifiers and literals that recur across nearly
// every module (require/exports plumbing, common globals, JS keywords) so
// the dictionary-compressed path in tests exercises the same code as a
// production-trained dictionary would.
var SharedDictionary = buildSeedDictionary()

func buildSeedDictionary() []byte {
	tokens := []string{
		"module.exports", "exports.default", "require(", "function", "return",
		"const", "let", "var", "async", "await", "import", "export", "default",
		"class", "extends", "constructor", "super", "this", "new", "typeof",
		"instanceof", "undefined", "null", "true", "false", "console.log",
		"Promise", "resolve", "reject", "process.env", "Buffer.from",
		"JSON.stringify", "JSON.parse", "Object.keys", "Object.assign",
		"Array.isArray", "Error", "TypeError", "RangeError", "catch", "throw",
		"try", "finally", "switch", "case", "break", "continue", "for", "of",
		"in", "while", "do", "if", "else", "__esModule", "Symbol.iterator",
		"AbortController", "AbortSignal", "fetch", "Headers", "Request",
		"Response", "URL", "URLSearchParams", "setTimeout", "clearTimeout",
		"EventTarget", "addEventListener", "removeEventListener",
	}
	return []byte(strings.Join(tokens, "\n"))
}
