package jsonfast

import (
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

type tapeParser struct {
	data []byte
	pos  int
}

// scan performs phase one of the tape parser: a single left-to-right pass
// that emits a flat slice of tapeNode values, pushing object/array headers
// before their contents and patching in the element count once the closing
// bracket/brace is reached.
func (p *tapeParser) scan() ([]tapeNode, error) {
	tape := make([]tapeNode, 0, 32)
	p.skipWS()
	tape, err := p.scanValue(tape)
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if p.pos != len(p.data) {
		return nil, &ParseError{Offset: p.pos, Msg: "unexpected trailing characters"}
	}
	return tape, nil
}

func (p *tapeParser) skipWS() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *tapeParser) scanValue(tape []tapeNode) ([]tapeNode, error) {
	if p.pos >= len(p.data) {
		return tape, &ParseError{Offset: p.pos, Msg: "unexpected end of input"}
	}
	switch c := p.data[p.pos]; {
	case c == '{':
		return p.scanObject(tape)
	case c == '[':
		return p.scanArray(tape)
	case c == '"':
		s, err := p.scanString()
		if err != nil {
			return tape, err
		}
		return append(tape, tapeNode{kind: tapeString, str: s}), nil
	case c == 't':
		if err := p.expectLiteral("true"); err != nil {
			return tape, err
		}
		return append(tape, tapeNode{kind: tapeTrue}), nil
	case c == 'f':
		if err := p.expectLiteral("false"); err != nil {
			return tape, err
		}
		return append(tape, tapeNode{kind: tapeFalse}), nil
	case c == 'n':
		if err := p.expectLiteral("null"); err != nil {
			return tape, err
		}
		return append(tape, tapeNode{kind: tapeNull}), nil
	case c == '-' || (c >= '0' && c <= '9'):
		n, err := p.scanNumber()
		if err != nil {
			return tape, err
		}
		return append(tape, tapeNode{kind: tapeNumber, num: n}), nil
	default:
		return tape, &ParseError{Offset: p.pos, Msg: "unexpected character"}
	}
}

func (p *tapeParser) expectLiteral(lit string) error {
	if p.pos+len(lit) > len(p.data) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return &ParseError{Offset: p.pos, Msg: "invalid literal"}
	}
	p.pos += len(lit)
	return nil
}

func (p *tapeParser) scanObject(tape []tapeNode) ([]tapeNode, error) {
	p.pos++ // consume '{'
	headerIdx := len(tape)
	tape = append(tape, tapeNode{kind: tapeObjectStart})
	count := 0

	p.skipWS()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		tape[headerIdx].length = 0
		return tape, nil
	}

	for {
		p.skipWS()
		if p.pos >= len(p.data) || p.data[p.pos] != '"' {
			return tape, &ParseError{Offset: p.pos, Msg: "expected object key"}
		}
		key, err := p.scanString()
		if err != nil {
			return tape, err
		}
		tape = append(tape, tapeNode{kind: tapeString, str: key})

		p.skipWS()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			return tape, &ParseError{Offset: p.pos, Msg: "expected ':' after object key"}
		}
		p.pos++
		p.skipWS()

		tape, err = p.scanValue(tape)
		if err != nil {
			return tape, err
		}
		count++

		p.skipWS()
		if p.pos >= len(p.data) {
			return tape, &ParseError{Offset: p.pos, Msg: "unterminated object"}
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
			continue
		case '}':
			p.pos++
			tape[headerIdx].length = count
			return tape, nil
		default:
			return tape, &ParseError{Offset: p.pos, Msg: "expected ',' or '}'"}
		}
	}
}

func (p *tapeParser) scanArray(tape []tapeNode) ([]tapeNode, error) {
	p.pos++ // consume '['
	headerIdx := len(tape)
	tape = append(tape, tapeNode{kind: tapeArrayStart})
	count := 0

	p.skipWS()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		tape[headerIdx].length = 0
		return tape, nil
	}

	for {
		p.skipWS()
		var err error
		tape, err = p.scanValue(tape)
		if err != nil {
			return tape, err
		}
		count++

		p.skipWS()
		if p.pos >= len(p.data) {
			return tape, &ParseError{Offset: p.pos, Msg: "unterminated array"}
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
			continue
		case ']':
			p.pos++
			tape[headerIdx].length = count
			return tape, nil
		default:
			return tape, &ParseError{Offset: p.pos, Msg: "expected ',' or ']'"}
		}
	}
}

func (p *tapeParser) scanString() (string, error) {
	start := p.pos
	p.pos++ // consume opening quote
	hasEscape := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '"' {
			if !hasEscape {
				s := string(p.data[start+1 : p.pos])
				p.pos++
				return s, nil
			}
			break
		}
		if c == '\\' {
			hasEscape = true
			p.pos += 2
			continue
		}
		if c < 0x20 {
			return "", &ParseError{Offset: p.pos, Msg: "control character in string"}
		}
		p.pos++
	}
	if !hasEscape {
		return "", &ParseError{Offset: start, Msg: "unterminated string"}
	}
	return p.scanEscapedString(start)
}

func (p *tapeParser) scanEscapedString(start int) (string, error) {
	p.pos = start + 1
	var out []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(out), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return "", &ParseError{Offset: p.pos, Msg: "unterminated escape"}
			}
			esc := p.data[p.pos]
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case '/':
				out = append(out, '/')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'u':
				r, err := p.scanUnicodeEscape()
				if err != nil {
					return "", err
				}
				var buf [utf8.UTFMax]byte
				n := utf8.EncodeRune(buf[:], r)
				out = append(out, buf[:n]...)
			default:
				return "", &ParseError{Offset: p.pos, Msg: "invalid escape character"}
			}
			p.pos++
		case c < 0x20:
			return "", &ParseError{Offset: p.pos, Msg: "control character in string"}
		default:
			out = append(out, c)
			p.pos++
		}
	}
	return "", &ParseError{Offset: start, Msg: "unterminated string"}
}

// scanUnicodeEscape reads a \uXXXX escape (and its low-surrogate pair, if
// present) starting at the 'u'. On return p.pos is positioned at the last
// consumed hex digit so the caller's p.pos++ lands past it.
func (p *tapeParser) scanUnicodeEscape() (rune, error) {
	hi, err := p.hex4()
	if err != nil {
		return 0, err
	}
	r := rune(hi)
	if utf16.IsSurrogate(r) {
		if p.pos+6 < len(p.data) && p.data[p.pos+1] == '\\' && p.data[p.pos+2] == 'u' {
			save := p.pos
			p.pos += 2
			lo, err := p.hex4()
			if err == nil {
				if dec := utf16.DecodeRune(r, rune(lo)); dec != utf8.RuneError {
					return dec, nil
				}
			}
			p.pos = save
		}
		return utf8.RuneError, nil
	}
	return r, nil
}

// hex4 reads exactly 4 hex digits starting after the 'u', advancing p.pos
// to the final digit.
func (p *tapeParser) hex4() (uint16, error) {
	if p.pos+4 >= len(p.data) {
		return 0, &ParseError{Offset: p.pos, Msg: "truncated unicode escape"}
	}
	digits := p.data[p.pos+1 : p.pos+5]
	n, err := strconv.ParseUint(string(digits), 16, 16)
	if err != nil {
		return 0, &ParseError{Offset: p.pos, Msg: "invalid unicode escape"}
	}
	p.pos += 4
	return uint16(n), nil
}

func (p *tapeParser) scanNumber() (float64, error) {
	start := p.pos
	if p.pos < len(p.data) && p.data[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
		p.pos++
	}
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}
	n, err := strconv.ParseFloat(string(p.data[start:p.pos]), 64)
	if err != nil {
		return 0, &ParseError{Offset: start, Msg: "invalid number"}
	}
	return n, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
