// Package console implements console.log-family formatting and the
// Lambda JSON log emitter, per spec.md §4.10. Grounded on the pack's
// terminal-colour stack (github.com/fatih/color, github.com/mattn/go-isatty --
// pulled into the dependency graph by logrus's own TTY-detection, the
// same pair used directly here to colour the inspector's primitive
// output) and on pkg/logger's structured-field logging for the Lambda
// JSON log mode.
package console

import (
	"fmt"
	"strconv"
	"strings"
)

// Format implements console.log's printf-like precedence (spec.md
// §4.10 item 1): when the first argument is a string containing '%',
// it is treated as a format string; otherwise every argument is
// inspected and space-joined.
func Format(args []any) string {
	if len(args) == 0 {
		return ""
	}
	first, ok := args[0].(string)
	if !ok || !strings.Contains(first, "%") {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Inspect(a, inspectDefaults())
		}
		return strings.Join(parts, " ")
	}

	var b strings.Builder
	rest := args[1:]
	idx := 0
	next := func() (any, bool) {
		if idx >= len(rest) {
			return nil, false
		}
		v := rest[idx]
		idx++
		return v, true
	}

	runes := []rune(first)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' || i == len(runes)-1 {
			b.WriteRune(c)
			continue
		}
		spec := runes[i+1]
		i++
		switch spec {
		case '%':
			b.WriteByte('%')
		case 's':
			if v, ok := next(); ok {
				b.WriteString(toStringCoerce(v))
			} else {
				b.WriteString("%s")
			}
		case 'd', 'i':
			if v, ok := next(); ok {
				b.WriteString(formatIntSpecifier(v))
			} else {
				b.WriteByte('%')
				b.WriteRune(spec)
			}
		case 'f':
			if v, ok := next(); ok {
				b.WriteString(formatFloatSpecifier(v))
			} else {
				b.WriteString("%f")
			}
		case 'j':
			if v, ok := next(); ok {
				b.WriteString(formatJSONSpecifier(v))
			} else {
				b.WriteString("%j")
			}
		case 'o':
			if v, ok := next(); ok {
				b.WriteString(Inspect(v, inspectDefaults()))
			} else {
				b.WriteString("%o")
			}
		case 'O':
			if v, ok := next(); ok {
				b.WriteString(Inspect(v, inspectAllOwnProps()))
			} else {
				b.WriteString("%O")
			}
		case 'c':
			// CSS directive: consumed and ignored per spec.md §4.10.
			next()
		default:
			b.WriteByte('%')
			b.WriteRune(spec)
		}
	}

	for _, v := range rest[idx:] {
		b.WriteByte(' ')
		b.WriteString(Inspect(v, inspectDefaults()))
	}
	return b.String()
}

func toStringCoerce(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "undefined"
	default:
		return Inspect(v, inspectDefaults())
	}
}

func formatIntSpecifier(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return "NaN"
		}
		return strconv.FormatInt(n, 10)
	default:
		return "NaN"
	}
}

func formatFloatSpecifier(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return "NaN"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return "NaN"
	}
}

func formatJSONSpecifier(v any) string {
	out, err := stringifyJSON(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return out
}
