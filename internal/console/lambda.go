package console

import (
	"strings"
	"time"

	"github.com/r3e-network/llrt-go/internal/jsonfast"
)

// Level is a console log level, ordered least to most severe so a
// configured minimum can filter by simple comparison.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// LambdaEmitter produces one JSON object per log event, matching the
// Lambda Runtime's structured log format (spec.md §4.10 "Lambda JSON
// log mode"). Grounded on pkg/logger's field-based logging interface,
// generalised here from logrus's entry formatter into a hand-built JSON
// object because the emitted shape (time/level/requestId/message, with
// errors promoted to errorType/errorMessage/stackTrace) is a fixed
// external contract, not an internal structured-log convention.
type LambdaEmitter struct {
	MinLevel  Level
	RequestID func() string
	Write     func(line string)
}

// Emit writes one JSON line for level/args if level meets MinLevel.
func (e *LambdaEmitter) Emit(level Level, args []any) {
	if level < e.MinLevel {
		return
	}

	event := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339Nano),
		"level": level.String(),
	}
	if e.RequestID != nil {
		if id := e.RequestID(); id != "" {
			event["requestId"] = id
		}
	}

	if len(args) == 1 {
		if ev, ok := args[0].(ErrorValue); ok {
			event["errorType"] = ev.Name
			event["errorMessage"] = ev.Message
			if ev.Stack != "" {
				event["stackTrace"] = splitStackFrames(ev.Stack)
			}
			line, _ := jsonfast.Stringify(event, jsonfast.Options{})
			e.write(line)
			return
		}
	}

	event["message"] = Format(args)
	line, _ := jsonfast.Stringify(event, jsonfast.Options{})
	e.write(line)
}

func (e *LambdaEmitter) write(line string) {
	if e.Write != nil {
		e.Write(line)
	}
}

// splitStackFrames turns a multi-line stack trace into one array entry
// per frame, normalising CRLF the way the runtime's log-line contract
// requires (a bare '\n' inside a single log line would be misread by
// the Lambda log collector as a second record).
func splitStackFrames(stack string) []any {
	lines := strings.Split(strings.ReplaceAll(stack, "\r\n", "\n"), "\n")
	out := make([]any, 0, len(lines))
	for _, l := range lines {
		out = append(out, l)
	}
	return out
}
