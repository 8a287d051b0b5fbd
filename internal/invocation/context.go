// Package invocation drives the Lambda-style invocation loop: long-poll
// the control plane for the next event, dispatch the resolved handler,
// post back a result or a classified error, and repeat (spec.md §4.5).
// Grounded on internal/services/functions/tee_executor.go's Execute
// method for the overall "run user code in a goja.Runtime,
// resolve its return value as a possible promise, classify a thrown
// value" shape, generalised from a one-shot function call into a
// long-running poll loop around it.
package invocation

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Context is the per-iteration invocation context handed to the user
// handler as its second argument (spec.md §3 "Invocation context").
type Context struct {
	RequestID          string
	DeadlineMS         int64
	InvokedFunctionARN string
	TraceID            string
	ClientContextJSON  string
	CognitoIdentJSON   string

	FunctionName  string
	FunctionVer   string
	MemorySizeMB  int
	LogGroupName  string
	LogStreamName string

	now func() int64 // epoch milliseconds, overridable for tests
}

// GetRemainingTimeMillis implements the handler-visible
// context.getRemainingTimeInMillis() per spec.md §3.
func (c *Context) GetRemainingTimeMillis() int64 {
	remaining := c.DeadlineMS - c.now()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ClientContext lazily extracts a field from the raw client-context JSON
// header via gjson, avoiding a full unmarshal when the handler never
// reads it (most invocations don't carry one at all).
func (c *Context) ClientContext(path string) gjson.Result {
	if c.ClientContextJSON == "" {
		return gjson.Result{}
	}
	return gjson.Get(c.ClientContextJSON, path)
}

// CognitoIdentity lazily extracts a field from the raw cognito-identity
// JSON header the same way.
func (c *Context) CognitoIdentity(path string) gjson.Result {
	if c.CognitoIdentJSON == "" {
		return gjson.Result{}
	}
	return gjson.Get(c.CognitoIdentJSON, path)
}

// AsMap renders the context fields a JS handler expects to see as plain
// object properties, parsing the client-context and cognito-identity
// JSON (when present) into clientContext and identity. Only
// getRemainingTimeInMillis is wired onto the goja object separately,
// since it is a function, not data; the gjson accessors above are not
// exposed to JS.
func (c *Context) AsMap() map[string]any {
	m := map[string]any{
		"awsRequestId":       c.RequestID,
		"invokedFunctionArn": c.InvokedFunctionARN,
		"functionName":       c.FunctionName,
		"functionVersion":    c.FunctionVer,
		"memoryLimitInMB":    strconv.Itoa(c.MemorySizeMB),
		"logGroupName":       c.LogGroupName,
		"logStreamName":      c.LogStreamName,
	}
	if c.ClientContextJSON != "" {
		if v, err := parseJSONLoose(c.ClientContextJSON); err == nil {
			m["clientContext"] = v
		}
	}
	if c.CognitoIdentJSON != "" {
		if v, err := parseJSONLoose(c.CognitoIdentJSON); err == nil {
			m["identity"] = v
		}
	}
	return m
}
