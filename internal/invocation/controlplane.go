package invocation

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/r3e-network/llrt-go/internal/framework"
)

const apiVersion = "2018-06-01"

// ControlPlane is the HTTP client role spec.md §6 describes: long-poll
// for the next invocation, post a response or a classified error, and
// report a fatal startup error.
type ControlPlane struct {
	BaseURL string
	HTTP    *http.Client
}

// NewControlPlane builds a client against runtimeAPI ("host:port", the
// value of AWS_LAMBDA_RUNTIME_API).
func NewControlPlane(runtimeAPI string) *ControlPlane {
	return &ControlPlane{
		BaseURL: "http://" + runtimeAPI + "/" + apiVersion + "/runtime",
		HTTP:    &http.Client{Timeout: 0}, // next-invocation GET blocks intentionally
	}
}

// NextInvocation issues the blocking GET for the next event (spec.md
// §4.5 step 1).
func (c *ControlPlane) NextInvocation() (Event, error) {
	resp, err := c.HTTP.Get(c.BaseURL + "/invocation/next")
	if err != nil {
		return Event{}, framework.New(framework.KindUnexpectedControlPlaneStatus, "invocation/next", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Event{}, framework.Newf(framework.KindUnexpectedControlPlaneStatus, "invocation/next",
			"control plane returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Event{}, framework.New(framework.KindUnexpectedControlPlaneStatus, "invocation/next", err)
	}

	evt := Event{
		RequestID:          resp.Header.Get("lambda-runtime-aws-request-id"),
		InvokedFunctionARN: resp.Header.Get("lambda-runtime-invoked-function-arn"),
		TraceID:            resp.Header.Get("lambda-runtime-trace-id"),
		ClientContextJSON:  resp.Header.Get("lambda-runtime-client-context"),
		CognitoIdentJSON:   resp.Header.Get("lambda-runtime-cognito-identity"),
		Body:               body,
	}
	if ms := resp.Header.Get("lambda-runtime-deadline-ms"); ms != "" {
		if n, err := strconv.ParseInt(ms, 10, 64); err == nil {
			evt.DeadlineMS = n
		}
	}
	return evt, nil
}

// PostResponse posts the JSON-stringified handler result (spec.md §4.5
// step 4). A non-202 response is a fatal loop error.
func (c *ControlPlane) PostResponse(requestID string, body []byte) error {
	return c.post(c.BaseURL+"/invocation/"+requestID+"/response", body, "")
}

// PostError posts a classified error for requestID (spec.md §4.5 step
// 5), tagging the runtime-function-error-type header.
func (c *ControlPlane) PostError(requestID string, body []byte, errorType string) error {
	return c.post(c.BaseURL+"/invocation/"+requestID+"/error", body, errorType)
}

// PostInitError reports a fatal startup error when no request id was
// ever obtained (spec.md §4.5 "If no request id was ever obtained...").
func (c *ControlPlane) PostInitError(body []byte, errorType string) error {
	return c.post(c.BaseURL+"/init/error", body, errorType)
}

func (c *ControlPlane) post(url string, body []byte, errorType string) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return framework.New(framework.KindUnexpectedControlPlaneStatus, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if errorType != "" {
		req.Header.Set("lambda-runtime-function-error-type", errorType)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return framework.New(framework.KindUnexpectedControlPlaneStatus, url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return framework.Newf(framework.KindUnexpectedControlPlaneStatus, url,
			"control plane returned status %d, expected 202", resp.StatusCode)
	}
	return nil
}

// Event is the raw payload NextInvocation yields before being turned
// into a Context plus a decoded body.
type Event struct {
	RequestID          string
	DeadlineMS         int64
	InvokedFunctionARN string
	TraceID            string
	ClientContextJSON  string
	CognitoIdentJSON   string
	Body               []byte
}
