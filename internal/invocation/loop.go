package invocation

import (
	"context"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/time/rate"

	"github.com/r3e-network/llrt-go/internal/config"
	"github.com/r3e-network/llrt-go/internal/engine"
	"github.com/r3e-network/llrt-go/internal/framework"
	"github.com/r3e-network/llrt-go/internal/jsonfast"
	"github.com/r3e-network/llrt-go/internal/metrics"
)

// Loop runs the blocking-poll/dispatch/respond cycle spec.md §4.5
// describes. One Loop is constructed per handler-mode process.
type Loop struct {
	CP      *ControlPlane
	Host    *engine.Host
	Handler goja.Callable
	Cfg     *config.Config
	Latch   *InitLatch
	Metrics *metrics.Invocation

	// OnRequestID, if set, is called with each invocation's request id
	// before the handler runs, so Lambda JSON log mode can tag
	// console.* output with the request currently in flight.
	OnRequestID func(requestID string)

	// limiter paces consecutive /invocation/next polls (at most one per
	// 200ms). A failed poll is not retried: Run returns its error. Not
	// part of spec.md's happy-path description; an ambient addition in the
	// teacher's idiom of wrapping outbound calls with golang.org/x/time/rate.
	limiter *rate.Limiter

	now func() time.Time // overridable for tests
}

// NewLoop wires together a Loop from its already-constructed parts.
func NewLoop(cp *ControlPlane, host *engine.Host, handler goja.Callable, cfg *config.Config) *Loop {
	return &Loop{
		CP:      cp,
		Host:    host,
		Handler: handler,
		Cfg:     cfg,
		Latch:   NewInitLatch(),
		Metrics: metrics.NewInvocation(),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		now:     time.Now,
	}
}

// Run drives the loop until _EXIT_ITERATIONS is reached (if set) or a
// fatal loop error occurs. It returns the fatal error, if any; a nil
// return means the configured iteration count was exhausted cleanly or
// ctx was cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.Latch.Wait()

	iterations := 0
	sawRequest := false

	for {
		if ctx.Err() != nil {
			return nil
		}
		if l.Cfg.ExitIterations > 0 && iterations >= l.Cfg.ExitIterations {
			return nil
		}

		if err := l.limiter.Wait(ctx); err != nil {
			return nil
		}

		evt, err := l.CP.NextInvocation()
		if err != nil {
			if !sawRequest {
				l.reportInitError(err)
				return err
			}
			return err
		}
		sawRequest = true
		iterations++
		if err := l.runOne(evt); err != nil {
			return err
		}
	}
}

// runOne executes one full iteration: build context, invoke handler,
// await its result, post response or classified error. A handler error
// never aborts the loop (spec.md §4.5 step 5's "continue the loop"), but
// a failure to post the response is itself a fatal loop error (spec.md
// §4.5 step 4) and is returned to Run.
func (l *Loop) runOne(evt Event) error {
	started := l.now()

	if l.OnRequestID != nil {
		l.OnRequestID(evt.RequestID)
	}

	eventBody, err := parseJSONLoose(string(evt.Body))
	if err != nil {
		eventBody = string(evt.Body)
	}

	ctxObj := &Context{
		RequestID:          evt.RequestID,
		DeadlineMS:         evt.DeadlineMS,
		InvokedFunctionARN: evt.InvokedFunctionARN,
		TraceID:            evt.TraceID,
		ClientContextJSON:  evt.ClientContextJSON,
		CognitoIdentJSON:   evt.CognitoIdentJSON,
		FunctionName:       l.Cfg.FunctionName,
		FunctionVer:        l.Cfg.FunctionVer,
		MemorySizeMB:       l.Cfg.MemorySizeMB,
		LogGroupName:       l.Cfg.LogGroupName,
		LogStreamName:      l.Cfg.LogStreamName,
		now:                func() int64 { return time.Now().UnixMilli() },
	}

	result, err := l.invoke(ctxObj, eventBody)
	if err != nil {
		l.Metrics.ObserveError(l.now().Sub(started).Seconds())
		l.postClassifiedError(evt.RequestID, err)
		return nil
	}

	body, err := jsonfast.Stringify(result, jsonfast.Options{})
	if err != nil {
		l.Metrics.ObserveError(l.now().Sub(started).Seconds())
		l.postClassifiedError(evt.RequestID, err)
		return nil
	}

	if err := l.CP.PostResponse(evt.RequestID, []byte(body)); err != nil {
		l.Metrics.ObserveError(l.now().Sub(started).Seconds())
		return err
	}
	l.Metrics.ObserveSuccess(l.now().Sub(started).Seconds())
	return nil
}

func (l *Loop) invoke(ctxObj *Context, eventBody any) (any, error) {
	jsEvent := l.Host.VM.ToValue(eventBody)
	jsCtx := l.buildContextValue(ctxObj)

	val, err := l.Handler(goja.Undefined(), jsEvent, jsCtx)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	if ctxObj.DeadlineMS > 0 {
		deadline = time.UnixMilli(ctxObj.DeadlineMS)
	}
	settled, err := l.Host.AwaitValue(val, deadline)
	if err != nil {
		return nil, err
	}
	return settled.Export(), nil
}

func (l *Loop) buildContextValue(ctxObj *Context) *goja.Object {
	vm := l.Host.VM
	obj := vm.NewObject()
	for k, v := range ctxObj.AsMap() {
		_ = obj.Set(k, v)
	}
	_ = obj.Set("getRemainingTimeInMillis", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(ctxObj.GetRemainingTimeMillis())
	})
	return obj
}

// postClassifiedError classifies err into {errorType, errorMessage,
// stackTrace} and posts it to the per-request error endpoint (spec.md
// §4.5 step 5, §7 "Propagation policy").
func (l *Loop) postClassifiedError(requestID string, err error) {
	errorType, message, stack := classify(err)
	payload := map[string]any{
		"errorType":    errorType,
		"errorMessage": message,
		"stackTrace":   stack,
		"requestId":    requestID,
	}
	body, marshalErr := jsonfast.Stringify(payload, jsonfast.Options{})
	if marshalErr != nil {
		return
	}
	_ = l.CP.PostError(requestID, []byte(body), errorType)
}

func (l *Loop) reportInitError(err error) {
	errorType, message, stack := classify(err)
	payload := map[string]any{
		"errorType":    errorType,
		"errorMessage": message,
		"stackTrace":   stack,
	}
	body, marshalErr := jsonfast.Stringify(payload, jsonfast.Options{})
	if marshalErr != nil {
		return
	}
	_ = l.CP.PostInitError([]byte(body), errorType)
}

// classify turns a thrown value into the {errorType, errorMessage,
// stackTrace} triple spec.md §7 names, preferring a *goja.Exception's
// own name/message/stack, falling back to a RuntimeError Kind, and
// finally a generic "Error" for anything else.
func classify(err error) (errorType, message string, stack []string) {
	if ex, ok := err.(*goja.Exception); ok {
		val := ex.Value()
		if obj, ok := val.(*goja.Object); ok {
			name := "Error"
			if n := obj.Get("name"); n != nil && !goja.IsUndefined(n) {
				name = n.String()
			}
			msg := ""
			if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) {
				msg = m.String()
			}
			var frames []string
			if s := obj.Get("stack"); s != nil && !goja.IsUndefined(s) {
				frames = splitLines(s.String())
			}
			return name, msg, frames
		}
		return "Error", ex.Error(), splitLines(ex.String())
	}
	if kind, ok := framework.KindOf(err); ok {
		return string(kind), err.Error(), nil
	}
	return "Error", err.Error(), nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
