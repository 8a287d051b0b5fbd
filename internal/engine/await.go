package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/framework"
)

// AwaitValue drives the job scheduler until val (a possible promise)
// settles or deadline passes, mirroring the cooperative "call
// execute_pending_job until the import/handler promise resolves or a
// deadline elapses" loop spec.md §9 prescribes for synchronous require
// over an async engine. Grounded on tee_executor.go's resolveValue/
// exportedPromise/promiseRejectionError trio, generalised here to also
// pump the job scheduler between polls since invocation handlers may
// schedule timers or deferred I/O callbacks the promise depends on. A
// zero deadline means wait indefinitely.
func (h *Host) AwaitValue(val goja.Value, deadline time.Time) (goja.Value, error) {
	for {
		h.scheduler.drain(h.VM)

		promise, ok := val.Export().(*goja.Promise)
		if !ok {
			return val, nil
		}
		switch promise.State() {
		case goja.PromiseStateFulfilled:
			return promise.Result(), nil
		case goja.PromiseStateRejected:
			return nil, promiseRejectionError(promise.Result())
		case goja.PromiseStatePending:
			if !deadline.IsZero() && time.Now().After(deadline) {
				return nil, framework.New(framework.KindTimeoutError, "AwaitValue", errPromiseDeadline)
			}
			time.Sleep(time.Millisecond)
		}
	}
}

var errPromiseDeadline = errors.New("promise did not settle before deadline")

func promiseRejectionError(reason goja.Value) error {
	if reason == nil {
		return errors.New("promise rejected")
	}
	if exported := reason.Export(); exported != nil {
		if err, ok := exported.(error); ok {
			return err
		}
		return fmt.Errorf("promise rejected: %v", exported)
	}
	return fmt.Errorf("promise rejected: %s", reason.String())
}
