// Package framework provides the shared error taxonomy used across the
// runtime host: every component reports failures as a *RuntimeError tagged
// with one of the Kind values below, so the invocation loop (see
// internal/invocation) can classify a thrown value without inspecting its
// concrete Go type.
package framework

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories a host component can raise.
type Kind string

const (
	KindResolutionFailed           Kind = "ResolutionFailed"
	KindInvalidBytecodeVersion     Kind = "InvalidBytecodeVersion"
	KindInvalidBytecodeFlag        Kind = "InvalidBytecodeFlag"
	KindBodyAlreadyConsumed        Kind = "BodyAlreadyConsumed"
	KindNetworkAccessDenied        Kind = "NetworkAccessDenied"
	KindAbortError                 Kind = "AbortError"
	KindTimeoutError                  Kind = "TimeoutError"
	KindCircularReference             Kind = "CircularReference"
	KindInvalidCharacter              Kind = "InvalidCharacter"
	KindUnexpectedControlPlaneStatus  Kind = "UnexpectedControlPlaneStatus"
	KindHandlerNotCallable            Kind = "HandlerNotCallable"
)

// RuntimeError wraps an underlying error with the Kind and operation that
// produced it, mirroring the ServiceError{Service, Op, Err} shape
// with Service renamed to Kind.
type RuntimeError struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// New creates a RuntimeError of the given kind wrapping err.
func New(kind Kind, op string, err error) *RuntimeError {
	return &RuntimeError{Kind: kind, Op: op, Err: err}
}

// Newf creates a RuntimeError of the given kind from a formatted message.
func Newf(kind Kind, op, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err is a *RuntimeError of the given kind.
func Is(err error, kind Kind) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err if it is a *RuntimeError, and ok=false
// otherwise. Callers (the invocation loop's error classifier) use this to
// fall back to a generic "Error" type for errors raised by user JS code.
func KindOf(err error) (Kind, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}
