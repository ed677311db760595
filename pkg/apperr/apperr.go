// Package apperr defines the small error taxonomy the engine raises
// (spec.md §7): validation, rate-limited, timeout, and internal. Only
// validation and rate-limited errors carry caller-visible detail; a
// timeout or internal error surfaces a generic message at the transport
// boundary while the full detail stays in the logs.
package apperr

import "github.com/pkg/errors"

// Kind tags an error with one of the four taxonomy buckets.
type Kind string

const (
	// KindValidation covers malformed input: bad address, out-of-range
	// timestamp, oversized history, malformed email.
	KindValidation Kind = "validation"
	// KindRateLimited covers an exhausted rate-limit counter.
	KindRateLimited Kind = "rateLimited"
	// KindTimeout covers the per-request deadline elapsing before any
	// scores were ready.
	KindTimeout Kind = "timeout"
	// KindInternal covers unexpected bugs; detail never leaks to callers.
	KindInternal Kind = "internal"
)

// Error is an apperr-tagged error. Field is an optional hint naming the
// offending request field, populated only for KindValidation.
type Error struct {
	kind  Kind
	field string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.kind)
	}
	return string(e.kind) + ": " + e.cause.Error()
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's taxonomy bucket.
func (e *Error) Kind() Kind { return e.kind }

// Field returns the offending field name, or "" if none was set.
func (e *Error) Field() string { return e.field }

// Validation builds a KindValidation error naming the offending field.
func Validation(field, msg string) *Error {
	return &Error{kind: KindValidation, field: field, cause: errors.New(msg)}
}

// RateLimited builds a KindRateLimited error.
func RateLimited(msg string) *Error {
	return &Error{kind: KindRateLimited, cause: errors.New(msg)}
}

// Timeout builds a KindTimeout error.
func Timeout(msg string) *Error {
	return &Error{kind: KindTimeout, cause: errors.New(msg)}
}

// Internal wraps cause as a KindInternal error; cause's detail is logged
// but never surfaced to the caller.
func Internal(cause error) *Error {
	return &Error{kind: KindInternal, cause: errors.WithStack(cause)}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and
// KindInternal otherwise — any error the engine did not deliberately
// tag is treated as an unexpected bug, never surfaced with detail.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}
