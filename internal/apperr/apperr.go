// Package apperr defines the error-kind taxonomy shared by the service and
// handler layers (spec.md §7). A Kind maps onto exactly one HTTP status;
// handlers never re-derive status codes from error strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates the class of failure independent of its message.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindPreconditionFailed Kind = "precondition_failed"
	KindUnprocessable      Kind = "unprocessable"
	KindUpstream           Kind = "upstream"
	KindInternal           Kind = "internal"
)

// httpStatus is the fixed Kind -> HTTP status mapping from spec.md §7.
var httpStatus = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindUnauthenticated:    http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindConflict:           http.StatusConflict,
	KindPreconditionFailed: http.StatusPreconditionFailed,
	KindUnprocessable:      http.StatusUnprocessableEntity,
	KindUpstream:           http.StatusBadGateway,
	KindInternal:           http.StatusInternalServerError,
}

// Error is a kinded application error; Unwrap exposes the underlying cause
// so callers can still use errors.Is/As against it.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status code for the error's Kind.
func (e *Error) Status() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New creates a kinded error with a machine-readable code and message.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a Kind/code to an underlying error, preserving it via Unwrap.
func Wrap(kind Kind, code string, cause error) *Error {
	msg := code
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func Validation(code, message string) *Error  { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error    { return New(KindNotFound, code, message) }
func Forbidden(code, message string) *Error   { return New(KindForbidden, code, message) }
func Conflict(code, message string) *Error    { return New(KindConflict, code, message) }
func Unauthenticated(code, message string) *Error {
	return New(KindUnauthenticated, code, message)
}
func PreconditionFailed(code, message string) *Error {
	return New(KindPreconditionFailed, code, message)
}
func Unprocessable(code, message string) *Error { return New(KindUnprocessable, code, message) }
func Upstream(code string, cause error) *Error  { return Wrap(KindUpstream, code, cause) }
func Internal(code string, cause error) *Error  { return Wrap(KindInternal, code, cause) }

// StatusOf returns the HTTP status for any error, defaulting unkinded
// errors to 500 per spec.md §7.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status()
	}
	return http.StatusInternalServerError
}

// CodeOf returns the machine-readable code for any error, defaulting to a
// generic "internal_error" for unkinded errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Code != "" {
			return ae.Code
		}
		return string(ae.Kind)
	}
	return "internal_error"
}
