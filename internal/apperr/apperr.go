// Package apperr defines the error taxonomy shared by all services.
// Every failure that reaches a handler is one of these kinds; the HTTP
// layer maps kinds to status codes in exactly one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	// Validation marks malformed or out-of-range caller input.
	Validation Kind = "validation"
	// StoreUnavailable marks a knowledge store that cannot be opened or queried.
	StoreUnavailable Kind = "store_unavailable"
	// UpstreamUnavailable marks an unreachable external service.
	UpstreamUnavailable Kind = "upstream_unavailable"
	// UpstreamRejected marks a non-2xx answer with a parseable error body.
	UpstreamRejected Kind = "upstream_rejected"
)

// Error carries the kind, a caller-facing message, and for upstream
// rejections the status the upstream answered with.
type Error struct {
	Kind           Kind
	Message        string
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Rejected builds an UpstreamRejected error preserving the upstream status.
func Rejected(status int, message string) *Error {
	return &Error{Kind: UpstreamRejected, Message: message, UpstreamStatus: status}
}

// KindOf reports the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == Validation }

// HTTPStatus maps an error to the status code the caller should see.
// Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case StoreUnavailable, UpstreamUnavailable:
		return http.StatusServiceUnavailable
	case UpstreamRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
