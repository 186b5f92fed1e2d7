package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for HTTP dispatch.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindAuth
	KindUnavailable
)

// statusByKind is the single source of truth for kind → HTTP status.
var statusByKind = map[Kind]int{
	KindValidation:  http.StatusBadRequest,
	KindNotFound:    http.StatusNotFound,
	KindAuth:        http.StatusForbidden,
	KindUnavailable: http.StatusInternalServerError,
}

// Error is a tagged error value carrying everything needed to build an
// HTTP response for it.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status associated with the error's kind.
func (e *Error) StatusCode() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Validation builds a 400-class error for malformed or missing input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound builds a 404-class error for an absent resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unavailable builds a 500-class error for a backing-store failure.
func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
