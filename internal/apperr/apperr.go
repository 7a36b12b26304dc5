package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	MissingCredentials    Kind = "missing_credentials"
	InvalidCredentials    Kind = "invalid_credentials"
	TokenMissing          Kind = "token_missing"
	TokenInvalidOrExpired Kind = "token_invalid"
	PermissionDenied      Kind = "permission_denied"
	AlreadyRented         Kind = "already_rented"
	QuotaExceeded         Kind = "quota_exceeded"
	MalformedInput        Kind = "invalid_request"
	NotFound              Kind = "not_found"
	Conflict              Kind = "conflict"
	Unavailable           Kind = "unavailable"
	PersistenceFailure    Kind = "internal_error"
)

var statusByKind = map[Kind]int{
	MissingCredentials:    http.StatusUnauthorized,
	InvalidCredentials:    http.StatusUnauthorized,
	TokenMissing:          http.StatusUnauthorized,
	TokenInvalidOrExpired: http.StatusUnauthorized,
	PermissionDenied:      http.StatusForbidden,
	AlreadyRented:         http.StatusForbidden,
	QuotaExceeded:         http.StatusForbidden,
	MalformedInput:        http.StatusBadRequest,
	NotFound:              http.StatusNotFound,
	Conflict:              http.StatusConflict,
	Unavailable:           http.StatusUnprocessableEntity,
	PersistenceFailure:    http.StatusInternalServerError,
}

func (k Kind) Status() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a request-scoped failure. Cause, when set, is the underlying store
// error and is echoed to the client verbatim for persistence failures.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Status() int { return e.Kind.Status() }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Persistence(message string, cause error) *Error {
	return &Error{Kind: PersistenceFailure, Message: message, Cause: cause}
}

// Body is the flat JSON error payload. Message is always present.
type Body struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func (e *Error) Body(requestID string) Body {
	b := Body{
		Code:      string(e.Kind),
		Message:   e.Message,
		RequestID: requestID,
		Details:   e.Details,
	}
	if e.Kind == PersistenceFailure && e.Cause != nil {
		b.Error = e.Cause.Error()
	}
	return b
}

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
