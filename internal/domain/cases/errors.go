package cases

import (
	"errors"
	"net/http"
)

// ErrorKind is the machine-readable code for a boundary-facing failure.
// The set is closed: handlers exhaustively match on it when rendering
// problem responses.
type ErrorKind string

const (
	// KindInvalidEventPayload signals that an event payload failed
	// validation before any store write was attempted.
	KindInvalidEventPayload ErrorKind = "invalid_event_payload"

	// KindEventAppendError signals that the store write itself failed
	// after payload validation succeeded.
	KindEventAppendError ErrorKind = "event_append_error"

	// KindCaseNotFound signals that a referenced case does not exist.
	KindCaseNotFound ErrorKind = "case_not_found"
)

// Status maps an error kind to its external HTTP status. The mapping is
// fixed per kind regardless of call site.
func (k ErrorKind) Status() int {
	switch k {
	case KindInvalidEventPayload:
		return http.StatusBadRequest
	case KindCaseNotFound:
		return http.StatusNotFound
	case KindEventAppendError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) defaultMessage() string {
	switch k {
	case KindInvalidEventPayload:
		return "event payload failed validation"
	case KindEventAppendError:
		return "event could not be appended to the case stream"
	case KindCaseNotFound:
		return "case does not exist"
	default:
		return "internal error"
	}
}

// Error is a boundary-facing failure carrying a kind, an overridable
// message, and the underlying cause. It propagates unmodified from the
// point of detection to the handler that renders the response.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an Error of the given kind. An empty message falls back
// to the kind's default.
func NewError(kind ErrorKind, message string, cause error) *Error {
	if message == "" {
		message = kind.defaultMessage()
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// InvalidEventPayload wraps a validation failure detected before any
// store write.
func InvalidEventPayload(message string, cause error) *Error {
	return NewError(KindInvalidEventPayload, message, cause)
}

// EventAppendError wraps a store failure that occurred after validation
// passed.
func EventAppendError(cause error) *Error {
	return NewError(KindEventAppendError, "", cause)
}

// CaseNotFound reports a missing case aggregate.
func CaseNotFound(caseULID string) *Error {
	return NewError(KindCaseNotFound, "case "+caseULID+" does not exist", nil)
}

// KindOf extracts the error kind from err's chain. The second return is
// false when err is not a taxonomy error.
func KindOf(err error) (ErrorKind, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}
