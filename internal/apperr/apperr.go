// Package apperr defines the error kinds surfaced by the import calculator.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of an error.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindUnavailable       Kind = "external_service_unavailable"
	KindMalformedResponse Kind = "malformed_external_response"
	KindNotConfigured     Kind = "not_configured"
	KindInternal          Kind = "internal"
)

// Error is a domain error carrying a kind and optional structured fields.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Fields  map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// With attaches a structured field that is echoed in HTTP error bodies.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// Invalid creates an InvalidInput error.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a failed call to an external service.
func Unavailable(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Cause: cause}
}

// Malformed wraps an external response that could not be interpreted.
func Malformed(message string, cause error) *Error {
	return &Error{Kind: KindMalformedResponse, Message: message, Cause: cause}
}

// NotConfigured reports a missing credential or collaborator.
func NotConfigured(message string) *Error {
	return &Error{Kind: KindNotConfigured, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns the structured fields of the first *Error in err's chain.
func FieldsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the status code used by the HTTP surface.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotConfigured:
		return http.StatusServiceUnavailable
	case KindUnavailable, KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
