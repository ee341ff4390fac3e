package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the type of error
type Kind int

const (
	ErrInternal Kind = iota
	ErrNotFound
	ErrValidation
	ErrTransport
	ErrMalformedResponse
	ErrEmptyCatalog
)

// String returns a short name for the kind, used in logs
func (k Kind) String() string {
	switch k {
	case ErrNotFound:
		return "not_found"
	case ErrValidation:
		return "validation"
	case ErrTransport:
		return "transport"
	case ErrMalformedResponse:
		return "malformed_response"
	case ErrEmptyCatalog:
		return "empty_catalog"
	default:
		return "internal"
	}
}

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Message string
	Field   string // offending payload field, set for malformed responses
	Err     error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a missing or inconsistent user selection. It is raised before any network call.
func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Transport wraps a network or HTTP failure talking to the statistics service
func Transport(err error, msg string) *Error {
	return &Error{Kind: ErrTransport, Message: msg, Err: err}
}

func Transportf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrTransport, Message: fmt.Sprintf(format, args...)}
}

// Malformed reports a payload whose required field is missing, null or of the wrong type
func Malformed(field string) *Error {
	return &Error{
		Kind:    ErrMalformedResponse,
		Message: fmt.Sprintf("malformed response: field %q is missing or invalid", field),
		Field:   field,
	}
}

// MalformedWrap is Malformed with the decoding error attached
func MalformedWrap(err error, field string) *Error {
	e := Malformed(field)
	e.Err = err
	return e
}

// EmptyCatalog reports that the statistics service returned no countries
func EmptyCatalog() *Error {
	return &Error{Kind: ErrEmptyCatalog, Message: "country catalog is empty"}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or ErrInternal
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
