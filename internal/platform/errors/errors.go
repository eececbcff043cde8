// Package errors is the project error type: a code for machines, a message for people,
// and an optional wrapped cause
package errors

// import as perr

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for the API and for job bookkeeping
type ErrorCode uint16

const (
	// ErrorCodeUnknown is anything we could not classify
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is a panic caught by the recover middleware
	ErrorCodePanic

	// ErrorCodeUnavailable is a transient dependency failure, retry may succeed
	ErrorCodeUnavailable

	// ErrorCodeUnauthorized is a missing or wrong API token
	ErrorCodeUnauthorized

	// ErrorCodeConflict is a write that collided with existing data
	ErrorCodeConflict

	// ErrorCodeInvalidArgument is a bad request parameter
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is a body that failed validation
	ErrorCodeValidation

	// ErrorCodeJSON is a body that could not be decoded
	ErrorCodeJSON

	// ErrorCodeNotFound is a missing resource
	ErrorCodeNotFound

	// ErrorCodeDB is a database failure
	ErrorCodeDB

	// ErrorCodeConfiguration is a missing or unusable merchant feed configuration
	ErrorCodeConfiguration

	// ErrorCodeInvalidFeed is a feed rejected by a guard (error rate, size ceiling)
	ErrorCodeInvalidFeed

	// ErrorCodeTransport is a classified download failure; the import can be rescheduled
	ErrorCodeTransport

	// ErrorCodeExecution is an external pipeline failure we could not classify
	ErrorCodeExecution

	// ErrorCodeRowProcessing is one rejected feed row
	ErrorCodeRowProcessing
)

var codeStatus = map[ErrorCode]int{
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeConflict:        http.StatusConflict,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeConfiguration:   http.StatusUnprocessableEntity,
	ErrorCodeInvalidFeed:     http.StatusUnprocessableEntity,
	ErrorCodeTransport:       http.StatusBadGateway,
	ErrorCodeRowProcessing:   http.StatusBadRequest,
}

// HTTPStatusCode maps a code to the status the API answers with
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error carries a code, a message and the cause it wraps
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
}

// Wire is what the API puts in the error envelope
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig == nil {
		return e.msg
	}
	return e.msg + ": " + e.orig.Error()
}

// Unwrap returns the cause
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input field, if any
func (e *Error) Field() string { return e.field }

// WireFrom converts any error into a Wire; foreign errors become Unknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// As returns the outermost *Error in the chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Root returns the innermost cause
func Root(err error) error {
	for err != nil {
		next := stderrs.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return err
}

// CodeOf returns the code of err, Unknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WithField returns a copy of err naming the offending field; foreign errors pass through
func WithField(err error, field string) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	c.field = field
	return &c
}

// New returns an *Error
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns an *Error with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error around orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns an *Error around orig with a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return Wrap(orig, code, fmt.Sprintf(format, a...))
}

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Unauthorizedf returns an unauthorized error
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// Internalf returns an unclassified error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// Configf returns a configuration error
func Configf(format string, a ...any) error { return Newf(ErrorCodeConfiguration, format, a...) }

// InvalidFeedf returns an invalid feed error
func InvalidFeedf(format string, a ...any) error { return Newf(ErrorCodeInvalidFeed, format, a...) }

// Retryable reports whether a failed import is worth rescheduling
// transport and unavailable are, guard and configuration failures are not,
// anything else is decided by the database error class
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeTransport, ErrorCodeUnavailable:
		return true
	case ErrorCodeInvalidFeed, ErrorCodeConfiguration, ErrorCodeExecution:
		return false
	}
	return IsRetryable(err)
}
