package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a service-layer failure so the HTTP boundary can map
// it to a fixed status code.
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindNotFound
	KindUnauthorized
	KindValidation
	KindUpstream
	KindConnectivity
)

// Error is the typed error surfaced verbatim from the service layer to
// the controllers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Unauthorizedf(format string, args ...any) *Error {
	return newf(KindUnauthorized, format, args...)
}

func Validationf(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func Upstreamf(format string, args ...any) *Error {
	return newf(KindUpstream, format, args...)
}

// Connectivity wraps a store failure; the cause is kept for the logs
// but never leaks into the client-facing message.
func Connectivity(err error) *Error {
	return &Error{Kind: KindConnectivity, Message: "database connection failed, please try again later", Err: err}
}

// KindOf extracts the Kind from err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err is a typed error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
