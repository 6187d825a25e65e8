// Package apperr defines the error taxonomy surfaced to API clients.
// Every rejection the core produces is one of these kinds; transport
// code maps kinds to HTTP status codes.
package apperr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	Validation
	Conflict
	Authentication
	Authorization
	NotFound
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the kind from an error chain, KindUnknown if the
// error is not an apperr.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}
