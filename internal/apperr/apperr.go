// Package apperr defines the error taxonomy shared by the service and
// handler layers. Services raise a kinded error once; the HTTP boundary
// maps it to a status exactly once. Anything that is not an *Error is
// treated as internal and its detail never reaches the response body.
package apperr

import "errors"

// Kind classifies an operation failure.
type Kind int

const (
	// KindInternal covers everything unanticipated, including store and
	// connectivity failures.
	KindInternal Kind = iota

	// KindUnauthorized covers missing, malformed or invalid credentials.
	KindUnauthorized

	// KindNotFound means no matching owned resource exists.
	KindNotFound

	// KindConflict means the request collides with existing state, such as
	// a duplicate email at registration.
	KindConflict
)

// Error is a kinded failure with a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a kinded error with a caller-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and caller-safe message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf extracts the caller-safe message from err. Internal errors get
// a generic message regardless of what they carry.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal server error"
}
