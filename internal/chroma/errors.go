package chroma

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrConnection indicates the Chroma service is unreachable or the
	// host/port/TLS settings are wrong.
	ErrConnection = errors.New("chroma: service unreachable")

	// ErrNotFound indicates the referenced collection does not exist.
	ErrNotFound = errors.New("chroma: collection not found")

	// ErrAlreadyExists indicates a create with a duplicate collection name.
	ErrAlreadyExists = errors.New("chroma: collection already exists")

	// ErrUnauthorized indicates the server rejected the auth token.
	ErrUnauthorized = errors.New("chroma: unauthorized")

	// ErrInvalidArgument indicates a malformed parameter, rejected before
	// any network call is made.
	ErrInvalidArgument = errors.New("chroma: invalid argument")
)

// Error wraps errors with operation context.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("chroma.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError wraps an error with operation context.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
