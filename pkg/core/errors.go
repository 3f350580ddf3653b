package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound indicates an operation referenced an entity (usually a
	// parent) that does not exist or is deleted.
	ErrNotFound = errors.New("entity not found")

	// ErrRemoteUnavailable wraps any failure talking to the remote
	// collection. It is recoverable: the pending ledger is the durable
	// record that a retry is needed.
	ErrRemoteUnavailable = errors.New("remote unavailable")
)

// ValidationError indicates a required field was missing or a value was out
// of domain. It is raised synchronously to the caller of Save/Delete.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
