package engine

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks store failures. Signal-recording callers treat
// it as non-fatal (the signal is dropped and logged); primary read paths
// surface it as a transient failure distinct from empty results.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ValidationError rejects a request with missing or invalid required fields.
// No state changes once one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
