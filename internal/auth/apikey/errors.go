package apikey

import (
	"errors"
	"fmt"
)

// Sentinel errors for API key operations.
var (
	// ErrEmptyKey indicates that the presented key is empty.
	ErrEmptyKey = errors.New("API key is empty")

	// ErrKeyNotFound indicates that no record matches the presented key.
	ErrKeyNotFound = errors.New("API key not found")

	// ErrKeyRevoked indicates that the matching record has been revoked.
	ErrKeyRevoked = errors.New("API key revoked")

	// ErrDuplicateKey indicates an insert of an already present record.
	ErrDuplicateKey = errors.New("API key record already exists")

	// ErrStoreUnavailable indicates an infrastructure failure of the
	// credential store, distinct from credential invalidity.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// StoreError wraps a backend failure with operation context.
type StoreError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("apikey store %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is marks every StoreError as a store availability failure.
func (e *StoreError) Is(target error) bool {
	if errors.Is(target, ErrStoreUnavailable) {
		return true
	}
	_, ok := target.(*StoreError)
	return ok || errors.Is(e.Cause, target)
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Cause: cause}
}
