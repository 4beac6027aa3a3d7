package token

import (
	"errors"
	"fmt"
)

// Sentinel errors for token operations.
var (
	// ErrEmptyToken indicates that the token is empty.
	ErrEmptyToken = errors.New("token is empty")

	// ErrTokenMalformed indicates that the token is structurally invalid.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrInvalidSignature indicates that the token signature does not verify.
	ErrInvalidSignature = errors.New("token signature is invalid")

	// ErrTokenExpired indicates that the token has expired.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenNotYetValid indicates that the token is not yet valid.
	ErrTokenNotYetValid = errors.New("token is not yet valid")

	// ErrUnexpectedAlgorithm indicates a header algorithm other than the
	// one fixed for this deployment.
	ErrUnexpectedAlgorithm = errors.New("unexpected signing algorithm")

	// ErrEmptySecret indicates that no signing secret was provided.
	ErrEmptySecret = errors.New("signing secret is empty")
)

// CodecError represents a token encode/decode error with details.
type CodecError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("token codec error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("token codec error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *CodecError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *CodecError) Is(target error) bool {
	_, ok := target.(*CodecError)
	return ok || errors.Is(e.Cause, target)
}

// NewCodecError creates a new CodecError.
func NewCodecError(message string, cause error) *CodecError {
	return &CodecError{
		Message: message,
		Cause:   cause,
	}
}

// IsExpiredError checks if an error indicates token expiration.
func IsExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsSignatureError checks if an error indicates a signature problem.
func IsSignatureError(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}
