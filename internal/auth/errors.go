package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication operations.
var (
	// ErrNoCredentials indicates that no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates that the provided credentials are
	// invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthenticationFailed indicates that authentication failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAuthenticationDisabled indicates that authentication is
	// disabled.
	ErrAuthenticationDisabled = errors.New("authentication disabled")
)

// AuthError represents an authentication error with strategy context.
type AuthError struct {
	Strategy string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth error (%s): %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("auth error (%s): %s", e.Strategy, e.Message)
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *AuthError) Is(target error) bool {
	if errors.Is(target, ErrAuthenticationFailed) {
		return true
	}
	_, ok := target.(*AuthError)
	return ok || errors.Is(e.Cause, target)
}

// WrapAuthError wraps an error with the failing strategy's name.
func WrapAuthError(err error, strategy string) error {
	if err == nil {
		return nil
	}
	return &AuthError{
		Strategy: strategy,
		Message:  err.Error(),
		Cause:    err,
	}
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// AuthErrorStrategy returns the strategy name from an error.
func AuthErrorStrategy(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Strategy
	}
	return ""
}
