package authz

import (
	"errors"
	"fmt"
)

// Common authorization errors.
var (
	// ErrAccessDenied indicates that access was denied.
	ErrAccessDenied = errors.New("access denied")

	// ErrNoIdentity indicates that no identity was found in the context.
	ErrNoIdentity = errors.New("no identity in context")
)

// DenialError carries the context of a denied request.
type DenialError struct {
	// Subject is the subject that was denied.
	Subject string

	// Requirement is the unsatisfied scope or role.
	Requirement string

	// Reason is the reason for the denial.
	Reason string
}

// Error returns the error message.
func (e *DenialError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("authorization failed: %s", e.Reason)
	}
	return "authorization failed"
}

// Unwrap marks every denial as access denied.
func (e *DenialError) Unwrap() error {
	return ErrAccessDenied
}

// NewDenialError creates a new denial error.
func NewDenialError(subject, requirement, reason string) *DenialError {
	return &DenialError{
		Subject:     subject,
		Requirement: requirement,
		Reason:      reason,
	}
}

// IsAccessDenied checks if an error is an access denied error.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsNoIdentity checks if an error is a no identity error.
func IsNoIdentity(err error) bool {
	return errors.Is(err, ErrNoIdentity)
}
