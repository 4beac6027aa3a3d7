package auth

import (
	"context"
	"errors"
	"time"
)

// Identity represents an authenticated identity.
type Identity struct {
	// Subject is the unique identifier for the identity.
	Subject string `json:"sub"`

	// Issuer is the issuer of the identity.
	Issuer string `json:"iss,omitempty"`

	// Audience is the intended audience for the identity.
	Audience []string `json:"aud,omitempty"`

	// AuthType is the authentication method used.
	AuthType AuthType `json:"auth_type"`

	// AuthTime is when the authentication occurred.
	AuthTime time.Time `json:"auth_time,omitempty"`

	// ExpiresAt is when the identity expires. Zero for identities that
	// do not expire, such as API keys.
	ExpiresAt time.Time `json:"exp,omitempty"`

	// Claims contains additional claims from the authentication.
	Claims map[string]interface{} `json:"claims,omitempty"`

	// Roles contains the roles assigned to the identity.
	Roles []string `json:"roles,omitempty"`

	// Scopes contains the scopes granted to the identity.
	Scopes []string `json:"scopes,omitempty"`

	// Email is the email address of the identity.
	Email string `json:"email,omitempty"`

	// Name is the display name of the identity.
	Name string `json:"name,omitempty"`

	// ClientID is the client ID for service accounts or API keys.
	ClientID string `json:"client_id,omitempty"`

	// Metadata contains additional metadata about the identity.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AuthType represents the type of authentication used.
type AuthType string

// Authentication types.
const (
	AuthTypeToken     AuthType = "token"
	AuthTypeAPIKey    AuthType = "apikey"
	AuthTypeAnonymous AuthType = "anonymous"
)

// IsExpired returns true if the identity has expired.
func (i *Identity) IsExpired() bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(i.ExpiresAt)
}

// HasRole checks if the identity has a specific role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the identity has any of the specified roles.
func (i *Identity) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// HasScope checks if the identity has a specific scope.
func (i *Identity) HasScope(scope string) bool {
	for _, s := range i.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAllScopes checks if the identity has all of the specified scopes.
func (i *Identity) HasAllScopes(scopes ...string) bool {
	for _, scope := range scopes {
		if !i.HasScope(scope) {
			return false
		}
	}
	return true
}

// GetClaim returns a claim value by name.
func (i *Identity) GetClaim(name string) (interface{}, bool) {
	if i.Claims == nil {
		return nil, false
	}
	v, ok := i.Claims[name]
	return v, ok
}

// GetClaimString returns a claim value as a string.
func (i *Identity) GetClaimString(name string) string {
	v, ok := i.GetClaim(name)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Context key type for identity.
type identityContextKey struct{}

// ContextWithIdentity adds an identity to the context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok
}

// ErrIdentityNotFound is returned when identity is not found in context.
var ErrIdentityNotFound = errors.New("identity not found in context")

// ErrIdentityNil is returned when identity in context is nil.
var ErrIdentityNil = errors.New("identity in context is nil")

// IdentityFromContextOrError extracts the identity from the context or
// returns an error.
func IdentityFromContextOrError(ctx context.Context) (*Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, ErrIdentityNotFound
	}
	if identity == nil {
		return nil, ErrIdentityNil
	}
	return identity, nil
}

// AnonymousIdentity returns an anonymous identity.
func AnonymousIdentity() *Identity {
	return &Identity{
		Subject:  "anonymous",
		AuthType: AuthTypeAnonymous,
		AuthTime: time.Now(),
	}
}
