package apikey

import (
	"strings"
	"time"
)

// KeyPrefix is the fixed leading tag of every issued key.
const KeyPrefix = "ak"

// Record is the persisted server-side state of an issued API key.
// The raw secret exists only transiently at generation time; the record
// carries its one-way hash, never the secret itself.
type Record struct {
	// ID is the unique identifier for the record.
	ID string `json:"id" yaml:"id"`

	// OwnerID identifies the principal the key was issued to.
	OwnerID string `json:"owner_id" yaml:"ownerId"`

	// Prefix is the non-secret lookup prefix embedded in the raw key.
	Prefix string `json:"prefix" yaml:"prefix"`

	// SecretHash is the one-way hash of the full raw key.
	SecretHash string `json:"secret_hash" yaml:"secretHash"`

	// Name is an optional human-readable label.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Scopes granted to the key.
	Scopes []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`

	// Roles granted to the key.
	Roles []string `json:"roles,omitempty" yaml:"roles,omitempty"`

	// Metadata contains additional metadata.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// CreatedAt is when the key was generated.
	CreatedAt time.Time `json:"created_at" yaml:"createdAt"`

	// RevokedAt, when set, permanently disables the key. The record is
	// retained for audit.
	RevokedAt *time.Time `json:"revoked_at,omitempty" yaml:"revokedAt,omitempty"`
}

// IsRevoked reports whether the record has been revoked.
func (r *Record) IsRevoked() bool {
	return r.RevokedAt != nil
}

// Clone returns a deep copy of the record. Stores hand out clones so
// callers cannot mutate shared state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	if r.Scopes != nil {
		clone.Scopes = append([]string(nil), r.Scopes...)
	}
	if r.Roles != nil {
		clone.Roles = append([]string(nil), r.Roles...)
	}
	if r.Metadata != nil {
		clone.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			clone.Metadata[k] = v
		}
	}
	if r.RevokedAt != nil {
		at := *r.RevokedAt
		clone.RevokedAt = &at
	}
	return &clone
}

// SplitRawKey extracts the lookup prefix from a raw key of the form
// ak_<prefix>_<secret>. ok is false for anything else; a structurally
// foreign credential can never match a stored record.
func SplitRawKey(raw string) (prefix string, ok bool) {
	parts := strings.SplitN(raw, "_", 3)
	if len(parts) != 3 || parts[0] != KeyPrefix || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[1], true
}
