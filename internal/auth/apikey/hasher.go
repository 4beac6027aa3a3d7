package apikey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Hash algorithm constants.
const (
	HashAlgSHA256 = "sha256"
	HashAlgPBKDF2 = "pbkdf2"
)

// pbkdf2Iterations is deliberately modest: API keys carry 256 bits of
// entropy, so key stretching guards against weak operator-seeded keys,
// not against brute force of generated ones.
const pbkdf2Iterations = 10_000

// Hasher computes the one-way hash stored for an API key. The prefix is
// mixed in as a salt so equal secrets under different prefixes produce
// different hashes, while lookups stay deterministic.
type Hasher interface {
	// Hash hashes the full raw key using the record prefix as salt.
	Hash(prefix, raw string) string

	// Name returns the algorithm name.
	Name() string
}

// SHA256Hasher hashes with a single SHA-256 pass.
type SHA256Hasher struct{}

// Hash implements Hasher.
func (SHA256Hasher) Hash(prefix, raw string) string {
	sum := sha256.Sum256([]byte(prefix + ":" + raw))
	return hex.EncodeToString(sum[:])
}

// Name implements Hasher.
func (SHA256Hasher) Name() string { return HashAlgSHA256 }

// PBKDF2Hasher applies PBKDF2-SHA256 key stretching.
type PBKDF2Hasher struct{}

// Hash implements Hasher.
func (PBKDF2Hasher) Hash(prefix, raw string) string {
	derived := pbkdf2.Key([]byte(raw), []byte(prefix), pbkdf2Iterations, sha256.Size, sha256.New)
	return hex.EncodeToString(derived)
}

// Name implements Hasher.
func (PBKDF2Hasher) Name() string { return HashAlgPBKDF2 }

// NewHasher returns the hasher for the named algorithm. An empty name
// selects SHA-256.
func NewHasher(algorithm string) (Hasher, error) {
	switch algorithm {
	case "", HashAlgSHA256:
		return SHA256Hasher{}, nil
	case HashAlgPBKDF2:
		return PBKDF2Hasher{}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}
