package apikey

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// Store is the credential store contract consumed by the verifier.
// Implementations return ErrKeyNotFound when nothing matches and wrap
// infrastructure failures so they satisfy errors.Is(err,
// ErrStoreUnavailable). Revoked records ARE returned by lookups; the
// verifier distinguishes revoked from unknown.
type Store interface {
	// FindByPrefixAndHash returns the record whose prefix and secret
	// hash both match. Hash equality must be checked in constant time.
	FindByPrefixAndHash(ctx context.Context, prefix, hash string) (*Record, error)

	// GetByID returns a record by its identifier.
	GetByID(ctx context.Context, id string) (*Record, error)

	// Insert persists a new record.
	Insert(ctx context.Context, record *Record) error

	// Revoke stamps the record revoked at the given time. Revoking an
	// already revoked record is a no-op; the original timestamp wins.
	Revoke(ctx context.Context, id string, at time.Time) error

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store keyed by prefix. It is safe for
// concurrent use; the hot lookup path takes only a read lock.
type MemoryStore struct {
	mu       sync.RWMutex
	byPrefix map[string][]*Record
	byID     map[string]*Record
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byPrefix: make(map[string][]*Record),
		byID:     make(map[string]*Record),
	}
}

// FindByPrefixAndHash implements Store.
func (s *MemoryStore) FindByPrefixAndHash(ctx context.Context, prefix, hash string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStoreError("find", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.byPrefix[prefix] {
		if subtle.ConstantTimeCompare([]byte(record.SecretHash), []byte(hash)) == 1 {
			return record.Clone(), nil
		}
	}

	return nil, ErrKeyNotFound
}

// GetByID implements Store.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStoreError("get", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return record.Clone(), nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(ctx context.Context, record *Record) error {
	if err := ctx.Err(); err != nil {
		return NewStoreError("insert", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[record.ID]; exists {
		return ErrDuplicateKey
	}

	stored := record.Clone()
	s.byID[stored.ID] = stored
	s.byPrefix[stored.Prefix] = append(s.byPrefix[stored.Prefix], stored)
	return nil
}

// Revoke implements Store.
func (s *MemoryStore) Revoke(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return NewStoreError("revoke", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return ErrKeyNotFound
	}
	if record.RevokedAt == nil {
		record.RevokedAt = &at
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// Count returns the number of records in the store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// ReplaceAll atomically swaps the store contents. Used by the config
// watcher to apply a reloaded seed set.
func (s *MemoryStore) ReplaceAll(records []*Record) {
	byPrefix := make(map[string][]*Record, len(records))
	byID := make(map[string]*Record, len(records))
	for _, record := range records {
		stored := record.Clone()
		byID[stored.ID] = stored
		byPrefix[stored.Prefix] = append(byPrefix[stored.Prefix], stored)
	}

	s.mu.Lock()
	s.byPrefix = byPrefix
	s.byID = byID
	s.mu.Unlock()
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
