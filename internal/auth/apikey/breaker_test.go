package apikey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every call with err until err is cleared.
type flakyStore struct {
	*MemoryStore
	err error
}

func (s *flakyStore) FindByPrefixAndHash(ctx context.Context, prefix, hash string) (*Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.FindByPrefixAndHash(ctx, prefix, hash)
}

func TestBreakerStorePassthrough(t *testing.T) {
	t.Parallel()

	inner := NewMemoryStore()
	store := NewBreakerStore(inner, &BreakerConfig{Enabled: true})
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord("k1", "abcd1234", "hash-1")))

	found, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "k1", found.ID)

	require.NoError(t, store.Revoke(ctx, "k1", time.Now()))
	found, err = store.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found.IsRevoked())
}

func TestBreakerStoreOpensOnBackendFailures(t *testing.T) {
	t.Parallel()

	backendErr := NewStoreError("find", errors.New("connection refused"))
	inner := &flakyStore{MemoryStore: NewMemoryStore(), err: backendErr}
	store := NewBreakerStore(inner, &BreakerConfig{Enabled: true, Threshold: 3, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-1")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	}

	// The breaker is open now; the backend is no longer consulted and
	// callers still see a store availability error.
	inner.err = nil
	_, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestBreakerStoreIgnoresCredentialMisses(t *testing.T) {
	t.Parallel()

	inner := NewMemoryStore()
	store := NewBreakerStore(inner, &BreakerConfig{Enabled: true, Threshold: 3, Timeout: time.Minute})
	ctx := context.Background()

	// Many unknown-key lookups must not trip the breaker.
	for i := 0; i < 20; i++ {
		_, err := store.FindByPrefixAndHash(ctx, "abcd1234", "no-such-hash")
		assert.ErrorIs(t, err, ErrKeyNotFound)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	}

	require.NoError(t, store.Insert(ctx, testRecord("k1", "abcd1234", "hash-1")))
	_, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-1")
	assert.NoError(t, err)
}
