package apikey

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client)
	require.NoError(t, err)
	return store, mr
}

func TestNewRedisStoreNilClient(t *testing.T) {
	t.Parallel()

	_, err := NewRedisStore(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRedisStoreInsertAndFind(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	record := testRecord("k1", "abcd1234", "hash-1")
	require.NoError(t, store.Insert(ctx, record))

	found, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "k1", found.ID)
	assert.Equal(t, "client-42", found.OwnerID)
	assert.Equal(t, []string{"read:posts"}, found.Scopes)

	_, err = store.FindByPrefixAndHash(ctx, "abcd1234", "wrong-hash")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = store.FindByPrefixAndHash(ctx, "unknown", "hash-1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStoreDuplicateInsert(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord("k1", "abcd1234", "hash-1")))
	err := store.Insert(ctx, testRecord("k1", "abcd1234", "hash-2"))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestRedisStorePrefixCollision(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord("k1", "abcd1234", "hash-1")))
	require.NoError(t, store.Insert(ctx, testRecord("k2", "abcd1234", "hash-2")))

	found, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-2")
	require.NoError(t, err)
	assert.Equal(t, "k2", found.ID)
}

func TestRedisStoreGetByID(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord("k1", "abcd1234", "hash-1")))

	found, err := store.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "k1", found.ID)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStoreRevoke(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord("k1", "abcd1234", "hash-1")))

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Revoke(ctx, "k1", first))

	found, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-1")
	require.NoError(t, err)
	require.NotNil(t, found.RevokedAt)
	assert.True(t, found.RevokedAt.Equal(first))

	// Second revocation is a no-op.
	require.NoError(t, store.Revoke(ctx, "k1", first.Add(time.Hour)))
	found, err = store.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found.RevokedAt.Equal(first))

	assert.ErrorIs(t, store.Revoke(ctx, "missing", first), ErrKeyNotFound)
}

func TestRedisStoreBackendDown(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testRecord("k1", "abcd1234", "hash-1")))
	mr.Close()

	_, err := store.FindByPrefixAndHash(ctx, "abcd1234", "hash-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}
