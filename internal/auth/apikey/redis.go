package apikey

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avkern/authgate/internal/observability"
)

// Redis key layout. Records hang off their prefix as hash fields keyed
// by record ID, so prefix collisions stay cheap to resolve; a separate
// ID index serves GetByID and Revoke.
const (
	redisPrefixKey = "authgate:apikey:prefix:"
	redisIDKey     = "authgate:apikey:id:"
)

// RedisStore is a Redis-backed Store. Lookups respect context
// cancellation through the client, so a cancelled request abandons its
// in-flight lookup cleanly.
type RedisStore struct {
	client redis.UniversalClient
	logger observability.Logger
}

// RedisStoreOption is a functional option for the Redis store.
type RedisStoreOption func(*RedisStore)

// WithRedisStoreLogger sets the logger for the store.
func WithRedisStoreLogger(logger observability.Logger) RedisStoreOption {
	return func(s *RedisStore) {
		s.logger = logger
	}
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, NewStoreError("init", errors.New("redis client is required"))
	}

	s := &RedisStore{
		client: client,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// FindByPrefixAndHash implements Store.
func (s *RedisStore) FindByPrefixAndHash(ctx context.Context, prefix, hash string) (*Record, error) {
	entries, err := s.client.HGetAll(ctx, redisPrefixKey+prefix).Result()
	if err != nil {
		return nil, NewStoreError("find", err)
	}

	for _, raw := range entries {
		var record Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			s.logger.Warn("skipping undecodable API key record",
				observability.String("prefix", prefix),
				observability.Error(err),
			)
			continue
		}
		if subtle.ConstantTimeCompare([]byte(record.SecretHash), []byte(hash)) == 1 {
			return &record, nil
		}
	}

	return nil, ErrKeyNotFound
}

// GetByID implements Store.
func (s *RedisStore) GetByID(ctx context.Context, id string) (*Record, error) {
	raw, err := s.client.Get(ctx, redisIDKey+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, NewStoreError("get", err)
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, NewStoreError("get", err)
	}
	return &record, nil
}

// Insert implements Store.
func (s *RedisStore) Insert(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return NewStoreError("insert", err)
	}

	exists, err := s.client.Exists(ctx, redisIDKey+record.ID).Result()
	if err != nil {
		return NewStoreError("insert", err)
	}
	if exists > 0 {
		return ErrDuplicateKey
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisIDKey+record.ID, data, 0)
	pipe.HSet(ctx, redisPrefixKey+record.Prefix, record.ID, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return NewStoreError("insert", err)
	}
	return nil
}

// Revoke implements Store.
func (s *RedisStore) Revoke(ctx context.Context, id string, at time.Time) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.RevokedAt != nil {
		return nil
	}
	record.RevokedAt = &at

	data, err := json.Marshal(record)
	if err != nil {
		return NewStoreError("revoke", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisIDKey+record.ID, data, 0)
	pipe.HSet(ctx, redisPrefixKey+record.Prefix, record.ID, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return NewStoreError("revoke", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
