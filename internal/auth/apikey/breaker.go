package apikey

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/avkern/authgate/internal/observability"
)

// BreakerConfig configures the circuit breaker around a Store.
type BreakerConfig struct {
	// Enabled enables the breaker.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Threshold is the request count after which the failure ratio is
	// evaluated.
	Threshold int `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// BreakerStore wraps a Store with a circuit breaker so that a failing
// backend is answered fast with ErrStoreUnavailable instead of piling
// up slow lookups. Credential misses are not backend failures and do
// not trip the breaker.
type BreakerStore struct {
	store  Store
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

// BreakerStoreOption is a functional option for the breaker store.
type BreakerStoreOption func(*BreakerStore)

// WithBreakerStoreLogger sets the logger.
func WithBreakerStoreLogger(logger observability.Logger) BreakerStoreOption {
	return func(s *BreakerStore) {
		s.logger = logger
	}
}

// Underlying returns the wrapped store.
func (s *BreakerStore) Underlying() Store {
	return s.store
}

// NewBreakerStore wraps the given store with a circuit breaker.
func NewBreakerStore(store Store, config *BreakerConfig, opts ...BreakerStoreOption) *BreakerStore {
	s := &BreakerStore{
		store:  store,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	threshold := 5
	timeout := 30 * time.Second
	if config != nil {
		if config.Threshold > 0 {
			threshold = config.Threshold
		}
		if config.Timeout > 0 {
			timeout = config.Timeout
		}
	}

	//nolint:gosec // threshold is a small operator-supplied count
	thresholdU32 := uint32(threshold)

	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "apikey-store",
		MaxRequests: thresholdU32,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= thresholdU32 && failureRatio >= 0.5
		},
		IsSuccessful: func(err error) bool {
			// Unknown or duplicate credentials are valid answers from a
			// healthy backend.
			return err == nil ||
				errors.Is(err, ErrKeyNotFound) ||
				errors.Is(err, ErrDuplicateKey)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("credential store circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
	})

	return s
}

// FindByPrefixAndHash implements Store.
func (s *BreakerStore) FindByPrefixAndHash(ctx context.Context, prefix, hash string) (*Record, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.store.FindByPrefixAndHash(ctx, prefix, hash)
	})
	if err != nil {
		return nil, s.mapError("find", err)
	}
	return result.(*Record), nil
}

// GetByID implements Store.
func (s *BreakerStore) GetByID(ctx context.Context, id string) (*Record, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.store.GetByID(ctx, id)
	})
	if err != nil {
		return nil, s.mapError("get", err)
	}
	return result.(*Record), nil
}

// Insert implements Store.
func (s *BreakerStore) Insert(ctx context.Context, record *Record) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.store.Insert(ctx, record)
	})
	if err != nil {
		return s.mapError("insert", err)
	}
	return nil
}

// Revoke implements Store.
func (s *BreakerStore) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.store.Revoke(ctx, id, at)
	})
	if err != nil {
		return s.mapError("revoke", err)
	}
	return nil
}

// Close implements Store.
func (s *BreakerStore) Close() error {
	return s.store.Close()
}

// mapError translates breaker rejections into store availability errors.
func (s *BreakerStore) mapError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return NewStoreError(op, err)
	}
	return err
}

// Ensure BreakerStore implements Store.
var _ Store = (*BreakerStore)(nil)
