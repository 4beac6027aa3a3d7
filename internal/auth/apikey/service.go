package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avkern/authgate/internal/observability"
)

const (
	// prefixBytes is the raw entropy behind the lookup prefix.
	prefixBytes = 4

	// secretBytes is the raw entropy behind the key secret.
	secretBytes = 32
)

// GenerateOptions carries optional attributes for a new key.
type GenerateOptions struct {
	Name     string
	Scopes   []string
	Roles    []string
	Metadata map[string]string
}

// Service issues, verifies and revokes API keys.
type Service interface {
	// Generate creates a new key for ownerID. The raw key is returned
	// exactly once and is never persisted or logged.
	Generate(ctx context.Context, ownerID string, opts GenerateOptions) (string, *Record, error)

	// Verify resolves a raw key to its record. It returns ErrKeyNotFound
	// for unknown or structurally invalid keys and ErrKeyRevoked for
	// revoked ones.
	Verify(ctx context.Context, raw string) (*Record, error)

	// Revoke permanently disables the key with the given ID. Revoking an
	// already revoked key is a no-op that preserves the original
	// revocation time.
	Revoke(ctx context.Context, id string) error
}

// service implements Service.
type service struct {
	store   Store
	hasher  Hasher
	logger  observability.Logger
	metrics *Metrics
	now     func() time.Time
}

var _ Service = (*service)(nil)

// ServiceOption is a functional option for the service.
type ServiceOption func(*service)

// WithServiceLogger sets the logger for the service.
func WithServiceLogger(logger observability.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger.With(observability.String("component", "apikey"))
		}
	}
}

// WithServiceMetrics sets the metrics recorder for the service.
func WithServiceMetrics(metrics *Metrics) ServiceOption {
	return func(s *service) {
		s.metrics = metrics
	}
}

// WithServiceClock overrides the time source. Used in tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new API key service backed by the given store.
func NewService(store Store, hasher Hasher, opts ...ServiceOption) (Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if hasher == nil {
		hasher, _ = NewHasher(HashAlgSHA256)
	}

	s := &service{
		store:  store,
		hasher: hasher,
		logger: observability.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Generate(ctx context.Context, ownerID string, opts GenerateOptions) (string, *Record, error) {
	if ownerID == "" {
		s.recordGenerate("error")
		return "", nil, errors.New("ownerID is required")
	}

	prefix, err := randomHex(prefixBytes)
	if err != nil {
		s.recordGenerate("error")
		return "", nil, fmt.Errorf("generating prefix: %w", err)
	}
	secret, err := randomHex(secretBytes)
	if err != nil {
		s.recordGenerate("error")
		return "", nil, fmt.Errorf("generating secret: %w", err)
	}

	raw := fmt.Sprintf("%s_%s_%s", KeyPrefix, prefix, secret)

	record := &Record{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Prefix:     prefix,
		SecretHash: s.hasher.Hash(prefix, raw),
		Name:       opts.Name,
		Scopes:     opts.Scopes,
		Roles:      opts.Roles,
		Metadata:   opts.Metadata,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.Insert(ctx, record); err != nil {
		s.recordGenerate("error")
		return "", nil, err
	}

	s.logger.Info("api key generated",
		observability.String("id", record.ID),
		observability.String("owner_id", ownerID),
		observability.String("prefix", prefix))
	s.recordGenerate("success")

	return raw, record.Clone(), nil
}

func (s *service) Verify(ctx context.Context, raw string) (*Record, error) {
	start := s.now()

	if raw == "" {
		s.recordVerify("error", "empty", start)
		return nil, ErrEmptyKey
	}

	prefix, ok := SplitRawKey(raw)
	if !ok {
		s.recordVerify("error", "malformed", start)
		return nil, ErrKeyNotFound
	}

	record, err := s.store.FindByPrefixAndHash(ctx, prefix, s.hasher.Hash(prefix, raw))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			s.recordVerify("error", "not_found", start)
			return nil, ErrKeyNotFound
		}
		s.logger.Error("api key lookup failed",
			observability.String("prefix", prefix),
			observability.Error(err))
		if s.metrics != nil {
			s.metrics.RecordStoreError("find")
		}
		s.recordVerify("error", "store", start)
		return nil, err
	}

	if record.IsRevoked() {
		s.recordVerify("error", "revoked", start)
		return nil, ErrKeyRevoked
	}

	s.recordVerify("success", "", start)
	return record, nil
}

func (s *service) Revoke(ctx context.Context, id string) error {
	if id == "" {
		s.recordRevoke("error")
		return errors.New("id is required")
	}

	if err := s.store.Revoke(ctx, id, s.now().UTC()); err != nil {
		if !errors.Is(err, ErrKeyNotFound) && s.metrics != nil {
			s.metrics.RecordStoreError("revoke")
		}
		s.recordRevoke("error")
		return err
	}

	s.logger.Info("api key revoked", observability.String("id", id))
	s.recordRevoke("success")
	return nil
}

func (s *service) recordVerify(status, reason string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordVerify(status, reason, s.now().Sub(start))
	}
}

func (s *service) recordGenerate(status string) {
	if s.metrics != nil {
		s.metrics.RecordGenerate(status)
	}
}

func (s *service) recordRevoke(status string) {
	if s.metrics != nil {
		s.metrics.RecordRevoke(status)
	}
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
