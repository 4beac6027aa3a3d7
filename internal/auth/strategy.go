package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avkern/authgate/internal/auth/apikey"
	"github.com/avkern/authgate/internal/auth/token"
)

// Strategy is a single authentication mechanism. Extract reports
// whether the request carries this strategy's credential at all;
// Authenticate verifies it. The split lets the dispatcher skip
// strategies whose credential is simply absent without treating that
// as a failure.
type Strategy interface {
	// Name returns the strategy name.
	Name() string

	// Extract pulls this strategy's credential from an HTTP request.
	// It returns ErrNoCredentials when none is present.
	Extract(r *http.Request) (*Credentials, error)

	// ExtractGRPC pulls this strategy's credential from gRPC metadata.
	ExtractGRPC(ctx context.Context) (*Credentials, error)

	// Authenticate verifies the credential and resolves its identity.
	Authenticate(ctx context.Context, credential string) (*Identity, error)
}

// tokenStrategy authenticates signed bearer tokens.
type tokenStrategy struct {
	codec     token.Codec
	extractor Extractor
}

// NewTokenStrategy creates a token authentication strategy.
func NewTokenStrategy(codec token.Codec, extractor Extractor) (Strategy, error) {
	if codec == nil {
		return nil, errors.New("codec is required")
	}
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	return &tokenStrategy{codec: codec, extractor: extractor}, nil
}

// Name implements Strategy.
func (s *tokenStrategy) Name() string {
	return string(AuthTypeToken)
}

// Extract implements Strategy.
func (s *tokenStrategy) Extract(r *http.Request) (*Credentials, error) {
	return s.extractor.ExtractToken(r)
}

// ExtractGRPC implements Strategy.
func (s *tokenStrategy) ExtractGRPC(ctx context.Context) (*Credentials, error) {
	return s.extractor.ExtractTokenFromGRPC(ctx)
}

// Authenticate implements Strategy.
func (s *tokenStrategy) Authenticate(ctx context.Context, credential string) (*Identity, error) {
	claims, err := s.codec.Decode(ctx, credential)
	if err != nil {
		return nil, WrapAuthError(err, s.Name())
	}
	return claimsToIdentity(claims), nil
}

// claimsToIdentity converts decoded token claims to an identity.
func claimsToIdentity(claims *token.Claims) *Identity {
	identity := &Identity{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: []string(claims.Audience),
		AuthType: AuthTypeToken,
		AuthTime: time.Now(),
		Claims:   claims.ToMap(),
		Scopes:   claims.GetStringSliceClaim("scope"),
		Roles:    claims.GetStringSliceClaim("roles"),
		Email:    claims.GetStringClaim("email"),
		Name:     claims.GetStringClaim("name"),
	}

	if len(identity.Scopes) == 0 {
		identity.Scopes = claims.GetStringSliceClaim("scopes")
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	return identity
}

// apiKeyStrategy authenticates API keys against the credential store.
type apiKeyStrategy struct {
	service   apikey.Service
	extractor Extractor
}

// NewAPIKeyStrategy creates an API key authentication strategy.
func NewAPIKeyStrategy(service apikey.Service, extractor Extractor) (Strategy, error) {
	if service == nil {
		return nil, errors.New("service is required")
	}
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	return &apiKeyStrategy{service: service, extractor: extractor}, nil
}

// Name implements Strategy.
func (s *apiKeyStrategy) Name() string {
	return string(AuthTypeAPIKey)
}

// Extract implements Strategy.
func (s *apiKeyStrategy) Extract(r *http.Request) (*Credentials, error) {
	return s.extractor.ExtractAPIKey(r)
}

// ExtractGRPC implements Strategy.
func (s *apiKeyStrategy) ExtractGRPC(ctx context.Context) (*Credentials, error) {
	return s.extractor.ExtractAPIKeyFromGRPC(ctx)
}

// Authenticate implements Strategy.
func (s *apiKeyStrategy) Authenticate(ctx context.Context, credential string) (*Identity, error) {
	record, err := s.service.Verify(ctx, credential)
	if err != nil {
		return nil, WrapAuthError(err, s.Name())
	}
	return recordToIdentity(record), nil
}

// recordToIdentity converts an API key record to an identity.
func recordToIdentity(record *apikey.Record) *Identity {
	return &Identity{
		Subject:  record.OwnerID,
		AuthType: AuthTypeAPIKey,
		AuthTime: time.Now(),
		Name:     record.Name,
		Roles:    record.Roles,
		Scopes:   record.Scopes,
		Metadata: record.Metadata,
		ClientID: record.ID,
	}
}

// BuildStrategies assembles the enabled strategies in the configured
// order. Disabled strategies are left out even when named in the order.
func BuildStrategies(config *Config, codec token.Codec, keys apikey.Service) ([]Strategy, error) {
	extractor := NewExtractor(config.Extraction)

	var strategies []Strategy
	for _, name := range config.StrategyOrder() {
		switch name {
		case string(AuthTypeToken):
			if !config.IsTokenEnabled() {
				continue
			}
			s, err := NewTokenStrategy(codec, extractor)
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, s)
		case string(AuthTypeAPIKey):
			if !config.IsAPIKeyEnabled() {
				continue
			}
			s, err := NewAPIKeyStrategy(keys, extractor)
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, s)
		default:
			return nil, errors.New("unknown strategy: " + name)
		}
	}
	return strategies, nil
}

var (
	_ Strategy = (*tokenStrategy)(nil)
	_ Strategy = (*apiKeyStrategy)(nil)
)
