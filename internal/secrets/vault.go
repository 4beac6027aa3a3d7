package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	vaultapi "github.com/hashicorp/vault/api"

	"github.com/avkern/authgate/internal/observability"
)

const defaultVaultMountPoint = "secret"

// VaultSource reads secrets from a HashiCorp Vault KV v2 engine. All
// secrets live under a single KV path; the secret name selects a field
// of that path's data.
type VaultSource struct {
	client     *vaultapi.Client
	mountPoint string
	path       string
	logger     observability.Logger
}

var _ Source = (*VaultSource)(nil)

// VaultSourceOption is a functional option for configuring the source.
type VaultSourceOption func(*VaultSource)

// WithVaultLogger sets the logger for the source.
func WithVaultLogger(logger observability.Logger) VaultSourceOption {
	return func(s *VaultSource) {
		s.logger = logger
	}
}

// NewVaultSource creates a Vault secrets source from configuration.
// The Vault token is read from the environment variable named by
// cfg.TokenEnv, falling back to the client library's VAULT_TOKEN
// handling when unset.
func NewVaultSource(cfg *VaultConfig, opts ...VaultSourceOption) (*VaultSource, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("vault: %w", ErrSourceNotConfigured)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("vault: %w: path is required", ErrSourceNotConfigured)
	}

	apiConfig := vaultapi.DefaultConfig()
	apiConfig.Address = cfg.Address
	if cfg.Timeout > 0 {
		apiConfig.Timeout = cfg.Timeout
	} else {
		apiConfig.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries > 0 {
		apiConfig.MaxRetries = cfg.MaxRetries
	}

	client, err := vaultapi.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to create client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	if cfg.TokenEnv != "" {
		if token := os.Getenv(cfg.TokenEnv); token != "" {
			client.SetToken(token)
		}
	}

	mountPoint := cfg.MountPoint
	if mountPoint == "" {
		mountPoint = defaultVaultMountPoint
	}

	s := &VaultSource{
		client:     client,
		mountPoint: mountPoint,
		path:       cfg.Path,
		logger:     observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Type returns the source type.
func (s *VaultSource) Type() SourceType {
	return SourceTypeVault
}

// Get returns the secret value stored under name.
func (s *VaultSource) Get(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty secret name", ErrSecretNotFound)
	}

	secret, err := s.client.KVv2(s.mountPoint).Get(ctx, s.path)
	if err != nil {
		s.logger.Error("vault secret read failed",
			observability.String("mount", s.mountPoint),
			observability.String("path", s.path),
			observability.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}

	value, ok := secret.Data[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}

	str, ok := value.(string)
	if !ok || str == "" {
		return "", fmt.Errorf("%w: %s is not a string value", ErrSecretNotFound, name)
	}

	return str, nil
}
