package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SourceType identifies a secrets backend.
type SourceType string

const (
	// SourceTypeEnv reads secrets from environment variables.
	SourceTypeEnv SourceType = "env"
	// SourceTypeVault reads secrets from HashiCorp Vault KV v2.
	SourceTypeVault SourceType = "vault"
)

var (
	// ErrSecretNotFound is returned when a secret does not exist in the source.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSourceNotConfigured is returned when the source configuration is incomplete.
	ErrSourceNotConfigured = errors.New("secrets source not configured")

	// ErrSourceUnavailable is returned when the backend cannot be reached.
	ErrSourceUnavailable = errors.New("secrets source unavailable")
)

// Source retrieves named secrets from a backend.
type Source interface {
	// Type returns the source type.
	Type() SourceType

	// Get returns the secret value stored under name.
	Get(ctx context.Context, name string) (string, error)
}

// Config selects and configures a secrets source.
type Config struct {
	// Source is the backend type, env or vault. Defaults to env.
	Source SourceType `yaml:"source,omitempty" json:"source,omitempty"`

	// EnvPrefix is the environment variable prefix for the env source.
	EnvPrefix string `yaml:"envPrefix,omitempty" json:"envPrefix,omitempty"`

	// Vault configures the vault source.
	Vault *VaultConfig `yaml:"vault,omitempty" json:"vault,omitempty"`
}

// VaultConfig configures access to a Vault KV v2 secrets engine.
type VaultConfig struct {
	// Address is the Vault server address.
	Address string `yaml:"address" json:"address"`

	// Namespace is the Vault namespace, Enterprise only.
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`

	// TokenEnv names the environment variable holding the Vault token.
	TokenEnv string `yaml:"tokenEnv,omitempty" json:"tokenEnv,omitempty"`

	// MountPoint is the KV v2 mount point. Defaults to secret.
	MountPoint string `yaml:"mountPoint,omitempty" json:"mountPoint,omitempty"`

	// Path is the KV v2 path holding the secret data.
	Path string `yaml:"path" json:"path"`

	// Timeout is the request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// MaxRetries is the number of retries for failed requests.
	MaxRetries int `yaml:"maxRetries,omitempty" json:"maxRetries,omitempty"`
}

// GetEffectiveSource returns the configured source type or the default.
func (c *Config) GetEffectiveSource() SourceType {
	if c == nil || c.Source == "" {
		return SourceTypeEnv
	}
	return c.Source
}

// Validate validates the secrets configuration.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.GetEffectiveSource() {
	case SourceTypeEnv:
		return nil
	case SourceTypeVault:
		if c.Vault == nil {
			return fmt.Errorf("vault: %w", ErrSourceNotConfigured)
		}
		if c.Vault.Address == "" {
			return fmt.Errorf("vault: address is required")
		}
		if c.Vault.Path == "" {
			return fmt.Errorf("vault: path is required")
		}
		return nil
	default:
		return fmt.Errorf("unsupported secrets source %q", c.Source)
	}
}
