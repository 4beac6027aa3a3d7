package secrets

import (
	"fmt"

	"github.com/avkern/authgate/internal/observability"
)

// NewSource builds a secrets source from configuration. A nil
// configuration yields the default environment source.
func NewSource(cfg *Config, logger observability.Logger) (Source, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	switch t := cfg.GetEffectiveSource(); t {
	case SourceTypeEnv:
		prefix := ""
		if cfg != nil {
			prefix = cfg.EnvPrefix
		}
		return NewEnvSource(prefix), nil
	case SourceTypeVault:
		if cfg == nil || cfg.Vault == nil {
			return nil, fmt.Errorf("vault: %w", ErrSourceNotConfigured)
		}
		return NewVaultSource(cfg.Vault, WithVaultLogger(logger))
	default:
		return nil, fmt.Errorf("unsupported secrets source %q", t)
	}
}
