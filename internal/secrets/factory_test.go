package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	t.Parallel()

	t.Run("nil config defaults to env", func(t *testing.T) {
		t.Parallel()

		src, err := NewSource(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, SourceTypeEnv, src.Type())
	})

	t.Run("env with prefix", func(t *testing.T) {
		t.Parallel()

		src, err := NewSource(&Config{Source: SourceTypeEnv, EnvPrefix: "MYAPP_"}, nil)
		require.NoError(t, err)

		env, ok := src.(*EnvSource)
		require.True(t, ok)
		assert.Equal(t, "MYAPP_", env.prefix)
	})

	t.Run("vault without config", func(t *testing.T) {
		t.Parallel()

		_, err := NewSource(&Config{Source: SourceTypeVault}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceNotConfigured)
	})

	t.Run("vault with config", func(t *testing.T) {
		t.Parallel()

		src, err := NewSource(&Config{
			Source: SourceTypeVault,
			Vault: &VaultConfig{
				Address: "http://127.0.0.1:8200",
				Path:    "authgate",
			},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, SourceTypeVault, src.Type())
	})

	t.Run("unsupported source", func(t *testing.T) {
		t.Parallel()

		_, err := NewSource(&Config{Source: "consul"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported secrets source")
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "nil config", cfg: nil},
		{name: "empty defaults to env", cfg: &Config{}},
		{name: "env", cfg: &Config{Source: SourceTypeEnv}},
		{
			name:    "vault without block",
			cfg:     &Config{Source: SourceTypeVault},
			wantErr: "not configured",
		},
		{
			name:    "vault without address",
			cfg:     &Config{Source: SourceTypeVault, Vault: &VaultConfig{Path: "p"}},
			wantErr: "address is required",
		},
		{
			name:    "vault without path",
			cfg:     &Config{Source: SourceTypeVault, Vault: &VaultConfig{Address: "http://127.0.0.1:8200"}},
			wantErr: "path is required",
		},
		{
			name: "vault complete",
			cfg: &Config{
				Source: SourceTypeVault,
				Vault:  &VaultConfig{Address: "http://127.0.0.1:8200", Path: "p"},
			},
		},
		{
			name:    "unknown source",
			cfg:     &Config{Source: "consul"},
			wantErr: "unsupported secrets source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
