package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeVault starts an HTTP server that serves a single KV v2 secret
// at secret/data/authgate.
func newFakeVault(t *testing.T, data map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/authgate" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}

		resp := map[string]any{
			"data": map[string]any{
				"data": data,
				"metadata": map[string]any{
					"version":      1,
					"created_time": "2026-01-01T00:00:00Z",
					"destroyed":    false,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestVaultSourceGet(t *testing.T) {
	t.Setenv("AUTHGATE_TEST_VAULT_TOKEN", "test-token")

	server := newFakeVault(t, map[string]any{
		"token-signing-key": "vault-secret",
		"numeric":           42,
	})

	src, err := NewVaultSource(&VaultConfig{
		Address:  server.URL,
		TokenEnv: "AUTHGATE_TEST_VAULT_TOKEN",
		Path:     "authgate",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceTypeVault, src.Type())

	value, err := src.Get(context.Background(), "token-signing-key")
	require.NoError(t, err)
	assert.Equal(t, "vault-secret", value)
}

func TestVaultSourceGetMissingField(t *testing.T) {
	t.Setenv("AUTHGATE_TEST_VAULT_TOKEN", "test-token")

	server := newFakeVault(t, map[string]any{
		"token-signing-key": "vault-secret",
	})

	src, err := NewVaultSource(&VaultConfig{
		Address:  server.URL,
		TokenEnv: "AUTHGATE_TEST_VAULT_TOKEN",
		Path:     "authgate",
	})
	require.NoError(t, err)

	_, err = src.Get(context.Background(), "other-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestVaultSourceGetNonStringField(t *testing.T) {
	t.Setenv("AUTHGATE_TEST_VAULT_TOKEN", "test-token")

	server := newFakeVault(t, map[string]any{
		"numeric": 42,
	})

	src, err := NewVaultSource(&VaultConfig{
		Address:  server.URL,
		TokenEnv: "AUTHGATE_TEST_VAULT_TOKEN",
		Path:     "authgate",
	})
	require.NoError(t, err)

	_, err = src.Get(context.Background(), "numeric")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestVaultSourceBackendDown(t *testing.T) {
	t.Setenv("AUTHGATE_TEST_VAULT_TOKEN", "test-token")

	server := newFakeVault(t, map[string]any{})
	addr := server.URL
	server.Close()

	src, err := NewVaultSource(&VaultConfig{
		Address:  addr,
		TokenEnv: "AUTHGATE_TEST_VAULT_TOKEN",
		Path:     "authgate",
		Timeout:  time.Second,
	})
	require.NoError(t, err)

	_, err = src.Get(context.Background(), "token-signing-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestNewVaultSourceValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *VaultConfig
	}{
		{name: "nil config", cfg: nil},
		{name: "missing address", cfg: &VaultConfig{Path: "authgate"}},
		{name: "missing path", cfg: &VaultConfig{Address: "http://127.0.0.1:8200"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewVaultSource(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSourceNotConfigured)
		})
	}
}
