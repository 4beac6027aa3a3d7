package auth

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkern/authgate/internal/auth/apikey"
	"github.com/avkern/authgate/internal/auth/token"
)

func TestClaimsToIdentity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	exp := token.NewTime(now.Add(time.Hour))

	tests := []struct {
		name   string
		claims *token.Claims
		check  func(t *testing.T, identity *Identity)
	}{
		{
			name: "space separated scope claim",
			claims: &token.Claims{
				Subject:   "user-1",
				Issuer:    "authgate",
				ExpiresAt: exp,
				Extra: map[string]interface{}{
					"scope": "read:posts write:posts",
					"email": "user@example.com",
					"name":  "User One",
				},
			},
			check: func(t *testing.T, identity *Identity) {
				assert.Equal(t, "user-1", identity.Subject)
				assert.Equal(t, "authgate", identity.Issuer)
				assert.Equal(t, []string{"read:posts", "write:posts"}, identity.Scopes)
				assert.Equal(t, "user@example.com", identity.Email)
				assert.Equal(t, "User One", identity.Name)
				assert.WithinDuration(t, now.Add(time.Hour), identity.ExpiresAt, time.Second)
			},
		},
		{
			name: "scopes array fallback",
			claims: &token.Claims{
				Subject: "user-2",
				Extra: map[string]interface{}{
					"scopes": []interface{}{"read:posts"},
					"roles":  []interface{}{"reader"},
				},
			},
			check: func(t *testing.T, identity *Identity) {
				assert.Equal(t, []string{"read:posts"}, identity.Scopes)
				assert.Equal(t, []string{"reader"}, identity.Roles)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identity := claimsToIdentity(tt.claims)
			assert.Equal(t, AuthTypeToken, identity.AuthType)
			tt.check(t, identity)
		})
	}
}

func TestRecordToIdentity(t *testing.T) {
	t.Parallel()

	record := &apikey.Record{
		ID:       "key-1",
		OwnerID:  "client-42",
		Name:     "ci pipeline",
		Scopes:   []string{"read:posts"},
		Roles:    []string{"reader"},
		Metadata: map[string]string{"env": "prod"},
	}

	identity := recordToIdentity(record)
	assert.Equal(t, "client-42", identity.Subject)
	assert.Equal(t, "key-1", identity.ClientID)
	assert.Equal(t, AuthTypeAPIKey, identity.AuthType)
	assert.Equal(t, []string{"read:posts"}, identity.Scopes)
	assert.Equal(t, []string{"reader"}, identity.Roles)
	assert.True(t, identity.ExpiresAt.IsZero(), "API key identities do not expire")
}

func TestBuildStrategies(t *testing.T) {
	t.Parallel()

	codec, err := token.NewCodec(
		&token.Config{Enabled: true, Issuer: "authgate-test"},
		authTestSecret,
		token.WithCodecMetrics(token.NewMetricsWithRegisterer("test", prometheus.NewRegistry())),
	)
	require.NoError(t, err)

	keys, err := apikey.NewService(apikey.NewMemoryStore(), apikey.SHA256Hasher{})
	require.NoError(t, err)

	t.Run("default order", func(t *testing.T) {
		t.Parallel()

		config := &Config{
			Enabled: true,
			Token:   &token.Config{Enabled: true},
			APIKey:  &apikey.Config{Enabled: true},
		}
		strategies, err := BuildStrategies(config, codec, keys)
		require.NoError(t, err)
		require.Len(t, strategies, 2)
		assert.Equal(t, "token", strategies[0].Name())
		assert.Equal(t, "apikey", strategies[1].Name())
	})

	t.Run("custom order", func(t *testing.T) {
		t.Parallel()

		config := &Config{
			Enabled: true,
			Order:   []string{"apikey", "token"},
			Token:   &token.Config{Enabled: true},
			APIKey:  &apikey.Config{Enabled: true},
		}
		strategies, err := BuildStrategies(config, codec, keys)
		require.NoError(t, err)
		require.Len(t, strategies, 2)
		assert.Equal(t, "apikey", strategies[0].Name())
	})

	t.Run("disabled strategies are left out", func(t *testing.T) {
		t.Parallel()

		config := &Config{
			Enabled: true,
			APIKey:  &apikey.Config{Enabled: true},
		}
		strategies, err := BuildStrategies(config, codec, keys)
		require.NoError(t, err)
		require.Len(t, strategies, 1)
		assert.Equal(t, "apikey", strategies[0].Name())
	})

	t.Run("unknown strategy name", func(t *testing.T) {
		t.Parallel()

		config := &Config{
			Enabled: true,
			Order:   []string{"mtls"},
		}
		_, err := BuildStrategies(config, codec, keys)
		assert.Error(t, err)
	})
}

func TestNewStrategyValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenStrategy(nil, nil)
	assert.Error(t, err)

	_, err = NewAPIKeyStrategy(nil, nil)
	assert.Error(t, err)
}
