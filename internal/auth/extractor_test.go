package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestExtractToken(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)

	tests := []struct {
		name      string
		setup     func(r *http.Request)
		wantValue string
		wantErr   error
	}{
		{
			name: "bearer token",
			setup: func(r *http.Request) {
				r.Header.Set(HeaderAuthorization, "Bearer abc.def.ghi")
			},
			wantValue: "abc.def.ghi",
		},
		{
			name: "bearer token with surrounding whitespace",
			setup: func(r *http.Request) {
				r.Header.Set(HeaderAuthorization, "Bearer   abc.def.ghi  ")
			},
			wantValue: "abc.def.ghi",
		},
		{
			name: "wrong scheme is absent",
			setup: func(r *http.Request) {
				r.Header.Set(HeaderAuthorization, "Basic dXNlcjpwYXNz")
			},
			wantErr: ErrNoCredentials,
		},
		{
			name:    "no header",
			setup:   func(r *http.Request) {},
			wantErr: ErrNoCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/posts", nil)
			tt.setup(r)

			creds, err := e.ExtractToken(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, CredentialTypeToken, creds.Type)
			assert.Equal(t, tt.wantValue, creds.Value)
		})
	}
}

func TestExtractAPIKey(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)

	t.Run("header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/posts", nil)
		r.Header.Set(HeaderXAPIKey, "ak_abcd1234_secret")

		creds, err := e.ExtractAPIKey(r)
		require.NoError(t, err)
		assert.Equal(t, CredentialTypeAPIKey, creds.Type)
		assert.Equal(t, "ak_abcd1234_secret", creds.Value)
		assert.Equal(t, "header:X-API-Key", creds.Source)
	})

	t.Run("query fallback", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/posts?api_key=ak_abcd1234_secret", nil)

		creds, err := e.ExtractAPIKey(r)
		require.NoError(t, err)
		assert.Equal(t, "ak_abcd1234_secret", creds.Value)
		assert.Equal(t, "query:api_key", creds.Source)
	})

	t.Run("header wins over query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/posts?api_key=from-query", nil)
		r.Header.Set(HeaderXAPIKey, "from-header")

		creds, err := e.ExtractAPIKey(r)
		require.NoError(t, err)
		assert.Equal(t, "from-header", creds.Value)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/posts", nil)
		_, err := e.ExtractAPIKey(r)
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestExtractFromCookie(t *testing.T) {
	t.Parallel()

	e := NewExtractor(&ExtractionConfig{
		Token: []ExtractionSource{
			{Type: ExtractionTypeCookie, Name: "session_token"},
		},
	})

	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	r.AddCookie(&http.Cookie{Name: "session_token", Value: "abc.def.ghi"})

	creds, err := e.ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", creds.Value)
}

func TestExtractFromGRPCMetadata(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()

		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"authorization", "Bearer abc.def.ghi",
		))

		creds, err := e.ExtractTokenFromGRPC(ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", creds.Value)
	})

	t.Run("api key", func(t *testing.T) {
		t.Parallel()

		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"x-api-key", "ak_abcd1234_secret",
		))

		creds, err := e.ExtractAPIKeyFromGRPC(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ak_abcd1234_secret", creds.Value)
	})

	t.Run("no metadata", func(t *testing.T) {
		t.Parallel()

		_, err := e.ExtractTokenFromGRPC(context.Background())
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	assert.Empty(t, ExtractBearerToken(r))

	r.Header.Set(HeaderAuthorization, "Bearer abc")
	assert.Equal(t, "abc", ExtractBearerToken(r))

	r.Header.Set(HeaderAuthorization, "Token abc")
	assert.Empty(t, ExtractBearerToken(r))
}
