package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkern/authgate/internal/auth/apikey"
	"github.com/avkern/authgate/internal/auth/token"
)

func TestKindHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindMalformedToken, http.StatusUnauthorized},
		{KindTokenExpired, http.StatusUnauthorized},
		{KindInvalidSignature, http.StatusUnauthorized},
		{KindUnknownCredential, http.StatusUnauthorized},
		{KindRevokedCredential, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindDependencyUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "no credentials",
			err:  ErrNoCredentials,
			want: KindUnauthenticated,
		},
		{
			name: "malformed token",
			err:  token.ErrTokenMalformed,
			want: KindMalformedToken,
		},
		{
			name: "empty token",
			err:  token.ErrEmptyToken,
			want: KindMalformedToken,
		},
		{
			name: "foreign algorithm",
			err:  token.ErrUnexpectedAlgorithm,
			want: KindMalformedToken,
		},
		{
			name: "expired token",
			err:  token.ErrTokenExpired,
			want: KindTokenExpired,
		},
		{
			name: "invalid signature",
			err:  token.ErrInvalidSignature,
			want: KindInvalidSignature,
		},
		{
			name: "unknown key",
			err:  apikey.ErrKeyNotFound,
			want: KindUnknownCredential,
		},
		{
			name: "revoked key",
			err:  apikey.ErrKeyRevoked,
			want: KindRevokedCredential,
		},
		{
			name: "store failure",
			err:  apikey.NewStoreError("find", errors.New("connection refused")),
			want: KindDependencyUnavailable,
		},
		{
			name: "wrapped expired token",
			err:  WrapAuthError(token.ErrTokenExpired, "token"),
			want: KindTokenExpired,
		},
		{
			name: "wrapped store failure",
			err:  WrapAuthError(apikey.NewStoreError("find", errors.New("timeout")), "apikey"),
			want: KindDependencyUnavailable,
		},
		{
			name: "unclassified error",
			err:  errors.New("something else"),
			want: KindUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestWriteFailure(t *testing.T) {
	t.Parallel()

	t.Run("unauthorized carries challenge", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		WriteFailure(rec, KindTokenExpired)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get(HeaderWWWAuthenticate))
		assert.Equal(t, ContentTypeJSON, rec.Header().Get(HeaderContentType))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "token expired", body["error"])
		assert.Equal(t, "token_expired", body["kind"])
	})

	t.Run("service unavailable has no challenge", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		WriteFailure(rec, KindDependencyUnavailable)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Empty(t, rec.Header().Get(HeaderWWWAuthenticate))
	})

	t.Run("forbidden", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		WriteFailure(rec, KindForbidden)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get(HeaderWWWAuthenticate))
	})
}

func TestAuthErrorWrapping(t *testing.T) {
	t.Parallel()

	err := WrapAuthError(token.ErrInvalidSignature, "token")
	require.Error(t, err)

	assert.True(t, IsAuthError(err))
	assert.Equal(t, "token", AuthErrorStrategy(err))
	assert.ErrorIs(t, err, token.ErrInvalidSignature)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	assert.Nil(t, WrapAuthError(nil, "token"))
	assert.False(t, IsAuthError(errors.New("plain")))
}
