package apikey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		algorithm string
		wantName  string
		wantErr   bool
	}{
		{
			name:      "empty selects sha256",
			algorithm: "",
			wantName:  HashAlgSHA256,
		},
		{
			name:      "sha256",
			algorithm: HashAlgSHA256,
			wantName:  HashAlgSHA256,
		},
		{
			name:      "pbkdf2",
			algorithm: HashAlgPBKDF2,
			wantName:  HashAlgPBKDF2,
		},
		{
			name:      "unsupported algorithm",
			algorithm: "bcrypt",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, err := NewHasher(tt.algorithm)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, h.Name())
		})
	}
}

func TestHasherDeterministic(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{HashAlgSHA256, HashAlgPBKDF2} {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()

			h, err := NewHasher(alg)
			require.NoError(t, err)

			first := h.Hash("abcd1234", "ak_abcd1234_secret")
			second := h.Hash("abcd1234", "ak_abcd1234_secret")
			assert.Equal(t, first, second, "same input must hash identically")
			assert.NotEmpty(t, first)
		})
	}
}

func TestHasherPrefixActsAsSalt(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{HashAlgSHA256, HashAlgPBKDF2} {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()

			h, err := NewHasher(alg)
			require.NoError(t, err)

			a := h.Hash("prefix-a", "same-secret")
			b := h.Hash("prefix-b", "same-secret")
			assert.NotEqual(t, a, b)
		})
	}
}
