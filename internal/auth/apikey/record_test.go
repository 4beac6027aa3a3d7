package apikey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRawKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		wantPrefix string
		wantOK     bool
	}{
		{
			name:       "well formed key",
			raw:        "ak_abcd1234_deadbeefcafe",
			wantPrefix: "abcd1234",
			wantOK:     true,
		},
		{
			name:       "secret containing underscores",
			raw:        "ak_abcd1234_part_one_two",
			wantPrefix: "abcd1234",
			wantOK:     true,
		},
		{
			name: "empty string",
			raw:  "",
		},
		{
			name: "wrong leading tag",
			raw:  "sk_abcd1234_deadbeef",
		},
		{
			name: "missing secret segment",
			raw:  "ak_abcd1234",
		},
		{
			name: "empty prefix segment",
			raw:  "ak__deadbeef",
		},
		{
			name: "empty secret segment",
			raw:  "ak_abcd1234_",
		},
		{
			name: "bearer token lookalike",
			raw:  "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.c2ln",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prefix, ok := SplitRawKey(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

func TestRecordIsRevoked(t *testing.T) {
	t.Parallel()

	record := &Record{ID: "k1"}
	assert.False(t, record.IsRevoked())

	at := time.Now()
	record.RevokedAt = &at
	assert.True(t, record.IsRevoked())
}

func TestRecordClone(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	original := &Record{
		ID:         "k1",
		OwnerID:    "client-42",
		Prefix:     "abcd1234",
		SecretHash: "hash",
		Scopes:     []string{"read:posts"},
		Roles:      []string{"reader"},
		Metadata:   map[string]string{"env": "prod"},
		RevokedAt:  &at,
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Scopes[0] = "write:posts"
	clone.Roles[0] = "admin"
	clone.Metadata["env"] = "dev"
	*clone.RevokedAt = clone.RevokedAt.Add(time.Hour)

	assert.Equal(t, "read:posts", original.Scopes[0])
	assert.Equal(t, "reader", original.Roles[0])
	assert.Equal(t, "prod", original.Metadata["env"])
	assert.Equal(t, at, *original.RevokedAt)
}

func TestRecordCloneNil(t *testing.T) {
	t.Parallel()

	var record *Record
	assert.Nil(t, record.Clone())
}
