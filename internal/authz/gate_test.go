package authz

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/avkern/authgate/internal/auth"
)

func newTestGate() Gate {
	return NewGate(WithGateMetrics(NewMetricsWithRegisterer("test", prometheus.NewRegistry())))
}

func TestGateCheckScope(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	ctx := context.Background()

	identity := &auth.Identity{
		Subject: "client-42",
		Scopes:  []string{"read:posts", "read:comments"},
	}

	assert.NoError(t, gate.CheckScope(ctx, identity, "read:posts"))

	err := gate.CheckScope(ctx, identity, "write:posts")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.True(t, IsAccessDenied(err))

	var denial *DenialError
	assert.ErrorAs(t, err, &denial)
	assert.Equal(t, "client-42", denial.Subject)
	assert.Equal(t, "scope:write:posts", denial.Requirement)
}

func TestGateCheckRole(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	ctx := context.Background()

	identity := &auth.Identity{
		Subject: "user-1",
		Roles:   []string{"reader"},
	}

	assert.NoError(t, gate.CheckRole(ctx, identity, "reader"))
	assert.ErrorIs(t, gate.CheckRole(ctx, identity, "admin"), ErrAccessDenied)
}

func TestGateCheckAnyScope(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	ctx := context.Background()

	identity := &auth.Identity{
		Subject: "client-42",
		Scopes:  []string{"read:posts"},
	}

	assert.NoError(t, gate.CheckAnyScope(ctx, identity, "write:posts", "read:posts"))
	assert.ErrorIs(t, gate.CheckAnyScope(ctx, identity, "write:posts", "admin"), ErrAccessDenied)
	assert.ErrorIs(t, gate.CheckAnyScope(ctx, nil, "read:posts"), ErrNoIdentity)
}

func TestGateCheckAnyRole(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	ctx := context.Background()

	identity := &auth.Identity{
		Subject: "user-1",
		Roles:   []string{"editor"},
	}

	assert.NoError(t, gate.CheckAnyRole(ctx, identity, "admin", "editor"))

	err := gate.CheckAnyRole(ctx, identity, "admin", "owner")
	assert.ErrorIs(t, err, ErrAccessDenied)

	var denial *DenialError
	assert.ErrorAs(t, err, &denial)
	assert.Equal(t, "role:admin|owner", denial.Requirement)
}

func TestGateNilIdentity(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	ctx := context.Background()

	err := gate.CheckScope(ctx, nil, "read:posts")
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.True(t, IsNoIdentity(err))
	assert.False(t, IsAccessDenied(err))
}

func TestGateEmptyScopes(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	identity := &auth.Identity{Subject: "user-1"}

	assert.ErrorIs(t, gate.CheckScope(context.Background(), identity, "read:posts"), ErrAccessDenied)
}
