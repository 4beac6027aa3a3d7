package authz

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/avkern/authgate/internal/auth"
	"github.com/avkern/authgate/internal/observability"
)

// authzTracer is the OTEL tracer used for authorization operations.
var authzTracer = otel.Tracer("authgate/authz")

// Gate checks an authenticated identity against scope and role
// requirements.
type Gate interface {
	// CheckScope verifies that the identity holds the required scope.
	CheckScope(ctx context.Context, identity *auth.Identity, scope string) error

	// CheckRole verifies that the identity holds the required role.
	CheckRole(ctx context.Context, identity *auth.Identity, role string) error

	// CheckAnyScope verifies that the identity holds at least one of
	// the given scopes.
	CheckAnyScope(ctx context.Context, identity *auth.Identity, scopes ...string) error

	// CheckAnyRole verifies that the identity holds at least one of
	// the given roles.
	CheckAnyRole(ctx context.Context, identity *auth.Identity, roles ...string) error
}

// gate implements the Gate interface.
type gate struct {
	logger  observability.Logger
	metrics *Metrics
}

// GateOption is a functional option for the gate.
type GateOption func(*gate)

// WithGateLogger sets the logger.
func WithGateLogger(logger observability.Logger) GateOption {
	return func(g *gate) {
		if logger != nil {
			g.logger = logger.With(observability.String("component", "authz"))
		}
	}
}

// WithGateMetrics sets the metrics.
func WithGateMetrics(metrics *Metrics) GateOption {
	return func(g *gate) {
		g.metrics = metrics
	}
}

// NewGate creates a new authorization gate.
func NewGate(opts ...GateOption) Gate {
	g := &gate{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.metrics == nil {
		g.metrics = NewMetrics("authgate")
	}

	return g
}

// CheckScope implements Gate.
func (g *gate) CheckScope(ctx context.Context, identity *auth.Identity, scope string) error {
	return g.check(ctx, identity, "scope:"+scope, func() bool {
		return identity.HasScope(scope)
	})
}

// CheckRole implements Gate.
func (g *gate) CheckRole(ctx context.Context, identity *auth.Identity, role string) error {
	return g.check(ctx, identity, "role:"+role, func() bool {
		return identity.HasRole(role)
	})
}

// CheckAnyScope implements Gate.
func (g *gate) CheckAnyScope(ctx context.Context, identity *auth.Identity, scopes ...string) error {
	return g.check(ctx, identity, "scope:"+strings.Join(scopes, "|"), func() bool {
		for _, scope := range scopes {
			if identity.HasScope(scope) {
				return true
			}
		}
		return false
	})
}

// CheckAnyRole implements Gate.
func (g *gate) CheckAnyRole(ctx context.Context, identity *auth.Identity, roles ...string) error {
	return g.check(ctx, identity, "role:"+strings.Join(roles, "|"), func() bool {
		return identity.HasAnyRole(roles...)
	})
}

// check runs a single requirement against the identity.
func (g *gate) check(ctx context.Context, identity *auth.Identity, requirement string, satisfied func() bool) error {
	_, span := authzTracer.Start(ctx, "authz.check",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("authz.requirement", requirement)),
	)
	defer span.End()

	if identity == nil {
		span.SetAttributes(attribute.String("authz.result", "no_identity"))
		g.metrics.RecordDecision(requirement, "no_identity")
		return ErrNoIdentity
	}

	span.SetAttributes(attribute.String("authz.subject", identity.Subject))

	if !satisfied() {
		span.SetAttributes(attribute.String("authz.result", "denied"))
		g.metrics.RecordDecision(requirement, "denied")
		g.logger.Debug("authorization denied",
			observability.String("subject", identity.Subject),
			observability.String("requirement", requirement),
		)
		return NewDenialError(identity.Subject, requirement, "missing "+requirement)
	}

	span.SetAttributes(attribute.String("authz.result", "allowed"))
	g.metrics.RecordDecision(requirement, "allowed")
	return nil
}

// Ensure gate implements Gate.
var _ Gate = (*gate)(nil)
