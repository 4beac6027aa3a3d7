package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/avkern/authgate/internal/observability"
)

// authTracer is the OTEL tracer used for authentication operations.
var authTracer = otel.Tracer("authgate/auth")

// Authenticator resolves incoming requests to identities by running the
// configured strategies in order.
type Authenticator interface {
	// Authenticate authenticates an HTTP request.
	Authenticate(r *http.Request) (*Identity, error)

	// AuthenticateGRPC authenticates a gRPC request from its metadata.
	AuthenticateGRPC(ctx context.Context) (*Identity, error)

	// HTTPMiddleware returns an HTTP middleware that authenticates the
	// request and attaches the identity to its context.
	HTTPMiddleware() func(http.Handler) http.Handler
}

// authenticator implements the Authenticator interface.
type authenticator struct {
	config     *Config
	strategies []Strategy
	logger     observability.Logger
	metrics    *Metrics
}

// AuthenticatorOption is a functional option for the authenticator.
type AuthenticatorOption func(*authenticator)

// WithAuthenticatorLogger sets the logger.
func WithAuthenticatorLogger(logger observability.Logger) AuthenticatorOption {
	return func(a *authenticator) {
		if logger != nil {
			a.logger = logger.With(observability.String("component", "auth"))
		}
	}
}

// WithAuthenticatorMetrics sets the metrics.
func WithAuthenticatorMetrics(metrics *Metrics) AuthenticatorOption {
	return func(a *authenticator) {
		a.metrics = metrics
	}
}

// NewAuthenticator creates a new authenticator dispatching to the given
// strategies. Strategies are tried in the order given; the first one
// that finds and verifies a credential decides the identity.
func NewAuthenticator(config *Config, strategies []Strategy, opts ...AuthenticatorOption) (Authenticator, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Enabled && len(strategies) == 0 {
		return nil, errors.New("at least one strategy is required")
	}

	a := &authenticator{
		config:     config,
		strategies: strategies,
		logger:     observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.metrics == nil {
		a.metrics = NewMetrics("authgate")
	}

	return a, nil
}

// Authenticate authenticates an HTTP request.
func (a *authenticator) Authenticate(r *http.Request) (*Identity, error) {
	ctx, span := authTracer.Start(r.Context(), "auth.authenticate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		),
	)
	defer span.End()

	if !a.config.Enabled {
		span.SetAttributes(attribute.String("auth.result", "disabled"))
		return AnonymousIdentity(), nil
	}
	if a.config.ShouldSkipPath(r.URL.Path) {
		span.SetAttributes(attribute.String("auth.result", "skipped"))
		return AnonymousIdentity(), nil
	}

	identity, err := a.dispatch(ctx, "http", func(s Strategy) (*Credentials, error) {
		return s.Extract(r)
	})
	if err != nil {
		span.SetAttributes(attribute.String("auth.result", string(Classify(err))))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("auth.result", "success"),
		attribute.String("auth.strategy", string(identity.AuthType)),
		attribute.String("auth.subject", identity.Subject),
	)
	return identity, nil
}

// AuthenticateGRPC authenticates a gRPC request from its metadata.
func (a *authenticator) AuthenticateGRPC(ctx context.Context) (*Identity, error) {
	ctx, span := authTracer.Start(ctx, "auth.authenticate",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	if !a.config.Enabled {
		span.SetAttributes(attribute.String("auth.result", "disabled"))
		return AnonymousIdentity(), nil
	}

	identity, err := a.dispatch(ctx, "grpc", func(s Strategy) (*Credentials, error) {
		return s.ExtractGRPC(ctx)
	})
	if err != nil {
		span.SetAttributes(attribute.String("auth.result", string(Classify(err))))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("auth.result", "success"),
		attribute.String("auth.strategy", string(identity.AuthType)),
	)
	return identity, nil
}

// dispatch runs the strategies in order. A strategy whose credential is
// absent is skipped; a strategy whose credential is present but invalid
// records the failure and lets later strategies try. The first success
// wins. When nothing succeeds, the most significant recorded failure is
// returned: a backend outage outranks a bad credential, which outranks
// having seen no credentials at all.
func (a *authenticator) dispatch(ctx context.Context, transport string, extract func(Strategy) (*Credentials, error)) (*Identity, error) {
	start := time.Now()

	var lastErr error
	var lastStrategy string

	for _, strategy := range a.strategies {
		creds, err := extract(strategy)
		if err != nil {
			continue
		}

		identity, err := strategy.Authenticate(ctx, creds.Value)
		if err == nil {
			a.metrics.RecordRequest(transport, strategy.Name(), "success", time.Since(start))
			return identity, nil
		}

		a.logger.Debug("strategy rejected credential",
			observability.String("strategy", strategy.Name()),
			observability.String("source", creds.Source),
			observability.Error(err),
		)

		if lastErr == nil || outranks(err, lastErr) {
			lastErr = err
			lastStrategy = strategy.Name()
		}
	}

	if lastErr == nil {
		if a.config.AllowAnonymous {
			return AnonymousIdentity(), nil
		}
		lastErr = ErrNoCredentials
		lastStrategy = "none"
	}

	kind := Classify(lastErr)
	a.metrics.RecordRequest(transport, lastStrategy, "failure", time.Since(start))
	a.metrics.RecordFailure(lastStrategy, kind)

	return nil, lastErr
}

// outranks reports whether err should displace prev as the reported
// failure. Backend outages always surface over credential problems so
// a 503 is never masked by a 401.
func outranks(err, prev error) bool {
	if Classify(err) == KindDependencyUnavailable {
		return true
	}
	return Classify(prev) != KindDependencyUnavailable
}

// HTTPMiddleware returns an HTTP middleware for authentication.
func (a *authenticator) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := a.Authenticate(r)
			if err != nil {
				a.handleAuthError(w, r, err)
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// handleAuthError renders an authentication failure.
func (a *authenticator) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	kind := Classify(err)
	a.logger.Warn("authentication failed",
		observability.String("path", r.URL.Path),
		observability.String("method", r.Method),
		observability.String("kind", string(kind)),
		observability.Error(err),
	)
	WriteFailure(w, kind)
}

// Ensure authenticator implements Authenticator.
var _ Authenticator = (*authenticator)(nil)
