package authz

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/avkern/authgate/internal/auth"
)

// RequireScope returns middleware that admits only identities holding
// the given scope. Requirements compose: stacking RequireScope and
// RequireRole middleware checks them in order and the first unsatisfied
// one stops the request.
func RequireScope(gate Gate, scope string) func(http.Handler) http.Handler {
	return requireHTTP(func(ctx context.Context, identity *auth.Identity) error {
		return gate.CheckScope(ctx, identity, scope)
	})
}

// RequireRole returns middleware that admits only identities holding
// the given role.
func RequireRole(gate Gate, role string) func(http.Handler) http.Handler {
	return requireHTTP(func(ctx context.Context, identity *auth.Identity) error {
		return gate.CheckRole(ctx, identity, role)
	})
}

// requireHTTP adapts a gate check into HTTP middleware. A request
// without an identity answers 401; an identity without the requirement
// answers 403. The wrapped handler is never invoked on denial.
func requireHTTP(check func(ctx context.Context, identity *auth.Identity) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.IdentityFromContext(r.Context())

			if err := check(r.Context(), identity); err != nil {
				auth.WriteFailure(w, classify(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UnaryRequireScope returns a unary interceptor that admits only
// identities holding the given scope.
func UnaryRequireScope(gate Gate, scope string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
	) (interface{}, error) {
		identity, _ := auth.IdentityFromContext(ctx)
		if err := gate.CheckScope(ctx, identity, scope); err != nil {
			return nil, toGRPCError(err)
		}
		return handler(ctx, req)
	}
}

// classify maps a gate error onto a response kind.
func classify(err error) auth.Kind {
	if IsNoIdentity(err) {
		return auth.KindUnauthenticated
	}
	return auth.KindForbidden
}

// toGRPCError converts a gate error to a gRPC status.
func toGRPCError(err error) error {
	if IsNoIdentity(err) {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	return status.Error(codes.PermissionDenied, "access denied")
}
