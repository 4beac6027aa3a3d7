package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryInterceptor returns a unary server interceptor that
// authenticates requests through the given authenticator and attaches
// the identity to the handler context.
func UnaryInterceptor(a Authenticator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
	) (interface{}, error) {
		identity, err := a.AuthenticateGRPC(ctx)
		if err != nil {
			return nil, toGRPCError(err)
		}

		ctx = ContextWithIdentity(ctx, identity)
		return handler(ctx, req)
	}
}

// StreamInterceptor returns a stream server interceptor that
// authenticates the stream before the handler runs.
func StreamInterceptor(a Authenticator) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		identity, err := a.AuthenticateGRPC(ctx)
		if err != nil {
			return toGRPCError(err)
		}

		wrapped := &authenticatedServerStream{
			ServerStream: ss,
			ctx:          ContextWithIdentity(ctx, identity),
		}
		return handler(srv, wrapped)
	}
}

// toGRPCError converts an authentication failure to a gRPC status. The
// mapping mirrors the HTTP one: credential problems answer
// Unauthenticated and backend outages answer Unavailable.
func toGRPCError(err error) error {
	kind := Classify(err)
	switch kind {
	case KindForbidden:
		return status.Error(codes.PermissionDenied, kind.Message())
	case KindDependencyUnavailable:
		return status.Error(codes.Unavailable, kind.Message())
	default:
		return status.Error(codes.Unauthenticated, kind.Message())
	}
}

// authenticatedServerStream wraps a grpc.ServerStream with an
// authenticated context.
type authenticatedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the authenticated context.
func (s *authenticatedServerStream) Context() context.Context {
	return s.ctx
}
