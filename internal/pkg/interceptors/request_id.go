package interceptors

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/ecommerce-basket/internal/pkg/interceptors/constants"
)

// WithRequestID stores id in ctx for later propagation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

// RequestIDFromContext looks at the context value first and then at incoming
// gRPC metadata. It returns "" when neither carries an id.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && id != "" {
		return id
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(constants.HeaderXRequestId); len(ids) > 0 {
			return ids[0]
		}
	}
	return ""
}

// RequestIDServerInterceptor copies x-request-id from incoming metadata into the
// context, minting one when the caller sent none.
func RequestIDServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		id := RequestIDFromContext(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		return handler(WithRequestID(ctx, id), req)
	}
}

// RequestIDClientInterceptor forwards the caller's request id as outgoing
// metadata so both sides of a call log the same id.
func RequestIDClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if id := RequestIDFromContext(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, constants.HeaderXRequestId, id)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
