package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingServerInterceptor logs one line per call with the method, request
// id, status code and duration. Chain it after RequestIDServerInterceptor.
func LoggingServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc call",
			"method", info.FullMethod,
			"request_id", RequestIDFromContext(ctx),
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
