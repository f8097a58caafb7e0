package export

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
)

const requestIDHeader = "x-request-id"

// RequestIDUnaryServerInterceptor propagates a client-supplied request id
// (or mints one) into the context and attaches a request-scoped logger so
// handlers downstream log with the same id.
func RequestIDUnaryServerInterceptor(base logging.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = logging.Noop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if id := firstHeader(ctx, requestIDHeader); id != "" {
			ctx = logging.ContextWithRequestID(ctx, id)
		}
		ctx, reqLog := logging.WithRequestLogger(ctx, base)
		ctx = logging.ContextWithLogger(ctx, reqLog)

		reqLog.Debug(ctx, "handling rpc", logging.String("method", info.FullMethod))
		return handler(ctx, req)
	}
}

func firstHeader(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
