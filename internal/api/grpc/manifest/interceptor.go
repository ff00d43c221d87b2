package manifest

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/release-manifest/internal/logger"
)

// ActorMetadataKey carries "user@host" of the calling client.
const ActorMetadataKey = "x-requested-by"

// UnaryServerInterceptor attaches base to each request context, tagged with
// the method and the calling actor, and logs the outcome.
func UnaryServerInterceptor(base *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		l := base.With("method", info.FullMethod)

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if actor := md.Get(ActorMetadataKey); len(actor) > 0 {
				l = l.With("requested_by", actor[0])
			}
		}

		ctx = logger.ToContext(ctx, l)
		started := time.Now()

		resp, err := handler(ctx, req)
		if err != nil {
			logger.WarnKV(ctx, "Request failed",
				"code", status.Code(err).String(), "duration", time.Since(started), "error", err)

			return nil, err
		}

		logger.DebugKV(ctx, "Request served", "duration", time.Since(started))

		return resp, nil
	}
}

// WithActor returns an outgoing context announcing actor to the server.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, actor)
}
