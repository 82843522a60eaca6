package xreplay

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/omeyang/xreplay/pkg/observability/xtrace"
)

// GRPCUnaryServerInterceptor 返回 gRPC 一元服务端拦截器。
//
// handler 返回的错误是受保护代码的失败；回放失败时与之合并返回。
func (m *Manager) GRPCUnaryServerInterceptor(opts ...MiddlewareOption) grpc.UnaryServerInterceptor {
	cfg := applyMiddlewareOptions(opts)
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = xtrace.ContextFromIncoming(ctx, cfg.traceOptions...)
		activate := cfg.activateFromMetadata(ctx)

		var resp any
		err := m.Run(ctx, func(ctx context.Context) error {
			if activate {
				m.Activate(ctx)
			}
			var herr error
			resp, herr = handler(ctx, req)
			return herr
		})
		return resp, err
	}
}

// GRPCStreamServerInterceptor 返回 gRPC 流式服务端拦截器，整个流共享一个缓冲区。
func (m *Manager) GRPCStreamServerInterceptor(opts ...MiddlewareOption) grpc.StreamServerInterceptor {
	cfg := applyMiddlewareOptions(opts)
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := xtrace.ContextFromIncoming(ss.Context(), cfg.traceOptions...)
		activate := cfg.activateFromMetadata(ctx)

		return m.Run(ctx, func(ctx context.Context) error {
			if activate {
				m.Activate(ctx)
			}
			return handler(srv, xtrace.WrapServerStream(ss, ctx))
		})
	}
}

func (c *middlewareConfig) activateFromMetadata(ctx context.Context) bool {
	if c.activateKey == "" {
		return false
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	return truthy(xtrace.MetadataValue(md, strings.ToLower(c.activateKey)))
}
