package xtrace

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/omeyang/xreplay/pkg/context/xctx"
)

// Metadata Key 名称（gRPC 惯例：小写加连字符）
const (
	MetaTraceID     = "x-trace-id"
	MetaSpanID      = "x-span-id"
	MetaRequestID   = "x-request-id"
	MetaTraceparent = "traceparent"
)

// ExtractFromMetadata 从 gRPC Metadata 提取追踪信息，traceparent 优先。
func ExtractFromMetadata(md metadata.MD) TraceInfo {
	if md == nil {
		return TraceInfo{}
	}
	info := TraceInfo{
		TraceID:   MetadataValue(md, MetaTraceID),
		SpanID:    MetadataValue(md, MetaSpanID),
		RequestID: MetadataValue(md, MetaRequestID),
	}
	return info.fromTraceparent(MetadataValue(md, MetaTraceparent))
}

// MetadataValue 返回 key 的第一个值（去除首尾空白），不存在返回空字符串。
func MetadataValue(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// ContextFromIncoming 返回注入了 incoming metadata 追踪信息的 context。
func ContextFromIncoming(ctx context.Context, opts ...Option) context.Context {
	cfg := applyOptions(opts)
	md, _ := metadata.FromIncomingContext(ctx)
	return ContextWithTrace(ctx, ExtractFromMetadata(md), cfg.autoGenerate)
}

// GRPCUnaryServerInterceptor 返回一元服务端拦截器：提取追踪信息注入 context。
func GRPCUnaryServerInterceptor(opts ...Option) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(ContextFromIncoming(ctx, opts...), req)
	}
}

// GRPCStreamServerInterceptor 返回流式服务端拦截器：提取追踪信息注入 context。
func GRPCStreamServerInterceptor(opts ...Option) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, WrapServerStream(ss, ContextFromIncoming(ss.Context(), opts...)))
	}
}

// WrapServerStream 返回 Context() 为 ctx 的 ServerStream。
func WrapServerStream(ss grpc.ServerStream, ctx context.Context) grpc.ServerStream {
	return &wrappedServerStream{ServerStream: ss, ctx: ctx}
}

type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// InjectToOutgoingContext 将 ctx 中的追踪信息写入 outgoing metadata。
func InjectToOutgoingContext(ctx context.Context) context.Context {
	traceID, spanID, requestID := xctx.TraceID(ctx), xctx.SpanID(ctx), xctx.RequestID(ctx)
	kv := make([]string, 0, 8)
	if traceID != "" {
		kv = append(kv, MetaTraceID, traceID)
	}
	if spanID != "" {
		kv = append(kv, MetaSpanID, spanID)
	}
	if requestID != "" {
		kv = append(kv, MetaRequestID, requestID)
	}
	if tp := formatTraceparent(traceID, spanID, ""); tp != "" {
		kv = append(kv, MetaTraceparent, tp)
	}
	if len(kv) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

// GRPCUnaryClientInterceptor 返回客户端一元拦截器：将追踪信息传播到下游。
func GRPCUnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(InjectToOutgoingContext(ctx), method, req, reply, cc, opts...)
	}
}
