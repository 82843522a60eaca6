package xtrace

import (
	"context"
	"net/http"
	"strings"

	"github.com/omeyang/xreplay/pkg/context/xctx"
)

// HTTP Header 名称
const (
	HeaderTraceID     = "X-Trace-ID"
	HeaderSpanID      = "X-Span-ID"
	HeaderRequestID   = "X-Request-ID"
	HeaderTraceparent = "traceparent"
)

// ExtractFromHTTPHeader 从 HTTP Header 提取追踪信息，traceparent 优先。
func ExtractFromHTTPHeader(h http.Header) TraceInfo {
	if h == nil {
		return TraceInfo{}
	}
	info := TraceInfo{
		TraceID:   strings.TrimSpace(h.Get(HeaderTraceID)),
		SpanID:    strings.TrimSpace(h.Get(HeaderSpanID)),
		RequestID: strings.TrimSpace(h.Get(HeaderRequestID)),
	}
	return info.fromTraceparent(strings.TrimSpace(h.Get(HeaderTraceparent)))
}

// ContextFromHTTPRequest 返回注入了请求追踪信息的 context。
func ContextFromHTTPRequest(r *http.Request, opts ...Option) context.Context {
	cfg := applyOptions(opts)
	return ContextWithTrace(r.Context(), ExtractFromHTTPHeader(r.Header), cfg.autoGenerate)
}

// HTTPMiddleware 返回 HTTP 中间件：从 Header 提取追踪信息注入 context，缺失时自动生成。
func HTTPMiddleware(opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextFromHTTPRequest(r, opts...)))
		})
	}
}

// InjectToRequest 将 ctx 中的追踪信息写入出站请求的 Header。
func InjectToRequest(ctx context.Context, req *http.Request) {
	if req == nil {
		return
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	traceID, spanID, requestID := xctx.TraceID(ctx), xctx.SpanID(ctx), xctx.RequestID(ctx)
	if traceID != "" {
		req.Header.Set(HeaderTraceID, traceID)
	}
	if spanID != "" {
		req.Header.Set(HeaderSpanID, spanID)
	}
	if requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}
	if tp := formatTraceparent(traceID, spanID, ""); tp != "" {
		req.Header.Set(HeaderTraceparent, tp)
	}
}
