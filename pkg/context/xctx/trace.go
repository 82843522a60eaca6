package xctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

const (
	// TraceIDSize W3C 规范: 128-bit (16 bytes) -> 32 hex chars
	TraceIDSize = 16

	// SpanIDSize W3C 规范: 64-bit (8 bytes) -> 16 hex chars
	SpanIDSize = 8
)

// 日志属性 Key，遵循 OpenTelemetry 语义约定（下划线分隔）
const (
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"
)

const (
	keyTraceID   = contextKey("xctx:trace_id")
	keySpanID    = contextKey("xctx:span_id")
	keyRequestID = contextKey("xctx:request_id")
)

// WithTraceID 将 trace ID 注入 context。ctx 为 nil 时返回 ErrNilContext。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	return withString(ctx, keyTraceID, traceID)
}

// TraceID 从 context 提取 trace ID，不存在返回空字符串
func TraceID(ctx context.Context) string {
	return stringValue(ctx, keyTraceID)
}

// WithSpanID 将 span ID 注入 context。ctx 为 nil 时返回 ErrNilContext。
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	return withString(ctx, keySpanID, spanID)
}

// SpanID 从 context 提取 span ID，不存在返回空字符串
func SpanID(ctx context.Context) string {
	return stringValue(ctx, keySpanID)
}

// WithRequestID 将 request ID 注入 context。ctx 为 nil 时返回 ErrNilContext。
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	return withString(ctx, keyRequestID, requestID)
}

// RequestID 从 context 提取 request ID，不存在返回空字符串
func RequestID(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

// RequireTraceID 从 context 获取 trace ID，不存在则返回 ErrMissingTraceID。
func RequireTraceID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	if v := TraceID(ctx); v != "" {
		return v, nil
	}
	return "", ErrMissingTraceID
}

// RequireRequestID 从 context 获取 request ID，不存在则返回 ErrMissingRequestID。
func RequireRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	if v := RequestID(ctx); v != "" {
		return v, nil
	}
	return "", ErrMissingRequestID
}

// GenerateTraceID 生成符合 W3C Trace Context 规范的 TraceID（32 位小写十六进制）。
//
// W3C 规范禁止全零 ID，出现时重新生成。熵源不可用属于系统级故障，直接 panic。
func GenerateTraceID() string {
	return randomHex(TraceIDSize)
}

// GenerateSpanID 生成符合 W3C Trace Context 规范的 SpanID（16 位小写十六进制）。
func GenerateSpanID() string {
	return randomHex(SpanIDSize)
}

// GenerateRequestID 生成 RequestID（UUID v4 字符串）。
func GenerateRequestID() string {
	return uuid.NewString()
}

// EnsureTrace 确保 context 中存在 TraceID、SpanID、RequestID。
//
// 已存在的字段原样保留，仅补全缺失的字段。适用于请求入口。
// ctx 为 nil 时返回 ErrNilContext。
func EnsureTrace(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if TraceID(ctx) == "" {
		ctx = context.WithValue(ctx, keyTraceID, GenerateTraceID())
	}
	if SpanID(ctx) == "" {
		ctx = context.WithValue(ctx, keySpanID, GenerateSpanID())
	}
	if RequestID(ctx) == "" {
		ctx = context.WithValue(ctx, keyRequestID, GenerateRequestID())
	}
	return ctx, nil
}

func withString(ctx context.Context, key contextKey, v string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, v), nil
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func randomHex(size int) string {
	buf := make([]byte, size)
	for {
		if _, err := rand.Read(buf); err != nil {
			panic("xctx: crypto/rand.Read failed: " + err.Error())
		}
		for _, b := range buf {
			if b != 0 {
				return hex.EncodeToString(buf)
			}
		}
	}
}
