package xtrace

import (
	"context"
	"log/slog"
	"strings"

	"github.com/omeyang/xreplay/pkg/context/xctx"
	"github.com/omeyang/xreplay/pkg/observability/xlog"
)

// Option 中间件/拦截器选项，HTTP 和 gRPC 共用。
type Option func(*config)

type config struct {
	autoGenerate bool
}

// WithAutoGenerate 设置是否自动生成缺失的追踪 ID，默认 true。
func WithAutoGenerate(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoGenerate = enabled
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{autoGenerate: true}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// TraceInfo 从传输层提取的追踪信息
type TraceInfo struct {
	TraceID    string
	SpanID     string
	RequestID  string
	TraceFlags string // W3C trace-flags，来自 traceparent
}

// IsEmpty 判断追踪信息是否为空
func (t TraceInfo) IsEmpty() bool {
	return t.TraceID == "" && t.SpanID == "" && t.RequestID == "" && t.TraceFlags == ""
}

// fromTraceparent 解析成功时用 traceparent 覆盖自定义头的值
func (t TraceInfo) fromTraceparent(traceparent string) TraceInfo {
	if traceparent == "" {
		return t
	}
	if traceID, spanID, flags, ok := parseTraceparent(traceparent); ok {
		t.TraceID, t.SpanID, t.TraceFlags = traceID, spanID, flags
	}
	return t
}

// ContextWithTrace 将 info 注入 ctx。
//
// 格式非法的 TraceID/SpanID 被丢弃；autoGenerate 为 true 时补全缺失字段。
func ContextWithTrace(ctx context.Context, info TraceInfo, autoGenerate bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = inject(ctx, xctx.KeyTraceID, strings.ToLower(info.TraceID), isValidTraceID, xctx.WithTraceID)
	ctx = inject(ctx, xctx.KeySpanID, strings.ToLower(info.SpanID), isValidSpanID, xctx.WithSpanID)
	ctx = inject(ctx, xctx.KeyRequestID, info.RequestID, func(string) bool { return true }, xctx.WithRequestID)
	if !autoGenerate {
		return ctx
	}
	ensured, err := xctx.EnsureTrace(ctx)
	if err != nil {
		xlog.Warn(ctx, "xtrace: failed to ensure trace", xlog.Err(err))
		return ctx
	}
	return ensured
}

func inject(
	ctx context.Context,
	name, value string,
	validate func(string) bool,
	with func(context.Context, string) (context.Context, error),
) context.Context {
	if value == "" {
		return ctx
	}
	if !validate(value) {
		xlog.Warn(ctx, "xtrace: invalid "+name+" format, discarding", slog.String(name, value))
		return ctx
	}
	next, err := with(ctx, value)
	if err != nil {
		xlog.Warn(ctx, "xtrace: failed to inject "+name, xlog.Err(err))
		return ctx
	}
	return next
}

// TraceID 从 context 获取 TraceID（代理到 xctx）
func TraceID(ctx context.Context) string {
	return xctx.TraceID(ctx)
}

// RequestID 从 context 获取 RequestID（代理到 xctx）
func RequestID(ctx context.Context) string {
	return xctx.RequestID(ctx)
}

// parseTraceparent 解析 W3C traceparent：{version}-{trace-id}-{parent-id}-{trace-flags}
//
// 未知版本按 version-00 解析前 4 个字段；版本 "ff" 始终无效。
func parseTraceparent(traceparent string) (traceID, spanID, traceFlags string, ok bool) {
	if len(traceparent) < 55 {
		return "", "", "", false
	}
	parts := strings.SplitN(traceparent, "-", 5)
	if len(parts) < 4 {
		return "", "", "", false
	}
	version := parts[0]
	if len(version) != 2 || !isValidHex(version) || version == "ff" {
		return "", "", "", false
	}
	if version == "00" && len(traceparent) != 55 {
		return "", "", "", false
	}
	if !isValidTraceID(parts[1]) || !isValidSpanID(parts[2]) || !isValidTraceFlags(parts[3]) {
		return "", "", "", false
	}
	return strings.ToLower(parts[1]), strings.ToLower(parts[2]), strings.ToLower(parts[3]), true
}

// formatTraceparent 生成小写的 version-00 traceparent，ID 无效时返回空字符串
func formatTraceparent(traceID, spanID, traceFlags string) string {
	if !isValidTraceID(traceID) || !isValidSpanID(spanID) {
		return ""
	}
	if !isValidTraceFlags(traceFlags) {
		traceFlags = "00"
	}
	return "00-" + strings.ToLower(traceID) + "-" + strings.ToLower(spanID) + "-" + strings.ToLower(traceFlags)
}

func isValidTraceFlags(flags string) bool {
	return len(flags) == 2 && isValidHex(flags)
}

func isValidHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// isValidTraceID 32 位十六进制，非全零
func isValidTraceID(id string) bool {
	return len(id) == 2*xctx.TraceIDSize && isValidHex(id) && strings.Trim(id, "0") != ""
}

// isValidSpanID 16 位十六进制，非全零
func isValidSpanID(id string) bool {
	return len(id) == 2*xctx.SpanIDSize && isValidHex(id) && strings.Trim(id, "0") != ""
}
