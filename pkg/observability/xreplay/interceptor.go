package xreplay

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
)

// Interceptor 包装真实 logger：每次调用先记录到 ctx 的缓冲区，再原样转发。
//
// Interceptor 实现 xlog.Logger，可用在任何需要 xlog.Logger 的地方。
// 记录与真实 logger 的级别无关，被真实 logger 过滤掉的调用同样会被记录。
type Interceptor struct {
	m      *Manager
	real   xlog.Logger
	origin string
	scope  []scopeOp
}

var _ xlog.Logger = (*Interceptor)(nil)

// Origin 返回构造时确定的来源标识。
func (i *Interceptor) Origin() string {
	return i.origin
}

// Unwrap 返回被包装的真实 logger。
func (i *Interceptor) Unwrap() xlog.Logger {
	return i.real
}

func (i *Interceptor) Trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	i.capture(ctx, KindTrace, msg, attrs)
	i.real.Trace(ctx, msg, attrs...)
}

func (i *Interceptor) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	i.capture(ctx, KindDebug, msg, attrs)
	i.real.Debug(ctx, msg, attrs...)
}

func (i *Interceptor) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	i.capture(ctx, KindInfo, msg, attrs)
	i.real.Info(ctx, msg, attrs...)
}

func (i *Interceptor) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	i.capture(ctx, KindWarn, msg, attrs)
	i.real.Warn(ctx, msg, attrs...)
}

func (i *Interceptor) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	i.capture(ctx, KindError, msg, attrs)
	i.real.Error(ctx, msg, attrs...)
}

// Stack 记录后转发；回放时提升 logger 输出的是回放时刻的调用栈。
func (i *Interceptor) Stack(ctx context.Context, msg string, attrs ...slog.Attr) {
	i.capture(ctx, KindStack, msg, attrs)
	i.real.Stack(ctx, msg, attrs...)
}

// With 返回带额外属性的派生 Interceptor，origin 不变。
func (i *Interceptor) With(attrs ...slog.Attr) xlog.Logger {
	if len(attrs) == 0 {
		return i
	}
	return i.derive(i.real.With(attrs...), scopeOp{attrs: slices.Clone(attrs)})
}

// WithGroup 返回带分组的派生 Interceptor，空名称返回自身。
func (i *Interceptor) WithGroup(name string) xlog.Logger {
	if name == "" {
		return i
	}
	return i.derive(i.real.WithGroup(name), scopeOp{group: name})
}

func (i *Interceptor) derive(real xlog.Logger, op scopeOp) *Interceptor {
	scope := make([]scopeOp, 0, len(i.scope)+1)
	scope = append(scope, i.scope...)
	scope = append(scope, op)
	return &Interceptor{m: i.m, real: real, origin: i.origin, scope: scope}
}

// capture 记录一次调用。任何失败只通知旁路，不影响调用方。
func (i *Interceptor) capture(ctx context.Context, kind Kind, msg string, attrs []slog.Attr) {
	defer func() {
		if r := recover(); r != nil {
			i.m.reportCapture(ctx, fmt.Errorf("xreplay: capture panic: %v", r))
		}
	}()

	b := bufferFrom(ctx)
	if b == nil {
		if i.m.noBufferReported.CompareAndSwap(false, true) {
			i.m.reportCapture(ctx, ErrNoBuffer)
		}
		return
	}
	err := b.append(Record{
		Time:    i.m.now(),
		Origin:  i.origin,
		Kind:    kind,
		Message: msg,
		Attrs:   slices.Clone(attrs),
		scope:   i.scope,
	})
	if err != nil {
		i.m.reportCapture(ctx, err)
	}
}
