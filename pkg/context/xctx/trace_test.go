package xctx_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/omeyang/xreplay/pkg/context/xctx"
)

func TestWithTraceID(t *testing.T) {
	ctx, err := xctx.WithTraceID(context.Background(), "trace-1")
	if err != nil {
		t.Fatalf("WithTraceID() error = %v", err)
	}
	if got := xctx.TraceID(ctx); got != "trace-1" {
		t.Errorf("TraceID() = %q, want %q", got, "trace-1")
	}
}

func TestNilContext(t *testing.T) {
	//nolint:staticcheck // 测试 nil context 处理
	if _, err := xctx.WithTraceID(nil, "x"); !errors.Is(err, xctx.ErrNilContext) {
		t.Errorf("WithTraceID(nil) error = %v, want ErrNilContext", err)
	}
	//nolint:staticcheck // 测试 nil context 处理
	if got := xctx.RequestID(nil); got != "" {
		t.Errorf("RequestID(nil) = %q, want empty", got)
	}
	//nolint:staticcheck // 测试 nil context 处理
	if _, err := xctx.EnsureTrace(nil); !errors.Is(err, xctx.ErrNilContext) {
		t.Errorf("EnsureTrace(nil) error = %v, want ErrNilContext", err)
	}
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	if _, err := xctx.RequireTraceID(ctx); !errors.Is(err, xctx.ErrMissingTraceID) {
		t.Errorf("RequireTraceID() error = %v, want ErrMissingTraceID", err)
	}
	if _, err := xctx.RequireRequestID(ctx); !errors.Is(err, xctx.ErrMissingRequestID) {
		t.Errorf("RequireRequestID() error = %v, want ErrMissingRequestID", err)
	}

	ctx, _ = xctx.WithRequestID(ctx, "req")
	got, err := xctx.RequireRequestID(ctx)
	if err != nil || got != "req" {
		t.Errorf("RequireRequestID() = (%q, %v), want (req, nil)", got, err)
	}
}

func TestEnsureTrace(t *testing.T) {
	t.Run("补全缺失字段", func(t *testing.T) {
		ctx, err := xctx.EnsureTrace(context.Background())
		if err != nil {
			t.Fatalf("EnsureTrace() error = %v", err)
		}
		if got := xctx.TraceID(ctx); len(got) != xctx.TraceIDSize*2 {
			t.Errorf("TraceID() = %q, want %d hex chars", got, xctx.TraceIDSize*2)
		}
		if got := xctx.SpanID(ctx); len(got) != xctx.SpanIDSize*2 {
			t.Errorf("SpanID() = %q, want %d hex chars", got, xctx.SpanIDSize*2)
		}
		if _, err := uuid.Parse(xctx.RequestID(ctx)); err != nil {
			t.Errorf("RequestID() is not a UUID: %v", err)
		}
	})

	t.Run("保留已有字段", func(t *testing.T) {
		ctx, _ := xctx.WithTraceID(context.Background(), "upstream")
		ctx, err := xctx.EnsureTrace(ctx)
		if err != nil {
			t.Fatalf("EnsureTrace() error = %v", err)
		}
		if got := xctx.TraceID(ctx); got != "upstream" {
			t.Errorf("TraceID() = %q, want upstream", got)
		}
	})
}

func TestAppendTraceAttrs(t *testing.T) {
	ctx, _ := xctx.WithTraceID(context.Background(), "t1")
	ctx, _ = xctx.WithRequestID(ctx, "r1")

	attrs := xctx.AppendTraceAttrs(nil, ctx)
	want := []slog.Attr{
		slog.String(xctx.KeyTraceID, "t1"),
		slog.String(xctx.KeyRequestID, "r1"),
	}
	if len(attrs) != len(want) {
		t.Fatalf("AppendTraceAttrs() len = %d, want %d", len(attrs), len(want))
	}
	for i := range want {
		if !attrs[i].Equal(want[i]) {
			t.Errorf("attrs[%d] = %v, want %v", i, attrs[i], want[i])
		}
	}

	//nolint:staticcheck // 测试 nil context 处理
	if got := xctx.AppendTraceAttrs(nil, nil); got != nil {
		t.Errorf("AppendTraceAttrs(nil ctx) = %v, want nil", got)
	}
}
