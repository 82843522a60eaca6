package xreplay_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xreplay"
)

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

func Example() {
	// 真实 logger 只输出 INFO 及以上，提升 logger 输出全部级别
	real, _, err := xlog.New().SetOutput(os.Stdout).SetFormat("json").
		SetReplaceAttr(dropTime).Build()
	if err != nil {
		return
	}
	elevated, _, err := xlog.New().SetOutput(os.Stdout).SetFormat("json").
		SetLevel(xlog.LevelTrace).SetReplaceAttr(dropTime).Build()
	if err != nil {
		return
	}

	m, err := xreplay.New(
		xreplay.WithBaseLogger(real),
		xreplay.WithElevatedLogger(elevated),
		xreplay.WithActivateOnException(true),
		xreplay.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		return
	}

	err = m.Run(context.Background(), func(ctx context.Context) error {
		m.Logger("orders").Debug(ctx, "loading order")
		return errors.New("order not found")
	})
	fmt.Println("err:", err)
	// Output:
	// {"level":"ERROR","msg":"encountered unexpected error","error":"order not found"}
	// {"level":"WARN","msg":"==== STARTING LOGGING REPLAY ====","entries":2,"elevated_level":"TRACE"}
	// {"level":"DEBUG","msg":"[orders 2024-01-01T00:00:00] loading order"}
	// {"level":"ERROR","msg":"[xreplay 2024-01-01T00:00:00] encountered unexpected error","error":"order not found"}
	// {"level":"INFO","msg":"===== FINISHED LOGGING REPLAY ====="}
	// err: order not found
}

func ExampleManager_Activate() {
	elevated, _, err := xlog.New().SetOutput(os.Stdout).SetFormat("json").
		SetLevel(xlog.LevelTrace).SetReplaceAttr(dropTime).Build()
	if err != nil {
		return
	}
	m, err := xreplay.New(
		xreplay.WithElevatedLogger(elevated),
		xreplay.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		return
	}

	ctx := m.Begin(context.Background())
	defer func() { _ = m.Replay(ctx) }()

	fmt.Println("active:", m.Activate(ctx))
	// Output:
	// active: true
	// {"level":"WARN","msg":"==== STARTING LOGGING REPLAY ====","entries":0,"elevated_level":"TRACE"}
	// {"level":"INFO","msg":"===== FINISHED LOGGING REPLAY ====="}
}
