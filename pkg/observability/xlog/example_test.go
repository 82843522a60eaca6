package xlog_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
)

func Example() {
	logger, cleanup, err := xlog.New().
		SetOutput(os.Stdout).
		SetFormat("json").
		SetEnrich(false).
		SetReplaceAttr(func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}).
		Build()
	if err != nil {
		return
	}
	defer func() { _ = cleanup() }()

	logger.Info(context.Background(), "service started", xlog.Component("api"))
	// Output:
	// {"level":"INFO","msg":"service started","component":"api"}
}
