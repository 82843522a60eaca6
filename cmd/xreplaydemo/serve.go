package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xreplay/pkg/lifecycle/xrun"
	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xreplay"
)

const (
	defaultAddr            = ":8080"
	defaultActivateHeader  = "X-Replay"
	defaultShutdownTimeout = 10 * time.Second
)

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动演示 HTTP 服务",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "监听地址",
				Value: defaultAddr,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "xreplay 配置文件（YAML/JSON），变更时热加载",
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "真实 logger 级别 (trace/debug/info/warn/error)",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "activate-on-exception",
				Usage: "handler panic 时自动激活回放（覆盖配置文件与环境变量）",
			},
			&cli.StringFlag{
				Name:  "activate-header",
				Usage: "显式激活回放的请求头",
				Value: defaultActivateHeader,
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	logger, cleanup, err := xlog.New().SetLevelString(cmd.String("level")).Build()
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()
	xlog.SetDefault(logger)

	m, err := newManager(cmd, logger)
	if err != nil {
		return err
	}
	xreplay.SetDefault(m)

	if path := cmd.String("config"); path != "" {
		w, err := xreplay.WatchConfig(path, m)
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()
	}

	server := &http.Server{
		Addr:              cmd.String("addr"),
		Handler:           newHandler(m, logger, cmd.String("activate-header")),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info(ctx, "xreplaydemo listening",
		xlog.Component("xreplaydemo"),
		xlog.Operation("serve"),
		slog.String("addr", server.Addr),
	)
	return xrun.RunWithOptions(ctx,
		[]xrun.Option{xrun.WithLogger(logger), xrun.WithName("xreplaydemo")},
		xrun.HTTPServer(server, defaultShutdownTimeout),
	)
}

// newManager 按配置文件或环境变量创建 Manager，命令行开关优先（包括热加载之后）。
func newManager(cmd *cli.Command, logger xlog.Logger) (*xreplay.Manager, error) {
	var (
		cfg xreplay.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = xreplay.LoadConfig(path)
	} else {
		cfg, err = xreplay.ConfigFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("load xreplay config: %w", err)
	}
	opts := []xreplay.Option{xreplay.WithBaseLogger(logger)}
	if cmd.IsSet("activate-on-exception") {
		enabled := cmd.Bool("activate-on-exception")
		cfg.ActivateOnException = enabled
		// 热加载时同样以命令行为准
		opts = append(opts, xreplay.WithConfigOverride(func(c *xreplay.Config) {
			c.ActivateOnException = enabled
		}))
	}
	return xreplay.NewFromConfig(cfg, opts...)
}
