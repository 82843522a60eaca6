// xreplaydemo 演示 xreplay 在 HTTP 服务中的用法。
//
// 用法:
//
//	xreplaydemo serve [--addr :8080] [--config xreplay.yaml] [--level info]
//	                  [--activate-on-exception] [--activate-header X-Replay]
//
// 路由:
//
//	/hello   正常请求：DEBUG 日志被真实 logger 抑制，不回放
//	/debug   显式激活：请求结束时回放本请求的全部日志
//	/boom    handler panic：开启 --activate-on-exception 时自动激活并回放
//
// 任意请求带上 "X-Replay: true" 头也会激活回放。
//
// 退出码:
//
//	0: 正常退出（包括收到 SIGINT/SIGTERM）
//	1: 启动或运行失败
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xreplay/pkg/lifecycle/xrun"
)

// 版本信息（可通过 -ldflags 注入）
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xreplaydemo",
		Usage:   "xreplay 日志回放演示服务",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Commands: []*cli.Command{
			createServeCommand(),
		},
		DefaultCommand: "serve",
	}
}

func run(args []string) int {
	if err := createApp().Run(context.Background(), args); err != nil {
		if errors.Is(err, xrun.ErrSignal) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
