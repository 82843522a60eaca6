// Package xrun 管理服务进程的并发运行与协调关闭。
//
// 基于 errgroup + context：任一服务返回错误或收到系统信号时，
// 所有服务都会收到取消信号并优雅退出。
//
//	err := xrun.Run(ctx, xrun.HTTPServer(srv, 10*time.Second))
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常的信号退出
//	}
package xrun
