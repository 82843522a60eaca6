//go:generate mockgen -destination=mock_logger_test.go -package=xreplay github.com/omeyang/xreplay/pkg/observability/xlog Logger

// Package xreplay 为每个执行上下文（一次请求）缓存所有日志调用，
// 并在上下文结束时按需通过一个"提升"的 logger 回放。
//
// # 工作方式
//
// 通过 [Manager.Wrap]、[GetLogger] 等获取的 [Interceptor] 实现 xlog.Logger：
// 每次调用先记录到当前 context 的缓冲区，再原样转发给真实 logger。
// 缓冲区不受真实 logger 级别过滤的影响，Debug/Trace 日志即使被抑制也会被记录。
//
// 上下文结束时（[Manager.Replay]）：
//   - 未激活：丢弃缓冲区
//   - 已激活：通过提升 logger 按原顺序重放全部记录，消息前缀为 "[origin 时间戳]"，
//     前后输出 STARTING / FINISHED 标记
//
// 无论是否回放，缓冲区都会被清空并恢复为未激活状态。
//
// # 激活
//
//   - 显式：[Activate]
//   - 异常自动激活：[Manager.SetActivateOnException] 开启后，受保护代码返回错误或 panic 时激活
//   - 采样：[WithSampler]，Begin 时对采中的上下文直接激活
//
// # 生命周期
//
// 缓冲区通过 context 传递，不使用 goroutine 级全局状态：
//
//	err := m.Run(ctx, func(ctx context.Context) error {
//	    log := m.Logger("orders")
//	    log.Debug(ctx, "loading order", slog.String("id", id))
//	    return process(ctx)
//	})
//
// HTTP 与 gRPC 服务使用 [Manager.HTTPMiddleware]、[Manager.GRPCUnaryServerInterceptor]。
//
// 缓冲区只能由 [Manager.Begin]（或 Run 及各中间件）创建：context 不可变，
// 日志调用内部无法把新缓冲区挂到调用方的 ctx 上。未经过 Begin 的 ctx 上的调用
// 只会原样转发、不会被记录，也就不会出现在回放中；这种情况每个 Manager 通过
// [WithOnCaptureError] 回调（默认提升 logger 的 WARN）报告一次 [ErrNoBuffer]。
//
// # 并发
//
// 同一请求内派生的 goroutine 共享 context，因此缓冲区内部加锁；
// 不同请求的缓冲区彼此独立，互不可见。
package xreplay
