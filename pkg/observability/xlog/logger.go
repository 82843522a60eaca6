package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// 编译时接口检查
var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

const (
	// initialStackSize 初始堆栈缓冲区大小
	initialStackSize = 4096
	// maxStackSize 最大堆栈缓冲区大小（64KB）
	maxStackSize = 64 * 1024
)

// stackPool 堆栈缓冲区池
var stackPool = sync.Pool{
	New: func() any {
		buf := make([]byte, initialStackSize)
		return &buf
	},
}

// loggerState 派生 logger 共享的可变状态
type loggerState struct {
	levelVar       *slog.LevelVar
	onError        func(error)
	errorCount     atomic.Uint64
	inErrorHandler atomic.Bool
	addSource      bool
}

// xlogger Logger 接口的实现
type xlogger struct {
	handler slog.Handler
	state   *loggerState
}

func newLogger(handler slog.Handler, state *loggerState) *xlogger {
	return &xlogger{handler: handler, state: state}
}

// logWithSkip 通用日志方法
// extraSkip: 额外需要跳过的栈帧数（用于全局函数等间接调用场景）
//
//go:noinline
func (l *xlogger) logWithSkip(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr, extraSkip int) {
	if !l.handler.Enabled(ctx, level) {
		return
	}
	l.emit(ctx, level, msg, attrs, l.callerPC(extraSkip))
}

// callerPC 仅在启用 AddSource 时才捕获调用者位置
// 基础 skip=3: Callers(0) → callerPC(1) → logWithSkip/stackWithSkip(2) → 跳到(3)。
// 实例路径传 1：→ Info 等方法(3) → 业务代码(4)；
// 全局路径传 2：→ globalLog(3) → xlog.Info(4) → 业务代码(5)。
//
//go:noinline
func (l *xlogger) callerPC(extraSkip int) uintptr {
	if !l.state.addSource {
		return 0
	}
	var pcs [1]uintptr
	runtime.Callers(3+extraSkip, pcs[:])
	return pcs[0]
}

func (l *xlogger) emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr, pc uintptr) {
	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

// handleError 处理内部错误（Handler.Handle 失败）
//
// 内置递归保护：onError 回调内部再触发日志错误时直接跳过。
// 回调 panic 被隔离，计入错误计数，不扩散到业务调用链。
func (l *xlogger) handleError(err error) {
	l.state.errorCount.Add(1)
	if l.state.onError == nil {
		return
	}
	if l.state.inErrorHandler.CompareAndSwap(false, true) {
		defer l.state.inErrorHandler.Store(false)
		l.safeOnError(err)
	}
}

func (l *xlogger) safeOnError(err error) {
	defer func() {
		if r := recover(); r != nil {
			l.state.errorCount.Add(1)
		}
	}()
	l.state.onError(err)
}

// Trace 记录 Trace 级别日志
func (l *xlogger) Trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.Level(LevelTrace), msg, attrs, 1)
}

// Debug 记录 Debug 级别日志
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelDebug, msg, attrs, 1)
}

// Info 记录 Info 级别日志
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelInfo, msg, attrs, 1)
}

// Warn 记录 Warn 级别日志
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelWarn, msg, attrs, 1)
}

// Error 记录 Error 级别日志
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelError, msg, attrs, 1)
}

// Stack 记录带完整堆栈的错误日志
//
//go:noinline
func (l *xlogger) Stack(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.stackWithSkip(ctx, msg, attrs, 1)
}

//go:noinline
func (l *xlogger) stackWithSkip(ctx context.Context, msg string, attrs []slog.Attr, extraSkip int) {
	if !l.handler.Enabled(ctx, slog.LevelError) {
		return
	}

	bufp, ok := stackPool.Get().(*[]byte)
	if !ok {
		buf := make([]byte, initialStackSize)
		bufp = &buf
	}
	buf := *bufp
	n := runtime.Stack(buf, false)
	for n == len(buf) && len(buf) < maxStackSize {
		buf = make([]byte, min(len(buf)*2, maxStackSize))
		n = runtime.Stack(buf, false)
	}
	// 必须在 Put 前完成拷贝：未扩展时 buf 与 *bufp 共享底层数组
	stack := string(buf[:n])
	stackPool.Put(bufp)

	withStack := make([]slog.Attr, 0, len(attrs)+1)
	withStack = append(withStack, attrs...)
	withStack = append(withStack, slog.String(KeyStack, stack))
	l.emit(ctx, slog.LevelError, msg, withStack, l.callerPC(extraSkip))
}

// With 返回带额外属性的派生 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return newLogger(l.handler.WithAttrs(attrs), l.state)
}

// WithGroup 返回带分组的派生 Logger
func (l *xlogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	return newLogger(l.handler.WithGroup(name), l.state)
}

// SetLevel 动态设置日志级别
func (l *xlogger) SetLevel(level Level) {
	l.state.levelVar.Set(slog.Level(level))
}

// GetLevel 获取当前日志级别
func (l *xlogger) GetLevel() Level {
	return Level(l.state.levelVar.Level())
}

// Enabled 检查指定级别是否启用
func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	return l.handler.Enabled(ctx, slog.Level(level))
}
