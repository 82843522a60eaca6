package xreplay

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// =============================================================================
// 全局 Manager
//
// 定位：与 GetLogger 配合的简单场景；服务端推荐显式持有 *Manager。
// =============================================================================

var (
	globalManager atomic.Pointer[Manager]
	globalMu      sync.Mutex
)

// Default 返回全局 Manager，首次调用时按环境变量（XREPLAY_ 前缀）创建。
func Default() *Manager {
	if m := globalManager.Load(); m != nil {
		return m
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if m := globalManager.Load(); m != nil {
		return m
	}
	m := defaultManager()
	globalManager.Store(m)
	return m
}

func defaultManager() *Manager {
	cfg, err := ConfigFromEnv()
	if err == nil {
		var m *Manager
		if m, err = NewFromConfig(cfg); err == nil {
			return m
		}
	}
	// 环境变量非法时降级为默认配置，构造不 panic
	fmt.Fprintf(os.Stderr, "xreplay: invalid environment config: %v, using defaults\n", err)
	m, err := New()
	if err != nil {
		panic(err)
	}
	return m
}

// SetDefault 替换全局 Manager，传入 nil 时忽略。
//
// 已创建的 Interceptor 仍绑定原 Manager。
func SetDefault(m *Manager) {
	if m == nil {
		return
	}
	globalManager.Store(m)
}

// resetDefault 重置全局 Manager（仅用于测试）
func resetDefault() {
	globalMu.Lock()
	globalManager.Store(nil)
	globalMu.Unlock()
}

// GetLogger 返回全局 Manager 上以 name 为 origin 的 Interceptor。
func GetLogger(name string) *Interceptor {
	return Default().Logger(name)
}

// GetLoggerFor 返回以类型 T 的名称（如 "orders.Service"）为 origin 的 Interceptor。
func GetLoggerFor[T any]() *Interceptor {
	return LoggerFor[T](Default())
}

// Begin 见 Manager.Begin。
func Begin(ctx context.Context) context.Context {
	return Default().Begin(ctx)
}

// Activate 见 Manager.Activate。
func Activate(ctx context.Context) bool {
	return Default().Activate(ctx)
}

// Reset 见 Manager.Reset。
func Reset(ctx context.Context) {
	Default().Reset(ctx)
}

// IsActive 见 Manager.IsActive。
func IsActive(ctx context.Context) bool {
	return Default().IsActive(ctx)
}

// SetActivateOnException 见 Manager.SetActivateOnException。
func SetActivateOnException(enabled bool) {
	Default().SetActivateOnException(enabled)
}

// ReplayNow 见 Manager.ReplayNow。
func ReplayNow(ctx context.Context) error {
	return Default().ReplayNow(ctx)
}

// Run 见 Manager.Run。
func Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return Default().Run(ctx, fn)
}
