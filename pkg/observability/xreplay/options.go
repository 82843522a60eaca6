package xreplay

import (
	"time"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xmetrics"
	"github.com/omeyang/xreplay/pkg/observability/xsampling"
)

// DefaultMaxEntries 单个上下文默认最多缓存的记录数
const DefaultMaxEntries = 10000

// Option 配置 Manager。
type Option func(*Manager) error

// WithElevatedLogger 设置回放使用的提升 logger。
//
// 默认是输出到 stderr、级别为 Trace 的 xlog logger。
// 提升 logger 自身的级别仍然决定最终输出哪些记录。
func WithElevatedLogger(l xlog.Logger) Option {
	return func(m *Manager) error {
		if l != nil {
			m.elevated = l
		}
		return nil
	}
}

// WithBaseLogger 设置 Logger(name) 包装的真实 logger，默认 xlog.Default()。
func WithBaseLogger(l xlog.Logger) Option {
	return func(m *Manager) error {
		if l != nil {
			m.base = l
		}
		return nil
	}
}

// WithMaxEntries 设置单个上下文最多缓存的记录数。
func WithMaxEntries(n int) Option {
	return func(m *Manager) error {
		if n <= 0 {
			return ErrInvalidMaxEntries
		}
		m.maxEntries.Store(int64(n))
		return nil
	}
}

// WithActivateOnException 设置受保护代码失败时是否自动激活回放。
func WithActivateOnException(enabled bool) Option {
	return func(m *Manager) error {
		m.activateOnException.Store(enabled)
		return nil
	}
}

// WithSampler 设置 Begin 时的激活采样器，采中的上下文直接处于激活状态。
func WithSampler(s xsampling.Sampler) Option {
	return func(m *Manager) error {
		m.setSampler(s)
		return nil
	}
}

// WithObserver 设置回放的观测器（span + 指标），默认不观测。
func WithObserver(o xmetrics.Observer) Option {
	return func(m *Manager) error {
		if o != nil {
			m.observer = o
		}
		return nil
	}
}

// WithClock 设置记录时间戳的时钟，主要用于测试。
func WithClock(now func() time.Time) Option {
	return func(m *Manager) error {
		if now != nil {
			m.now = now
		}
		return nil
	}
}

// WithOnCaptureError 设置记录失败（ErrNoBuffer、ErrBufferFull）的通知回调。
//
// 默认通过提升 logger 输出一条 WARN。回调 panic 会被隔离。
func WithOnCaptureError(fn func(error)) Option {
	return func(m *Manager) error {
		m.onCaptureError = fn
		return nil
	}
}

// WithConfigOverride 设置 Apply 前对配置的改写，使命令行参数等来源优先于配置文件。
//
// NewFromConfig 与 WatchConfig 的每次热加载都会经过该改写。
func WithConfigOverride(fn func(*Config)) Option {
	return func(m *Manager) error {
		if fn == nil {
			return ErrNilFunc
		}
		m.override = fn
		return nil
	}
}
