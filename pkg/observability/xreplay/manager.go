package xreplay

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xmetrics"
	"github.com/omeyang/xreplay/pkg/observability/xsampling"
)

// componentName 组件名，作为内部 logger 的 origin 与观测属性
const componentName = "xreplay"

type samplerBox struct {
	s xsampling.Sampler
}

// Manager 持有回放策略与提升 logger，并创建缓冲区与 Interceptor。
//
// Manager 可并发使用；SetActivateOnException、Apply 在运行时生效。
type Manager struct {
	elevated       xlog.Logger
	base           xlog.Logger
	observer       xmetrics.Observer
	now            func() time.Time
	onCaptureError func(error)
	override       func(*Config)

	maxEntries          atomic.Int64
	activateOnException atomic.Bool
	sampler             atomic.Pointer[samplerBox]
	noBufferReported    atomic.Bool

	internal *Interceptor
}

// New 创建 Manager。
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		observer: xmetrics.NoopObserver{},
		now:      time.Now,
	}
	m.maxEntries.Store(DefaultMaxEntries)
	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if m.elevated == nil {
		elevated, _, err := xlog.New().SetLevel(xlog.LevelTrace).Build()
		if err != nil {
			return nil, fmt.Errorf("xreplay: build elevated logger: %w", err)
		}
		m.elevated = elevated
	}
	m.internal = m.Wrap(nil, componentName)
	return m, nil
}

// Elevated 返回回放使用的提升 logger。
func (m *Manager) Elevated() xlog.Logger {
	return m.elevated
}

func (m *Manager) baseLogger() xlog.Logger {
	if m.base != nil {
		return m.base
	}
	return xlog.Default()
}

// Wrap 用 Interceptor 包装真实 logger，origin 标识日志来源。
// real 为 nil 时使用 base logger。
func (m *Manager) Wrap(real xlog.Logger, origin string) *Interceptor {
	if real == nil {
		real = m.baseLogger()
	}
	return &Interceptor{m: m, real: real, origin: origin}
}

// Logger 返回以 name 为 origin 的 Interceptor，真实 logger 附带 logger=name 属性。
func (m *Manager) Logger(name string) *Interceptor {
	return m.Wrap(m.baseLogger().With(xlog.Named(name)), name)
}

// LoggerFor 返回以类型 T 的名称为 origin 的 Interceptor。
func LoggerFor[T any](m *Manager) *Interceptor {
	return m.Logger(originOf[T]())
}

func originOf[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Begin 为 ctx 附加一个新的空缓冲区。
//
// 已有缓冲区的 ctx 会得到一个独立的新缓冲区，外层缓冲区不受影响。
// 配置了采样器时，采中的上下文直接处于激活状态。
func (m *Manager) Begin(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	active := false
	if box := m.sampler.Load(); box != nil && box.s != nil {
		active = box.s.ShouldSample(ctx)
	}
	return withBuffer(ctx, newBuffer(int(m.maxEntries.Load()), active))
}

func (m *Manager) setSampler(s xsampling.Sampler) {
	if s == nil {
		m.sampler.Store(nil)
		return
	}
	m.sampler.Store(&samplerBox{s: s})
}

// reportCapture 通知记录失败，不向调用方传播。
func (m *Manager) reportCapture(ctx context.Context, err error) {
	if m.onCaptureError != nil {
		func() {
			defer func() { _ = recover() }()
			m.onCaptureError(err)
		}()
		return
	}
	m.elevated.Warn(withoutBuffer(ctx), "xreplay: capture failed", xlog.Err(err))
}

// withoutBuffer 屏蔽 ctx 中的缓冲区，避免提升 logger 也是 Interceptor 时写回缓冲区。
func withoutBuffer(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	if bufferFrom(ctx) == nil {
		return ctx
	}
	return withBuffer(ctx, nil)
}
