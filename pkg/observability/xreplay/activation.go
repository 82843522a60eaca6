package xreplay

import (
	"context"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
)

// Activate 标记 ctx 的缓冲区在收尾时回放，可重复调用。
// ctx 中没有缓冲区时返回 false。
func (m *Manager) Activate(ctx context.Context) bool {
	b := bufferFrom(ctx)
	if b == nil {
		return false
	}
	b.activate()
	return true
}

// Reset 清空 ctx 的缓冲区并取消激活。
func (m *Manager) Reset(ctx context.Context) {
	if b := bufferFrom(ctx); b != nil {
		b.reset()
	}
}

// IsActive 报告 ctx 的缓冲区是否已激活。
func (m *Manager) IsActive(ctx context.Context) bool {
	b := bufferFrom(ctx)
	return b != nil && b.isActive()
}

// Len 返回 ctx 的缓冲区中的记录数。
func (m *Manager) Len(ctx context.Context) int {
	if b := bufferFrom(ctx); b != nil {
		return b.len()
	}
	return 0
}

// Dropped 返回 ctx 的缓冲区因超出上限丢弃的记录数。
func (m *Manager) Dropped(ctx context.Context) int {
	if b := bufferFrom(ctx); b != nil {
		return b.droppedCount()
	}
	return 0
}

// SetActivateOnException 设置受保护代码失败时是否自动激活，运行时生效。
func (m *Manager) SetActivateOnException(enabled bool) {
	m.activateOnException.Store(enabled)
}

// ActivateOnException 返回当前的自动激活开关。
func (m *Manager) ActivateOnException() bool {
	return m.activateOnException.Load()
}

// onUnhandled 受保护代码失败时调用：开关打开时记录错误并激活。
// 错误通过内部 Interceptor 记录，因此也会出现在回放中。
func (m *Manager) onUnhandled(ctx context.Context, err error) {
	if !m.activateOnException.Load() {
		return
	}
	m.internal.Error(ctx, "encountered unexpected error", xlog.Err(err))
	m.Activate(ctx)
}
