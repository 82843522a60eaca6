package xreplay

import (
	"context"
	"sync"
)

type bufferKey struct{}

// buffer 单个执行上下文的日志缓冲区。
//
// entries 在首次追加时分配；drain 取走全部记录并恢复到初始状态。
type buffer struct {
	mu           sync.Mutex
	entries      []Record
	active       bool
	max          int
	dropped      int
	fullReported bool
}

func newBuffer(max int, active bool) *buffer {
	return &buffer{max: max, active: active}
}

func bufferFrom(ctx context.Context) *buffer {
	if ctx == nil {
		return nil
	}
	b, _ := ctx.Value(bufferKey{}).(*buffer)
	return b
}

func withBuffer(ctx context.Context, b *buffer) context.Context {
	return context.WithValue(ctx, bufferKey{}, b)
}

// append 追加一条记录。超出上限时丢弃并计数，仅第一次返回 ErrBufferFull。
func (b *buffer) append(r Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.entries) >= b.max {
		b.dropped++
		if b.fullReported {
			return nil
		}
		b.fullReported = true
		return ErrBufferFull
	}
	b.entries = append(b.entries, r)
	return nil
}

func (b *buffer) activate() {
	b.mu.Lock()
	b.active = true
	b.mu.Unlock()
}

func (b *buffer) isActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *buffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *buffer) droppedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *buffer) reset() {
	b.mu.Lock()
	b.resetLocked()
	b.mu.Unlock()
}

func (b *buffer) resetLocked() {
	b.entries = nil
	b.active = false
	b.dropped = 0
	b.fullReported = false
}

// drain 取走全部记录和激活标记，并将缓冲区恢复为空。
func (b *buffer) drain() ([]Record, bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, active, dropped := b.entries, b.active, b.dropped
	b.resetLocked()
	return entries, active, dropped
}
