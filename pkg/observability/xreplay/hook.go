package xreplay

import (
	"context"
	"errors"
	"fmt"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
)

// Run 在独立的缓冲区中执行 fn，并保证在每条退出路径上收尾一次。
//
//   - fn 返回错误或 panic 时，若开启了 ActivateOnException，先记录错误并激活；
//   - 随后执行 Replay；
//   - 返回 fn 的原始错误，回放失败时与 *ReplayError 合并（errors.Join）；
//   - fn panic 时在回放后以原始值重新 panic。
func (m *Manager) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if fn == nil {
		return ErrNilFunc
	}
	ctx = m.Begin(ctx)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		m.onUnhandled(ctx, panicError(r))
		if rerr := m.Replay(ctx); rerr != nil {
			m.elevated.Error(withoutBuffer(ctx), "xreplay: replay failed", xlog.Err(rerr))
		}
		panic(r)
	}()

	err = fn(ctx)
	if err != nil {
		m.onUnhandled(ctx, err)
	}
	if rerr := m.Replay(ctx); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
