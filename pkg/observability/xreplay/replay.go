package xreplay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xmetrics"
)

// 回放边界标记
const (
	StartMarker  = "==== STARTING LOGGING REPLAY ===="
	FinishMarker = "===== FINISHED LOGGING REPLAY ====="
)

// 标记属性 key
const (
	keyEntries       = "entries"
	keyDropped       = "dropped"
	keyElevatedLevel = "elevated_level"
)

// Replay 收尾 ctx 的缓冲区。
//
// 未激活时丢弃全部记录；激活时按记录顺序通过提升 logger 回放，
// 每条消息改写为 "[origin 时间戳] message"，属性原样保留，前后各输出一条边界标记。
// 无论是否回放、是否出错，缓冲区都会被清空并取消激活。
//
// 提升 logger 无法执行某条记录时立即中止，返回 *ReplayError。
func (m *Manager) Replay(ctx context.Context) error {
	b := bufferFrom(ctx)
	if b == nil {
		return nil
	}
	entries, active, dropped := b.drain()
	if !active {
		return nil
	}

	ctx, span := xmetrics.Start(withoutBuffer(ctx), m.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "replay",
		Kind:      xmetrics.KindInternal,
		Attrs: []xmetrics.Attr{
			xmetrics.Int(keyEntries, len(entries)),
			xmetrics.Int(keyDropped, dropped),
		},
	})
	err := m.replay(ctx, entries, dropped)
	span.End(xmetrics.Result{Err: err})
	return err
}

// ReplayNow 立即执行与收尾相同的处理，供业务代码手动触发。
func (m *Manager) ReplayNow(ctx context.Context) error {
	return m.Replay(ctx)
}

func (m *Manager) replay(ctx context.Context, entries []Record, dropped int) error {
	startAttrs := make([]slog.Attr, 0, 3)
	startAttrs = append(startAttrs, slog.Int(keyEntries, len(entries)))
	if dropped > 0 {
		startAttrs = append(startAttrs, slog.Int(keyDropped, dropped))
	}
	if lv, ok := m.elevated.(xlog.Leveler); ok {
		startAttrs = append(startAttrs, slog.String(keyElevatedLevel, lv.GetLevel().String()))
	}
	if err := invoke(func() { m.elevated.Warn(ctx, StartMarker, startAttrs...) }); err != nil {
		return &ReplayError{Index: -1, Err: err}
	}

	for i, r := range entries {
		emit, ok := r.Kind.emitter()
		if !ok {
			return &ReplayError{Index: i, Record: r, Err: ErrUnknownKind}
		}
		err := invoke(func() {
			emit(r.scoped(m.elevated), ctx, r.EnrichedMessage(), r.Attrs...)
		})
		if err != nil {
			return &ReplayError{Index: i, Record: r, Err: err}
		}
	}

	if err := invoke(func() { m.elevated.Info(ctx, FinishMarker) }); err != nil {
		return &ReplayError{Index: -1, Err: err}
	}
	return nil
}

// invoke 执行一次提升 logger 调用，panic 转为 error。
func invoke(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("elevated logger panic: %v", r)
		}
	}()
	fn()
	return nil
}
