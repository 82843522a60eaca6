package xreplay

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
)

// Kind 标识被拦截的日志方法，回放时调用提升 logger 的同名方法。
type Kind uint8

// 零值不是合法 Kind。
const (
	KindTrace Kind = iota + 1
	KindDebug
	KindInfo
	KindWarn
	KindError
	KindStack
)

func (k Kind) String() string {
	switch k {
	case KindTrace:
		return "trace"
	case KindDebug:
		return "debug"
	case KindInfo:
		return "info"
	case KindWarn:
		return "warn"
	case KindError:
		return "error"
	case KindStack:
		return "stack"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

type emitFunc func(l xlog.Logger, ctx context.Context, msg string, attrs ...slog.Attr)

// dispatch Kind → xlog.Logger 方法
var dispatch = [...]emitFunc{
	KindTrace: xlog.Logger.Trace,
	KindDebug: xlog.Logger.Debug,
	KindInfo:  xlog.Logger.Info,
	KindWarn:  xlog.Logger.Warn,
	KindError: xlog.Logger.Error,
	KindStack: xlog.Logger.Stack,
}

func (k Kind) emitter() (emitFunc, bool) {
	if int(k) >= len(dispatch) || dispatch[k] == nil {
		return nil, false
	}
	return dispatch[k], true
}

// timeLayout ISO-8601，去掉末尾为零的小数位
const timeLayout = "2006-01-02T15:04:05.999999999"

// Record 一次被拦截的日志调用，创建后不再修改。
type Record struct {
	Time    time.Time
	Origin  string
	Kind    Kind
	Message string
	Attrs   []slog.Attr

	scope []scopeOp
}

// scopeOp 记录产生该调用的 Interceptor 上依次执行的 With/WithGroup。
type scopeOp struct {
	group string
	attrs []slog.Attr
}

// EnrichedMessage 返回回放时输出的消息："[origin 时间戳] message"。
func (r Record) EnrichedMessage() string {
	return "[" + r.Origin + " " + r.Time.Format(timeLayout) + "] " + r.Message
}

// scoped 在 l 上重建记录产生时的 With/WithGroup 链。
func (r Record) scoped(l xlog.Logger) xlog.Logger {
	for _, op := range r.scope {
		if op.group != "" {
			l = l.WithGroup(op.group)
		} else {
			l = l.With(op.attrs...)
		}
	}
	return l
}
