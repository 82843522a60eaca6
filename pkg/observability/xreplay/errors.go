package xreplay

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBuffer 表示 context 中没有缓冲区（未经过 Begin/Run/中间件），调用仅被转发。
	ErrNoBuffer = errors.New("xreplay: no replay buffer in context")

	// ErrBufferFull 表示缓冲区已达 MaxEntries，后续记录被丢弃。
	ErrBufferFull = errors.New("xreplay: replay buffer full")

	// ErrReplayInvocation 表示提升 logger 无法执行某条记录的回放，回放已中止。
	ErrReplayInvocation = errors.New("xreplay: replay invocation failed")

	// ErrUnknownKind 表示记录的 Kind 不在分派表中。
	ErrUnknownKind = errors.New("xreplay: unknown record kind")

	// ErrNilFunc 表示 Run 的受保护函数为 nil。
	ErrNilFunc = errors.New("xreplay: nil func")

	// ErrInvalidMaxEntries 表示 MaxEntries 配置非法。
	ErrInvalidMaxEntries = errors.New("xreplay: max entries must be positive")

	// ErrNilOption 表示传入了 nil 的 Option。
	ErrNilOption = errors.New("xreplay: nil option")
)

// ReplayError 描述中止回放的那条记录。
//
// errors.Is(err, ErrReplayInvocation) 恒成立；Err 为具体原因。
type ReplayError struct {
	// Index 是中止处记录在缓冲区中的下标，标记输出失败时为 -1。
	Index  int
	Record Record
	Err    error
}

func (e *ReplayError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("xreplay: replay aborted: %v", e.Err)
	}
	return fmt.Sprintf("xreplay: replay aborted at entry %d (%s %s): %v",
		e.Index, e.Record.Kind, e.Record.Origin, e.Err)
}

// Is 使 errors.Is(err, ErrReplayInvocation) 成立。
func (e *ReplayError) Is(target error) bool {
	return target == ErrReplayInvocation
}

// Unwrap 返回具体原因。
func (e *ReplayError) Unwrap() error {
	return e.Err
}
