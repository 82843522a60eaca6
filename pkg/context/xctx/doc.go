// Package xctx 提供轻量级的请求上下文标识管理。
//
// 为每个执行上下文（一次请求）携带追踪信息，供日志 enrich、采样决策、
// 以及 xreplay 回放输出使用：
//   - trace_id   : 追踪标识（W3C 规范，128-bit）
//   - span_id    : 跨度标识（W3C 规范，64-bit）
//   - request_id : 请求标识（UUID）
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：从 context 读取值，缺失时返回零值
//	RequireXxx(ctx)        - 强制读取：值必须存在，缺失时返回错误
//	EnsureXxx(ctx)         - 确保存在：若已存在则返回，否则自动生成
//
// # 校验策略
//
// xctx 是纯粹的存取层，不对字段值进行格式校验。
// EnsureXxx 系列函数的语义是"确保非空"，对已存在的值不做验证。
package xctx
