// Package xtrace 提供链路追踪信息在 HTTP/gRPC 边界上的提取与注入。
//
// 底层存储使用 xctx，xtrace 只做传输层适配，不维护状态。
//
// HTTP Header：X-Trace-ID、X-Span-ID、X-Request-ID、traceparent。
// gRPC Metadata：x-trace-id、x-span-id、x-request-id、traceparent。
//
// traceparent（W3C Trace Context）优先于自定义头；
// 格式非法的 ID 被丢弃并记录 WARN，缺失的 ID 默认自动生成。
//
// xreplay 的 HTTP/gRPC 钩子在创建缓冲区前调用本包，
// 保证回放输出与按 trace_id 的激活采样拿到同一个请求标识。
package xtrace
