// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xtrace: HTTP/gRPC 追踪信息的提取与传播
//   - xmetrics: 回放观测接口（OTel 追踪与指标）
//   - xsampling: 采样策略
//   - xreplay: 按请求缓存日志并按需回放
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 自动从 context 中提取追踪信息注入日志
//   - 平时低噪声，出问题的请求输出完整诊断日志
package observability
