// Package xsampling 提供回放激活所用的采样策略。
//
// Sampler.ShouldSample(ctx) 返回是否采样：
//
//   - Always() / Never(): 全采样 / 不采样
//   - NewRateSampler(rate): 固定比率随机采样
//   - NewKeyBasedSampler(rate, keyFunc): 基于 key 的一致性采样（xxhash）
//   - ByTraceID(rate): 按 trace_id 一致性采样
//
// 一致性采样保证同一条链路在所有服务中做出相同决策：
// 上游服务激活回放的请求，下游服务同样会激活。
package xsampling
