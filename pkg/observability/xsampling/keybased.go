package xsampling

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/xreplay/pkg/context/xctx"
)

// KeyFunc 从上下文中提取采样 key
//
// 返回空字符串时回退到随机采样，保持采样率但失去一致性。
type KeyFunc func(ctx context.Context) string

// KeyBasedOption 配置 KeyBasedSampler 的可选参数
type KeyBasedOption func(*KeyBasedSampler)

// WithOnEmptyKey 设置空 key 回调，用于发现上下文传播链路断裂
func WithOnEmptyKey(fn func()) KeyBasedOption {
	return func(s *KeyBasedSampler) {
		s.onEmptyKey = fn
	}
}

// KeyBasedSampler 基于 key 的一致性采样策略
//
// 相同 key 在相同 rate 下总是产生相同决策。
type KeyBasedSampler struct {
	rate       float64
	keyFunc    KeyFunc
	onEmptyKey func()
}

// NewKeyBasedSampler 创建基于 key 的一致性采样器
//
// 示例：
//
//	sampler, err := xsampling.NewKeyBasedSampler(0.1, func(ctx context.Context) string {
//	    return xctx.TraceID(ctx)
//	})
func NewKeyBasedSampler(rate float64, keyFunc KeyFunc, opts ...KeyBasedOption) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	s := &KeyBasedSampler{rate: rate, keyFunc: keyFunc}
	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		opt(s)
	}
	return s, nil
}

// ByTraceID 创建按 trace_id 一致性采样的采样器
func ByTraceID(rate float64, opts ...KeyBasedOption) (*KeyBasedSampler, error) {
	return NewKeyBasedSampler(rate, xctx.TraceID, opts...)
}

// ShouldSample 对 key 做 xxhash 并归一化到 [0, 1] 后与 rate 比较
func (s *KeyBasedSampler) ShouldSample(ctx context.Context) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}

	var key string
	if ctx != nil {
		key = s.keyFunc(ctx)
	}
	if key == "" {
		if s.onEmptyKey != nil {
			s.onEmptyKey()
		}
		return sampleRandom(s.rate)
	}

	normalized := float64(xxhash.Sum64String(key)) / float64(math.MaxUint64)
	return normalized < s.rate
}

// Rate 返回采样比率
func (s *KeyBasedSampler) Rate() float64 {
	return s.rate
}

var _ Sampler = (*KeyBasedSampler)(nil)
