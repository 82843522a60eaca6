package xsampling

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
)

// Sampler 采样策略接口
type Sampler interface {
	// ShouldSample 判断是否应该采样，ctx 可携带 trace_id 等决策信息
	ShouldSample(ctx context.Context) bool
}

type constSampler bool

func (s constSampler) ShouldSample(context.Context) bool { return bool(s) }

// Always 返回全采样策略
func Always() Sampler { return constSampler(true) }

// Never 返回不采样策略
func Never() Sampler { return constSampler(false) }

// RateSampler 固定比率采样策略，例如 rate=0.1 表示约 10% 的事件被采样
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建固定比率采样器，rate 超出 [0.0, 1.0] 或为 NaN 时返回 ErrInvalidRate
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

// ShouldSample 按比率随机采样
func (s *RateSampler) ShouldSample(context.Context) bool {
	return sampleRandom(s.rate)
}

// Rate 返回采样比率
func (s *RateSampler) Rate() float64 {
	return s.rate
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}

func sampleRandom(rate float64) bool {
	switch {
	case rate <= 0:
		return false
	case rate >= 1:
		return true
	default:
		return randomFloat64() < rate
	}
}

// randomFloat64 返回 [0.0, 1.0) 范围内的随机浮点数
//
// crypto/rand 失败表示系统熵源不可用，直接 panic。
func randomFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("xsampling: crypto/rand.Read failed: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) / (1 << 53)
}

var (
	_ Sampler = constSampler(false)
	_ Sampler = (*RateSampler)(nil)
)
