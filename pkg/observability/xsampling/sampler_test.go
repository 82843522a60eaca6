package xsampling

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xreplay/pkg/context/xctx"
)

func TestConstSamplers(t *testing.T) {
	ctx := context.Background()
	assert.True(t, Always().ShouldSample(ctx))
	assert.False(t, Never().ShouldSample(ctx))
}

func TestNewRateSampler(t *testing.T) {
	for _, rate := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := NewRateSampler(rate)
		assert.ErrorIs(t, err, ErrInvalidRate, "rate=%v", rate)
	}

	zero, err := NewRateSampler(0)
	require.NoError(t, err)
	one, err := NewRateSampler(1)
	require.NoError(t, err)
	for range 100 {
		assert.False(t, zero.ShouldSample(context.Background()))
		assert.True(t, one.ShouldSample(context.Background()))
	}
	assert.Equal(t, 1.0, one.Rate())
}

func TestRateSampler_Distribution(t *testing.T) {
	s, err := NewRateSampler(0.5)
	require.NoError(t, err)

	const n = 10000
	hits := 0
	for range n {
		if s.ShouldSample(context.Background()) {
			hits++
		}
	}
	assert.InDelta(t, 0.5, float64(hits)/n, 0.05)
}

func TestKeyBasedSampler_Consistent(t *testing.T) {
	s, err := ByTraceID(0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, s.Rate())

	for i := range 50 {
		ctx, _ := xctx.WithTraceID(context.Background(), fmt.Sprintf("trace-%d", i))
		first := s.ShouldSample(ctx)
		for range 5 {
			assert.Equal(t, first, s.ShouldSample(ctx))
		}
	}
}

func TestKeyBasedSampler_EmptyKey(t *testing.T) {
	var empty int
	s, err := NewKeyBasedSampler(0.5, func(context.Context) string { return "" },
		WithOnEmptyKey(func() { empty++ }))
	require.NoError(t, err)

	s.ShouldSample(context.Background())
	//nolint:staticcheck // 测试 nil context 处理
	s.ShouldSample(nil)
	assert.Equal(t, 2, empty)
}

func TestNewKeyBasedSampler_Errors(t *testing.T) {
	_, err := NewKeyBasedSampler(2, xctx.TraceID)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = NewKeyBasedSampler(0.5, nil)
	assert.ErrorIs(t, err, ErrNilKeyFunc)

	_, err = NewKeyBasedSampler(0.5, xctx.TraceID, nil)
	assert.ErrorIs(t, err, ErrNilOption)
}

func TestKeyBasedSampler_Bounds(t *testing.T) {
	never, err := ByTraceID(0)
	require.NoError(t, err)
	always, err := ByTraceID(1)
	require.NoError(t, err)

	ctx, _ := xctx.EnsureTrace(context.Background())
	assert.False(t, never.ShouldSample(ctx))
	assert.True(t, always.ShouldSample(ctx))
}
