package xreplay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobal_Facade(t *testing.T) {
	t.Cleanup(resetDefault)

	rec := newRecordingLogger()
	SetDefault(newTestManager(t, rec))
	SetDefault(nil)

	ctx := Begin(context.Background())
	GetLogger("facade").Info(ctx, "hello")
	GetLoggerFor[orderService]().Debug(ctx, "typed")
	assert.False(t, IsActive(ctx))
	assert.True(t, Activate(ctx))
	assert.True(t, IsActive(ctx))

	require.NoError(t, ReplayNow(ctx))
	assert.Equal(t, []string{
		StartMarker,
		"[facade 2024-01-01T00:00:00] hello",
		"[xreplay.orderService 2024-01-01T00:00:00] typed",
		FinishMarker,
	}, rec.messages())

	GetLogger("facade").Info(ctx, "again")
	Reset(ctx)
	assert.Equal(t, 0, Default().Len(ctx))

	SetActivateOnException(true)
	assert.True(t, Default().ActivateOnException())
	err := Run(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestGlobal_DefaultFromEnv(t *testing.T) {
	resetDefault()
	t.Cleanup(resetDefault)
	t.Setenv("XREPLAY_ACTIVATE_ON_EXCEPTION", "true")

	assert.True(t, Default().ActivateOnException())
	assert.Same(t, Default(), Default())
}

func TestGlobal_DefaultInvalidEnvFallsBack(t *testing.T) {
	resetDefault()
	t.Cleanup(resetDefault)
	t.Setenv("XREPLAY_MAX_ENTRIES", "-5")

	m := Default()
	require.NotNil(t, m)
	assert.False(t, m.ActivateOnException())
}
