package xreplay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xsampling"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := Config{MaxEntries: 0, ElevatedLevel: "loud", SampleRate: 2}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMaxEntries)
	assert.ErrorIs(t, err, xsampling.ErrInvalidRate)
	assert.Contains(t, err.Error(), "elevated_level")
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "xreplay.yaml", "activate_on_exception: true\nmax_entries: 50\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.ActivateOnException)
	assert.Equal(t, 50, cfg.MaxEntries)
	assert.Equal(t, "trace", cfg.ElevatedLevel, "defaults fill missing keys")
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "xreplay.json", `{"elevated_level":"debug","sample_rate":0.25}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.ActivateOnException)
	assert.Equal(t, DefaultMaxEntries, cfg.MaxEntries)
	assert.Equal(t, "debug", cfg.ElevatedLevel)
	assert.InDelta(t, 0.25, cfg.SampleRate, 1e-9)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "xreplay.yaml", "activate_on_exception: false\nmax_entries: 50\n")
	t.Setenv("XREPLAY_ACTIVATE_ON_EXCEPTION", "true")
	t.Setenv("XREPLAY_MAX_ENTRIES", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.ActivateOnException)
	assert.Equal(t, 7, cfg.MaxEntries)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "xreplay.yaml", "max_entries: -1\n")
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidMaxEntries)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("XREPLAY_ACTIVATE_ON_EXCEPTION", "1")
	t.Setenv("XREPLAY_ELEVATED_LEVEL", "warn")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.ActivateOnException)
	assert.Equal(t, "warn", cfg.ElevatedLevel)
	assert.Equal(t, DefaultMaxEntries, cfg.MaxEntries)
}

func TestNewFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActivateOnException = true
	cfg.ElevatedLevel = "debug"
	cfg.MaxEntries = 3
	cfg.SampleRate = 1

	m, err := NewFromConfig(cfg, WithBaseLogger(discardLogger(t)))
	require.NoError(t, err)
	assert.True(t, m.ActivateOnException())
	lv, ok := m.Elevated().(xlog.Leveler)
	require.True(t, ok)
	assert.Equal(t, xlog.LevelDebug, lv.GetLevel())

	ctx := m.Begin(context.Background())
	assert.True(t, m.IsActive(ctx), "sample_rate=1 activates every context")
	for range 5 {
		m.Logger("svc").Trace(ctx, "x")
	}
	assert.Equal(t, 3, m.Len(ctx))
	m.Reset(ctx)

	_, err = NewFromConfig(Config{})
	assert.Error(t, err)
}

func TestManager_Apply(t *testing.T) {
	elevated := discardLogger(t)
	m := newTestManager(t, elevated)

	cfg := DefaultConfig()
	cfg.ActivateOnException = true
	cfg.MaxEntries = 1
	cfg.ElevatedLevel = "error"
	cfg.SampleRate = 1
	require.NoError(t, m.Apply(cfg))

	assert.True(t, m.ActivateOnException())
	assert.Equal(t, xlog.LevelError, elevated.GetLevel())
	ctx := m.Begin(context.Background())
	assert.True(t, m.IsActive(ctx))

	cfg.SampleRate = 0
	require.NoError(t, m.Apply(cfg))
	assert.False(t, m.IsActive(m.Begin(context.Background())))

	assert.Error(t, m.Apply(Config{}))
	assert.True(t, m.ActivateOnException(), "invalid config leaves state untouched")
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "xreplay.yaml", "activate_on_exception: false\n")

	m := newTestManager(t, discardLogger(t))
	w, err := WatchConfig(path, m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("activate_on_exception: true\nmax_entries: 10\n"), 0o600))
	require.Eventually(t, m.ActivateOnException, 5*time.Second, 20*time.Millisecond)

	_, err = WatchConfig(filepath.Join(dir, "missing.yaml"), m)
	assert.Error(t, err)
}

func TestConfigOverride(t *testing.T) {
	keepOff := WithConfigOverride(func(c *Config) { c.ActivateOnException = false })

	cfg := DefaultConfig()
	cfg.ActivateOnException = true
	m, err := NewFromConfig(cfg, WithElevatedLogger(discardLogger(t)), keepOff)
	require.NoError(t, err)
	assert.False(t, m.ActivateOnException(), "override wins at construction")

	require.NoError(t, m.Apply(cfg))
	assert.False(t, m.ActivateOnException(), "override wins on apply")

	cfg.MaxEntries = 7
	require.NoError(t, m.Apply(cfg))
	assert.Equal(t, int64(7), m.maxEntries.Load(), "other fields still applied")

	_, err = New(WithConfigOverride(nil))
	assert.ErrorIs(t, err, ErrNilFunc)
}

func TestWatchConfig_Override(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "xreplay.yaml", "activate_on_exception: false\n")

	m := newTestManager(t, discardLogger(t),
		WithConfigOverride(func(c *Config) { c.ActivateOnException = false }))
	w, err := WatchConfig(path, m)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("activate_on_exception: true\nmax_entries: 10\n"), 0o600))
	require.Eventually(t, func() bool { return m.maxEntries.Load() == 10 }, 5*time.Second, 20*time.Millisecond)
	assert.False(t, m.ActivateOnException())
}
