package xconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSettings struct {
	Name    string `koanf:"name"`
	Enabled bool   `koanf:"enabled"`
	Limit   int    `koanf:"limit"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// New / NewFromBytes
// =============================================================================

func TestNew(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "app.yaml", "name: demo\nlimit: 3\n")
		cfg, err := New(path)
		require.NoError(t, err)
		assert.Equal(t, FormatYAML, cfg.Format())
		assert.Equal(t, path, cfg.Path())
		assert.Equal(t, "demo", cfg.Client().String("name"))
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "app.json", `{"name":"demo","enabled":true}`)
		cfg, err := New(path)
		require.NoError(t, err)

		var s testSettings
		require.NoError(t, cfg.Unmarshal("", &s))
		assert.Equal(t, testSettings{Name: "demo", Enabled: true}, s)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, ErrEmptyPath)

		_, err = New("app.toml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)

		_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, ErrLoadFailed)

		_, err = New(writeFile(t, "bad.json", "{"))
		assert.ErrorIs(t, err, ErrParseFailed)
	})
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte("name: bytes\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "bytes", cfg.Client().String("name"))
	assert.Empty(t, cfg.Path())
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)

	_, err = NewFromBytes(nil, Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	empty, err := NewFromBytes(nil, FormatJSON)
	require.NoError(t, err)
	var s testSettings
	require.NoError(t, empty.Unmarshal("", &s))
	assert.Equal(t, testSettings{}, s)
}

// =============================================================================
// 分层加载
// =============================================================================

func TestLayers_DefaultsFileEnv(t *testing.T) {
	t.Setenv("XTEST_LIMIT", "42")
	t.Setenv("XTEST_NESTED__KEY", "deep")
	t.Setenv("OTHER_NAME", "ignored")

	defaults := testSettings{Name: "default-name", Enabled: true, Limit: 1}
	cfg, err := NewFromBytes([]byte(`{"name":"file-name"}`), FormatJSON,
		WithDefaults(defaults),
		WithEnvPrefix("XTEST_"),
	)
	require.NoError(t, err)

	var s testSettings
	require.NoError(t, cfg.Unmarshal("", &s))
	assert.Equal(t, "file-name", s.Name, "file overrides defaults")
	assert.True(t, s.Enabled, "defaults survive when not overridden")
	assert.Equal(t, 42, s.Limit, "env overrides file")
	assert.Equal(t, "deep", cfg.Client().String("nested.key"))
}

func TestReload(t *testing.T) {
	path := writeFile(t, "app.yaml", "name: v1\n")
	cfg, err := New(path, WithEnvPrefix("XRELOAD_"))
	require.NoError(t, err)
	t.Setenv("XRELOAD_LIMIT", "7")

	require.NoError(t, os.WriteFile(path, []byte("name: v2\n"), 0600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, "v2", cfg.Client().String("name"))
	assert.Equal(t, 7, cfg.Client().Int("limit"))

	// 解析失败保留旧配置
	require.NoError(t, os.WriteFile(path, []byte("name: [\n"), 0600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, "v2", cfg.Client().String("name"))
}

func TestMustUnmarshal(t *testing.T) {
	cfg, err := NewFromBytes([]byte("limit: not-a-number\n"), FormatYAML)
	require.NoError(t, err)

	var s testSettings
	assert.Panics(t, func() { MustUnmarshal(cfg, "", &s) })
}

func TestEnvKey(t *testing.T) {
	o := defaultOptions()
	WithEnvPrefix("APP_")(o)
	assert.Equal(t, "max_entries", o.envKey("APP_MAX_ENTRIES"))
	assert.Equal(t, "server.addr", o.envKey("APP_SERVER__ADDR"))
	assert.Empty(t, o.envKey("APP_"))
}
