package xreplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/omeyang/xreplay/pkg/config/xconf"
	"github.com/omeyang/xreplay/pkg/observability/xlog"
	"github.com/omeyang/xreplay/pkg/observability/xsampling"
)

// EnvPrefix 环境变量前缀，例如 XREPLAY_ACTIVATE_ON_EXCEPTION=true
const EnvPrefix = "XREPLAY_"

// Config 回放配置，可由文件、环境变量加载。
type Config struct {
	// ActivateOnException 受保护代码失败时是否自动激活
	ActivateOnException bool `koanf:"activate_on_exception"`

	// MaxEntries 单个上下文最多缓存的记录数
	MaxEntries int `koanf:"max_entries"`

	// ElevatedLevel 默认提升 logger 的级别（trace/debug/info/warn/error）
	ElevatedLevel string `koanf:"elevated_level"`

	// SampleRate 按 trace_id 一致性采样、在 Begin 时直接激活的比例，0 表示不采样
	SampleRate float64 `koanf:"sample_rate"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		MaxEntries:    DefaultMaxEntries,
		ElevatedLevel: "trace",
	}
}

// Validate 校验配置。
func (c Config) Validate() error {
	var errs []error
	if c.MaxEntries <= 0 {
		errs = append(errs, ErrInvalidMaxEntries)
	}
	if _, err := xlog.ParseLevel(c.ElevatedLevel); err != nil {
		errs = append(errs, fmt.Errorf("xreplay: elevated_level: %w", err))
	}
	if math.IsNaN(c.SampleRate) || c.SampleRate < 0 || c.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("xreplay: sample_rate: %w", xsampling.ErrInvalidRate))
	}
	return errors.Join(errs...)
}

// LoadConfig 按默认值、配置文件、环境变量（XREPLAY_ 前缀）的顺序加载配置。
//
// 配置文件为 YAML 或 JSON，键位于顶层：
//
//	activate_on_exception: true
//	max_entries: 5000
func LoadConfig(path string) (Config, error) {
	cfg, err := xconf.New(path, configOptions()...)
	if err != nil {
		return Config{}, err
	}
	return decodeConfig(cfg)
}

// ConfigFromEnv 只从默认值和环境变量加载配置。
func ConfigFromEnv() (Config, error) {
	cfg, err := xconf.NewFromBytes(nil, xconf.FormatYAML, configOptions()...)
	if err != nil {
		return Config{}, err
	}
	return decodeConfig(cfg)
}

func configOptions() []xconf.Option {
	return []xconf.Option{
		xconf.WithDefaults(DefaultConfig()),
		xconf.WithEnvPrefix(EnvPrefix),
	}
}

func decodeConfig(cfg xconf.Config) (Config, error) {
	var c Config
	if err := cfg.Unmarshal("", &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// NewFromConfig 按配置创建 Manager，opts 在配置之后应用。
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := xlog.ParseLevel(cfg.ElevatedLevel)
	if err != nil {
		return nil, err
	}
	elevated, _, err := xlog.New().SetLevel(level).Build()
	if err != nil {
		return nil, fmt.Errorf("xreplay: build elevated logger: %w", err)
	}

	base := []Option{
		WithElevatedLogger(elevated),
		WithMaxEntries(cfg.MaxEntries),
		WithActivateOnException(cfg.ActivateOnException),
	}
	if cfg.SampleRate > 0 {
		sampler, err := xsampling.ByTraceID(cfg.SampleRate)
		if err != nil {
			return nil, err
		}
		base = append(base, WithSampler(sampler))
	}
	m, err := New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	if m.override != nil {
		if err := m.Apply(cfg); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Apply 在运行时应用配置中可热更新的部分：自动激活开关、上限和采样率。
// 提升 logger 实现 xlog.Leveler 时同步调整其级别。
// 设置了 WithConfigOverride 时先改写 cfg 再校验。
func (m *Manager) Apply(cfg Config) error {
	if m.override != nil {
		m.override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.activateOnException.Store(cfg.ActivateOnException)
	m.maxEntries.Store(int64(cfg.MaxEntries))

	if cfg.SampleRate > 0 {
		sampler, err := xsampling.ByTraceID(cfg.SampleRate)
		if err != nil {
			return err
		}
		m.setSampler(sampler)
	} else {
		m.setSampler(nil)
	}

	if lv, ok := m.elevated.(xlog.Leveler); ok {
		level, err := xlog.ParseLevel(cfg.ElevatedLevel)
		if err != nil {
			return err
		}
		lv.SetLevel(level)
	}
	return nil
}

// WatchConfig 监视配置文件，变更时调用 m.Apply。
//
// 重载或应用失败时保留当前配置并通过提升 logger 输出 WARN。
// 返回的 Watcher 已在后台启动，调用方负责 Stop。
func WatchConfig(path string, m *Manager, opts ...xconf.WatchOption) (*xconf.Watcher, error) {
	cfg, err := xconf.New(path, configOptions()...)
	if err != nil {
		return nil, err
	}
	w, err := xconf.Watch(cfg, func(cfg xconf.Config, err error) {
		ctx := context.Background()
		if err != nil {
			m.elevated.Warn(ctx, "xreplay: config reload failed", xlog.Err(err))
			return
		}
		c, err := decodeConfig(cfg)
		if err == nil {
			err = m.Apply(c)
		}
		if err != nil {
			m.elevated.Warn(ctx, "xreplay: config apply failed", xlog.Err(err))
			return
		}
		m.elevated.Info(ctx, "xreplay: config applied",
			slog.Bool("activate_on_exception", m.ActivateOnException()),
			slog.Int("max_entries", c.MaxEntries))
	}, opts...)
	if err != nil {
		return nil, err
	}
	w.StartAsync()
	return w, nil
}
