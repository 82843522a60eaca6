package xconf

import "strings"

// Options 定义配置加载选项。
type Options struct {
	// Delim 配置键的分隔符，默认为 "."。
	Delim string

	// Tag 结构体标签名，用于 Unmarshal 与默认值加载，默认为 "koanf"。
	Tag string

	// EnvPrefix 环境变量前缀，为空时不加载环境变量层。
	EnvPrefix string

	// Defaults 默认值结构体（或其指针），为 nil 时不加载默认值层。
	Defaults any
}

// Option 定义配置选项函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Delim: ".",
		Tag:   "koanf",
	}
}

// WithDelim 设置配置键分隔符，例如 "app.server.port"。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置结构体标签名。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

// WithEnvPrefix 启用环境变量覆盖层。
//
// 变量名去掉前缀后转为小写，双下划线映射为分隔符：
//
//	XREPLAY_MAX_ENTRIES     -> max_entries
//	XREPLAY_SERVER__ADDR    -> server.addr
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}

// WithDefaults 设置默认值层，按 Tag 标签读取结构体字段。
func WithDefaults(defaults any) Option {
	return func(o *Options) {
		o.Defaults = defaults
	}
}

// envKey 将环境变量名转换为配置键，返回空字符串时该变量被忽略。
func (o *Options) envKey(name string) string {
	key := strings.TrimPrefix(name, o.EnvPrefix)
	if key == "" {
		return ""
	}
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", o.Delim)
}
