// Package xconf 提供分层配置加载和热重载，基于 koanf 实现。
//
// # 加载顺序
//
// 后加载的层覆盖先加载的层：
//
//  1. 默认值（[WithDefaults]，koanf structs provider）
//  2. 配置文件或字节数据（YAML / JSON）
//  3. 环境变量（[WithEnvPrefix]，koanf env provider）
//
// [Config.Reload] 按相同顺序重建全部层，环境变量覆盖在重载后依然生效。
//
// # 支持的格式
//
//   - YAML：.yaml, .yml
//   - JSON：.json
//
// # 并发安全
//
// Reload() 通过 sync.Mutex 序列化，解析成功后使用 atomic.Pointer 原子替换 koanf 实例；
// 解析失败时保留旧配置。Client() 返回的指针在 Reload() 后仍然有效，但指向旧配置，
// 推荐每次需要时调用 Client()。
//
// # 配置监视
//
// 基于 fsnotify 监视配置文件所在目录，内置防抖，支持 vim/emacs 原子写入。
// 从 bytes 创建的 Config 不支持监视。Stop() 返回后不再有回调执行。
package xconf
