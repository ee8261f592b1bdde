package config

import (
	"encoding/json"
	"fmt"
	"sync"
)

// 三种配置选项的读取模式，对应不同的生命周期：
//   Option         应用启动时取值，此后保持不变
//   OptionSnapshot 作用域创建时取值，作用域内保持不变
//   OptionMonitor  始终返回最新值，配置重载后自动刷新

// Option 静态配置选项
type Option[T any] interface {
	Value() T
}

// OptionSnapshot 快照配置选项
type OptionSnapshot[T any] interface {
	Value() T
}

// OptionMonitor 监听配置选项
type OptionMonitor[T any] interface {
	Value() T
}

// reloadNotifier 由支持重载通知的配置实现（如 ReloadableConfiguration）
type reloadNotifier interface {
	OnReload(func())
}

// OptionsCache 持有某个配置节绑定出的强类型值
// 配置支持重载通知时，重载后自动重新绑定
type OptionsCache[T any] struct {
	config  Configuration
	section string
	mu      sync.RWMutex
	current T
}

// NewOptionsCache 绑定配置节并创建缓存
// 初次绑定失败时保留零值，配置节可能稍后才提供
func NewOptionsCache[T any](config Configuration, section string) *OptionsCache[T] {
	cache := &OptionsCache[T]{config: config, section: section}
	cache.refresh()

	if notifier, ok := config.(reloadNotifier); ok {
		notifier.OnReload(func() { cache.refresh() })
	}
	return cache
}

// refresh 重新绑定配置节，失败时保留当前值
func (c *OptionsCache[T]) refresh() error {
	var next T
	if err := c.config.Bind(c.section, &next); err != nil {
		return fmt.Errorf("failed to bind config section %s: %w", c.section, err)
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()
	return nil
}

// Get 返回当前绑定值
func (c *OptionsCache[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Snapshot 返回当前值的独立副本，后续重载不影响已取出的快照
func (c *OptionsCache[T]) Snapshot() T {
	return deepCopy(c.Get())
}

// deepCopy 通过 JSON 往返做深拷贝，不可序列化的类型退化为直接返回
func deepCopy[T any](value T) T {
	data, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var copied T
	if err := json.Unmarshal(data, &copied); err != nil {
		return value
	}
	return copied
}

type staticOption[T any] struct{ value T }

func (o staticOption[T]) Value() T { return o.value }

// NewOption 用固定值创建静态配置选项
func NewOption[T any](value T) Option[T] {
	return staticOption[T]{value: value}
}

type snapshotOption[T any] struct{ value T }

func (o snapshotOption[T]) Value() T { return o.value }

// NewOptionSnapshot 用快照值创建作用域配置选项
func NewOptionSnapshot[T any](value T) OptionSnapshot[T] {
	return snapshotOption[T]{value: value}
}

type monitorOption[T any] struct{ cache *OptionsCache[T] }

func (o monitorOption[T]) Value() T { return o.cache.Get() }

// NewOptionMonitor 创建跟随配置重载的监听选项
func NewOptionMonitor[T any](cache *OptionsCache[T]) OptionMonitor[T] {
	return monitorOption[T]{cache: cache}
}
