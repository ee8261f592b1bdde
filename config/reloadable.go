package config

import (
	"context"
	"sync"
)

// ReloadableConfiguration 可重载配置
// 读取走 ValueStore 的无锁快照；Reload 重新加载全部配置源并原子替换，
// 随后通知 OnReload 注册的回调（选项缓存依赖该通知刷新）
type ReloadableConfiguration struct {
	sources   []ConfigurationSource
	store     *ValueStore
	callbacks []func()
	cbMu      sync.RWMutex
	reloadMu  sync.Mutex
}

// view 返回当前数据快照上的只读视图
func (c *ReloadableConfiguration) view() *configuration {
	return &configuration{data: c.store.Load()}
}

// Get 获取配置值
func (c *ReloadableConfiguration) Get(key string) string {
	return c.view().Get(key)
}

// GetWithDefault 获取配置值，如果不存在则返回默认值
func (c *ReloadableConfiguration) GetWithDefault(key, defaultValue string) string {
	return c.view().GetWithDefault(key, defaultValue)
}

// GetInt 获取整数配置值
func (c *ReloadableConfiguration) GetInt(key string) (int, error) {
	return c.view().GetInt(key)
}

// GetBool 获取布尔配置值
func (c *ReloadableConfiguration) GetBool(key string) (bool, error) {
	return c.view().GetBool(key)
}

// GetSection 获取配置节（当前快照上的静态视图，不随重载更新）
func (c *ReloadableConfiguration) GetSection(key string) Configuration {
	return c.view().GetSection(key)
}

// Bind 绑定配置到结构体
func (c *ReloadableConfiguration) Bind(key string, target any) error {
	return c.view().Bind(key, target)
}

// GetAll 获取所有配置
func (c *ReloadableConfiguration) GetAll() map[string]any {
	return c.view().GetAll()
}

// Sources 返回构建时捕获的配置源
func (c *ReloadableConfiguration) Sources() []ConfigurationSource {
	return c.sources
}

// Reload 重新加载全部配置源并替换当前数据
// 任一配置源失败则保留旧数据并返回错误；重载串行执行
func (c *ReloadableConfiguration) Reload() error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	data, err := loadSources(c.sources)
	if err != nil {
		return err
	}
	c.store.Store(data)

	c.cbMu.RLock()
	callbacks := c.callbacks
	c.cbMu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}

	return nil
}

// OnReload 注册重载完成后的回调
func (c *ReloadableConfiguration) OnReload(fn func()) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, fn)
}

// StartWatching 对支持监听的配置源启动变更监听，变更时自动 Reload
// 返回每个源的启动错误（与源同序，nil 表示启动成功或源不支持监听）
func (c *ReloadableConfiguration) StartWatching(ctx context.Context, onReload func(err error)) []error {
	errs := make([]error, len(c.sources))
	for i, source := range c.sources {
		watchable, ok := source.(WatchableSource)
		if !ok {
			continue
		}
		errs[i] = watchable.StartWatch(ctx, func() {
			err := c.Reload()
			if onReload != nil {
				onReload(err)
			}
		})
	}
	return errs
}

// StopWatching 停止所有配置源的变更监听
func (c *ReloadableConfiguration) StopWatching() {
	for _, source := range c.sources {
		if watchable, ok := source.(WatchableSource); ok {
			watchable.StopWatch()
		}
	}
}
