package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
)

// Configuration 配置接口（类似于 .NET Core IConfiguration）
type Configuration interface {
	// Get 获取配置值
	Get(key string) string
	// GetWithDefault 获取配置值，如果不存在则返回默认值
	GetWithDefault(key, defaultValue string) string
	// GetInt 获取整数配置值
	GetInt(key string) (int, error)
	// GetBool 获取布尔配置值
	GetBool(key string) (bool, error)
	// GetSection 获取配置节
	GetSection(key string) Configuration
	// Bind 绑定配置到结构体
	Bind(key string, target any) error
	// GetAll 获取所有配置
	GetAll() map[string]any
}

// ConfigurationSource 配置源接口
type ConfigurationSource interface {
	Load() (map[string]any, error)
	Name() string
}

// ConfigurationBuilder 配置构建器
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.RWMutex
}

// NewConfigurationBuilder 创建配置构建器
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{
		sources: make([]ConfigurationSource, 0),
	}
}

// Add 添加配置源
func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, source)
	return b
}

// AddJsonFile 添加 JSON 文件配置源
func (b *ConfigurationBuilder) AddJsonFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&JsonFileSource{Path: path, Optional: isOptional})
}

// AddYamlFile 添加 YAML 文件配置源
func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&YamlFileSource{Path: path, Optional: isOptional})
}

// AddEnvironmentVariables 添加环境变量配置源
func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

// AddInMemory 添加内存配置源
func (b *ConfigurationBuilder) AddInMemory(data map[string]any) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	return b.Add(NewEtcdSource(opts))
}

// GetSources 返回已注册的配置源快照
func (b *ConfigurationBuilder) GetSources() []ConfigurationSource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sources := make([]ConfigurationSource, len(b.sources))
	copy(sources, b.sources)
	return sources
}

// loadSources 按顺序加载所有配置源并合并（后面的覆盖前面的）
func loadSources(sources []ConfigurationSource) (map[string]any, error) {
	data := make(map[string]any)
	for _, source := range sources {
		loaded, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config source %s: %w", source.Name(), err)
		}
		mergeMaps(data, loaded)
	}
	return data, nil
}

// Build 构建静态配置（加载一次，之后不变）
func (b *ConfigurationBuilder) Build() (Configuration, error) {
	data, err := loadSources(b.GetSources())
	if err != nil {
		return nil, err
	}
	return &configuration{data: data}, nil
}

// BuildReloadable 构建可重载配置
// 持有配置源引用，Reload 时重新加载并原子替换数据
func (b *ConfigurationBuilder) BuildReloadable() (*ReloadableConfiguration, error) {
	sources := b.GetSources()
	data, err := loadSources(sources)
	if err != nil {
		return nil, err
	}

	rc := &ReloadableConfiguration{
		sources: sources,
		store:   NewValueStore(),
	}
	rc.store.Store(data)
	return rc, nil
}

// configuration 不可变配置视图
// 数据在构建后不再修改，读取无需加锁；GetSection 返回共享底层数据的子视图
type configuration struct {
	data map[string]any
}

// Get 获取配置值
func (c *configuration) Get(key string) string {
	value := c.getByPath(key)
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int64, float64:
		return fmt.Sprintf("%v", v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetWithDefault 获取配置值，如果不存在则返回默认值
func (c *configuration) GetWithDefault(key, defaultValue string) string {
	value := c.Get(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetInt 获取整数配置值
func (c *configuration) GetInt(key string) (int, error) {
	value := c.getByPath(key)
	if value == nil {
		return 0, fmt.Errorf("key %s not found", key)
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("cannot convert %v to int", value)
	}
}

// GetBool 获取布尔配置值
func (c *configuration) GetBool(key string) (bool, error) {
	value := c.getByPath(key)
	if value == nil {
		return false, fmt.Errorf("key %s not found", key)
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("cannot convert %v to bool", value)
	}
}

// GetSection 获取配置节
func (c *configuration) GetSection(key string) Configuration {
	value := c.getByPath(key)
	if m, ok := value.(map[string]any); ok {
		return &configuration{data: m}
	}
	return &configuration{data: make(map[string]any)}
}

// Bind 绑定配置到结构体（经由 JSON 编解码完成类型映射）
func (c *configuration) Bind(key string, target any) error {
	var data any
	if key == "" {
		data = c.data
	} else {
		data = c.getByPath(key)
	}

	if data == nil {
		return fmt.Errorf("key %s not found", key)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

// GetAll 获取所有配置（深拷贝）
func (c *configuration) GetAll() map[string]any {
	result := make(map[string]any, len(c.data))
	mergeMaps(result, c.data)
	return result
}

// getByPath 通过路径获取值（支持 "a:b:c" 或 "a.b.c"，分段结果缓存）
func (c *configuration) getByPath(path string) any {
	if path == "" {
		return c.data
	}

	current := any(c.data)
	for _, part := range globalPathCache.GetPathSegments(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// mergeMaps 将 src 合并进 dst，嵌套 map 深拷贝，避免与配置源共享数据
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			dstMap, ok := dst[k].(map[string]any)
			if !ok {
				dstMap = make(map[string]any, len(srcMap))
				dst[k] = dstMap
			}
			mergeMaps(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}
