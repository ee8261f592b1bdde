package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClientOptions Redis 客户端配置选项
type RedisClientOptions struct {
	Name         string        // 客户端名称
	Addr         string        // Redis 服务器地址 (host:port)
	Password     string        // 密码（可选）
	DB           int           // 数据库编号
	DialTimeout  time.Duration // 连接超时时间
	ReadTimeout  time.Duration // 读取超时时间
	WriteTimeout time.Duration // 写入超时时间
	PoolSize     int           // 连接池大小
	MinIdleConns int           // 最小空闲连接数
	MaxRetries   int           // 最大重试次数
	PingOnCreate bool          // 创建时立即 Ping 验证连通性
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string) *RedisClientOptions {
	return &RedisClientOptions{
		Name:         name,
		Addr:         "localhost:6379",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	}
}

// Validate 验证配置
func (o *RedisClientOptions) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("redis client name is required")
	}
	if o.Addr == "" {
		return fmt.Errorf("redis address is required")
	}
	if o.DB < 0 {
		return fmt.Errorf("redis database number must be non-negative")
	}
	if o.DialTimeout <= 0 {
		return fmt.Errorf("redis dial timeout must be positive")
	}
	return nil
}

// clientOptions 将选项映射为 go-redis 配置
func (o *RedisClientOptions) clientOptions() *redis.Options {
	return &redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
		MinIdleConns: o.MinIdleConns,
		MaxRetries:   o.MaxRetries,
	}
}

// RedisClientFactory Redis 客户端工厂，持有所有命名客户端
type RedisClientFactory struct {
	clients map[string]*redis.Client
	mu      sync.RWMutex
}

// NewRedisClientFactory 创建客户端工厂
func NewRedisClientFactory() *RedisClientFactory {
	return &RedisClientFactory{
		clients: make(map[string]*redis.Client),
	}
}

// Register 按配置创建并注册 Redis 客户端
// 客户端默认延迟建连，设置 PingOnCreate 后在此立即验证连通性
func (f *RedisClientFactory) Register(opts RedisClientOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.clients[opts.Name]; exists {
		return fmt.Errorf("redis client '%s' already registered", opts.Name)
	}

	client := redis.NewClient(opts.clientOptions())

	if opts.PingOnCreate {
		ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to redis '%s': %w", opts.Name, err)
		}
	}

	f.clients[opts.Name] = client
	return nil
}

// Get 按名称获取客户端
func (f *RedisClientFactory) Get(name string) (*redis.Client, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	client, exists := f.clients[name]
	if !exists {
		return nil, fmt.Errorf("redis client '%s' not found", name)
	}
	return client, nil
}

// Each 遍历所有客户端
func (f *RedisClientFactory) Each(fn func(name string, client *redis.Client)) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for name, client := range f.clients {
		fn(name, client)
	}
}

// Close 关闭所有 Redis 客户端
func (f *RedisClientFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, client := range f.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client '%s': %w", name, err))
		}
	}
	f.clients = make(map[string]*redis.Client)

	return errors.Join(errs...)
}
