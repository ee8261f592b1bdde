package redis

import (
	"errors"
	"fmt"

	"github.com/gocrud/beans/logging"
)

// Builder Redis 客户端配置构建器
type Builder struct {
	configs map[string]RedisClientOptions
	errs    []error
}

// NewBuilder 创建 Redis 构建器
func NewBuilder() *Builder {
	return &Builder{
		configs: make(map[string]RedisClientOptions),
	}
}

// AddClient 添加一个 Redis 客户端配置
// configure 回调用于调整地址、连接池等选项，可以为 nil
func (b *Builder) AddClient(name string, configure func(*RedisClientOptions)) *Builder {
	if _, exists := b.configs[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("redis client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid redis configuration for '%s': %w", name, err))
		return b
	}

	b.configs[name] = *opts
	return b
}

// Build 构建 Redis 客户端工厂
// 配置有误时不创建任何客户端，返回聚合后的错误
func (b *Builder) Build(logger logging.Logger) (*RedisClientFactory, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	if len(b.configs) == 0 {
		return nil, nil // 没有配置任何 Redis 客户端
	}

	factory := NewRedisClientFactory()
	for _, opts := range b.configs {
		if err := factory.Register(opts); err != nil {
			factory.Close()
			return nil, err
		}

		logger.Info("Redis client created",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "addr", Value: opts.Addr},
			logging.Field{Key: "db", Value: opts.DB})
	}

	return factory, nil
}
