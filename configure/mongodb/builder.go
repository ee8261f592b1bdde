package mongodb

import (
	"errors"
	"fmt"

	"github.com/gocrud/beans/core"
	"github.com/gocrud/beans/logging"
)

// Builder MongoDB 配置构建器
type Builder struct {
	core.BaseBuilder
	configs map[string]MongoOptions
	errs    []error
}

// NewBuilder 创建构建器
func NewBuilder(ctx *core.BuildContext) *Builder {
	return &Builder{
		BaseBuilder: core.NewBaseBuilder(ctx),
		configs:     make(map[string]MongoOptions),
	}
}

// Add 添加 MongoDB 客户端配置
// configure 回调用于调整连接池、超时等选项，可以为 nil
func (b *Builder) Add(name string, uri string, configure func(*MongoOptions)) *Builder {
	if _, exists := b.configs[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("mongo client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name, uri)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid mongo configuration for '%s': %w", name, err))
		return b
	}

	b.configs[name] = *opts
	return b
}

// Build 构建 MongoDB 工厂
// 配置有误时不创建任何客户端，返回聚合后的错误
func (b *Builder) Build(logger logging.Logger) (*MongoFactory, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	if len(b.configs) == 0 {
		return nil, nil
	}

	factory := NewMongoFactory()
	for _, opts := range b.configs {
		if err := factory.Register(opts); err != nil {
			factory.Close()
			return nil, err
		}

		logger.Info("Mongo client created",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "uri", Value: opts.Uri})
	}

	return factory, nil
}
