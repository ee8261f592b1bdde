package etcd

import (
	"errors"
	"fmt"

	"github.com/gocrud/beans/core"
	"github.com/gocrud/beans/logging"
)

// Builder Etcd 客户端配置构建器
type Builder struct {
	core.BaseBuilder
	configs map[string]EtcdClientOptions
	errs    []error
}

// NewBuilder 创建 Etcd 构建器
func NewBuilder(ctx *core.BuildContext) *Builder {
	return &Builder{
		BaseBuilder: core.NewBaseBuilder(ctx),
		configs:     make(map[string]EtcdClientOptions),
	}
}

// AddClient 添加一个 etcd 客户端配置
// configure 回调用于调整地址、认证等选项，可以为 nil
func (b *Builder) AddClient(name string, configure func(*EtcdClientOptions)) *Builder {
	if _, exists := b.configs[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("etcd client '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid etcd configuration for '%s': %w", name, err))
		return b
	}

	b.configs[name] = *opts
	return b
}

// Build 构建 Etcd 客户端工厂
// 配置有误时不创建任何客户端，返回聚合后的错误
func (b *Builder) Build(logger logging.Logger) (*EtcdClientFactory, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	if len(b.configs) == 0 {
		return nil, nil // 没有配置任何 etcd 客户端
	}

	factory := NewEtcdClientFactory()
	for _, opts := range b.configs {
		if err := factory.Register(opts); err != nil {
			factory.Close()
			return nil, err
		}

		logger.Info("Etcd client created",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "endpoints", Value: fmt.Sprintf("%v", opts.Endpoints)})
	}

	return factory, nil
}
