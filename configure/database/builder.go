package database

import (
	"errors"
	"fmt"

	"github.com/gocrud/beans/core"
	"github.com/gocrud/beans/logging"
	"gorm.io/gorm"
)

// Builder 数据库模块构建器
// 收集多个命名数据库的连接配置，构建时统一打开
type Builder struct {
	core.BaseBuilder
	options []*DatabaseOptions
	errs    []error
}

// NewBuilder 创建数据库构建器
func NewBuilder(ctx *core.BuildContext) *Builder {
	return &Builder{BaseBuilder: core.NewBaseBuilder(ctx)}
}

// Add 添加一个命名数据库连接
// configure 回调用于调整连接池、自动迁移等选项，可以为 nil
func (b *Builder) Add(name string, dialector gorm.Dialector, configure func(*DatabaseOptions)) *Builder {
	opts := NewDefaultOptions(name, dialector)
	if configure != nil {
		configure(opts)
	}
	if err := opts.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("database '%s': %w", name, err))
		return b
	}
	b.options = append(b.options, opts)
	return b
}

// Build 打开所有数据库连接并返回工厂
// 配置有误时不打开任何连接，返回聚合后的错误
func (b *Builder) Build(logger logging.Logger) (*DatabaseFactory, error) {
	errs := append([]error{}, b.errs...)

	seen := make(map[string]bool)
	valid := make([]*DatabaseOptions, 0, len(b.options))
	for _, opts := range b.options {
		if seen[opts.Name] {
			errs = append(errs, fmt.Errorf("database '%s' already registered", opts.Name))
			continue
		}
		seen[opts.Name] = true
		valid = append(valid, opts)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(valid) == 0 {
		return nil, nil // 没有配置任何数据库
	}

	factory := NewDatabaseFactory()
	for _, opts := range valid {
		if err := factory.Register(*opts); err != nil {
			factory.Close()
			return nil, err
		}
		logger.Info("Database connection opened",
			logging.Field{Key: "name", Value: opts.Name})
	}

	return factory, nil
}
