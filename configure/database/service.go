package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// DatabaseOptions 数据库连接配置选项
type DatabaseOptions struct {
	Name         string         // 连接名称
	Dialector    gorm.Dialector // 数据库方言（sqlite.Open / mysql.Open 等）
	GormConfig   *gorm.Config   // gorm 配置，为 nil 时使用空配置
	MaxIdleConns int            // 连接池最大空闲连接数
	MaxOpenConns int            // 连接池最大打开连接数
	MaxLifetime  time.Duration  // 连接最长存活时间
	AutoMigrate  []any          // 打开后需要自动迁移的模型
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string, dialector gorm.Dialector) *DatabaseOptions {
	return &DatabaseOptions{
		Name:         name,
		Dialector:    dialector,
		GormConfig:   &gorm.Config{},
		MaxIdleConns: 10,
		MaxOpenConns: 100,
		MaxLifetime:  time.Hour,
	}
}

// Validate 验证配置
func (o *DatabaseOptions) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if o.Dialector == nil {
		return fmt.Errorf("database dialector is required")
	}
	return nil
}

// open 打开连接、应用连接池参数并执行自动迁移
func (o *DatabaseOptions) open() (*gorm.DB, error) {
	cfg := o.GormConfig
	if cfg == nil {
		cfg = &gorm.Config{}
	}

	db, err := gorm.Open(o.Dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", o.Name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB for '%s': %w", o.Name, err)
	}
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(o.MaxLifetime)

	if len(o.AutoMigrate) > 0 {
		if err := db.AutoMigrate(o.AutoMigrate...); err != nil {
			return nil, fmt.Errorf("auto migrate failed for '%s': %w", o.Name, err)
		}
	}

	return db, nil
}

// DatabaseFactory 数据库连接工厂，持有所有命名连接
type DatabaseFactory struct {
	dbs map[string]*gorm.DB
	mu  sync.RWMutex
}

// NewDatabaseFactory 创建连接工厂
func NewDatabaseFactory() *DatabaseFactory {
	return &DatabaseFactory{
		dbs: make(map[string]*gorm.DB),
	}
}

// Register 按配置打开数据库连接并注册
func (f *DatabaseFactory) Register(opts DatabaseOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.dbs[opts.Name]; exists {
		return fmt.Errorf("database '%s' already registered", opts.Name)
	}

	db, err := opts.open()
	if err != nil {
		return err
	}

	f.dbs[opts.Name] = db
	return nil
}

// Get 按名称获取连接
func (f *DatabaseFactory) Get(name string) (*gorm.DB, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	db, ok := f.dbs[name]
	if !ok {
		return nil, fmt.Errorf("database '%s' not found", name)
	}
	return db, nil
}

// Each 遍历所有连接
func (f *DatabaseFactory) Each(fn func(name string, db *gorm.DB)) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for name, db := range f.dbs {
		fn(name, db)
	}
}

// Close 关闭所有数据库连接
func (f *DatabaseFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, db := range f.dbs {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB for '%s': %w", name, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database '%s': %w", name, err))
		}
	}
	f.dbs = make(map[string]*gorm.DB)

	return errors.Join(errs...)
}
