package database

import (
	"github.com/gocrud/beans/core"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
	"gorm.io/gorm"
)

// Configure 返回数据库配置器
// 使用示例: builder.Configure(database.Configure(func(b *database.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder(ctx)
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build databases",
				logging.Field{Key: "error", Value: err.Error()})
		}
		if factory == nil {
			return
		}

		// 注册工厂
		di.Register[*DatabaseFactory](ctx.Container(), di.WithValue(factory))

		// 每个连接按名称注册，default 连接同时注册为无名默认实例
		factory.Each(func(name string, db *gorm.DB) {
			di.Register[*gorm.DB](ctx.Container(), di.WithName(name), di.WithValue(db))
			ctx.GetLogger().Info("Database client registered to DI",
				logging.Field{Key: "name", Value: name})

			if name == "default" {
				di.Register[*gorm.DB](ctx.Container(), di.WithValue(db))
				ctx.GetLogger().Info("Default database registered to DI (unnamed)")
			}
		})

		// 注册清理函数
		ctx.SetCleanup("database", func() {
			ctx.GetLogger().Info("Closing database connections")
			if err := factory.Close(); err != nil {
				ctx.GetLogger().Error("Failed to close databases",
					logging.Field{Key: "error", Value: err.Error()})
			}
		})
	}
}
