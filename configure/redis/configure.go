package redis

import (
	"github.com/gocrud/beans/core"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
	"github.com/redis/go-redis/v9"
)

// Configure 返回 Redis 配置器
// 使用示例: builder.Configure(redis.Configure(func(b *redis.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder()
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build redis clients",
				logging.Field{Key: "error", Value: err.Error()})
		}
		if factory == nil {
			return
		}

		// 注册工厂
		di.Register[*RedisClientFactory](ctx.Container(), di.WithValue(factory))

		// 每个客户端按名称注册，default 客户端同时注册为无名默认实例
		factory.Each(func(name string, client *redis.Client) {
			di.Register[*redis.Client](ctx.Container(), di.WithName(name), di.WithValue(client))
			ctx.GetLogger().Info("Redis client registered to DI",
				logging.Field{Key: "name", Value: name})

			if name == "default" {
				di.Register[*redis.Client](ctx.Container(), di.WithValue(client))
				ctx.GetLogger().Info("Default redis client registered to DI (unnamed)")
			}
		})

		// 注册清理函数
		ctx.SetCleanup("redis", func() {
			ctx.GetLogger().Info("Closing redis clients")
			if err := factory.Close(); err != nil {
				ctx.GetLogger().Error("Failed to close redis clients",
					logging.Field{Key: "error", Value: err.Error()})
			}
		})
	}
}
