package etcd

import (
	"github.com/gocrud/beans/core"
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Configure 返回 Etcd 配置器
// 使用示例: builder.Configure(etcd.Configure(func(b *etcd.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder(ctx)
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build etcd clients",
				logging.Field{Key: "error", Value: err.Error()})
		}
		if factory == nil {
			return
		}

		// 注册工厂
		di.Register[*EtcdClientFactory](ctx.Container(), di.WithValue(factory))

		// 每个客户端按名称注册，default 客户端同时注册为无名默认实例
		factory.Each(func(name string, client *clientv3.Client) {
			di.Register[*clientv3.Client](ctx.Container(), di.WithName(name), di.WithValue(client))
			ctx.GetLogger().Info("Etcd client registered to DI",
				logging.Field{Key: "name", Value: name})

			if name == "default" {
				di.Register[*clientv3.Client](ctx.Container(), di.WithValue(client))
				ctx.GetLogger().Info("Default etcd client registered to DI (unnamed)")
			}
		})

		// 注册清理函数
		ctx.SetCleanup("etcd", func() {
			ctx.GetLogger().Info("Closing etcd clients")
			if err := factory.Close(); err != nil {
				ctx.GetLogger().Error("Failed to close etcd clients",
					logging.Field{Key: "error", Value: err.Error()})
			}
		})
	}
}
