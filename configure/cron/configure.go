package cron

import (
	"github.com/gocrud/beans/core"
	"github.com/gocrud/beans/logging"
)

// Configure 返回 Cron 配置器
// 使用示例: builder.Configure(cron.Configure(func(b *cron.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder()
		if options != nil {
			options(builder)
		}

		// 任务触发时才从容器解析依赖，构建阶段只需要上下文
		svc, err := builder.build(ctx, ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build cron service",
				logging.Field{Key: "error", Value: err.Error()})
		}

		ctx.AddHostedService(svc)
		ctx.GetLogger().Info("Cron service configured",
			logging.Field{Key: "jobs", Value: len(builder.jobs)})
	}
}
