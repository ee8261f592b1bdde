package core

import "fmt"

// Extension 应用程序扩展的基础接口
// 扩展至少要实现 ServiceConfigurator 和 AppConfigurator 中的一个
type Extension interface {
	// Name 返回扩展名称，用于日志和错误信息
	Name() string
}

// ServiceConfigurator 在 ConfigureServices 阶段向 DI 容器注册服务
type ServiceConfigurator interface {
	ConfigureServices(services *ServiceCollection)
}

// AppConfigurator 在 Configure 阶段配置构建上下文
// 用于注册 Options、HostedService 等
type AppConfigurator interface {
	ConfigureBuilder(ctx *BuildContext)
}

// validateExtension 校验扩展实现了至少一个受支持的接口，否则 panic
func validateExtension(ext Extension) {
	if _, ok := ext.(ServiceConfigurator); ok {
		return
	}
	if _, ok := ext.(AppConfigurator); ok {
		return
	}
	panic(fmt.Sprintf("beans: Extension '%s' does not implement any supported interfaces (ServiceConfigurator, AppConfigurator). \n"+
		"Check if your method signatures exactly match the interface definitions.", ext.Name()))
}
