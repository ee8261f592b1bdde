// Package beans 提供应用程序入口的轻量封装。
// 典型用法:
//
//	beans.New().
//		Configure(configure.Web(func(b *web.Builder) { ... })).
//		Build().
//		Run()
package beans

import "github.com/gocrud/beans/core"

// New 创建应用程序构建器，这是构建应用的入口点
func New() *core.ApplicationBuilder {
	return core.NewApplicationBuilder()
}

// Run 用给定配置器构建并运行应用，阻塞直到收到退出信号。
// 适合不需要自定义配置和日志的小型程序。
func Run(configurators ...interface{}) error {
	return New().Configure(configurators...).Build().Run()
}
