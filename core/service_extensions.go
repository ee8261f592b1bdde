package core

import (
	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/logging"
)

// AddSingleton 将接口 T 绑定到实现 impl，并注册为单例
// impl 可以是实例，也可以是构造函数
//
// 示例:
//
//	core.AddSingleton[IService](services, NewServiceImpl)
func AddSingleton[T any](s *ServiceCollection, impl any) {
	provideAs[T](s, impl, di.ScopeSingleton)
}

// AddTransient 将接口 T 绑定到实现 impl，并注册为瞬态服务
// impl 可以是实例，也可以是构造函数
//
// 示例:
//
//	core.AddTransient[IWorker](services, NewWorker)
func AddTransient[T any](s *ServiceCollection, impl any) {
	provideAs[T](s, impl, di.ScopeTransient)
}

// AddScoped 将接口 T 绑定到实现 impl，并注册为作用域服务
// impl 可以是实例，也可以是构造函数
//
// 示例:
//
//	core.AddScoped[IRequestScope](services, NewRequestScope)
func AddScoped[T any](s *ServiceCollection, impl any) {
	provideAs[T](s, impl, di.ScopeScoped)
}

func provideAs[T any](s *ServiceCollection, impl any, scope di.ScopeType) {
	err := s.container.Provide(di.TypeProvider{
		Provide: di.TypeOf[T](),
		UseType: impl,
		Options: di.ProviderOptions{
			Scope: scope,
		},
	})
	if err != nil {
		s.logger.Error("Failed to register service",
			logging.Field{Key: "type", Value: di.TypeOf[T]().String()},
			logging.Field{Key: "error", Value: err.Error()})
	}
}
