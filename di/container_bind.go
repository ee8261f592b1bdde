package di

// BindWith 绑定接口到实现（容器实例版本）
// 使用示例: di.BindWith[Logger](container, &ConsoleLogger{})
func BindWith[T any](c Container, impl any) error {
	return c.Provide(TypeProvider{
		Provide: TypeOf[T](),
		UseType: impl,
	})
}

// BindToWith 创建别名（容器实例版本）
// 使用示例: di.BindToWith[Closer](container, di.TypeOf[*FileStore]())
func BindToWith[T any](c Container, existing any) error {
	return c.Provide(ExistingProvider{
		Provide:  TypeOf[T](),
		Existing: existing,
	})
}
