package di

import "reflect"

// Option 配置一次 bean 注册。
type Option func(*BeanDefinition)

// WithScope 设置 bean 的生命周期。
func WithScope(scope ScopeType) Option {
	return func(d *BeanDefinition) {
		d.Scope = scope
	}
}

// WithSingleton 将生命周期设置为 Singleton（默认）。
func WithSingleton() Option {
	return WithScope(ScopeSingleton)
}

// WithTransient 将生命周期设置为 Transient。
func WithTransient() Option {
	return WithScope(ScopeTransient)
}

// WithScoped 将生命周期设置为 Scoped。
func WithScoped() Option {
	return WithScope(ScopeScoped)
}

// WithValue 注册一个外部构造好的实例。
// 容器不再调用构造函数，只做字段注入与销毁钩子。
func WithValue(v any) Option {
	return func(d *BeanDefinition) {
		d.value = v
		d.Provided = true
		d.Scope = ScopeSingleton
	}
}

// WithFactory 注册一个构造函数，参数将被逐个解析注入。
func WithFactory(fn any) Option {
	return func(d *BeanDefinition) {
		d.ctor = fn
	}
}

// WithFactoryFunc 注册一个直调工厂闭包。
// 闭包收到容器本身，适合需要按名取依赖的装配代码。
func WithFactoryFunc(fn func(c Container) (any, error)) Option {
	return func(d *BeanDefinition) {
		d.Ctor = &ConstructorInjection{direct: fn}
	}
}

// WithName 设置 bean 的名称限定符，用于命名注入。
func WithName(name string) Option {
	return func(d *BeanDefinition) {
		d.Name = name
	}
}

// WithPrimary 在同类型多候选时优先选择该 bean。
func WithPrimary() Option {
	return func(d *BeanDefinition) {
		d.Primary = true
	}
}

// WithOrder 设置集合注入时的排序权重，越小越靠前。
func WithOrder(order int) Option {
	return func(d *BeanDefinition) {
		d.Order = order
	}
}

// WithPostConstruct 将实现类型上的方法标记为构造后钩子。
func WithPostConstruct(method string) Option {
	return func(d *BeanDefinition) {
		d.AddPostConstruct(method)
	}
}

// WithPreDestroy 将实现类型上的方法标记为销毁前钩子。
func WithPreDestroy(method string) Option {
	return func(d *BeanDefinition) {
		d.AddPreDestroy(method)
	}
}

// WithInjectMethod 将实现类型上的方法注册为方法注入点，
// 实例构造后按声明顺序调用，参数逐个解析。
func WithInjectMethod(method string) Option {
	return func(d *BeanDefinition) {
		d.AddMethodInjection(method)
	}
}

// Use 指定接口的实现类型，依赖经由字段注入。
func Use[T any]() Option {
	return func(d *BeanDefinition) {
		d.ImplType = reflect.TypeOf((*T)(nil)).Elem()
	}
}
