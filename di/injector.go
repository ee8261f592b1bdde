package di

import (
	"fmt"
	"reflect"
)

// defaultContainer 全局默认容器，配合包级便捷函数使用。
// Build 即预热全部单例，应用启动期就暴露装配错误。
// 应用装配层（core.ApplicationBuilder）默认也落在这里。
var defaultContainer = NewContainer(WithEagerInit())

// Default 返回全局默认容器。
func Default() Container {
	return defaultContainer
}

// Reset 重建全局默认容器。仅用于测试隔离。
func Reset() {
	defaultContainer = NewContainer(WithEagerInit())
}

// Provide 在默认容器上注册 provider 配置。
func Provide(providers ...any) error {
	return defaultContainer.Provide(providers...)
}

// ProvideType 在默认容器上注册类型提供者。
func ProvideType(tp TypeProvider) error {
	return defaultContainer.Provide(tp)
}

// ProvideValue 在默认容器上注册值提供者。
func ProvideValue(vp ValueProvider) error {
	return defaultContainer.Provide(vp)
}

// ProvideFactory 在默认容器上注册工厂提供者。
func ProvideFactory(fp FactoryProvider) error {
	return defaultContainer.Provide(fp)
}

// ProvideExisting 在默认容器上注册别名提供者。
func ProvideExisting(ep ExistingProvider) error {
	return defaultContainer.Provide(ep)
}

// Bind 绑定接口 T 到实现（实例、构造函数或类型），失败时 panic。
// 使用示例: di.Bind[Logger](&ConsoleLogger{})
func Bind[T any](impl any) {
	if err := ProvideType(TypeProvider{Provide: TypeOf[T](), UseType: impl}); err != nil {
		panic("di.Bind failed: " + err.Error())
	}
}

// BindTo 将接口 T 别名到已存在的注册，失败时 panic。
// 使用示例: di.BindTo[Closer](di.TypeOf[*FileStore]())
func BindTo[T any](existing any) {
	if err := ProvideExisting(ExistingProvider{Provide: TypeOf[T](), Existing: existing}); err != nil {
		panic("di.BindTo failed: " + err.Error())
	}
}

// Build 校验并冻结默认容器。
func Build() error {
	return defaultContainer.Build()
}

// MustBuild 校验并冻结默认容器，失败时 panic。
func MustBuild() {
	if err := Build(); err != nil {
		panic("di.MustBuild failed: " + err.Error())
	}
}

// Shutdown 关闭默认容器，逆序销毁全部受管实例。
func Shutdown() error {
	return defaultContainer.Close()
}

// Inject 从默认容器中注入类型 T 的实例，失败时 panic。
// 支持两种用法：
// 1. di.Inject[T]() - 按类型注入
// 2. di.Inject[T](token) - 按 Token 注入
func Inject[T any](tokenOrNil ...any) T {
	instance, err := TryInject[T](tokenOrNil...)
	if err != nil {
		panic("di.Inject failed: " + err.Error())
	}
	return instance
}

// TryInject 从默认容器中注入实例，返回实例和错误。
func TryInject[T any](tokenOrNil ...any) (T, error) {
	var zero T
	name := ""

	if len(tokenOrNil) > 0 && tokenOrNil[0] != nil {
		token, ok := tokenOrNil[0].(tokenInterface)
		if !ok {
			return zero, fmt.Errorf("di: invalid token parameter %T", tokenOrNil[0])
		}
		if want := reflect.TypeOf((*T)(nil)).Elem(); token.Type() != want {
			return zero, fmt.Errorf("di: token %v does not match requested type %v", token, want)
		}
		name = token.Name()
	}
	return ResolveNamed[T](defaultContainer, name)
}

// InjectOrDefault 从默认容器中注入实例，如果不存在则返回默认值。
func InjectOrDefault[T any](defaultValue T, tokenOrNil ...any) T {
	instance, err := TryInject[T](tokenOrNil...)
	if err != nil {
		return defaultValue
	}
	return instance
}

// InjectInto 对外部已有实例执行字段与方法注入（默认容器）。
func InjectInto(target any) error {
	return defaultContainer.Inject(target)
}
