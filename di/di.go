package di

import (
	"fmt"
	"iter"
	"reflect"
)

// RegisterAuto 智能注册 bean。
// 它可以接受构造函数、结构体指针或类型，并自动推断服务类型和注册方式。
//
// 支持的输入 target 类型:
// 1. func(...) (T, error?) -> 注册为构造函数，服务类型为第一个返回值。
// 2. *Struct               -> 注册为已有实例 (单例)，服务类型为 *Struct。
//   - 带 `di` 标签的字段在解析时自动注入。
//
// 3. reflect.Type          -> 结构体注入模式，服务类型为该 Type。
func RegisterAuto(c Container, target any, opts ...Option) (reflect.Type, error) {
	var def *BeanDefinition
	var serviceType reflect.Type

	if typeVal, ok := target.(reflect.Type); ok {
		serviceType = typeVal
		def = &BeanDefinition{
			Type:     serviceType,
			Scope:    ScopeSingleton,
			ImplType: serviceType,
		}
	} else {
		targetVal := reflect.ValueOf(target)
		switch targetVal.Kind() {
		case reflect.Func:
			fnType := targetVal.Type()
			if fnType.NumOut() == 0 {
				return nil, fmt.Errorf("di: constructor function must return at least one value")
			}
			// 推断服务类型为第一个返回值
			serviceType = fnType.Out(0)
			def = &BeanDefinition{
				Type:  serviceType,
				Scope: ScopeSingleton,
				ctor:  target,
			}
		case reflect.Pointer:
			serviceType = targetVal.Type()
			def = &BeanDefinition{
				Type:     serviceType,
				Scope:    ScopeSingleton,
				Provided: true,
				value:    target,
			}
		default:
			return nil, fmt.Errorf("di: unsupported auto-registration target type: %T", target)
		}
	}

	for _, opt := range opts {
		opt(def)
	}

	if err := c.Add(def); err != nil {
		return nil, err
	}
	return serviceType, nil
}

// Register registers a bean of type T with the container.
// If T is an interface, use di.Use[Impl]() or di.WithFactory to supply the implementation.
func Register[T any](c Container, opts ...Option) {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	def := &BeanDefinition{
		Type:  typ,
		Scope: ScopeSingleton, // Default scope
	}

	for _, opt := range opts {
		opt(def)
	}

	if err := c.Add(def); err != nil {
		panic(fmt.Sprintf("di: failed to register %v: %v", typ, err))
	}
}

// Resolve resolves an instance of type T from the container or scope.
func Resolve[T any](c Container) (T, error) {
	return ResolveNamed[T](c, "")
}

// ResolveNamed resolves an instance of type T with a specific name from the container or scope.
func ResolveNamed[T any](c Container, name string) (T, error) {
	var zero T
	typ := reflect.TypeOf((*T)(nil)).Elem()

	val, err := c.GetNamed(typ, name)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}

	if v, ok := val.(T); ok {
		return v, nil
	}
	return zero, fmt.Errorf("di: resolved value is %T, expected %v", val, typ)
}

// ResolveAll resolves every bean assignable to T, in registration order.
func ResolveAll[T any](c Container) ([]T, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	vals, err := c.GetAll(typ)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vals))
	for _, val := range vals {
		v, ok := val.(T)
		if !ok {
			return nil, fmt.Errorf("di: resolved value is %T, expected %v", val, typ)
		}
		out = append(out, v)
	}
	return out, nil
}

// Provider 是 T 的延迟工厂句柄：每次调用按需解析，而不是注入时持有实例。
type Provider[T any] func() (T, error)

// ProviderOf returns a deferred factory handle for T bound to the container.
// An optional name narrows the handle to a named bean.
func ProviderOf[T any](c Container, name ...string) Provider[T] {
	n := ""
	if len(name) > 0 {
		n = name[0]
	}
	return func() (T, error) {
		return ResolveNamed[T](c, n)
	}
}

// StreamOf returns a lazy sequence over every bean assignable to T.
// Each element is resolved when the consumer reaches it; iteration ends
// after the first error is yielded.
func StreamOf[T any](c Container) iter.Seq2[T, error] {
	typ := reflect.TypeOf((*iter.Seq2[T, error])(nil)).Elem()
	val, err := c.Get(typ)
	if err != nil {
		return func(yield func(T, error) bool) {
			var zero T
			yield(zero, err)
		}
	}
	return val.(iter.Seq2[T, error])
}
