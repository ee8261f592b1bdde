package di

import (
	"fmt"
	"reflect"
)

// tokenInterface Token 的通用接口（用于类型判断）
type tokenInterface interface {
	Name() string
	Type() reflect.Type
	String() string
}

// ProviderOptions 提供者的通用配置选项
type ProviderOptions struct {
	// Name 名称限定符，用于命名注入
	Name string

	// Scope 作用域类型，默认为 ScopeSingleton
	// 决定实例的生命周期：Singleton（单例）、Transient（瞬态）、Scoped（作用域内单例）
	Scope ScopeType

	// Primary 同类型多候选时优先选择该注册
	Primary bool

	// Order 集合注入时的排序权重，越小越靠前
	Order int
}

func (o ProviderOptions) apply(def *BeanDefinition) {
	def.Name = o.Name
	def.Scope = o.Scope
	def.Primary = o.Primary
	def.Order = o.Order
}

// TypeProvider 类型提供者配置，用于将接口绑定到具体实现
//
// 示例：
//
//	// 绑定接口到实现（使用构造函数）
//	container.Provide(di.TypeProvider{
//		Provide: di.TypeOf[UserService](),
//		UseType: NewUserService, // 构造函数
//	})
type TypeProvider struct {
	// Provide 提供的类型，通常是接口类型
	// 可以是 reflect.Type 或 Token
	Provide any

	// UseType 使用的类型，可以是实例、构造函数或 reflect.Type
	// 如果是构造函数，参数将自动注入
	UseType any

	// Options 可选配置
	Options ProviderOptions
}

// ValueProvider 值提供者配置，用于注册静态值
//
// 示例：
//
//	container.Provide(di.ValueProvider{
//		Provide: di.TypeOf[*Config](),
//		Value:   &Config{Port: 8080},
//	})
type ValueProvider struct {
	// Provide 提供的类型或 Token
	Provide any

	// Value 静态值，将直接使用此值（不会创建新实例）
	Value any

	// Options 可选配置
	Options ProviderOptions
}

// FactoryProvider 工厂提供者配置，用于通过工厂函数创建实例
//
// 示例：
//
//	container.Provide(di.FactoryProvider{
//		Provide: di.TypeOf[*Database](),
//		Factory: func(config *Config) (*Database, error) {
//			return OpenDatabase(config.DSN)
//		},
//	})
type FactoryProvider struct {
	// Provide 提供的类型或 Token
	Provide any

	// Factory 工厂函数，返回值的第一个参数是实例，可选的第二个参数是 error
	// 函数参数将自动注入
	Factory any

	// Deps 按参数位置指定依赖的名称限定符（可选）
	// 条目为 Token 时使用其名称；reflect.Type 或 nil 表示按类型解析
	Deps []any

	// Options 可选配置
	Options ProviderOptions
}

// ExistingProvider 别名提供者配置，用于创建类型别名
//
// 示例：
//
//	// 让 Logger 接口指向 *DefaultLogger 的注册
//	container.Provide(di.ExistingProvider{
//		Provide:  di.TypeOf[Logger](),
//		Existing: di.TypeOf[*DefaultLogger](),
//	})
type ExistingProvider struct {
	// Provide 提供的类型或 Token
	Provide any

	// Existing 引用的已存在类型
	// 当获取 Provide 类型时，实际返回 Existing 类型的实例
	Existing any

	// Options 可选配置
	Options ProviderOptions
}

// Provide 以声明式 provider 配置批量注册 bean。
// 接受 TypeProvider、ValueProvider、FactoryProvider、ExistingProvider
// 的值或指针形态；其他值走 RegisterAuto 的推断规则
// （构造函数、结构体指针、reflect.Type）。遇到第一个错误停止。
func (c *container) Provide(providers ...any) error {
	for _, p := range providers {
		var def *BeanDefinition
		var err error
		switch v := p.(type) {
		case TypeProvider:
			def, err = v.definition()
		case *TypeProvider:
			def, err = v.definition()
		case ValueProvider:
			def, err = v.definition()
		case *ValueProvider:
			def, err = v.definition()
		case FactoryProvider:
			def, err = v.definition()
		case *FactoryProvider:
			def, err = v.definition()
		case ExistingProvider:
			def, err = v.definition()
		case *ExistingProvider:
			def, err = v.definition()
		default:
			if _, err := RegisterAuto(c, p); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if err := c.Add(def); err != nil {
			return err
		}
	}
	return nil
}

func (tp TypeProvider) definition() (*BeanDefinition, error) {
	typ, name, err := resolveProvideTarget(tp.Provide)
	if err != nil {
		return nil, err
	}
	if t, ok := tp.Provide.(reflect.Type); ok && t.Kind() != reflect.Interface {
		return nil, fmt.Errorf("di: TypeProvider.Provide requires an interface type, got %v", t)
	}

	def := &BeanDefinition{Type: typ, Scope: ScopeSingleton}
	tp.Options.apply(def)
	if name != "" {
		def.Name = name
	}

	switch impl := tp.UseType.(type) {
	case nil:
		return nil, fmt.Errorf("di: TypeProvider.UseType is required")
	case reflect.Type:
		def.ImplType = impl
	default:
		if reflect.ValueOf(impl).Kind() == reflect.Func {
			def.ctor = impl
		} else {
			def.Provided = true
			def.value = impl
		}
	}
	return def, nil
}

func (vp ValueProvider) definition() (*BeanDefinition, error) {
	typ, name, err := resolveProvideTarget(vp.Provide)
	if err != nil {
		return nil, err
	}
	if vp.Value == nil {
		return nil, fmt.Errorf("di: ValueProvider.Value is required")
	}
	def := &BeanDefinition{Type: typ, Provided: true, value: vp.Value}
	vp.Options.apply(def)
	def.Scope = ScopeSingleton // 静态值只有单例语义
	if name != "" {
		def.Name = name
	}
	return def, nil
}

func (fp FactoryProvider) definition() (*BeanDefinition, error) {
	typ, name, err := resolveProvideTarget(fp.Provide)
	if err != nil {
		return nil, err
	}
	if fp.Factory == nil || reflect.ValueOf(fp.Factory).Kind() != reflect.Func {
		return nil, fmt.Errorf("di: FactoryProvider.Factory must be a function")
	}
	def := &BeanDefinition{Type: typ, ctor: fp.Factory}
	fp.Options.apply(def)
	if name != "" {
		def.Name = name
	}
	for _, dep := range fp.Deps {
		if tok, ok := dep.(tokenInterface); ok {
			def.ctorQualifiers = append(def.ctorQualifiers, tok.Name())
		} else {
			def.ctorQualifiers = append(def.ctorQualifiers, "")
		}
	}
	return def, nil
}

func (ep ExistingProvider) definition() (*BeanDefinition, error) {
	typ, name, err := resolveProvideTarget(ep.Provide)
	if err != nil {
		return nil, err
	}
	existingTyp, existingName, err := resolveProvideTarget(ep.Existing)
	if err != nil {
		return nil, err
	}

	// 别名不持有实例，生命周期归属被引用的注册
	def := &BeanDefinition{
		Type:     typ,
		Scope:    ScopeTransient,
		ImplType: existingTyp,
		alias:    true,
	}
	if ep.Options.Name != "" {
		def.Name = ep.Options.Name
	}
	if name != "" {
		def.Name = name
	}
	def.Ctor = &ConstructorInjection{direct: func(c Container) (any, error) {
		return c.GetNamed(existingTyp, existingName)
	}}
	return def, nil
}

// resolveProvideTarget 把 Provide/Existing 字段解析为 (类型, 名称)。
func resolveProvideTarget(provide any) (reflect.Type, string, error) {
	switch v := provide.(type) {
	case nil:
		return nil, "", fmt.Errorf("di: Provide field is required")
	case reflect.Type:
		return v, "", nil
	case tokenInterface:
		return v.Type(), v.Name(), nil
	default:
		typ := reflect.TypeOf(v)
		// 处理 (*Iface)(nil) 的习惯写法
		if typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Interface {
			return typ.Elem(), "", nil
		}
		return typ, "", nil
	}
}
