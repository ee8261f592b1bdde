package di

import (
	"fmt"
	"reflect"
	"sync"
)

// ScopeType 定义了 bean 的生命周期。
type ScopeType int

const (
	// ScopeSingleton 每个容器一个实例（默认）。
	ScopeSingleton ScopeType = iota
	// ScopeTransient 每次解析创建一个新实例。
	ScopeTransient
	// ScopeScoped 每个作用域一个实例。
	ScopeScoped
)

func (s ScopeType) String() string {
	switch s {
	case ScopeSingleton:
		return "singleton"
	case ScopeTransient:
		return "transient"
	case ScopeScoped:
		return "scoped"
	default:
		return fmt.Sprintf("ScopeType(%d)", int(s))
	}
}

// BeanKey 是注册表的唯一键：类型加名称限定符。
type BeanKey struct {
	Type reflect.Type
	Name string
}

func (k BeanKey) String() string {
	if k.Name != "" {
		return fmt.Sprintf("%v(name=%s)", k.Type, k.Name)
	}
	return fmt.Sprintf("%v", k.Type)
}

// FieldInjection 描述一个需要注入的结构体字段。
// 字段的类型与限定符收敛为一个隐式参数。
type FieldInjection struct {
	Index int
	Arg   Argument
}

// MethodInjection 描述一个通过方法传递依赖的注入点。
// 同一个方法可以同时是注入点和 post-construct 或 pre-destroy 钩子；
// 标记一旦置位不再复位。
type MethodInjection struct {
	Name          string
	Args          []Argument
	PostConstruct bool
	PreDestroy    bool
}

// ConstructorInjection 描述构造注入点。
// invoker 为反射调用路径；direct 为注册时捕获的闭包直调路径，
// 两者满足同一契约，direct 非空时优先。
type ConstructorInjection struct {
	Args    []Argument
	invoker Invoker
	direct  func(c Container) (any, error)
}

// BeanDefinition 聚合一个 bean 的全部装配元数据：作用域、构造注入点、
// 字段与方法注入点、生命周期钩子，以及构造期累计的依赖组件类型集合。
// 注册阶段可以继续追加注入点，加入容器后冻结。
type BeanDefinition struct {
	ID       int
	Type     reflect.Type // 服务类型（接口或具体类型）
	Name     string
	Scope    ScopeType
	ImplType reflect.Type // 实例的运行时类型
	Primary  bool
	Order    int
	Provided bool // 外部构造的实例，容器只负责注入与销毁

	Ctor    *ConstructorInjection
	Fields  []FieldInjection
	Methods []MethodInjection

	value any  // Provided 实例
	ctor  any  // 构造函数（finalize 前暂存）
	alias bool // 别名定义：直接委托给被引用的注册，不装配不受管

	ctorQualifiers []string // 按位置覆盖构造参数的名称限定符

	requiredTypes []reflect.Type
	requiredSeen  map[reflect.Type]struct{}

	pendingMethods []pendingMethod
	finalized      bool

	// 单例单元：恰好一次构造尝试，失败同样缓存。
	singletonOnce sync.Once
	singletonInst any
	singletonErr  error
}

type pendingMethod struct {
	name string
	post bool
	pre  bool
}

// Key 返回定义的注册键。定义的同一性由键决定。
func (d *BeanDefinition) Key() BeanKey {
	return BeanKey{Type: d.Type, Name: d.Name}
}

// AddMethodInjection 注册一个方法注入点（按方法名，加入容器时绑定）。
func (d *BeanDefinition) AddMethodInjection(name string) {
	d.addPending(name, false, false)
}

// AddPostConstruct 将方法标记为 post-construct 钩子。
func (d *BeanDefinition) AddPostConstruct(name string) {
	d.addPending(name, true, false)
}

// AddPreDestroy 将方法标记为 pre-destroy 钩子。
func (d *BeanDefinition) AddPreDestroy(name string) {
	d.addPending(name, false, true)
}

func (d *BeanDefinition) addPending(name string, post, pre bool) {
	if d.finalized {
		panic(fmt.Sprintf("di: definition %v is frozen, register injection points before Add", d.Type))
	}
	for i := range d.pendingMethods {
		if d.pendingMethods[i].name == name {
			d.pendingMethods[i].post = d.pendingMethods[i].post || post
			d.pendingMethods[i].pre = d.pendingMethods[i].pre || pre
			return
		}
	}
	d.pendingMethods = append(d.pendingMethods, pendingMethod{name: name, post: post, pre: pre})
}

// RequiredComponents 返回构造该 bean 所需的组件类型，累计自全部注入点。
// 容器形状记录其元素类型；延迟形状与可选依赖不计入。
func (d *BeanDefinition) RequiredComponents() []reflect.Type {
	out := make([]reflect.Type, len(d.requiredTypes))
	copy(out, d.requiredTypes)
	return out
}

func (d *BeanDefinition) addRequired(arg *Argument) {
	if arg.Optional {
		return
	}
	var typ reflect.Type
	switch arg.shape {
	case shapeSingle:
		typ = arg.Type
	case shapeSlice, shapeSet, shapeQueue:
		if len(arg.Elem) == 1 && arg.Elem[0] != anyType {
			typ = arg.Elem[0]
		}
	default:
		// provider 与 stream 延迟到使用时解析，不属于构造期依赖
		return
	}
	if typ == nil {
		return
	}
	if d.requiredSeen == nil {
		d.requiredSeen = make(map[reflect.Type]struct{})
	}
	if _, ok := d.requiredSeen[typ]; ok {
		return
	}
	d.requiredSeen[typ] = struct{}{}
	d.requiredTypes = append(d.requiredTypes, typ)
}

// finalize 在定义加入容器时执行一次：补全实现类型、解析构造函数签名、
// 扫描字段标签、绑定方法注入点并累计依赖组件集合。
func (d *BeanDefinition) finalize() error {
	if d.finalized {
		return nil
	}

	if d.ImplType == nil {
		d.ImplType = d.Type
	}

	if d.alias {
		// 别名只转发解析，没有自己的注入点
		d.finalized = true
		return nil
	}

	if d.Provided {
		if d.value == nil {
			return fmt.Errorf("di: provided bean %v has no value", d.Type)
		}
		valType := reflect.TypeOf(d.value)
		if !valType.AssignableTo(d.Type) {
			return fmt.Errorf("di: provided value of type %v is not assignable to %v", valType, d.Type)
		}
		d.ImplType = valType
	} else if err := d.finalizeConstructor(); err != nil {
		return err
	}

	if err := d.analyzeFields(); err != nil {
		return err
	}
	// 非结构体模式下实例由外部产出，值类型不可寻址无法回填字段
	if len(d.Fields) > 0 && d.ImplType.Kind() != reflect.Pointer && !d.structMode() {
		return fmt.Errorf("di: field injection on %v requires a pointer instance", d.Type)
	}
	if err := d.bindMethods(); err != nil {
		return err
	}

	for i := range d.Fields {
		d.addRequired(&d.Fields[i].Arg)
	}
	for i := range d.Methods {
		for j := range d.Methods[i].Args {
			d.addRequired(&d.Methods[i].Args[j])
		}
	}

	d.finalized = true
	return nil
}

// structMode 报告实例是否由容器经 reflect.New 分配。
func (d *BeanDefinition) structMode() bool {
	return !d.Provided && d.Ctor != nil && d.Ctor.invoker == nil && d.Ctor.direct == nil
}

func (d *BeanDefinition) finalizeConstructor() error {
	if d.Ctor != nil && d.Ctor.direct != nil {
		return nil // 直调闭包，无静态参数元数据
	}

	if d.ctor != nil {
		fnType := reflect.TypeOf(d.ctor)
		if fnType.Kind() != reflect.Func {
			return fmt.Errorf("di: constructor for %v must be a function, got %v", d.Type, fnType.Kind())
		}
		if fnType.IsVariadic() {
			return fmt.Errorf("di: variadic constructor is not supported for %v", d.Type)
		}
		switch fnType.NumOut() {
		case 1:
			if fnType.Out(0) == errorType {
				return fmt.Errorf("di: constructor for %v must return a value, got only error", d.Type)
			}
		case 2:
			if fnType.Out(1) != errorType {
				return fmt.Errorf("di: constructor for %v may only return (value, error)", d.Type)
			}
		default:
			return fmt.Errorf("di: constructor for %v must return (value) or (value, error)", d.Type)
		}
		if !fnType.Out(0).AssignableTo(d.Type) {
			return fmt.Errorf("di: constructor return type %v is not assignable to %v", fnType.Out(0), d.Type)
		}
		d.ImplType = fnType.Out(0)

		args := make([]Argument, fnType.NumIn())
		for i := 0; i < fnType.NumIn(); i++ {
			qualifier := ""
			if i < len(d.ctorQualifiers) {
				qualifier = d.ctorQualifiers[i]
			}
			args[i] = newArgument("", fnType.In(i), qualifier, false)
			d.addRequired(&args[i])
		}
		d.Ctor = &ConstructorInjection{
			Args:    args,
			invoker: newCallInvoker(reflect.ValueOf(d.ctor)),
		}
		return nil
	}

	// 结构体模式：reflect.New 实例化，依赖全部经由字段注入
	structType := d.ImplType
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("di: cannot instantiate %v, register a constructor or a value", d.Type)
	}
	d.Ctor = &ConstructorInjection{}
	return nil
}

// analyzeFields 扫描实现类型上带 di 标签的字段。
func (d *BeanDefinition) analyzeFields() error {
	structType := d.ImplType
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tag, ok := field.Tag.Lookup("di")
		if !ok {
			continue
		}
		if field.PkgPath != "" {
			return fmt.Errorf("di: cannot inject unexported field %s.%s", structType, field.Name)
		}
		name, optional := parseFieldTag(tag)
		arg := newArgument(field.Name, field.Type, name, optional)
		d.Fields = append(d.Fields, FieldInjection{Index: i, Arg: arg})
	}
	return nil
}

// bindMethods 将按名注册的方法注入点绑定到实现类型。
func (d *BeanDefinition) bindMethods() error {
	if len(d.pendingMethods) == 0 {
		return nil
	}
	for _, pm := range d.pendingMethods {
		// 接口通道已覆盖的钩子不再按名注册，避免二次调用
		if pm.name == "PostConstruct" && d.ImplType.Implements(initializableType) {
			continue
		}
		if pm.name == "PreDestroy" && d.ImplType.Implements(disposableType) {
			continue
		}
		method, ok := d.ImplType.MethodByName(pm.name)
		if !ok {
			return fmt.Errorf("di: method %q not found on %v", pm.name, d.ImplType)
		}
		mt := method.Func.Type()
		// In(0) 是接收者
		args := make([]Argument, mt.NumIn()-1)
		for i := 1; i < mt.NumIn(); i++ {
			args[i-1] = newArgument("", mt.In(i), "", false)
		}
		if mt.NumOut() > 1 || (mt.NumOut() == 1 && mt.Out(0) != errorType) {
			return fmt.Errorf("di: injection method %v.%s may only return error", d.ImplType, pm.name)
		}
		d.Methods = append(d.Methods, MethodInjection{
			Name:          pm.name,
			Args:          args,
			PostConstruct: pm.post,
			PreDestroy:    pm.pre,
		})
	}
	d.pendingMethods = nil
	return nil
}
