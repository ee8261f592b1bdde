package di

import (
	"fmt"
	"reflect"
)

// resolutionContext 承载一次顶层解析调用的全部可变状态。
// 每次公开入口调用都会创建新的上下文，独占于当前调用方 goroutine，
// 绝不跨并发调用共享或复用。scope 非空时作用域实例从它取。
type resolutionContext struct {
	host  *container
	scope *scope
	path  resolutionPath
}

// resolveType 是上下文的入口：把请求收敛为一个匿名参数再走统一分发。
func (rc *resolutionContext) resolveType(typ reflect.Type, name string) (any, error) {
	arg := newArgument("", typ, name, false)
	v, err := rc.resolveArgValue(&arg)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// resolveArgValue 按参数形状分发。形状在定义构建时一次性判定，
// 这里只做封闭的分支选择，不再做类型内省。
func (rc *resolutionContext) resolveArgValue(arg *Argument) (reflect.Value, error) {
	// 精确注册优先：目标容器形状本身被注册为 bean 时按单值返回
	if arg.shape != shapeSingle && rc.host.hasExact(arg.Type, arg.Qualifier) {
		return rc.resolveSingle(arg)
	}

	switch arg.shape {
	case shapeSlice, shapeSet, shapeQueue:
		return rc.resolveCollection(arg)
	case shapeStream:
		return rc.resolveStream(arg)
	case shapeProvider:
		return rc.resolveProvider(arg)
	default:
		return rc.resolveSingle(arg)
	}
}

func (rc *resolutionContext) resolveSingle(arg *Argument) (reflect.Value, error) {
	// 容器自身可以作为依赖注入
	if arg.Type == containerType {
		return valueAs(rc.host, arg.Type), nil
	}
	def, err := rc.host.findCandidate(arg.Type, arg.Qualifier)
	if err != nil {
		return reflect.Value{}, err
	}
	inst, err := rc.resolveDef(def)
	if err != nil {
		return reflect.Value{}, err
	}
	return valueAs(inst, arg.Type), nil
}

func (rc *resolutionContext) resolveCollection(arg *Argument) (reflect.Value, error) {
	elem, err := arg.elemType()
	if err != nil {
		return reflect.Value{}, err
	}
	defs := orderCandidates(filterCandidates(rc.host.candidatesOf(elem), arg.Qualifier))
	elems := make([]reflect.Value, 0, len(defs))
	for _, def := range defs {
		inst, err := rc.resolveDef(def)
		if err != nil {
			return reflect.Value{}, err
		}
		elems = append(elems, valueAs(inst, elem))
	}
	switch arg.shape {
	case shapeSet:
		return coerceSet(arg.Type, elems)
	case shapeQueue:
		return coerceQueue(arg.Type, elems)
	default:
		return coerceSlice(arg.Type, elems)
	}
}

func (rc *resolutionContext) resolveStream(arg *Argument) (reflect.Value, error) {
	elem, err := arg.elemType()
	if err != nil {
		return reflect.Value{}, err
	}
	defs := orderCandidates(filterCandidates(rc.host.candidatesOf(elem), arg.Qualifier))
	if arg.lazy {
		return makeLazyStream(rc.host, rc.scope, arg.Type, defs), nil
	}
	elems := make([]reflect.Value, 0, len(defs))
	for _, def := range defs {
		inst, err := rc.resolveDef(def)
		if err != nil {
			return reflect.Value{}, err
		}
		elems = append(elems, valueAs(inst, elem))
	}
	return makeEagerStream(arg.Type, elems), nil
}

func (rc *resolutionContext) resolveProvider(arg *Argument) (reflect.Value, error) {
	elem, err := arg.elemType()
	if err != nil {
		return reflect.Value{}, err
	}
	return makeProviderValue(rc.host, rc.scope, arg.Type, elem, arg.Qualifier), nil
}

// container 返回直调闭包可见的容器：作用域内解析时是作用域本身。
func (rc *resolutionContext) container() Container {
	if rc.scope != nil {
		return rc.scope
	}
	return rc.host
}

// resolveDef 按作用域取实例。构造前先查链路：若该定义已在链路上，
// 说明构造重入，直接报环而不是触碰单例单元。
// sync.Once 不可重入，这一步同时挡掉了自依赖造成的死锁。
func (rc *resolutionContext) resolveDef(def *BeanDefinition) (any, error) {
	if rc.path.owns(def) {
		return nil, rc.path.cycleTo(def)
	}

	// 别名直接转发给被引用的注册
	if def.alias {
		return def.Ctor.direct(rc.container())
	}

	switch def.Scope {
	case ScopeTransient:
		return rc.buildInstance(def)
	case ScopeScoped:
		if rc.scope == nil {
			return nil, fmt.Errorf("di: cannot resolve scoped bean %v from the root container, use CreateScope()", def.Type)
		}
		return rc.scope.resolve(def, rc)
	default:
		def.singletonOnce.Do(func() {
			def.singletonInst, def.singletonErr = rc.buildInstance(def)
		})
		return def.singletonInst, def.singletonErr
	}
}

// buildInstance 完成一个实例的完整装配：构造、字段注入、方法注入、
// post-construct 钩子，最后按需启动并登记销毁。任何一步失败都不发布实例。
func (rc *resolutionContext) buildInstance(def *BeanDefinition) (any, error) {
	holder, deref, err := rc.construct(def)
	if err != nil {
		return nil, err
	}
	if err := rc.injectFields(def, holder); err != nil {
		return nil, err
	}
	if err := rc.invokeInjectionMethods(def, holder); err != nil {
		return nil, err
	}
	if err := rc.runPostConstruct(def, holder); err != nil {
		return nil, err
	}

	inst := holder.Interface()
	if deref {
		inst = holder.Elem().Interface()
	}
	if err := initializeInstance(def, inst); err != nil {
		return nil, err
	}
	// 瞬态实例不受管，调用方自行清理
	switch def.Scope {
	case ScopeSingleton:
		rc.host.trackInstance(def, holder)
	case ScopeScoped:
		rc.scope.trackInstance(def, holder)
	}
	return inst, nil
}

// construct 返回实例的持有者形态。结构体值模式先以指针形态持有，
// 注入完成后再解引用，保证字段可寻址。
func (rc *resolutionContext) construct(def *BeanDefinition) (holder reflect.Value, deref bool, err error) {
	if def.Provided {
		return reflect.ValueOf(def.value), false, nil
	}

	ctor := def.Ctor
	if ctor.direct != nil {
		inst, err := ctor.direct(rc.container())
		if err != nil {
			return reflect.Value{}, false, &BeanInstantiationError{Type: def.Type, Cause: err}
		}
		return reflect.ValueOf(inst), false, nil
	}

	if ctor.invoker != nil {
		args := make([]reflect.Value, len(ctor.Args))
		for i := range ctor.Args {
			v, err := rc.resolveCtorArg(def, &ctor.Args[i])
			if err != nil {
				return reflect.Value{}, false, err
			}
			args[i] = v
		}
		inst, err := ctor.invoker(args)
		if err != nil {
			return reflect.Value{}, false, &BeanInstantiationError{Type: def.Type, Cause: err}
		}
		return reflect.ValueOf(inst), false, nil
	}

	// 结构体模式：依赖全部经由字段注入
	if def.ImplType.Kind() == reflect.Pointer {
		return reflect.New(def.ImplType.Elem()), false, nil
	}
	return reflect.New(def.ImplType), true, nil
}

func (rc *resolutionContext) resolveCtorArg(def *BeanDefinition, arg *Argument) (reflect.Value, error) {
	if err := rc.path.pushConstructorArg(def, arg); err != nil {
		return reflect.Value{}, err
	}
	v, err := rc.resolveArgValue(arg)
	if err != nil {
		return reflect.Value{}, wrapInjectionError(&rc.path, arg.describe(), err)
	}
	rc.path.pop()
	return v, nil
}

func (rc *resolutionContext) injectFields(def *BeanDefinition, holder reflect.Value) error {
	if len(def.Fields) == 0 {
		return nil
	}
	structVal := holder
	if structVal.Kind() == reflect.Pointer {
		structVal = structVal.Elem()
	}
	for i := range def.Fields {
		f := &def.Fields[i]
		depth := rc.path.depth()
		if err := rc.path.pushField(def, f); err != nil {
			return err
		}
		v, err := rc.resolveArgValue(&f.Arg)
		if err != nil {
			if f.Arg.Optional && IsNoSuchBean(err) {
				// 可选依赖缺席：保持零值，回退链路继续下一个字段
				rc.path.truncate(depth)
				continue
			}
			return wrapInjectionError(&rc.path, f.Arg.Name, err)
		}
		rc.path.pop()
		structVal.Field(f.Index).Set(v)
	}
	return nil
}

// invokeInjectionMethods 按声明顺序调用非钩子的方法注入点。
func (rc *resolutionContext) invokeInjectionMethods(def *BeanDefinition, holder reflect.Value) error {
	for i := range def.Methods {
		m := &def.Methods[i]
		if m.PostConstruct || m.PreDestroy {
			continue
		}
		if err := rc.callMethod(def, holder, m); err != nil {
			return err
		}
	}
	return nil
}

// runPostConstruct 在注入完成后按声明顺序调用 post-construct 钩子。
func (rc *resolutionContext) runPostConstruct(def *BeanDefinition, holder reflect.Value) error {
	for i := range def.Methods {
		m := &def.Methods[i]
		if !m.PostConstruct {
			continue
		}
		if err := rc.callMethod(def, holder, m); err != nil {
			return err
		}
	}
	return nil
}

// runPreDestroy 在实例销毁前按声明顺序调用 pre-destroy 钩子。
func (rc *resolutionContext) runPreDestroy(def *BeanDefinition, holder reflect.Value) error {
	for i := range def.Methods {
		m := &def.Methods[i]
		if !m.PreDestroy {
			continue
		}
		if err := rc.callMethod(def, holder, m); err != nil {
			return err
		}
	}
	return nil
}

func (rc *resolutionContext) callMethod(def *BeanDefinition, holder reflect.Value, m *MethodInjection) error {
	args := make([]reflect.Value, len(m.Args))
	for i := range m.Args {
		if err := rc.path.pushMethodArg(def, m.Name, &m.Args[i]); err != nil {
			return err
		}
		v, err := rc.resolveArgValue(&m.Args[i])
		if err != nil {
			return wrapInjectionError(&rc.path, m.Args[i].describe(), err)
		}
		rc.path.pop()
		args[i] = v
	}
	if err := invokeMethod(holder, m.Name, args); err != nil {
		return &BeanInstantiationError{Type: def.Type, Cause: err}
	}
	return nil
}

// injectExisting 对外部已有实例执行字段与方法注入，不运行生命周期钩子。
func (rc *resolutionContext) injectExisting(target any) error {
	typ := reflect.TypeOf(target)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return errInjectTarget(typ)
	}
	if reflect.ValueOf(target).IsNil() {
		return fmt.Errorf("di: inject target of %v is a nil pointer", typ)
	}
	def := &BeanDefinition{Type: typ, ImplType: typ, Provided: true, value: target}
	if err := def.finalize(); err != nil {
		return err
	}
	holder := reflect.ValueOf(target)
	if err := rc.injectFields(def, holder); err != nil {
		return err
	}
	return rc.invokeInjectionMethods(def, holder)
}
