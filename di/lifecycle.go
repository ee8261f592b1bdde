package di

import (
	"errors"
	"reflect"
)

// Initializable 实例在装配完成后初始化自身。
// 等价于把 PostConstruct 方法注册为构造后钩子，但走直调而非反射。
type Initializable interface {
	PostConstruct() error
}

// Disposable 实例在容器关闭时释放资源。
type Disposable interface {
	PreDestroy() error
}

// Lifecycle 描述长生命周期组件的启停能力。
// Start 在全部构造后钩子之后调用，Stop 在全部销毁前钩子之后调用。
type Lifecycle interface {
	Start() error
	Stop() error
}

var (
	initializableType = reflect.TypeOf((*Initializable)(nil)).Elem()
	disposableType    = reflect.TypeOf((*Disposable)(nil)).Elem()
)

// initializeInstance 运行接口形态的初始化与启动钩子。
func initializeInstance(def *BeanDefinition, inst any) error {
	if init, ok := inst.(Initializable); ok {
		if err := init.PostConstruct(); err != nil {
			return &BeanInstantiationError{Type: def.Type, Cause: err}
		}
	}
	if lc, ok := inst.(Lifecycle); ok {
		if err := lc.Start(); err != nil {
			return &BeanInstantiationError{Type: def.Type, Cause: err}
		}
	}
	return nil
}

// destroyInstance 逆装配方向清理一个实例：先按声明顺序跑 pre-destroy
// 方法钩子，再走 Disposable，最后停掉 Lifecycle。错误聚合返回，
// 任何一步失败都不会中断后续清理。
func destroyInstance(host *container, s *scope, def *BeanDefinition, holder reflect.Value) error {
	var errs []error

	rc := host.freshContext(s)
	if err := rc.runPreDestroy(def, holder); err != nil {
		errs = append(errs, err)
	}

	inst := holder.Interface()
	if d, ok := inst.(Disposable); ok {
		if err := d.PreDestroy(); err != nil {
			errs = append(errs, &BeanInstantiationError{Type: def.Type, Cause: err})
		}
	}
	if lc, ok := inst.(Lifecycle); ok {
		if err := lc.Stop(); err != nil {
			errs = append(errs, &BeanInstantiationError{Type: def.Type, Cause: err})
		}
	}
	return errors.Join(errs...)
}
