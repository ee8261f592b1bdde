package di

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// NoSuchBeanError 表示请求的类型（和名称）没有匹配的注册。
// 它总是在查找点产生，并在每个注入点被重新包装为
// DependencyInjectionError，以便最终错误携带完整的解析路径。
type NoSuchBeanError struct {
	Type reflect.Type
	Name string
}

func (e *NoSuchBeanError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("di: no bean of type %v with name %q found", e.Type, e.Name)
	}
	return fmt.Sprintf("di: no bean of type %v found", e.Type)
}

// NonUniqueBeanError 表示限定符匹配到多个候选。
type NonUniqueBeanError struct {
	Type  reflect.Type
	Names []string
}

func (e *NonUniqueBeanError) Error() string {
	names := make([]string, len(e.Names))
	for i, n := range e.Names {
		if n == "" {
			n = "<unnamed>"
		}
		names[i] = n
	}
	return fmt.Sprintf("di: multiple candidate beans of type %v found [%s], use a name qualifier or mark one as primary",
		e.Type, strings.Join(names, ", "))
}

// CircularDependencyError 表示解析路径检测到对同一 bean 的重入解析。
// Chain 按从外到内的顺序记录完整链路。
type CircularDependencyError struct {
	Chain string
}

func (e *CircularDependencyError) Error() string {
	return "di: circular dependency detected: " + e.Chain
}

// DependencyInjectionError 是对外可见的注入失败：携带失败时刻的
// 解析路径快照、失败的参数描述以及底层原因。
type DependencyInjectionError struct {
	Path     string
	Argument string
	Cause    error
}

func (e *DependencyInjectionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("di: failed to inject %s: %v", e.Argument, e.Cause)
	}
	return fmt.Sprintf("di: failed to inject %s (path: %s): %v", e.Argument, e.Path, e.Cause)
}

func (e *DependencyInjectionError) Unwrap() error { return e.Cause }

// BeanInstantiationError 表示构造函数、注入方法或生命周期钩子执行失败。
type BeanInstantiationError struct {
	Type  reflect.Type
	Cause error
}

func (e *BeanInstantiationError) Error() string {
	return fmt.Sprintf("di: error instantiating bean of type %v: %v", e.Type, e.Cause)
}

func (e *BeanInstantiationError) Unwrap() error { return e.Cause }

// IsNoSuchBean 报告 err 链中是否包含 NoSuchBeanError。
func IsNoSuchBean(err error) bool {
	var target *NoSuchBeanError
	return errors.As(err, &target)
}

// IsCircularDependency 报告 err 链中是否包含 CircularDependencyError。
func IsCircularDependency(err error) bool {
	var target *CircularDependencyError
	return errors.As(err, &target)
}

func newNoSuchBean(typ reflect.Type, name string) error {
	return &NoSuchBeanError{Type: typ, Name: name}
}

func errInjectTarget(typ reflect.Type) error {
	return fmt.Errorf("di: inject target must be a pointer to struct, got %v", typ)
}

// wrapInjectionError 将底层原因包装为 DependencyInjectionError。
// 已携带路径的错误（更深注入点的包装、循环依赖、实例化失败）原样传递，
// 避免逐层套娃；最内层的包装点已经拍下完整路径快照。
func wrapInjectionError(path *resolutionPath, argument string, cause error) error {
	var inj *DependencyInjectionError
	var circ *CircularDependencyError
	var inst *BeanInstantiationError
	if errors.As(cause, &inj) || errors.As(cause, &circ) || errors.As(cause, &inst) {
		return cause
	}
	return &DependencyInjectionError{
		Path:     path.String(),
		Argument: argument,
		Cause:    cause,
	}
}
