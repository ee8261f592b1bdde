package di

import (
	"fmt"
	"reflect"
)

// Invoker 实例化调用器
// 封装了反射调用的细节，预先检查错误和返回值
type Invoker func(args []reflect.Value) (any, error)

// newCallInvoker 包装一个构造函数值。
// 约定：最后一个返回值若为 error 则参与失败判定，首个返回值为实例。
func newCallInvoker(fn reflect.Value) Invoker {
	return func(args []reflect.Value) (any, error) {
		results := fn.Call(args)
		if len(results) == 0 {
			return nil, fmt.Errorf("constructor returned no values")
		}

		// 检查 error
		if len(results) > 1 {
			last := results[len(results)-1]
			if last.Type() == errorType && !last.IsNil() {
				return nil, last.Interface().(error)
			}
		}

		// 检查 nil
		first := results[0]
		if first.Kind() == reflect.Pointer || first.Kind() == reflect.Interface {
			if first.IsNil() {
				return nil, fmt.Errorf("constructor returned nil instance")
			}
		}

		return first.Interface(), nil
	}
}

// invokeMethod 以绑定接收者的方式调用注入方法或生命周期钩子。
// 按名查找以兼容持有者形态是指针而注册类型是值的情况。
func invokeMethod(holder reflect.Value, name string, args []reflect.Value) error {
	results := holder.MethodByName(name).Call(args)
	if len(results) == 1 && !results[0].IsNil() {
		return results[0].Interface().(error)
	}
	return nil
}
