package di

import (
	"fmt"
	"reflect"
)

// errUnsupportedTarget 标记集合注入无法物化的目标形状。
func errUnsupportedTarget(target reflect.Type) error {
	return fmt.Errorf("unsupported target type %v for multi-value injection", target)
}

// valueAs 将实例装入指定静态类型的 reflect.Value，
// 接口目标完成装箱，nil 得到零值。
func valueAs(inst any, typ reflect.Type) reflect.Value {
	v := reflect.New(typ).Elem()
	if inst != nil {
		v.Set(reflect.ValueOf(inst))
	}
	return v
}

// coerceSlice 按发现顺序物化切片。定长数组属于封闭形状之外，拒绝。
func coerceSlice(target reflect.Type, elems []reflect.Value) (reflect.Value, error) {
	if target.Kind() != reflect.Slice {
		return reflect.Value{}, errUnsupportedTarget(target)
	}
	out := reflect.MakeSlice(target, 0, len(elems))
	for _, e := range elems {
		out = reflect.Append(out, e)
	}
	return out, nil
}

// coerceSet 物化集合语义的 map[T]struct{}，重复元素自然去重。
func coerceSet(target reflect.Type, elems []reflect.Value) (reflect.Value, error) {
	out := reflect.MakeMapWithSize(target, len(elems))
	unit := reflect.Zero(target.Elem())
	for _, e := range elems {
		out.SetMapIndex(e, unit)
	}
	return out, nil
}

// coerceQueue 物化 FIFO 队列：已填充并关闭的带缓冲 channel，
// 接收端按发现顺序取完后得到零值。只写方向无法消费，拒绝。
func coerceQueue(target reflect.Type, elems []reflect.Value) (reflect.Value, error) {
	if target.ChanDir() == reflect.SendDir {
		return reflect.Value{}, errUnsupportedTarget(target)
	}
	chanType := target
	if target.ChanDir() != reflect.BothDir {
		chanType = reflect.ChanOf(reflect.BothDir, target.Elem())
	}
	ch := reflect.MakeChan(chanType, len(elems))
	for _, e := range elems {
		ch.Send(e)
	}
	ch.Close()
	if chanType != target {
		return ch.Convert(target), nil
	}
	return ch, nil
}

// makeProviderValue 构造延迟工厂句柄：零参可调用，每次调用时
// 以全新的解析上下文取 bean。单返回值形态没有错误通道，失败时 panic。
// 句柄捕获创建它的作用域，作用域实例照常可达。
func makeProviderValue(host *container, s *scope, target, elem reflect.Type, name string) reflect.Value {
	withErr := target.NumOut() == 2
	return reflect.MakeFunc(target, func([]reflect.Value) []reflect.Value {
		inst, err := host.resolveFresh(elem, name, s)
		if withErr {
			errVal := reflect.Zero(errorType)
			if err != nil {
				errVal = reflect.ValueOf(err)
				inst = nil
			}
			return []reflect.Value{valueAs(inst, target.Out(0)), errVal}
		}
		if err != nil {
			panic(err)
		}
		return []reflect.Value{valueAs(inst, target.Out(0))}
	})
}

// makeEagerStream 基于已解析的实例构造 iter.Seq 形态的序列。
func makeEagerStream(target reflect.Type, elems []reflect.Value) reflect.Value {
	return reflect.MakeFunc(target, func(args []reflect.Value) []reflect.Value {
		yield := args[0]
		for _, e := range elems {
			if !yield.Call([]reflect.Value{e})[0].Bool() {
				break
			}
		}
		return nil
	})
}

// makeLazyStream 基于候选定义快照构造 iter.Seq2 形态的惰性序列：
// 每个元素在迭代时才以全新上下文解析，产出第一个错误后终止。
func makeLazyStream(host *container, s *scope, target reflect.Type, defs []*BeanDefinition) reflect.Value {
	elem := target.In(0).In(0)
	return reflect.MakeFunc(target, func(args []reflect.Value) []reflect.Value {
		yield := args[0]
		for _, def := range defs {
			inst, err := host.resolveDefFresh(def, s)
			elemVal := reflect.Zero(elem)
			errVal := reflect.Zero(errorType)
			if err != nil {
				errVal = reflect.ValueOf(err)
			} else {
				elemVal = valueAs(inst, elem)
			}
			if !yield.Call([]reflect.Value{elemVal, errVal})[0].Bool() {
				return nil
			}
			if err != nil {
				// 第一个错误之后终止序列
				return nil
			}
		}
		return nil
	})
}
