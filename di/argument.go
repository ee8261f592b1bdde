package di

import (
	"fmt"
	"reflect"
	"strings"
)

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	anyType    = reflect.TypeOf((*any)(nil)).Elem()
	structType = reflect.TypeOf(struct{}{})
)

// argShape 是参数形状的封闭枚举。形状在构建定义时派生一次，
// 解析期间只做标签分发，不再做类型内省。
type argShape uint8

const (
	// shapeSingle 普通单值依赖。
	shapeSingle argShape = iota
	// shapeSlice 切片（有序列表），按发现顺序收集全部候选。
	shapeSlice
	// shapeSet 集合，map[T]struct{}，去重且无序。
	shapeSet
	// shapeQueue 队列，chan T 或 <-chan T，预填充后关闭。
	shapeQueue
	// shapeStream 序列，iter.Seq[T]（注入时物化）或 iter.Seq2[T, error]（迭代时惰性解析）。
	shapeStream
	// shapeProvider 延迟工厂，Provider[T]、func() (T, error) 或 func() T。
	shapeProvider
)

func (s argShape) String() string {
	switch s {
	case shapeSingle:
		return "single"
	case shapeSlice:
		return "slice"
	case shapeSet:
		return "set"
	case shapeQueue:
		return "queue"
	case shapeStream:
		return "stream"
	case shapeProvider:
		return "provider"
	}
	return "unknown"
}

// Argument 是一个注入位置的不可变元数据：名称、标称类型、
// 元素类型参数（容器形状时恰好一个）、可选的名称限定符。
type Argument struct {
	Name      string
	Type      reflect.Type
	Elem      []reflect.Type
	Qualifier string
	Optional  bool

	shape argShape
	// lazy 仅对 shapeStream 有意义：iter.Seq2[T, error] 在迭代时才解析元素。
	lazy bool
}

// newArgument 构建参数元数据并派生形状。
func newArgument(name string, typ reflect.Type, qualifier string, optional bool) Argument {
	shape, elem, lazy := detectShape(typ)
	arg := Argument{
		Name:      name,
		Type:      typ,
		Qualifier: qualifier,
		Optional:  optional,
		shape:     shape,
		lazy:      lazy,
	}
	if elem != nil {
		arg.Elem = []reflect.Type{elem}
	}
	return arg
}

// detectShape 判定类型的参数形状并提取元素类型。
// 命名类型按底层种类归类（reflect.Kind 本身就穿透命名）。
func detectShape(typ reflect.Type) (argShape, reflect.Type, bool) {
	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		return shapeSlice, typ.Elem(), false

	case reflect.Map:
		if typ.Elem() == structType {
			return shapeSet, typ.Key(), false
		}

	case reflect.Chan:
		return shapeQueue, typ.Elem(), false

	case reflect.Func:
		// iter.Seq[T] = func(yield func(T) bool)
		// iter.Seq2[T, error] = func(yield func(T, error) bool)
		if typ.NumIn() == 1 && typ.NumOut() == 0 {
			yield := typ.In(0)
			if yield.Kind() == reflect.Func && !yield.IsVariadic() &&
				yield.NumOut() == 1 && yield.Out(0).Kind() == reflect.Bool {
				if yield.NumIn() == 1 {
					return shapeStream, yield.In(0), false
				}
				if yield.NumIn() == 2 && yield.In(1) == errorType {
					return shapeStream, yield.In(0), true
				}
			}
		}
		// Provider[T] / func() (T, error) / func() T
		if typ.NumIn() == 0 {
			if typ.NumOut() == 2 && typ.Out(1) == errorType {
				return shapeProvider, typ.Out(0), false
			}
			if typ.NumOut() == 1 && typ.Out(0) != errorType {
				return shapeProvider, typ.Out(0), false
			}
		}
	}
	return shapeSingle, nil, false
}

// elemType 返回容器形状参数的元素类型。手工组装的定义可以显式声明
// Elem；声明数量不为一、或元素为 any 时无法确定 bean 类型。
func (a *Argument) elemType() (reflect.Type, error) {
	if len(a.Elem) != 1 {
		return nil, fmt.Errorf("expected exactly 1 type argument for %v, got %d", a.Type, len(a.Elem))
	}
	elem := a.Elem[0]
	if elem == anyType {
		return nil, fmt.Errorf("expected exactly 1 concrete type argument for %v, element resolved to any", a.Type)
	}
	return elem, nil
}

// describe 渲染参数用于路径与错误消息，如 [repo *pkg.UserRepo]。
func (a *Argument) describe() string {
	if a.Name != "" {
		return fmt.Sprintf("[%s %v]", a.Name, a.Type)
	}
	return fmt.Sprintf("[%v]", a.Type)
}

// parseFieldTag 解析 di 结构体标签。
// 支持的形式: di:"" (必需)、di:"name"、di:"?"、di:",?"、di:"name,?"、di:"optional"。
func parseFieldTag(tag string) (name string, optional bool) {
	first := tag
	rest := ""
	if i := strings.IndexByte(tag, ','); i >= 0 {
		first = tag[:i]
		rest = tag[i+1:]
	}
	switch first {
	case "?", "optional":
		return "", true
	default:
		name = first
	}
	switch rest {
	case "?", "optional":
		optional = true
	}
	return name, optional
}
