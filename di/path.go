package di

import (
	"fmt"
	"strings"
)

type segmentKind int

const (
	segConstructor segmentKind = iota
	segField
	segMethod
)

// pathSegment 是解析路径上的一个注入点：声明方定义、注入点种类
// 以及当前正在解析的参数。
type pathSegment struct {
	def  *BeanDefinition
	kind segmentKind
	name string // 字段或方法名
	arg  *Argument
}

func (s pathSegment) String() string {
	switch s.kind {
	case segConstructor:
		return fmt.Sprintf("new(%v)%s", s.def.ImplType, s.arg.describe())
	case segField:
		return fmt.Sprintf("(%v).%s", s.def.ImplType, s.name)
	default:
		return fmt.Sprintf("(%v).%s()%s", s.def.ImplType, s.name, s.arg.describe())
	}
}

// resolutionPath 记录从最初请求到当前注入点的链路。
// 解析成功弹出段，失败保留整条链路供错误渲染。
type resolutionPath struct {
	segments []pathSegment
}

func (p *resolutionPath) pushConstructorArg(def *BeanDefinition, arg *Argument) error {
	return p.push(pathSegment{def: def, kind: segConstructor, arg: arg})
}

func (p *resolutionPath) pushField(def *BeanDefinition, field *FieldInjection) error {
	return p.push(pathSegment{def: def, kind: segField, name: field.Arg.Name, arg: &field.Arg})
}

func (p *resolutionPath) pushMethodArg(def *BeanDefinition, method string, arg *Argument) error {
	return p.push(pathSegment{def: def, kind: segMethod, name: method, arg: arg})
}

func (p *resolutionPath) push(seg pathSegment) error {
	for _, s := range p.segments {
		if s.def == seg.def && s.kind == seg.kind && s.name == seg.name &&
			s.arg.Name == seg.arg.Name && s.arg.Type == seg.arg.Type {
			return &CircularDependencyError{Chain: p.renderCycle(seg.String())}
		}
	}
	p.segments = append(p.segments, seg)
	return nil
}

func (p *resolutionPath) pop() {
	if n := len(p.segments); n > 0 {
		p.segments = p.segments[:n-1]
	}
}

func (p *resolutionPath) depth() int {
	return len(p.segments)
}

// truncate 回退链路到给定深度，用于可选依赖缺席后的继续解析。
func (p *resolutionPath) truncate(n int) {
	if n <= len(p.segments) {
		p.segments = p.segments[:n]
	}
}

// owns 报告某个定义是否已经出现在链路上，即其构造尚未完成。
func (p *resolutionPath) owns(def *BeanDefinition) bool {
	for _, s := range p.segments {
		if s.def == def {
			return true
		}
	}
	return false
}

func (p *resolutionPath) empty() bool {
	return len(p.segments) == 0
}

func (p *resolutionPath) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	parts := make([]string, len(p.segments))
	for i, s := range p.segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, " --> ")
}

// renderCycle 渲染闭合的环：既有链路加上重复出现的那一段。
func (p *resolutionPath) renderCycle(closing string) string {
	if len(p.segments) == 0 {
		return closing
	}
	return p.String() + " --> " + closing
}

// cycleTo 在即将重复构造 def 时渲染环。
func (p *resolutionPath) cycleTo(def *BeanDefinition) *CircularDependencyError {
	return &CircularDependencyError{Chain: p.renderCycle(fmt.Sprintf("new(%v)", def.ImplType))}
}
