package di

import (
	"fmt"
	"strings"
)

// validateGraph 在 Build 时静态校验依赖图：必需依赖缺失、限定符歧义
// 与定义环在这里一次性暴露，而不是等到运行期第一次解析。
// 延迟形状（provider、惰性序列）不参与连边，可选依赖只在已注册时连边。
func (c *container) validateGraph() error {
	adj := make([][]int, len(c.defs))
	for _, def := range c.defs {
		edges, err := c.dependencyEdges(def)
		if err != nil {
			return err
		}
		adj[def.ID] = edges
	}

	// 基于 DFS 的环检测
	const (
		white = iota
		grey
		black
	)
	state := make([]int, len(c.defs))
	var chain []*BeanDefinition

	var visit func(u int) error
	visit = func(u int) error {
		state[u] = grey
		chain = append(chain, c.defs[u])
		for _, v := range adj[u] {
			switch state[v] {
			case white:
				if err := visit(v); err != nil {
					return err
				}
			case grey:
				return &CircularDependencyError{Chain: renderDefChain(chain, c.defs[v])}
			}
		}
		chain = chain[:len(chain)-1]
		state[u] = black
		return nil
	}

	for _, def := range c.defs {
		if state[def.ID] == white {
			if err := visit(def.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// dependencyEdges 把一个定义的全部注入点按形状规则翻译成图的边。
func (c *container) dependencyEdges(def *BeanDefinition) ([]int, error) {
	var edges []int

	add := func(arg *Argument) error {
		switch arg.shape {
		case shapeProvider, shapeStream:
			return nil
		case shapeSingle:
			if arg.Type == containerType {
				return nil
			}
			target, err := selectCandidate(arg.Type, arg.Qualifier, c.candidatesOf(arg.Type))
			if err != nil {
				if arg.Optional && IsNoSuchBean(err) {
					return nil
				}
				return fmt.Errorf("di: invalid dependency graph for %v: %w", def.Key(), err)
			}
			if err := checkCaptive(def, target); err != nil {
				return err
			}
			edges = append(edges, target.ID)
			return nil
		default:
			// 容器形状：优先精确注册，否则连到全部元素候选
			if d, ok := c.byKey[BeanKey{Type: arg.Type, Name: arg.Qualifier}]; ok {
				if err := checkCaptive(def, d); err != nil {
					return err
				}
				edges = append(edges, d.ID)
				return nil
			}
			elem, err := arg.elemType()
			if err != nil {
				return fmt.Errorf("di: invalid dependency graph for %v: %w", def.Key(), err)
			}
			for _, d := range filterCandidates(c.candidatesOf(elem), arg.Qualifier) {
				if err := checkCaptive(def, d); err != nil {
					return err
				}
				edges = append(edges, d.ID)
			}
			return nil
		}
	}

	if def.Ctor != nil {
		for i := range def.Ctor.Args {
			if err := add(&def.Ctor.Args[i]); err != nil {
				return nil, err
			}
		}
	}
	for i := range def.Fields {
		if err := add(&def.Fields[i].Arg); err != nil {
			return nil, err
		}
	}
	for i := range def.Methods {
		for j := range def.Methods[i].Args {
			if err := add(&def.Methods[i].Args[j]); err != nil {
				return nil, err
			}
		}
	}
	return edges, nil
}

// scopeRank 的序表达生命周期的宽窄：单例最宽，瞬态最窄。
func scopeRank(s ScopeType) int {
	switch s {
	case ScopeSingleton:
		return 0
	case ScopeScoped:
		return 1
	default:
		return 2
	}
}

// checkCaptive 拒绝宽生命周期持有窄生命周期的直接依赖：
// 单例抓住瞬态（或作用域）实例后，后者就退化成了事实上的单例。
// 想延迟到每次使用时再解析的话改注入 Provider。
func checkCaptive(owner, target *BeanDefinition) error {
	if owner.alias || target.alias {
		return nil
	}
	if scopeRank(target.Scope) > scopeRank(owner.Scope) {
		return fmt.Errorf("di: %v bean %v cannot depend on %v bean %v, inject a provider to defer resolution",
			owner.Scope, owner.Key(), target.Scope, target.Key())
	}
	return nil
}

// renderDefChain 从环的入口开始渲染类型链，末尾重复闭环类型。
func renderDefChain(chain []*BeanDefinition, closing *BeanDefinition) string {
	start := 0
	for i, d := range chain {
		if d == closing {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(chain)-start+1)
	for _, d := range chain[start:] {
		parts = append(parts, fmt.Sprintf("%v", d.Type))
	}
	parts = append(parts, fmt.Sprintf("%v", closing.Type))
	return strings.Join(parts, " --> ")
}
