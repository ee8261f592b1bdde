package di

import (
	"reflect"
	"sort"
)

// selectCandidate 在同类型候选中按限定符挑选唯一定义。
//
// 带名称：精确匹配，零个命中为 NoSuchBean，多个命中为 NonUnique。
// 不带名称：唯一候选直接返回；多候选时依次尝试唯一的 primary、
// 唯一的未命名候选，最后回落到注册顺序中的第一个。策略是确定性的，
// 同一注册集合下重复调用结果不变。
func selectCandidate(typ reflect.Type, name string, candidates []*BeanDefinition) (*BeanDefinition, error) {
	if name != "" {
		var hits []*BeanDefinition
		for _, d := range candidates {
			if d.Name == name {
				hits = append(hits, d)
			}
		}
		switch len(hits) {
		case 0:
			return nil, newNoSuchBean(typ, name)
		case 1:
			return hits[0], nil
		default:
			return nil, &NonUniqueBeanError{Type: typ, Names: candidateNames(hits)}
		}
	}

	switch len(candidates) {
	case 0:
		return nil, newNoSuchBean(typ, "")
	case 1:
		return candidates[0], nil
	}

	var primaries []*BeanDefinition
	for _, d := range candidates {
		if d.Primary {
			primaries = append(primaries, d)
		}
	}
	switch len(primaries) {
	case 1:
		return primaries[0], nil
	default:
		if len(primaries) > 1 {
			return nil, &NonUniqueBeanError{Type: typ, Names: candidateNames(primaries)}
		}
	}

	var unnamed []*BeanDefinition
	for _, d := range candidates {
		if d.Name == "" {
			unnamed = append(unnamed, d)
		}
	}
	if len(unnamed) == 1 {
		return unnamed[0], nil
	}

	return candidates[0], nil
}

// filterCandidates 按名称限定符收窄候选集，空名称不过滤。
func filterCandidates(candidates []*BeanDefinition, name string) []*BeanDefinition {
	if name == "" {
		return candidates
	}
	var hits []*BeanDefinition
	for _, d := range candidates {
		if d.Name == name {
			hits = append(hits, d)
		}
	}
	return hits
}

// orderCandidates 按 Order 稳定排序，权重相同保持注册顺序。
func orderCandidates(candidates []*BeanDefinition) []*BeanDefinition {
	out := make([]*BeanDefinition, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

func candidateNames(defs []*BeanDefinition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}
