package config

import "sync/atomic"

// ValueStore 以原子快照的方式保存一棵配置数据树
// 读取不加锁：Load 返回当前快照，Store 整体替换
// 调用方应把拿到的 map 当作只读，修改须通过 Store 替换
type ValueStore struct {
	snapshot atomic.Value // map[string]any
}

// NewValueStore 创建空的配置存储
func NewValueStore() *ValueStore {
	s := &ValueStore{}
	s.snapshot.Store(map[string]any{})
	return s
}

// Load 返回当前配置快照
func (s *ValueStore) Load() map[string]any {
	data, _ := s.snapshot.Load().(map[string]any)
	return data
}

// Store 用新数据整体替换当前快照
func (s *ValueStore) Store(data map[string]any) {
	s.snapshot.Store(data)
}
