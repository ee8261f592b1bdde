package config

import (
	"strings"
	"sync"
)

// 配置键同时接受 : 和 . 作为层级分隔符，"app:db.host" 与 "app.db.host" 等价

// PathCache 缓存键到层级片段的解析结果，零值可用
type PathCache struct {
	segments sync.Map // string -> []string
}

// GetPathSegments 返回键的层级片段，结果会被缓存复用
func (c *PathCache) GetPathSegments(key string) []string {
	if cached, ok := c.segments.Load(key); ok {
		return cached.([]string)
	}

	parts := strings.Split(strings.ReplaceAll(key, ":", "."), ".")
	c.segments.Store(key, parts)
	return parts
}

var globalPathCache PathCache
