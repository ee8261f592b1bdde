package logging

import (
	"bytes"
	"sync"
)

// bufferPool 字节缓冲池，复用 buffer 减少格式化分配
type bufferPool struct {
	pool sync.Pool
}

func newBufferPool() *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
	}
}

func (p *bufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

func (p *bufferPool) Put(b *bytes.Buffer) {
	// 超大 buffer 不回池，避免长期占用内存
	if b.Cap() > 1<<16 {
		return
	}
	b.Reset()
	p.pool.Put(b)
}

// bufPool 包内共享的缓冲池实例
var bufPool = newBufferPool()
