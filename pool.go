package easystack

import (
	"bytes"
	"sync"
)

// 编码 缓存
type bufferPool struct {
	buffer sync.Pool
}

var defaultBuffer = newBufferPool()

func newBufferPool() *bufferPool {
	return &bufferPool{
		buffer: sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
	}
}

func (b *bufferPool) Get() *bytes.Buffer {
	return b.buffer.Get().(*bytes.Buffer)
}

func (b *bufferPool) Put(buf *bytes.Buffer) {
	buf.Reset()
	b.buffer.Put(buf)
}

// chunk 缓存，按容量分池

var defaultChunkPool = &chunkPool{}

type chunkPool struct {
	pools sync.Map // int -> *sync.Pool
}

func (p *chunkPool) pool(size int) *sync.Pool {
	if v, ok := p.pools.Load(size); ok {
		return v.(*sync.Pool)
	}
	v, _ := p.pools.LoadOrStore(size, &sync.Pool{
		New: func() any {
			buf := make([]byte, size)
			return &buf
		},
	})
	return v.(*sync.Pool)
}

func (p *chunkPool) Get(size int) ([]byte, error) {
	buf := *(p.pool(size).Get().(*[]byte))
	return buf[:size], nil
}

func (p *chunkPool) Put(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	buf = buf[:cap(buf)]
	clear(buf)
	p.pool(len(buf)).Put(&buf)
}
