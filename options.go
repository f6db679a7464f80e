package easystack

import (
	"fmt"

	"go.uber.org/zap"
)

// Allocator returns a zeroed buffer of exactly size bytes for a new chunk.
type Allocator func(size int) ([]byte, error)

type Options struct {
	// 每个chunk的容量（字节）
	ChunkSize int
	// PushElement / PopElement 使用的记录大小
	RecordSize int
	// nil 表示不输出日志
	Logger *zap.Logger
	// nil 表示使用内置的缓冲池
	Allocator Allocator
}

var DefaultOptions = Options{
	ChunkSize:  64 * KB,
	RecordSize: 64 * B,
}

func (o Options) validate() error {
	if o.ChunkSize <= headerWidth {
		return fmt.Errorf("%w: chunk size %d must exceed header width %d", ErrInvalidOptions, o.ChunkSize, headerWidth)
	}
	if o.RecordSize < 0 {
		return fmt.Errorf("%w: negative record size %d", ErrInvalidOptions, o.RecordSize)
	}
	return nil
}
