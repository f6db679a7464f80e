package listdir

import (
	"github.com/gofish2020/easystack"
	"go.uber.org/zap"
)

// Options configures ListDir.
type Options struct {
	// 起始目录
	Dir string
	// 是否递归子目录
	Recurse bool
	// 文件名的glob模式，为空表示全部文件
	Patterns []string
	// 回溯栈每个chunk的大小
	ChunkSize int
	// 缓存的目录列表个数，0 表示不缓存
	ListingCacheSize int
	Logger           *zap.Logger
}

// DefaultOptions walks recursively with a 256KB chunk stack.
var DefaultOptions = Options{
	Recurse:          true,
	ChunkSize:        256 * easystack.KB,
	ListingCacheSize: 128,
}
