// Package listdir walks a directory tree depth first. Pending directories are
// kept as encoded cursors on an easystack.Stack instead of the call stack.
package listdir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/gofish2020/easystack"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Callback receives the full path and the bare name of an entry.
type Callback func(fullPath, name string) error

// Result summarizes a walk: entry totals and backtracking stack usage.
type Result struct {
	TotalFiles uint64
	TotalDirs  uint64
	// 无法读取而跳过的子目录
	SkippedDirs uint64

	// 回溯栈的统计
	Allocations uint64
	Frees       uint64
	PeakChunks  int
	ChunkSize   int
}

type walker struct {
	option   Options
	logger   *zap.Logger
	patterns []glob.Glob
	listings *lru.Cache[string, []os.DirEntry]
	onFile   Callback
	onDir    Callback
}

func newWalker(option Options, onFile, onDir Callback) (*walker, error) {
	w := &walker{
		option: option,
		logger: option.Logger,
		onFile: onFile,
		onDir:  onDir,
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}

	for _, pattern := range option.Patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
		}
		w.patterns = append(w.patterns, g)
	}

	if option.ListingCacheSize > 0 {
		cache, err := lru.New[string, []os.DirEntry](option.ListingCacheSize)
		if err != nil {
			return nil, err
		}
		w.listings = cache
	}
	return w, nil
}

func (w *walker) match(name string) bool {
	if len(w.patterns) == 0 {
		return true
	}
	for _, g := range w.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// list returns the sorted entries of dir, from the cache when possible.
func (w *walker) list(dir string) ([]os.DirEntry, error) {
	if w.listings != nil {
		if entries, ok := w.listings.Get(dir); ok {
			return entries, nil
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	if w.listings != nil {
		w.listings.Add(dir, entries)
	}
	return entries, nil
}

func (w *walker) forget(dir string) {
	if w.listings != nil {
		w.listings.Remove(dir)
	}
}

// ListDir reports every entry under option.Dir. Directories go to onDir and
// files (anything that is not a directory, symlinks included) to onFile;
// either callback may be nil. Symlinks are never followed. Subdirectories that
// cannot be read are skipped and counted in Result.SkippedDirs.
//
// The walk stops at the first callback error or when ctx is done.
func ListDir(ctx context.Context, option Options, onFile, onDir Callback) (result Result, err error) {
	if option.ChunkSize <= 0 {
		option.ChunkSize = DefaultOptions.ChunkSize
	}
	w, err := newWalker(option, onFile, onDir)
	if err != nil {
		return result, err
	}

	root := filepath.Clean(option.Dir)
	info, err := os.Stat(root)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrDirNotFound, err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("%w: %s is not a directory", ErrDirNotFound, root)
	}
	entries, err := w.list(root)
	if err != nil {
		return result, fmt.Errorf("%w: cannot read %s: %w", ErrDirNotFound, root, err)
	}

	stack, err := easystack.New(easystack.Options{
		ChunkSize: option.ChunkSize,
		Logger:    w.logger,
	})
	if err != nil {
		return result, err
	}
	result.ChunkSize = option.ChunkSize
	result.PeakChunks = 1
	defer func() {
		// 提前退出时释放剩余的cursor
		stack.Drain()
		stats := stack.Stats()
		result.Allocations = stats.Allocations
		result.Frees = stats.Frees
	}()

	cur := cursor{dir: root}
	for {
		descended := false
		for cur.next < len(entries) {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			entry := entries[cur.next]
			cur.next++
			name := entry.Name()
			fullPath := filepath.Join(cur.dir, name)

			if !entry.IsDir() {
				if !w.match(name) {
					continue
				}
				result.TotalFiles++
				if w.onFile != nil {
					if err := w.onFile(fullPath, name); err != nil {
						return result, fmt.Errorf("process file %s: %w", fullPath, err)
					}
				}
				continue
			}

			result.TotalDirs++
			if w.onDir != nil {
				if err := w.onDir(fullPath, name); err != nil {
					return result, fmt.Errorf("process directory %s: %w", fullPath, err)
				}
			}
			if !option.Recurse {
				continue
			}

			children, err := w.list(fullPath)
			if err != nil {
				result.SkippedDirs++
				w.logger.Warn("skip unreadable directory", zap.String("dir", fullPath), zap.Error(err))
				continue
			}

			// 保存当前目录的进度，进入子目录
			if err := stack.Push(cur.encode()); err != nil {
				return result, fmt.Errorf("save cursor of %s: %w", cur.dir, err)
			}
			if chunks := stack.Stats().Chunks; chunks > result.PeakChunks {
				result.PeakChunks = chunks
			}
			cur = cursor{dir: fullPath}
			entries = children
			descended = true
			break
		}
		if descended {
			continue
		}

		// 当前目录遍历完成，回到上一层
		w.forget(cur.dir)
		data, err := stack.PopBytes()
		if errors.Is(err, easystack.ErrEmpty) {
			return result, nil
		}
		if err != nil {
			return result, err
		}
		cur.decode(data)

		entries, err = w.list(cur.dir)
		if err != nil {
			return result, fmt.Errorf("resume %s: %w", cur.dir, err)
		}
	}
}
