package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestList(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "main.go"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), nil, 0644))

	var out bytes.Buffer
	result, err := list(context.Background(), root, defaultConfig(), zap.NewNop(), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"f " + filepath.Join(root, "README"),
		"d " + filepath.Join(root, "sub"),
		"f " + filepath.Join(root, "sub", "main.go"),
	}, strings.Split(strings.TrimRight(out.String(), "\n"), "\n"))
	assert.Equal(t, uint64(2), result.TotalFiles)
	assert.Equal(t, uint64(1), result.TotalDirs)

	var stats bytes.Buffer
	printStats(&stats, result)
	assert.Contains(t, stats.String(), "Allocations: 1")
	assert.Contains(t, stats.String(), "Total mem:   256 KiB")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recurse: false\nchunk_size: 4096\npatterns:\n  - \"*.go\"\n"), 0600))
	t.Setenv("ULISTDIR_CACHE_SIZE", "7")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Recurse)
	assert.Equal(t, 4096, cfg.ChunkSize)
	assert.Equal(t, 7, cfg.CacheSize)
	assert.Equal(t, []string{"*.go"}, cfg.Patterns)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("ULISTDIR_CHUNK_SIZE", "-1")
	_, err := loadConfig("")
	assert.Error(t, err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	assert.NoError(t, err)

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&stderr)
	err := rootCmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func TestRunListOutput(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), nil, 0644))
	out := filepath.Join(t.TempDir(), "listing.txt")

	// 输出文件被另一个进程锁住
	fileLock := flock.New(out + ".lock")
	hold, err := fileLock.TryLock()
	require.NoError(t, err)
	require.True(t, hold)

	_, err = runRoot(t, "--output", out, root)
	assert.ErrorIs(t, err, errOutputBusy)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, fileLock.Unlock())

	stderr, err := runRoot(t, "--output", out, "--stats", root)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "f "+filepath.Join(root, "a.txt")+"\n", string(content))
	assert.Contains(t, stderr, "Files:       1")
	assert.Contains(t, stderr, "Dirs:        0")
}
