// Package main implements ulistdir, a directory lister built on listdir.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/gofish2020/easystack/listdir"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errOutputBusy = errors.New("output file is locked by another ulistdir")

var (
	configPath string
	flagConfig = defaultConfig()
	version    = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ulistdir [dir]",
	Short: "List files and directories",
	Long: `ulistdir walks a directory tree depth first and prints one entry per line,
prefixed with "d " for directories and "f " for files.

Examples:
  # List the current directory recursively
  ulistdir

  # Only Go files, no recursion
  ulistdir --recurse=false --pattern '*.go' ./pkg

  # Write the listing to a file and print stack statistics
  ulistdir --output listing.txt --stats /var/log`,
	Args:    cobra.MaximumNArgs(1),
	Version: version,
	RunE:    runList,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML config file")
	flags.BoolVarP(&flagConfig.Recurse, "recurse", "r", flagConfig.Recurse, "descend into subdirectories")
	flags.StringArrayVarP(&flagConfig.Patterns, "pattern", "p", nil, "glob pattern for file names (repeatable)")
	flags.IntVar(&flagConfig.ChunkSize, "chunk-size", flagConfig.ChunkSize, "bytes per backtracking stack chunk")
	flags.IntVar(&flagConfig.CacheSize, "cache-size", flagConfig.CacheSize, "number of cached directory listings")
	flags.StringVarP(&flagConfig.Output, "output", "o", "", "write the listing to this file instead of stdout")
	flags.StringVar(&flagConfig.LogLevel, "log-level", flagConfig.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&flagConfig.Stats, "stats", false, "print totals and stack usage to stderr")
}

// mergeFlags overrides cfg with the flags the user actually set.
func mergeFlags(cmd *cobra.Command, cfg Config) Config {
	flags := cmd.Flags()
	if flags.Changed("recurse") {
		cfg.Recurse = flagConfig.Recurse
	}
	if flags.Changed("pattern") {
		cfg.Patterns = flagConfig.Patterns
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = flagConfig.ChunkSize
	}
	if flags.Changed("cache-size") {
		cfg.CacheSize = flagConfig.CacheSize
	}
	if flags.Changed("output") {
		cfg.Output = flagConfig.Output
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagConfig.LogLevel
	}
	if flags.Changed("stats") {
		cfg.Stats = flagConfig.Stats
	}
	return cfg
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = mergeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	out := cmd.OutOrStdout()
	if cfg.Output != "" {
		fileLock := flock.New(cfg.Output + ".lock")
		hold, err := fileLock.TryLock()
		if err != nil {
			return err
		}
		if !hold {
			return errOutputBusy
		}
		defer func() {
			_ = fileLock.Unlock()
		}()

		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	result, err := list(cmd.Context(), dir, cfg, logger, out)
	if err != nil {
		return err
	}
	if cfg.Stats {
		printStats(cmd.ErrOrStderr(), result)
	}
	return nil
}

func list(ctx context.Context, dir string, cfg Config, logger *zap.Logger, out io.Writer) (listdir.Result, error) {
	w := bufio.NewWriter(out)

	option := listdir.Options{
		Dir:              dir,
		Recurse:          cfg.Recurse,
		Patterns:         cfg.Patterns,
		ChunkSize:        cfg.ChunkSize,
		ListingCacheSize: cfg.CacheSize,
		Logger:           logger,
	}
	result, err := listdir.ListDir(ctx, option,
		func(fullPath, _ string) error {
			_, err := fmt.Fprintln(w, "f", fullPath)
			return err
		},
		func(fullPath, _ string) error {
			_, err := fmt.Fprintln(w, "d", fullPath)
			return err
		})
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	logger.Debug("walk finished",
		zap.String("dir", dir),
		zap.Uint64("files", result.TotalFiles),
		zap.Uint64("dirs", result.TotalDirs),
		zap.Uint64("allocations", result.Allocations),
		zap.Uint64("frees", result.Frees))
	return result, err
}

func printStats(w io.Writer, result listdir.Result) {
	fmt.Fprintf(w, "Files:       %s\n", humanize.Comma(int64(result.TotalFiles)))
	fmt.Fprintf(w, "Dirs:        %s\n", humanize.Comma(int64(result.TotalDirs)))
	if result.SkippedDirs > 0 {
		fmt.Fprintf(w, "Skipped:     %s\n", humanize.Comma(int64(result.SkippedDirs)))
	}
	fmt.Fprintf(w, "Allocations: %d\n", result.Allocations)
	fmt.Fprintf(w, "Free:        %d\n", result.Frees)
	fmt.Fprintf(w, "Total mem:   %s\n", humanize.IBytes(result.Allocations*uint64(result.ChunkSize)))
	fmt.Fprintf(w, "Peak mem:    %s\n", humanize.IBytes(uint64(result.PeakChunks*result.ChunkSize)))
}
