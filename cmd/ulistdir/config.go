package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofish2020/easystack/listdir"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "ULISTDIR_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Config holds the walk settings. Precedence, highest first: flags,
// ULISTDIR_* environment variables, YAML config file, defaults.
type Config struct {
	Recurse   bool     `koanf:"recurse"`
	Patterns  []string `koanf:"patterns"`
	ChunkSize int      `koanf:"chunk_size"`
	CacheSize int      `koanf:"cache_size"`
	Output    string   `koanf:"output"`
	LogLevel  string   `koanf:"log_level"`
	Stats     bool     `koanf:"stats"`
}

func defaultConfig() Config {
	return Config{
		Recurse:   listdir.DefaultOptions.Recurse,
		ChunkSize: listdir.DefaultOptions.ChunkSize,
		CacheSize: listdir.DefaultOptions.ListingCacheSize,
		LogLevel:  "warn",
	}
}

// loadConfig reads configPath (skipped when empty) and the environment.
func loadConfig(configPath string) (Config, error) {
	cfg := defaultConfig()
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return cfg, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// ULISTDIR_CHUNK_SIZE -> chunk_size
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return cfg, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	return nil
}
