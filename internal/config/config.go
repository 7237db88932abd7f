// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	BackendDir    = "dir"
	BackendBadger = "badger"

	// DefaultStoreDir is the metadata store directory inside the working tree.
	DefaultStoreDir = ".minigit"
	// FileName is the optional config file inside the store directory.
	FileName = "config.json"
)

type Config struct {
	LogLevel string `json:"log_level"` // debug, info, warn, error

	Store struct {
		Dir             string `json:"dir"`
		Backend         string `json:"backend"` // dir, badger
		Compress        bool   `json:"compress"`
		CompressMinSize int    `json:"compress_min_size"`
		CacheSize       int    `json:"cache_size"`
	} `json:"store"`
}

func Default() *Config {
	var cfg Config
	cfg.LogLevel = "warn"
	cfg.Store.Dir = DefaultStoreDir
	cfg.Store.Backend = BackendDir
	cfg.Store.CompressMinSize = 1024
	cfg.Store.CacheSize = 256
	return &cfg
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := json.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decoding config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("opening config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if level := os.Getenv("MINIGIT_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if backend := os.Getenv("MINIGIT_STORE_BACKEND"); backend != "" {
		cfg.Store.Backend = backend
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendDir, BackendBadger:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store dir is required")
	}
	if c.Store.CacheSize <= 0 {
		return fmt.Errorf("store cache_size must be positive, got %d", c.Store.CacheSize)
	}
	if c.Store.CompressMinSize < 0 {
		return fmt.Errorf("store compress_min_size cannot be negative")
	}
	return nil
}
