// Package config loads runtime settings for stores from TOML.
//
//	[store]
//	max_history_size = 100
//	registry_shards = 16
//
//	[log]
//	level = "info"
//	development = false
//
//	[metrics]
//	enabled = false
//	namespace = "effect_ive_store"
//
// Missing keys keep their defaults. Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/on-the-ground/effect_ive_store/internal/history"
	"github.com/on-the-ground/effect_ive_store/internal/registry"
	"github.com/on-the-ground/effect_ive_store/log"
)

var ErrInvalidConfig = errors.New("invalid config")

const DefaultMetricsNamespace = "effect_ive_store"

type Config struct {
	Store   Store   `toml:"store"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`
}

type Store struct {
	MaxHistorySize int `toml:"max_history_size"`
	RegistryShards int `toml:"registry_shards"`
}

type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type Metrics struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

func Default() Config {
	return Config{
		Store: Store{
			MaxHistorySize: history.DefaultMaxSize,
			RegistryShards: registry.DefaultShards,
		},
		Log: Log{
			Level: string(log.LevelInfo),
		},
		Metrics: Metrics{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads and validates the TOML file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: load %s: %w", ErrInvalidConfig, path, err)
	}
	return finish(cfg, meta)
}

// Parse decodes and validates TOML data.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return finish(cfg, meta)
}

func finish(cfg Config, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Store.MaxHistorySize <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, StoreMaxHistorySize, c.Store.MaxHistorySize)
	}
	if c.Store.RegistryShards <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, StoreRegistryShards, c.Store.RegistryShards)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, LogLevel, err)
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Namespace) == "" {
		return fmt.Errorf("%w: %s is required when metrics are enabled", ErrInvalidConfig, MetricsNamespace)
	}
	return nil
}

// Level returns the parsed log level. It assumes c is valid.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return lvl
}
