package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage backend selectors.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Storage selects where save snapshots live: memory, redis or sqlite.
	Storage       string `env:"STORAGE" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"saves.db"`

	// DataDir holds game-data.json and the scenes/ directory.
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	ScriptPath string `env:"SCRIPT_PATH"`
	SaveSlot   string `env:"SAVE_SLOT" envDefault:"default"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	switch cfg.Storage {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return nil, fmt.Errorf("unknown STORAGE value %q", cfg.Storage)
	}
	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
