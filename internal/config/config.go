// Package config loads server configuration from an optional yaml file
// with environment-variable overrides on top.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = "config.yaml"

// Config holds everything the server needs at startup.
type Config struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	MongoURI    string `yaml:"mongo_uri"`
	Database    string `yaml:"database"`
	LogLevel    string `yaml:"log_level"`
	PublicDir   string `yaml:"public_dir"`
}

// Default returns the local-development configuration.
func Default() *Config {
	return &Config{
		Addr:        ":3000",
		MetricsAddr: ":9090",
		MongoURI:    "mongodb://localhost:27017",
		Database:    "cortado",
		LogLevel:    "info",
		PublicDir:   "./public",
	}
}

// Load reads the yaml file at path over the defaults, then applies env
// overrides. A missing file at the default path is fine; a missing file
// at an explicitly chosen path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
		// defaults + env only
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Addr, "CORTADO_ADDR")
	setFromEnv(&cfg.MetricsAddr, "CORTADO_METRICS_ADDR")
	setFromEnv(&cfg.MongoURI, "MONGODB_URI")
	setFromEnv(&cfg.Database, "CORTADO_DB")
	setFromEnv(&cfg.LogLevel, "LOG_LEVEL")
	setFromEnv(&cfg.PublicDir, "CORTADO_PUBLIC_DIR")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// SlogLevel maps the configured level name to a slog level, defaulting
// to info on anything unrecognized.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
