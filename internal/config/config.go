// Package config loads animatch configuration: defaults, then an optional
// YAML file, then ANIMATCH_-prefixed environment variables, each layer
// overriding the last.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all animatch configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Covers   CoversConfig   `koanf:"covers"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Bind string `koanf:"bind"`
	Port int    `koanf:"port"`
}

type DatabaseConfig struct {
	// Path is the SQLite file path. Empty means the per-user default
	// (~/.animatch/animatch.db).
	Path string `koanf:"path"`
}

type CoversConfig struct {
	// Dir holds the cover image files served by reference.
	Dir string `koanf:"dir"`
	// RecentSize bounds the provider's recently-served set.
	RecentSize int `koanf:"recent_size"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8470,
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Covers: CoversConfig{
			Dir:        "photos",
			RecentSize: 64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the effective configuration. path may be empty, in which case
// only defaults and environment variables apply.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// ANIMATCH_SERVER_PORT=9000 → server.port
	err := k.Load(env.Provider("ANIMATCH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "ANIMATCH_")), "_", ".")
	}), nil)
	if err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
