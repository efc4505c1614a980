// Package config loads application configuration from an optional YAML
// file overridden by SANDBOX_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SANDBOX_"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	CORS     CORSConfig     `koanf:"cors"`
	Store    StoreConfig    `koanf:"store"`
	Demo     DemoConfig     `koanf:"demo"`
	Upstream UpstreamConfig `koanf:"upstream"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port" validate:"required"`
	MetricsPort       string        `koanf:"metrics_port" validate:"required"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	StatePath   string `koanf:"state_path" validate:"required"`
	TrackerPath string `koanf:"tracker_path" validate:"required"`
}

// DemoConfig gates the ephemeral item tracker. The flag is read once at
// startup and never changes at runtime.
type DemoConfig struct {
	Enabled bool `koanf:"enabled"`
	// CleanupInterval drives the optional internal sweep loop.
	// Zero disables it; an external scheduler can still trigger sweeps
	// through the cleanup endpoint.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// UpstreamConfig describes the live incident-management API used for
// seed imports and cleanup deletes.
type UpstreamConfig struct {
	BaseURL string        `koanf:"base_url"`
	PageID  string        `koanf:"page_id"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
	// DeleteRPS throttles sweep delete calls against the live system.
	DeleteRPS float64 `koanf:"delete_rps"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Store: StoreConfig{
			StatePath:   "data/state.json",
			TrackerPath: "data/demo-items.json",
		},
		Demo: DemoConfig{
			Enabled:         false,
			CleanupInterval: 5 * time.Minute,
		},
		Upstream: UpstreamConfig{
			Timeout:   10 * time.Second,
			DeleteRPS: 2,
		},
	}
}

// Load reads configuration from the given YAML file (skipped when path is
// empty or the file is absent) and the environment, over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	// Double underscore separates nesting levels so keys with underscores
	// survive: SANDBOX_SERVER__METRICS_PORT -> server.metrics_port
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
