// Package config loads process-wide settings from LAUNCHPLAN_* environment variables.
// Command line flags take precedence over these values.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment configuration of the launchplan binary.
type Config struct {
	// ShareDir is the root under which ROS packages are installed (<share>/<package>).
	ShareDir string `env:"LAUNCHPLAN_SHARE_DIR" envDefault:"/opt/ros/jazzy/share"`
	// CatalogDir holds declarative plan documents. Empty disables the document catalog.
	CatalogDir string `env:"LAUNCHPLAN_CATALOG_DIR"`
	// Executables is the optional process override file (YAML or JSON).
	Executables string `env:"LAUNCHPLAN_EXECUTABLES"`
	// XacroPath replaces the xacro program found on PATH.
	XacroPath string `env:"LAUNCHPLAN_XACRO"`

	RedisAddr     string        `env:"LAUNCHPLAN_REDIS_ADDR"`
	RedisPassword string        `env:"LAUNCHPLAN_REDIS_PASSWORD"`
	RedisDB       int           `env:"LAUNCHPLAN_REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"LAUNCHPLAN_CACHE_TTL" envDefault:"1h"`

	LogLevel  string `env:"LAUNCHPLAN_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LAUNCHPLAN_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// CacheEnabled reports whether a redis artifact cache is configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
