package cli

import (
	"time"

	"github.com/aretw0/launchplan/internal/config"
)

// Options collects everything needed to assemble an engine from the command line.
type Options struct {
	ShareDir    string
	CatalogDir  string
	Executables string
	XacroPath   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	Debug     bool
	LogLevel  string
	LogFormat string

	// DryRun records nodes instead of starting processes.
	DryRun bool
}

// FromConfig seeds Options with the environment configuration.
func FromConfig(cfg config.Config) Options {
	return Options{
		ShareDir:      cfg.ShareDir,
		CatalogDir:    cfg.CatalogDir,
		Executables:   cfg.Executables,
		XacroPath:     cfg.XacroPath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		CacheTTL:      cfg.CacheTTL,
		LogLevel:      cfg.LogLevel,
		LogFormat:     cfg.LogFormat,
	}
}
