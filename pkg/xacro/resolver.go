package xacro

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/ports"
)

// Resolver expands templates through an external engine, optionally caching the result.
type Resolver struct {
	engine ports.TemplateEngine
	cache  ports.ArtifactCache
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache enables artifact caching.
func WithCache(c ports.ArtifactCache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver backed by engine.
func NewResolver(engine ports.TemplateEngine, opts ...Option) *Resolver {
	r := &Resolver{
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expand builds the macro invocation for templatePath and returns the engine output.
// Engine failures come back as *domain.TemplateExpansionError wrapping the engine error.
func (r *Resolver) Expand(ctx context.Context, templatePath string, resolved domain.Lookup, keys []string) (string, error) {
	cmd, err := MacroCommand(templatePath, resolved, keys)
	if err != nil {
		return "", err
	}
	text, _, err := r.Run(ctx, cmd)
	return text, err
}

// Run expands a prepared command. hit reports whether the artifact came from the cache.
func (r *Resolver) Run(ctx context.Context, cmd Command) (text string, hit bool, err error) {
	line := cmd.String()
	key := CacheKey(cmd)

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, key)
		switch {
		case err == nil:
			r.logger.Debug("artifact cache hit", "command", line)
			return cached, true, nil
		case !errors.Is(err, domain.ErrCacheMiss):
			r.logger.Warn("artifact cache read failed", "command", line, "err", err)
		}
	}

	if r.engine == nil {
		return "", false, &domain.TemplateExpansionError{Command: line, Err: errors.New("no template engine configured")}
	}
	text, err = r.engine.Expand(ctx, cmd.Argv())
	if err != nil {
		return "", false, &domain.TemplateExpansionError{Command: line, Err: err}
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, text); err != nil {
			r.logger.Warn("artifact cache write failed", "command", line, "err", err)
		}
	}
	return text, false, nil
}

// CacheKey returns the digest under which the artifact of cmd is cached.
func CacheKey(cmd Command) string {
	sum := sha256.Sum256([]byte(cmd.String()))
	return "xacro:" + hex.EncodeToString(sum[:])
}
