package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/launchplan/pkg/domain"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout plan output and JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level, false)
}

// NewWriter creates a logger writing text, or JSON when asJSON is set, to w.
func NewWriter(w io.Writer, level slog.Level, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps "debug", "info", "warn" and "error" to a level. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Hooks returns lifecycle hooks that log every event.
func Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPlanBuilt: func(ctx context.Context, e *domain.PlanEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, string(e.Type), "plan", e.Plan, "duration", e.Duration, "error", e.Err)
				return
			}
			logger.InfoContext(ctx, string(e.Type), "plan", e.Plan, "nodes", e.Nodes, "duration", e.Duration)
		},
		OnTemplateExpanded: func(ctx context.Context, e *domain.ArtifactEvent) {
			logger.DebugContext(ctx, string(e.Type), "plan", e.Plan, "key", e.Key, "cache_hit", e.CacheHit)
		},
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, string(e.Type), "plan", e.Plan, "node", e.Node.DisplayName(), "executable", e.Node.ExecutableID())
		},
	}
}
