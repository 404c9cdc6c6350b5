package plan

import (
	"log/slog"

	"github.com/aretw0/launchplan/pkg/domain"
)

// DefaultMaxDepth bounds plan inclusion nesting.
const DefaultMaxDepth = 16

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. Overrides that match no declared argument are reported at Warn.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithHooks registers lifecycle hooks. Multiple calls are merged.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(b *Builder) { b.hooks = b.hooks.Merge(h) }
}

// WithMaxDepth limits how deep inclusions may nest.
func WithMaxDepth(depth int) Option {
	return func(b *Builder) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}
