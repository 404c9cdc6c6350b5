package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/launchplan/internal/presentation/tui"
	"github.com/aretw0/launchplan/pkg/domain"
)

// Rebuilder builds plans and reports catalog changes.
type Rebuilder interface {
	Build(ctx context.Context, name string, overrides map[string]string) (*domain.LaunchPlan, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// settleDelay lets the file system settle before rebuilding.
var settleDelay = 100 * time.Millisecond

// RunWatch rebuilds the named plan every time a plan document changes and
// prints the result, until ctx is cancelled. Build failures are printed and
// the watcher keeps waiting for a fix.
func RunWatch(ctx context.Context, eng Rebuilder, name string, overrides map[string]string, out io.Writer, logger *slog.Logger) error {
	events, err := eng.Watch(ctx)
	if err != nil {
		return err
	}

	render := func() {
		lp, err := eng.Build(ctx, name, overrides)
		if err != nil {
			logger.Error("Build failed", "plan", name, "err", err)
			printSystemMessage(out, "Build of '%s' failed: %v", name, err)
			return
		}
		if err := tui.Print(out, tui.PlanMarkdown(lp)); err != nil {
			logger.Warn("Render failed", "err", err)
		}
		printSystemMessage(out, "'%s' resolves to %d nodes. Waiting for changes...", name, lp.NodeCount())
	}

	render()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher")
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			logger.Info("Change detected, rebuilding", "event", event)
			printSystemMessage(out, "Change detected in '%s'.", event)
			time.Sleep(settleDelay)
			render()
		}
	}
}
