package ports

import (
	"context"

	"github.com/aretw0/launchplan/pkg/domain"
)

// Runtime executes a built plan. Starting, supervising and stopping
// processes is entirely its responsibility; cancellation of ctx stops the launch.
type Runtime interface {
	Launch(ctx context.Context, plan *domain.LaunchPlan) error
}
