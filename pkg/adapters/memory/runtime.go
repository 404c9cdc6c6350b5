package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/launchplan/pkg/domain"
)

// Runtime implements ports.Runtime by recording the nodes it would start.
// It is used for dry runs and tests. Safe for concurrent use.
type Runtime struct {
	mu       sync.Mutex
	launched []domain.NodeDescriptor
	plans    []string
	hooks    domain.LifecycleHooks
}

// NewRuntime creates a recording runtime.
func NewRuntime(hooks domain.LifecycleHooks) *Runtime {
	return &Runtime{hooks: hooks}
}

// Launch records every node of plan in declared order.
func (r *Runtime) Launch(ctx context.Context, plan *domain.LaunchPlan) error {
	for _, n := range plan.Nodes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.hooks.OnNodeStart != nil {
			r.hooks.OnNodeStart(ctx, &domain.NodeEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeStart, Plan: plan.Name},
				Node:      n,
			})
		}
		r.mu.Lock()
		r.launched = append(r.launched, n)
		r.mu.Unlock()
	}
	r.mu.Lock()
	r.plans = append(r.plans, plan.Name)
	r.mu.Unlock()
	return nil
}

// Nodes returns copies of all recorded nodes.
func (r *Runtime) Nodes() []domain.NodeDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NodeDescriptor, len(r.launched))
	for i, n := range r.launched {
		out[i] = n.Clone()
	}
	return out
}

// Plans returns the names of the launched plans.
func (r *Runtime) Plans() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.plans...)
}

// EchoEngine implements ports.TemplateEngine without running xacro:
// the artifact is an XML comment holding the invocation. Used for dry runs.
type EchoEngine struct{}

// Expand implements ports.TemplateEngine.
func (EchoEngine) Expand(ctx context.Context, argv []string) (string, error) {
	return "<!-- " + strings.Join(argv, " ") + " -->", nil
}
