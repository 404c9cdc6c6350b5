package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPlanBuilt        EventType = "plan_built"
	EventPlanFailed       EventType = "plan_failed"
	EventTemplateExpanded EventType = "template_expanded"
	EventNodeStart        EventType = "node_start"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Plan      string    `json:"plan"`
}

// PlanEvent is emitted once per plan build, successful or not.
type PlanEvent struct {
	EventBase
	Nodes    int           `json:"nodes"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// ArtifactEvent is emitted after a template was expanded.
type ArtifactEvent struct {
	EventBase
	Key      string `json:"key"`
	Command  string `json:"command"`
	CacheHit bool   `json:"cache_hit"`
}

// NodeEvent is emitted by runtimes when a node is handed off for start.
type NodeEvent struct {
	EventBase
	Node NodeDescriptor `json:"node"`
}

// LifecycleHooks defines callbacks for observability. Nil hooks are skipped.
type LifecycleHooks struct {
	OnPlanBuilt        func(context.Context, *PlanEvent)
	OnTemplateExpanded func(context.Context, *ArtifactEvent)
	OnNodeStart        func(context.Context, *NodeEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPlanBuilt:        chain(h.OnPlanBuilt, other.OnPlanBuilt),
		OnTemplateExpanded: chain(h.OnTemplateExpanded, other.OnTemplateExpanded),
		OnNodeStart:        chain(h.OnNodeStart, other.OnNodeStart),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
