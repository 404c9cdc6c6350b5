package ports

import (
	"context"

	"github.com/aretw0/launchplan/pkg/domain"
)

// Catalog defines how the builder retrieves plan definitions.
// This allows the definition source (Go code, Loam, memory) to be decoupled.
type Catalog interface {
	// Locate returns a factory for the named plan.
	// It returns domain.ErrPlanNotFound (possibly wrapped) for unknown names.
	Locate(name string) (domain.PlanFactory, error)

	// List returns the names of all plans the catalog holds, sorted.
	// This is used for introspection (e.g. 'launchplan plan --list').
	List() ([]string, error)
}

// Watchable defines an interface for catalogs that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel carrying the ID of each changed definition.
	Watch(ctx context.Context) (<-chan string, error)
}
