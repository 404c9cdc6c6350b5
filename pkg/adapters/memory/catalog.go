package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/launchplan/pkg/domain"
)

// Catalog implements ports.Catalog using an in-memory map of factories.
// Safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]domain.PlanFactory
}

// NewCatalog creates a catalog holding the given plans.
func NewCatalog(plans ...*domain.Plan) *Catalog {
	c := &Catalog{factories: make(map[string]domain.PlanFactory)}
	for _, p := range plans {
		c.factories[p.Name()] = func() (*domain.Plan, error) { return p, nil }
	}
	return c
}

// Register adds a plan factory under name. Registering a name twice is an error.
func (c *Catalog) Register(name string, factory domain.PlanFactory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("register: name and factory are required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("plan %q already registered", name)
	}
	c.factories[name] = factory
	return nil
}

// Locate returns the factory registered under name.
func (c *Catalog) Locate(name string) (domain.PlanFactory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlanNotFound, name)
	}
	return f, nil
}

// List returns all registered plan names, sorted.
func (c *Catalog) List() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
