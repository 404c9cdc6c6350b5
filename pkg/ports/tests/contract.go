package tests

import (
	"errors"
	"slices"
	"testing"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/ports"
)

// CatalogContractTest is a reusable test suite that verifies if an adapter complies with ports.Catalog.
// expected lists the plan names the catalog was seeded with.
func CatalogContractTest(t *testing.T, catalog ports.Catalog, expected []string) {
	t.Helper()

	t.Run("Locate_Success", func(t *testing.T) {
		for _, name := range expected {
			factory, err := catalog.Locate(name)
			if err != nil {
				t.Fatalf("unexpected error locating %s: %v", name, err)
			}
			plan, err := factory()
			if err != nil {
				t.Fatalf("factory for %s failed: %v", name, err)
			}
			if plan.Name() != name {
				t.Errorf("plan name mismatch: got %q, want %q", plan.Name(), name)
			}
		}
	})

	t.Run("Locate_NotFound", func(t *testing.T) {
		_, err := catalog.Locate("non-existent-plan")
		if !errors.Is(err, domain.ErrPlanNotFound) {
			t.Errorf("expected ErrPlanNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		names, err := catalog.List()
		if err != nil {
			t.Fatalf("unexpected error listing plans: %v", err)
		}
		if len(names) != len(expected) {
			t.Errorf("expected %d plans, got %d", len(expected), len(names))
		}
		if !slices.IsSorted(names) {
			t.Errorf("plan names are not sorted: %v", names)
		}
		for _, name := range expected {
			if !slices.Contains(names, name) {
				t.Errorf("plan %s missing from list", name)
			}
		}
	})
}
