package launchplan

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/ports"
)

// chain searches catalogs in order. The first catalog holding a name wins.
type chain []ports.Catalog

func (c chain) Locate(name string) (domain.PlanFactory, error) {
	for _, cat := range c {
		f, err := cat.Locate(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, domain.ErrPlanNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrPlanNotFound, name)
}

func (c chain) List() ([]string, error) {
	var names []string
	for _, cat := range c {
		n, err := cat.List()
		if err != nil {
			return nil, err
		}
		names = append(names, n...)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}
