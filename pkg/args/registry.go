package args

import (
	"slices"

	"github.com/aretw0/launchplan/pkg/domain"
)

// Registry collects the arguments declared by one plan and resolves their values.
type Registry struct {
	plan  string
	order []string
	decl  map[string]domain.Argument
}

// NewRegistry creates an empty registry for the named plan.
func NewRegistry(plan string) *Registry {
	return &Registry{
		plan: plan,
		decl: make(map[string]domain.Argument),
	}
}

// Declare registers an argument with a default value and a description.
func (r *Registry) Declare(name, defaultValue, description string) error {
	return r.DeclareArgument(domain.Argument{
		Name:        name,
		Default:     defaultValue,
		Description: description,
	})
}

// DeclareArgument registers a full argument declaration.
// It fails with DuplicateArgumentError when the name is already declared.
func (r *Registry) DeclareArgument(a domain.Argument) error {
	if _, exists := r.decl[a.Name]; exists {
		return &domain.DuplicateArgumentError{Plan: r.plan, Name: a.Name}
	}
	if err := a.Validate(); err != nil {
		return err
	}
	r.decl[a.Name] = a
	r.order = append(r.order, a.Name)
	return nil
}

// Declarations returns the declared arguments in declaration order.
func (r *Registry) Declarations() []domain.Argument {
	out := make([]domain.Argument, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.decl[name])
	}
	return out
}

// Lookup returns the declaration of name or UnknownArgumentError.
func (r *Registry) Lookup(name string) (domain.Argument, error) {
	a, ok := r.decl[name]
	if !ok {
		return domain.Argument{}, &domain.UnknownArgumentError{Name: name}
	}
	return a, nil
}

// Resolve produces the final values: the caller's override when present,
// the declared default otherwise. Overrides for undeclared names are ignored;
// see Unused.
func (r *Registry) Resolve(overrides map[string]string) (domain.Resolved, error) {
	values := make(map[string]string, len(r.order))
	for _, name := range r.order {
		a := r.decl[name]
		v, ok := overrides[name]
		if !ok {
			values[name] = a.Default
			continue
		}
		if err := a.Accepts(v); err != nil {
			return domain.Resolved{}, err
		}
		values[name] = v
	}
	return domain.NewResolved(r.order, values), nil
}

// Unused returns the override names that match no declaration.
func (r *Registry) Unused(overrides map[string]string) []string {
	var unused []string
	for name := range overrides {
		if _, ok := r.decl[name]; !ok {
			unused = append(unused, name)
		}
	}
	slices.Sort(unused)
	return unused
}
