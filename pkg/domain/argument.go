package domain

import (
	"fmt"
	"regexp"
	"slices"
)

var argumentName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Argument is a named configuration input declared by a plan.
type Argument struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Default     string   `json:"default" yaml:"default" mapstructure:"default"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Choices     []string `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`
}

// Validate checks the argument name and that the default is one of the choices.
func (a Argument) Validate() error {
	if !argumentName.MatchString(a.Name) {
		return &InvalidArgumentError{Name: a.Name, Reason: "name must match [A-Za-z_][A-Za-z0-9_]*"}
	}
	return a.Accepts(a.Default)
}

// Accepts reports whether value is allowed for this argument.
func (a Argument) Accepts(value string) error {
	if len(a.Choices) == 0 || slices.Contains(a.Choices, value) {
		return nil
	}
	return &InvalidArgumentError{
		Name:   a.Name,
		Reason: fmt.Sprintf("value %q not in %v", value, a.Choices),
	}
}

// Lookup resolves a name to its value.
// Implementations return UnknownArgumentError for undeclared names.
type Lookup interface {
	Get(name string) (string, error)
}

// Resolved is the final name to value mapping of one launch invocation.
// It is immutable; every accessor returns copies.
type Resolved struct {
	names  []string
	values map[string]string
}

// NewResolved builds a Resolved mapping. names fixes the iteration order.
func NewResolved(names []string, values map[string]string) Resolved {
	r := Resolved{
		names:  make([]string, 0, len(names)),
		values: make(map[string]string, len(names)),
	}
	for _, n := range names {
		if _, seen := r.values[n]; seen {
			continue
		}
		r.names = append(r.names, n)
		r.values[n] = values[n]
	}
	return r
}

// Get returns the value of name or UnknownArgumentError.
func (r Resolved) Get(name string) (string, error) {
	v, ok := r.values[name]
	if !ok {
		return "", &UnknownArgumentError{Name: name}
	}
	return v, nil
}

// Has reports whether name is declared.
func (r Resolved) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Names returns the argument names in declaration order.
func (r Resolved) Names() []string {
	return slices.Clone(r.names)
}

// Map returns a copy of the mapping.
func (r Resolved) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Len returns the number of resolved arguments.
func (r Resolved) Len() int { return len(r.names) }
