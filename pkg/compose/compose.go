// Package compose selects conditional node groups from resolved arguments.
package compose

import (
	"fmt"
	"slices"

	"github.com/aretw0/launchplan/pkg/condition"
	"github.com/aretw0/launchplan/pkg/domain"
)

// Rule associates a predicate with the nodes it enables.
type Rule struct {
	Name  string
	When  condition.Predicate
	Nodes []domain.NodeSpec
}

// Composer is an ordered, immutable set of rules.
type Composer struct {
	rules []Rule
}

// New creates a composer. Rules are evaluated in the order given.
func New(rules ...Rule) *Composer {
	return &Composer{rules: slices.Clone(rules)}
}

// Rules returns a copy of the rules.
func (c *Composer) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Compose returns, in declaration order, the nodes of every rule whose predicate holds.
// It has no side effects; an empty rule set yields an empty slice.
func (c *Composer) Compose(args domain.Lookup) ([]domain.NodeDescriptor, error) {
	return c.ComposeScope(domain.Scope{Args: args})
}

// ComposeScope is Compose with access to the artifacts produced so far.
func (c *Composer) ComposeScope(scope domain.Scope) ([]domain.NodeDescriptor, error) {
	selected, err := c.Select(scope)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NodeDescriptor, 0, len(selected))
	for _, s := range selected {
		out = append(out, s.Node)
	}
	return out, nil
}

// Selection is one composed node along with the rule that produced it.
type Selection struct {
	Rule string
	Node domain.NodeDescriptor
}

// Select evaluates every rule and builds the nodes of those that hold.
// All predicates are evaluated, so an undeclared argument is reported even
// when an earlier rule already failed.
func (c *Composer) Select(scope domain.Scope) ([]Selection, error) {
	out := []Selection{}
	for i, r := range c.rules {
		ok, err := r.When.Eval(scope.Args)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", c.ruleName(i), err)
		}
		if !ok {
			continue
		}
		for _, spec := range r.Nodes {
			n, err := spec.Build(scope)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", c.ruleName(i), err)
			}
			out = append(out, Selection{Rule: c.ruleName(i), Node: n})
		}
	}
	return out, nil
}

// References lists every argument name read by predicates or node templates.
func (c *Composer) References() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(ns []string) {
		for _, n := range ns {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	for _, r := range c.rules {
		add(r.When.Names())
		for _, spec := range r.Nodes {
			add(spec.References())
		}
	}
	return names
}

// ArtifactReferences lists the artifact keys used by node templates.
func (c *Composer) ArtifactReferences() []string {
	var keys []string
	for _, r := range c.rules {
		for _, spec := range r.Nodes {
			keys = append(keys, spec.ArtifactReferences()...)
		}
	}
	return keys
}

func (c *Composer) ruleName(i int) string {
	if c.rules[i].Name != "" {
		return c.rules[i].Name
	}
	return fmt.Sprintf("#%d (%s)", i, c.rules[i].When)
}
