package dsl

import (
	"fmt"

	"github.com/aretw0/launchplan/pkg/compose"
	"github.com/aretw0/launchplan/pkg/domain"
)

// Builder manages the plan construction. Actions keep the order in which they are added.
type Builder struct {
	name        string
	description string
	actions     []domain.Action
	nodes       []*NodeBuilder
}

// New creates a new plan builder.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Describe sets the human readable summary of the plan.
func (b *Builder) Describe(description string) *Builder {
	b.description = description
	return b
}

// Arg declares an argument with a default value.
func (b *Builder) Arg(name, defaultValue, description string) *Builder {
	return b.Argument(domain.Argument{Name: name, Default: defaultValue, Description: description})
}

// Argument declares a full argument (with choices).
func (b *Builder) Argument(a domain.Argument) *Builder {
	b.actions = append(b.actions, domain.Action{Kind: domain.ActionDeclare, Argument: &a})
	return b
}

// Artifact expands template with the macros named by keys, in that order,
// and publishes the result under key for later actions ("{{ artifacts.<key> }}").
func (b *Builder) Artifact(key, template string, keys ...string) *Builder {
	b.actions = append(b.actions, domain.Action{
		Kind:     domain.ActionArtifact,
		Artifact: &domain.ArtifactSpec{Key: key, Template: template, Keys: append([]string(nil), keys...)},
	})
	return b
}

// Node adds an unconditional node start and returns its builder.
func (b *Builder) Node(pkg, executable string) *NodeBuilder {
	nb := Spec(pkg, executable)
	b.actions = append(b.actions, domain.Action{Kind: domain.ActionStart})
	nb.action = len(b.actions) - 1
	b.nodes = append(b.nodes, nb)
	return nb
}

// Start adds an unconditional node start from a prepared spec.
func (b *Builder) Start(spec domain.NodeSpec) *Builder {
	b.actions = append(b.actions, domain.Action{Kind: domain.ActionStart, Node: &spec})
	return b
}

// Compose adds a conditional block. Its rules are evaluated when the plan is built.
func (b *Builder) Compose(rules ...compose.Rule) *Builder {
	return b.Composer(compose.New(rules...))
}

// Composer adds a custom conditional block.
func (b *Builder) Composer(c domain.Composer) *Builder {
	b.actions = append(b.actions, domain.Action{Kind: domain.ActionCompose, Composer: c})
	return b
}

// Include embeds the plan registered under name in the catalog.
func (b *Builder) Include(name string, overrides ...domain.Override) *Builder {
	b.actions = append(b.actions, domain.Action{
		Kind:    domain.ActionInclude,
		Include: &domain.Inclusion{Plan: name, Overrides: append([]domain.Override(nil), overrides...)},
	})
	return b
}

// IncludeFactory embeds the plan produced by factory. name is used for diagnostics.
func (b *Builder) IncludeFactory(name string, factory domain.PlanFactory, overrides ...domain.Override) *Builder {
	b.actions = append(b.actions, domain.Action{
		Kind: domain.ActionInclude,
		Include: &domain.Inclusion{
			Plan:      name,
			Factory:   factory,
			Overrides: append([]domain.Override(nil), overrides...),
		},
	})
	return b
}

// With is a forwarded argument of an inclusion. value may contain placeholders.
func With(name, value string) domain.Override {
	return domain.Override{Name: name, Value: value}
}

// Forward passes the including plan's own value of each name to the child.
func Forward(names ...string) []domain.Override {
	out := make([]domain.Override, 0, len(names))
	for _, n := range names {
		out = append(out, With(n, "{{ "+n+" }}"))
	}
	return out
}

// Build validates the definition and returns it as an immutable plan.
// It fails with DuplicateArgumentError when an argument is declared twice and
// with UnknownArgumentError when an action references an argument that no
// earlier action declared.
func (b *Builder) Build() (*domain.Plan, error) {
	actions := make([]domain.Action, len(b.actions))
	copy(actions, b.actions)
	for _, nb := range b.nodes {
		spec := nb.Build()
		actions[nb.action].Node = &spec
	}

	if err := Validate(b.name, actions); err != nil {
		return nil, err
	}
	return domain.NewPlan(b.name, b.description, actions...), nil
}

// MustBuild is like Build but panics on error. Intended for static definitions.
func (b *Builder) MustBuild() *domain.Plan {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

type artifactReferencer interface {
	ArtifactReferences() []string
}

// Validate checks that the actions of a plan definition are well formed and
// that every reference is preceded by its declaration.
func Validate(plan string, actions []domain.Action) error {
	if plan == "" {
		return fmt.Errorf("plan name is required")
	}
	declared := make(map[string]bool)
	artifacts := make(map[string]bool)

	requireArgs := func(i int, names []string) error {
		for _, n := range names {
			if !declared[n] {
				return fmt.Errorf("plan %q: action %d: %w", plan, i, &domain.UnknownArgumentError{Name: n})
			}
		}
		return nil
	}
	requireArtifacts := func(i int, keys []string) error {
		for _, k := range keys {
			if !artifacts[k] {
				return fmt.Errorf("plan %q: action %d: %w: %q", plan, i, domain.ErrUnknownArtifact, k)
			}
		}
		return nil
	}

	for i, a := range actions {
		switch a.Kind {
		case domain.ActionDeclare:
			if a.Argument == nil {
				return fmt.Errorf("plan %q: action %d: missing argument", plan, i)
			}
			if declared[a.Argument.Name] {
				return &domain.DuplicateArgumentError{Plan: plan, Name: a.Argument.Name}
			}
			if err := a.Argument.Validate(); err != nil {
				return fmt.Errorf("plan %q: %w", plan, err)
			}
			declared[a.Argument.Name] = true

		case domain.ActionArtifact:
			s := a.Artifact
			if s == nil || s.Key == "" || s.Template == "" {
				return fmt.Errorf("plan %q: action %d: artifact needs a key and a template", plan, i)
			}
			if artifacts[s.Key] {
				return fmt.Errorf("plan %q: artifact %q produced more than once", plan, s.Key)
			}
			if err := requireArgs(i, domain.References(s.Template)); err != nil {
				return err
			}
			if err := requireArgs(i, s.Keys); err != nil {
				return err
			}
			artifacts[s.Key] = true

		case domain.ActionStart:
			if a.Node == nil || a.Node.Package == "" || a.Node.Executable == "" {
				return fmt.Errorf("plan %q: action %d: node needs a package and an executable", plan, i)
			}
			if err := requireArgs(i, a.Node.References()); err != nil {
				return err
			}
			if err := requireArtifacts(i, a.Node.ArtifactReferences()); err != nil {
				return err
			}

		case domain.ActionCompose:
			if a.Composer == nil {
				return fmt.Errorf("plan %q: action %d: missing composer", plan, i)
			}
			if err := requireArgs(i, a.Composer.References()); err != nil {
				return err
			}
			if ar, ok := a.Composer.(artifactReferencer); ok {
				if err := requireArtifacts(i, ar.ArtifactReferences()); err != nil {
					return err
				}
			}

		case domain.ActionInclude:
			inc := a.Include
			if inc == nil || (inc.Plan == "" && inc.Factory == nil) {
				return fmt.Errorf("plan %q: action %d: include needs a plan name or a factory", plan, i)
			}
			for _, o := range inc.Overrides {
				if err := requireArgs(i, domain.References(o.Value)); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("plan %q: action %d: unknown kind %q", plan, i, a.Kind)
		}
	}
	return nil
}
