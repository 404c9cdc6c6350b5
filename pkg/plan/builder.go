// Package plan turns plan definitions into resolved launch plans.
//
// Building is synchronous and has no side effects beyond template expansion:
// arguments are resolved, artifacts expanded, nodes interpolated, conditional
// blocks evaluated and inclusions built recursively. Any failure aborts the
// whole build, so a runtime never receives a partial plan.
package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/launchplan/pkg/args"
	"github.com/aretw0/launchplan/pkg/compose"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/dsl"
	"github.com/aretw0/launchplan/pkg/ports"
	"github.com/aretw0/launchplan/pkg/xacro"
)

// Builder resolves plan definitions. It holds no per-build state and is safe
// for concurrent use as long as its collaborators are.
type Builder struct {
	catalog  ports.Catalog
	resolver *xacro.Resolver
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxDepth int
}

// New creates a builder. catalog resolves inclusions by name and may be nil
// when every inclusion carries a factory.
func New(catalog ports.Catalog, resolver *xacro.Resolver, opts ...Option) *Builder {
	b := &Builder{
		catalog:  catalog,
		resolver: resolver,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	if b.resolver == nil {
		b.resolver = xacro.NewResolver(nil)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves def with the caller's overrides.
func (b *Builder) Build(ctx context.Context, def *domain.Plan, overrides map[string]string) (*domain.LaunchPlan, error) {
	if def == nil {
		return nil, errors.New("build: nil plan definition")
	}
	start := time.Now()
	lp, err := b.build(ctx, def, overrides, []string{def.Name()})

	if b.hooks.OnPlanBuilt != nil {
		evt := &domain.PlanEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPlanBuilt, Plan: def.Name()},
			Duration:  time.Since(start),
			Err:       err,
		}
		if err != nil {
			evt.Type = domain.EventPlanFailed
		} else {
			evt.Nodes = lp.NodeCount()
		}
		b.hooks.OnPlanBuilt(ctx, evt)
	}
	if err != nil {
		return nil, err
	}
	return lp, nil
}

// BuildNamed locates name in the catalog and builds it.
func (b *Builder) BuildNamed(ctx context.Context, name string, overrides map[string]string) (*domain.LaunchPlan, error) {
	def, err := b.Definition(name)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, def, overrides)
}

// Definition returns the definition registered under name.
func (b *Builder) Definition(name string) (*domain.Plan, error) {
	if b.catalog == nil {
		return nil, fmt.Errorf("%w: %s (no catalog)", domain.ErrPlanNotFound, name)
	}
	factory, err := b.catalog.Locate(name)
	if err != nil {
		return nil, err
	}
	return factory()
}

func (b *Builder) build(ctx context.Context, def *domain.Plan, overrides map[string]string, stack []string) (*domain.LaunchPlan, error) {
	name := def.Name()
	actions := def.Actions()
	if err := dsl.Validate(name, actions); err != nil {
		return nil, err
	}

	registry := args.NewRegistry(name)
	for _, a := range def.Arguments() {
		if err := registry.DeclareArgument(a); err != nil {
			return nil, err
		}
	}
	resolved, err := registry.Resolve(overrides)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", name, err)
	}
	if unused := registry.Unused(overrides); len(unused) > 0 {
		b.logger.Warn("ignoring overrides for undeclared arguments", "plan", name, "names", unused)
	}

	lp := &domain.LaunchPlan{
		Name:      name,
		Arguments: resolved,
		Artifacts: make(map[string]string),
	}
	scope := domain.Scope{Args: resolved, Artifacts: lp.Artifacts}

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch a.Kind {
		case domain.ActionDeclare:
			lp.Steps = append(lp.Steps, b.declareStep(registry, resolved, overrides, a.Argument.Name))

		case domain.ActionArtifact:
			step, err := b.expand(ctx, name, a.Artifact, scope)
			if err != nil {
				return nil, err
			}
			lp.Steps = append(lp.Steps, step)

		case domain.ActionStart:
			node, err := a.Node.Build(scope)
			if err != nil {
				return nil, fmt.Errorf("plan %q: %w", name, err)
			}
			lp.Steps = append(lp.Steps, domain.Step{Kind: domain.ActionStart, Node: &node})

		case domain.ActionCompose:
			steps, err := composeSteps(a.Composer, scope)
			if err != nil {
				return nil, fmt.Errorf("plan %q: %w", name, err)
			}
			lp.Steps = append(lp.Steps, steps...)

		case domain.ActionInclude:
			step, err := b.include(ctx, name, a.Include, scope, stack)
			if err != nil {
				return nil, err
			}
			lp.Steps = append(lp.Steps, step)
		}
	}

	b.logger.Debug("plan built", "plan", name, "depth", len(stack)-1, "nodes", lp.NodeCount())
	return lp, nil
}

func (b *Builder) declareStep(registry *args.Registry, resolved domain.Resolved, overrides map[string]string, name string) domain.Step {
	decl, _ := registry.Lookup(name)
	value, _ := resolved.Get(name)
	_, overridden := overrides[name]
	return domain.Step{
		Kind: domain.ActionDeclare,
		Argument: &domain.ResolvedArgument{
			Name:        name,
			Value:       value,
			Default:     decl.Default,
			Description: decl.Description,
			Overridden:  overridden,
		},
	}
}

func (b *Builder) expand(ctx context.Context, plan string, spec *domain.ArtifactSpec, scope domain.Scope) (domain.Step, error) {
	path, err := domain.Interpolate(spec.Template, scope)
	if err != nil {
		return domain.Step{}, fmt.Errorf("plan %q: artifact %q: %w", plan, spec.Key, err)
	}
	cmd, err := xacro.MacroCommand(path, scope.Args, spec.Keys)
	if err != nil {
		return domain.Step{}, fmt.Errorf("plan %q: artifact %q: %w", plan, spec.Key, err)
	}

	text, hit, err := b.resolver.Run(ctx, cmd)
	if err != nil {
		return domain.Step{}, fmt.Errorf("plan %q: artifact %q: %w", plan, spec.Key, err)
	}
	scope.Artifacts[spec.Key] = text

	if b.hooks.OnTemplateExpanded != nil {
		b.hooks.OnTemplateExpanded(ctx, &domain.ArtifactEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTemplateExpanded, Plan: plan},
			Key:       spec.Key,
			Command:   cmd.String(),
			CacheHit:  hit,
		})
	}
	b.logger.Debug("artifact expanded", "plan", plan, "key", spec.Key, "command", cmd.String(), "cache_hit", hit)

	return domain.Step{
		Kind:     domain.ActionArtifact,
		Artifact: &domain.ArtifactStep{Key: spec.Key, Command: cmd.String(), Size: len(text)},
	}, nil
}

type selector interface {
	Select(scope domain.Scope) ([]compose.Selection, error)
}

func composeSteps(c domain.Composer, scope domain.Scope) ([]domain.Step, error) {
	if s, ok := c.(selector); ok {
		selected, err := s.Select(scope)
		if err != nil {
			return nil, err
		}
		steps := make([]domain.Step, 0, len(selected))
		for _, sel := range selected {
			steps = append(steps, domain.Step{Kind: domain.ActionStart, Node: &sel.Node, Rule: sel.Rule})
		}
		return steps, nil
	}

	nodes, err := c.ComposeScope(scope)
	if err != nil {
		return nil, err
	}
	steps := make([]domain.Step, 0, len(nodes))
	for _, n := range nodes {
		steps = append(steps, domain.Step{Kind: domain.ActionStart, Node: &n})
	}
	return steps, nil
}

func (b *Builder) include(ctx context.Context, parent string, inc *domain.Inclusion, scope domain.Scope, stack []string) (domain.Step, error) {
	child, err := b.locate(inc)
	if err != nil {
		return domain.Step{}, &domain.PlanInclusionError{Parent: parent, Child: inc.Plan, Err: err}
	}
	childName := child.Name()
	if slices.Contains(stack, childName) {
		return domain.Step{}, &domain.PlanInclusionError{
			Parent: parent,
			Child:  childName,
			Err:    fmt.Errorf("inclusion cycle: %v", append(slices.Clone(stack), childName)),
		}
	}
	if len(stack) > b.maxDepth {
		return domain.Step{}, &domain.PlanInclusionError{
			Parent: parent,
			Child:  childName,
			Err:    fmt.Errorf("inclusion depth exceeds %d", b.maxDepth),
		}
	}

	forwarded := make(map[string]string, len(inc.Overrides))
	for _, o := range inc.Overrides {
		v, err := domain.Interpolate(o.Value, scope)
		if err != nil {
			return domain.Step{}, fmt.Errorf("plan %q: including %q: override %q: %w", parent, childName, o.Name, err)
		}
		forwarded[o.Name] = v
	}

	nested, err := b.build(ctx, child, forwarded, append(slices.Clone(stack), childName))
	if err != nil {
		var incErr *domain.PlanInclusionError
		if errors.As(err, &incErr) {
			return domain.Step{}, err
		}
		return domain.Step{}, fmt.Errorf("plan %q: including %q: %w", parent, childName, err)
	}
	return domain.Step{Kind: domain.ActionInclude, Include: nested, Overrides: forwarded}, nil
}

func (b *Builder) locate(inc *domain.Inclusion) (*domain.Plan, error) {
	factory := inc.Factory
	if factory == nil {
		if b.catalog == nil {
			return nil, fmt.Errorf("%w: %s (no catalog)", domain.ErrPlanNotFound, inc.Plan)
		}
		var err error
		if factory, err = b.catalog.Locate(inc.Plan); err != nil {
			return nil, err
		}
	}
	child, err := factory()
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, errors.New("factory returned no plan")
	}
	return child, nil
}
