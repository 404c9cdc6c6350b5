package launchplan

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/launchplan/pkg/adapters/memory"
	"github.com/aretw0/launchplan/pkg/adapters/process"
	"github.com/aretw0/launchplan/pkg/args"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/kobuki"
	"github.com/aretw0/launchplan/pkg/plan"
	"github.com/aretw0/launchplan/pkg/ports"
	"github.com/aretw0/launchplan/pkg/xacro"
)

// Engine is the high-level entry point of the library.
// It locates plan definitions, builds launch plans and hands them to a runtime.
type Engine struct {
	builtin  *memory.Catalog
	catalogs []ports.Catalog
	catalog  chain
	builder  *plan.Builder
	runtime  ports.Runtime
	engine   ports.TemplateEngine
	cache    ports.ArtifactCache
	provider args.PathProvider
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxDepth int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCatalog adds a catalog searched after the built-in plans, in the order added.
func WithCatalog(c ports.Catalog) Option {
	return func(e *Engine) {
		e.catalogs = append(e.catalogs, c)
	}
}

// WithPlans adds in-memory plan definitions, searched after the built-in plans.
func WithPlans(plans ...*domain.Plan) Option {
	return func(e *Engine) {
		for _, p := range plans {
			e.catalogs = append(e.catalogs, memory.NewCatalog(p))
		}
	}
}

// WithPathProvider sets where package share directories are found.
// When set, the Kobuki description and spawn plans are registered.
func WithPathProvider(p args.PathProvider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithTemplateEngine replaces the xacro process used to expand artifacts.
func WithTemplateEngine(t ports.TemplateEngine) Option {
	return func(e *Engine) {
		e.engine = t
	}
}

// WithCache stores expanded artifacts across builds.
func WithCache(c ports.ArtifactCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithRuntime sets the runtime used by Launch. The default only records nodes.
func WithRuntime(r ports.Runtime) Option {
	return func(e *Engine) {
		e.runtime = r
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxDepth limits plan inclusion nesting.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// New initializes an Engine.
// Built-in plans come first, then catalogs in the order they were given.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{builtin: memory.NewCatalog()}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.provider != nil {
		if err := kobuki.Register(eng.builtin, eng.provider); err != nil {
			return nil, fmt.Errorf("failed to register kobuki plans: %w", err)
		}
	}
	if eng.engine == nil {
		eng.engine = process.NewEngine()
	}
	if eng.runtime == nil {
		eng.runtime = memory.NewRuntime(eng.hooks)
	}

	eng.catalog = append(chain{eng.builtin}, eng.catalogs...)

	resolverOpts := []xacro.Option{xacro.WithLogger(eng.logger)}
	if eng.cache != nil {
		resolverOpts = append(resolverOpts, xacro.WithCache(eng.cache))
	}
	builderOpts := []plan.Option{plan.WithLogger(eng.logger), plan.WithHooks(eng.hooks)}
	if eng.maxDepth > 0 {
		builderOpts = append(builderOpts, plan.WithMaxDepth(eng.maxDepth))
	}
	eng.builder = plan.New(eng.catalog, xacro.NewResolver(eng.engine, resolverOpts...), builderOpts...)

	return eng, nil
}

// Plans lists every plan name the engine can build, sorted and without duplicates.
func (e *Engine) Plans() ([]string, error) {
	return e.catalog.List()
}

// Describe returns the definition of a plan without building it.
func (e *Engine) Describe(name string) (*domain.Plan, error) {
	return e.builder.Definition(name)
}

// Build resolves the named plan with overrides. Nothing is started.
func (e *Engine) Build(ctx context.Context, name string, overrides map[string]string) (*domain.LaunchPlan, error) {
	return e.builder.BuildNamed(ctx, name, overrides)
}

// BuildPlan resolves a definition that is not registered in any catalog.
// Inclusions are still located through the engine catalogs.
func (e *Engine) BuildPlan(ctx context.Context, def *domain.Plan, overrides map[string]string) (*domain.LaunchPlan, error) {
	return e.builder.Build(ctx, def, overrides)
}

// Launch builds the named plan and hands it to the runtime.
// If the build fails nothing is started. When the runtime fails the built plan
// is still returned.
func (e *Engine) Launch(ctx context.Context, name string, overrides map[string]string) (*domain.LaunchPlan, error) {
	lp, err := e.Build(ctx, name, overrides)
	if err != nil {
		return nil, err
	}
	e.logger.Info("launching plan", "plan", lp.Name, "nodes", lp.NodeCount())
	if err := e.runtime.Launch(ctx, lp); err != nil {
		return lp, fmt.Errorf("launch %s: %w", lp.Name, err)
	}
	return lp, nil
}

// Watch returns a channel that signals when a plan document changes.
// Returns an error if no catalog supports watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	for _, c := range e.catalogs {
		if w, ok := c.(ports.Watchable); ok {
			return w.Watch(ctx)
		}
	}
	return nil, fmt.Errorf("no catalog supports watching")
}

// Catalog returns the catalog chain used by the engine.
func (e *Engine) Catalog() ports.Catalog {
	return e.catalog
}
