package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/launchplan"
	"github.com/aretw0/launchplan/internal/logging"
	loamAdapter "github.com/aretw0/launchplan/pkg/adapters/loam"
	"github.com/aretw0/launchplan/pkg/adapters/memory"
	"github.com/aretw0/launchplan/pkg/adapters/process"
	redisAdapter "github.com/aretw0/launchplan/pkg/adapters/redis"
	"github.com/aretw0/launchplan/pkg/args"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/ports"
)

// Assembly is an engine together with the resources it holds.
type Assembly struct {
	Engine *launchplan.Engine
	// Recorder is set in dry-run mode and holds the nodes that would have started.
	Recorder *memory.Runtime
	closers  []func() error
}

// Close releases the resources held by the assembly.
func (a *Assembly) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout plan output).
func CreateLogger(opts Options) *slog.Logger {
	if opts.Debug {
		return logging.NewWriter(os.Stderr, slog.LevelDebug, opts.LogFormat == "json")
	}
	if opts.LogLevel == "" {
		return logging.NewNop()
	}
	return logging.NewWriter(os.Stderr, logging.ParseLevel(opts.LogLevel), opts.LogFormat == "json")
}

// CreateEngine initializes an engine with standard CLI conventions:
// Kobuki plans from the share directory, documents from the catalog directory,
// a redis artifact cache when configured and a process or recording runtime.
func CreateEngine(ctx context.Context, opts Options, logger *slog.Logger, extra ...launchplan.Option) (*Assembly, error) {
	a := &Assembly{}
	hooks := domain.LifecycleHooks{}
	if opts.Debug {
		hooks = logging.Hooks(logger)
	}

	engineOpts := []launchplan.Option{
		launchplan.WithLogger(logger),
		launchplan.WithLifecycleHooks(hooks),
		launchplan.WithPathProvider(args.SharePrefix{Root: opts.ShareDir}),
	}

	var xacroOpts []process.EngineOption
	if opts.XacroPath != "" {
		xacroOpts = append(xacroOpts, process.WithProgram(opts.XacroPath))
	}
	engineOpts = append(engineOpts, launchplan.WithTemplateEngine(process.NewEngine(xacroOpts...)))

	if opts.CatalogDir != "" {
		catalog, err := loamAdapter.Open(opts.CatalogDir)
		if err != nil {
			return nil, fmt.Errorf("error opening catalog: %w", err)
		}
		engineOpts = append(engineOpts, launchplan.WithCatalog(catalog))
	}

	cache, closeCache := createCache(ctx, opts, logger)
	engineOpts = append(engineOpts, launchplan.WithCache(cache))
	if closeCache != nil {
		a.closers = append(a.closers, closeCache)
	}

	runtime, err := createRuntime(opts, logger, hooks, a)
	if err != nil {
		return nil, err
	}
	engineOpts = append(engineOpts, launchplan.WithRuntime(runtime))
	engineOpts = append(engineOpts, extra...)

	eng, err := launchplan.New(engineOpts...)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	a.Engine = eng
	return a, nil
}

// createCache prefers redis and falls back to an in-process cache when redis is
// not configured or does not answer.
func createCache(ctx context.Context, opts Options, logger *slog.Logger) (ports.ArtifactCache, func() error) {
	if opts.RedisAddr == "" {
		return memory.NewCache(opts.CacheTTL), nil
	}
	c := redisAdapter.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, redisAdapter.WithTTL(opts.CacheTTL))

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		logger.Warn("redis cache unavailable, using memory cache", "addr", opts.RedisAddr, "error", err)
		_ = c.Close()
		return memory.NewCache(opts.CacheTTL), nil
	}
	logger.Debug("using redis artifact cache", "addr", opts.RedisAddr)
	return c, c.Close
}

func createRuntime(opts Options, logger *slog.Logger, hooks domain.LifecycleHooks, a *Assembly) (ports.Runtime, error) {
	if opts.DryRun {
		a.Recorder = memory.NewRuntime(hooks)
		return a.Recorder, nil
	}

	runtimeOpts := []process.RuntimeOption{
		process.WithLogger(logger),
		process.WithHooks(hooks),
	}
	if opts.Executables != "" {
		execs, err := process.LoadExecutables(opts.Executables)
		if err != nil {
			return nil, err
		}
		runtimeOpts = append(runtimeOpts, process.WithRegistry(execs))
	}
	return process.NewRuntime(runtimeOpts...), nil
}
