package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/launchplan/internal/logging"
	"github.com/aretw0/launchplan/pkg/domain"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ErrExecutableNotAllowed is returned in strict mode for executables without a registered command.
var ErrExecutableNotAllowed = errors.New("executable not registered")

// DefaultLauncher is the program used to start nodes without an override.
const DefaultLauncher = "ros2"

// DefaultStopTimeout is how long a node may take to exit after SIGINT before it is killed.
const DefaultStopTimeout = 10 * time.Second

// RegisteredProcess replaces the launcher for one executable.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     []string
}

// Runtime implements ports.Runtime by starting one OS process per node and
// supervising them until all exit or one fails. A failing node cancels the rest.
type Runtime struct {
	mu       sync.RWMutex
	registry map[string]RegisteredProcess

	launcher    string
	strict      bool
	baseDir     string
	stopTimeout time.Duration
	stdout      io.Writer
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
}

// RuntimeOption configures the runtime.
type RuntimeOption func(*Runtime)

// WithRegistry populates the registry from a loaded config.
func WithRegistry(execs map[string]ProcessConfig) RuntimeOption {
	return func(r *Runtime) {
		for id, e := range execs {
			env := make([]string, 0, len(e.Environment))
			for _, k := range slices.Sorted(maps.Keys(e.Environment)) {
				env = append(env, k+"="+e.Environment[k])
			}
			r.registry[id] = RegisteredProcess{Command: e.Command, Args: e.Args, Env: env}
		}
	}
}

// WithStrict only allows executables present in the registry.
func WithStrict(strict bool) RuntimeOption {
	return func(r *Runtime) { r.strict = strict }
}

// WithLauncher replaces "ros2" for unregistered executables.
func WithLauncher(program string) RuntimeOption {
	return func(r *Runtime) { r.launcher = program }
}

// WithBaseDir sets the working directory for started processes.
func WithBaseDir(dir string) RuntimeOption {
	return func(r *Runtime) { r.baseDir = dir }
}

// WithStopTimeout sets how long stopped nodes get to shut down before being killed.
func WithStopTimeout(d time.Duration) RuntimeOption {
	return func(r *Runtime) { r.stopTimeout = d }
}

// WithStdout sets where nodes with output "screen" write. Defaults to os.Stdout.
func WithStdout(w io.Writer) RuntimeOption {
	return func(r *Runtime) { r.stdout = w }
}

// WithLogger sets the logger receiving the output of non-screen nodes.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) { r.logger = l }
}

// WithHooks sets lifecycle hooks.
func WithHooks(h domain.LifecycleHooks) RuntimeOption {
	return func(r *Runtime) { r.hooks = h }
}

// NewRuntime creates a process runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		registry:    make(map[string]RegisteredProcess),
		launcher:    DefaultLauncher,
		stopTimeout: DefaultStopTimeout,
		stdout:      os.Stdout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a command for "package/executable" to the registry.
func (r *Runtime) Register(executableID, command string, args ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry[executableID] = RegisteredProcess{Command: command, Args: args}
}

// Launch starts every node of plan in declared order and blocks until they all exit.
// Cancelling ctx sends SIGINT to every node and returns the context error.
func (r *Runtime) Launch(ctx context.Context, plan *domain.LaunchPlan) error {
	nodes := plan.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	dir, err := os.MkdirTemp("", "launchplan-params-")
	if err != nil {
		return fmt.Errorf("failed to create params dir: %w", err)
	}
	defer os.RemoveAll(dir)

	g, gctx := errgroup.WithContext(ctx)
	for i, n := range nodes {
		cmd, flush, err := r.command(gctx, n, dir, i)
		if err != nil {
			return r.abort(g, err)
		}

		if r.hooks.OnNodeStart != nil {
			r.hooks.OnNodeStart(ctx, &domain.NodeEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeStart, Plan: plan.Name},
				Node:      n,
			})
		}
		r.logger.Info("starting node", "plan", plan.Name, "node", n.DisplayName(), "executable", n.ExecutableID())

		if err := cmd.Start(); err != nil {
			return r.abort(g, fmt.Errorf("node %s: %w", n.DisplayName(), err))
		}
		g.Go(func() error {
			err := cmd.Wait()
			flush()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return fmt.Errorf("node %s: %w", n.DisplayName(), err)
			}
			r.logger.Debug("node exited", "node", n.DisplayName())
			return nil
		})
	}
	return g.Wait()
}

// abort stops nodes already started and returns err.
func (r *Runtime) abort(g *errgroup.Group, err error) error {
	g.Go(func() error { return err })
	_ = g.Wait()
	return err
}

// command prepares the process of n. The returned func flushes output still buffered after the process exits.
func (r *Runtime) command(ctx context.Context, n domain.NodeDescriptor, dir string, index int) (*exec.Cmd, func(), error) {
	r.mu.RLock()
	proc, ok := r.registry[n.ExecutableID()]
	r.mu.RUnlock()

	var argv []string
	switch {
	case ok:
		argv = append([]string{proc.Command}, proc.Args...)
		argv = append(argv, n.Arguments...)
	case r.strict:
		return nil, nil, fmt.Errorf("%w: %s", ErrExecutableNotAllowed, n.ExecutableID())
	default:
		paramsFile := ""
		if len(n.Parameters) > 0 {
			paramsFile = filepath.Join(dir, fmt.Sprintf("%02d_%s.yaml", index, sanitize(n.DisplayName())))
			if err := WriteParams(paramsFile, n); err != nil {
				return nil, nil, err
			}
		}
		argv = append([]string{r.launcher}, RunArgs(n, paramsFile)...)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), proc.Env...)
	// ROS nodes shut down cleanly on SIGINT; SIGKILL only after the stop timeout.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = r.stopTimeout

	if n.Output == "screen" {
		cmd.Stdout = r.stdout
		cmd.Stderr = r.stdout
		return cmd, func() {}, nil
	}
	w := &logWriter{logger: r.logger, node: n.DisplayName()}
	cmd.Stdout = w
	cmd.Stderr = w
	return cmd, w.Flush, nil
}

// RunArgs returns the "ros2" arguments that start n:
//
//	run <package> <executable> [arguments] --ros-args [-r __node:=name] [-r __ns:=ns] [-r from:=to] [--params-file f]
func RunArgs(n domain.NodeDescriptor, paramsFile string) []string {
	args := []string{"run", n.Package, n.Executable}
	args = append(args, n.Arguments...)

	var ros []string
	if n.Name != "" {
		ros = append(ros, "-r", "__node:="+n.Name)
	}
	if n.Namespace != "" {
		ros = append(ros, "-r", "__ns:="+absolute(n.Namespace))
	}
	for _, m := range n.Remappings {
		ros = append(ros, "-r", m.From+":="+m.To)
	}
	if paramsFile != "" {
		ros = append(ros, "--params-file", paramsFile)
	}
	if len(ros) > 0 {
		args = append(args, "--ros-args")
		args = append(args, ros...)
	}
	return args
}

// WriteParams writes the node parameters as a ROS 2 parameters file applying to any node name.
func WriteParams(path string, n domain.NodeDescriptor) error {
	doc := map[string]any{
		"/**": map[string]any{"ros__parameters": n.Parameters},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode parameters of %s: %w", n.DisplayName(), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write parameters of %s: %w", n.DisplayName(), err)
	}
	return nil
}

func absolute(ns string) string {
	if strings.HasPrefix(ns, "/") {
		return ns
	}
	return "/" + ns
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == ' ' {
			return '_'
		}
		return r
	}, name)
}

// logWriter forwards process output to the logger one line at a time.
type logWriter struct {
	mu      sync.Mutex
	logger  *slog.Logger
	node    string
	pending []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.logger.Info(strings.TrimRight(string(w.pending[:i]), "\r"), "node", w.node)
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

// Flush logs a final line that ended without a newline.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return
	}
	w.logger.Info(strings.TrimRight(string(w.pending), "\r"), "node", w.node)
	w.pending = nil
}
