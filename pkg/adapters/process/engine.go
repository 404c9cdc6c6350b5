package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Engine implements ports.TemplateEngine by running the xacro executable.
type Engine struct {
	program string
	baseDir string
	env     []string
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithProgram replaces the executable named in the invocation (e.g. an absolute xacro path).
func WithProgram(path string) EngineOption {
	return func(e *Engine) { e.program = path }
}

// WithEngineDir sets the working directory of the engine.
func WithEngineDir(dir string) EngineOption {
	return func(e *Engine) { e.baseDir = dir }
}

// WithEngineEnv adds KEY=VALUE pairs to the engine environment.
func WithEngineEnv(env ...string) EngineOption {
	return func(e *Engine) { e.env = append(e.env, env...) }
}

// NewEngine creates a process backed template engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand runs argv and returns its standard output.
// A failed run returns the engine's stderr verbatim in the error.
func (e *Engine) Expand(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty invocation")
	}
	program := argv[0]
	if e.program != "" {
		program = e.program
	}

	cmd := exec.CommandContext(ctx, program, argv[1:]...)
	cmd.Dir = e.baseDir
	cmd.Env = append(cmd.Environ(), e.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s: %w", program, err)
		}
		return "", fmt.Errorf("%s: %w: %s", program, err, msg)
	}
	return stdout.String(), nil
}
