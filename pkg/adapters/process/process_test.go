package process

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func planOf(nodes ...domain.NodeDescriptor) *domain.LaunchPlan {
	p := &domain.LaunchPlan{Name: "test"}
	for _, n := range nodes {
		p.Steps = append(p.Steps, domain.Step{Kind: domain.ActionStart, Node: &n})
	}
	return p
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEngine_Expand(t *testing.T) {
	skipOnWindows(t)

	out, err := NewEngine(WithProgram("echo")).Expand(context.Background(), []string{"xacro", "/k.urdf.xacro", "gazebo:=true"})
	require.NoError(t, err)
	assert.Equal(t, "/k.urdf.xacro gazebo:=true\n", out)
}

func TestEngine_ExpandFailureCarriesStderr(t *testing.T) {
	skipOnWindows(t)

	_, err := NewEngine().Expand(context.Background(), []string{"sh", "-c", "echo 'No such file' >&2; exit 2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such file")

	_, err = NewEngine().Expand(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunArgs(t *testing.T) {
	n := domain.NodeDescriptor{
		Package:    "robot_state_publisher",
		Executable: "robot_state_publisher",
		Name:       "rsp",
		Namespace:  "kobuki",
		Remappings: []domain.Remapping{{From: "/tf", To: "tf"}},
		Arguments:  []string{"--verbose"},
	}
	assert.Equal(t, []string{
		"run", "robot_state_publisher", "robot_state_publisher", "--verbose",
		"--ros-args", "-r", "__node:=rsp", "-r", "__ns:=/kobuki", "-r", "/tf:=tf",
		"--params-file", "/tmp/p.yaml",
	}, RunArgs(n, "/tmp/p.yaml"))

	bare := domain.NodeDescriptor{Package: "p", Executable: "e"}
	assert.Equal(t, []string{"run", "p", "e"}, RunArgs(bare, ""))
}

func TestWriteParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	n := domain.NodeDescriptor{
		Package: "p", Executable: "e",
		Parameters: map[string]any{"use_sim_time": true, "robot_description": "<robot/>"},
	}
	require.NoError(t, WriteParams(path, n))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, true, doc["/**"]["ros__parameters"]["use_sim_time"])
	assert.Equal(t, "<robot/>", doc["/**"]["ros__parameters"]["robot_description"])
}

func TestRuntime_RegisteredCommands(t *testing.T) {
	skipOnWindows(t)

	var out syncBuffer
	var started []string
	rt := NewRuntime(
		WithStdout(&out),
		WithStrict(true),
		WithHooks(domain.LifecycleHooks{
			OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
				started = append(started, e.Node.DisplayName())
			},
		}),
	)
	rt.Register("demo/talker", "echo", "talker says")
	rt.Register("demo/listener", "echo", "listener says")

	err := rt.Launch(context.Background(), planOf(
		domain.NodeDescriptor{Package: "demo", Executable: "talker", Output: "screen", Arguments: []string{"hi"}},
		domain.NodeDescriptor{Package: "demo", Executable: "listener", Output: "screen"},
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"talker", "listener"}, started)
	assert.Contains(t, out.String(), "talker says hi")
	assert.Contains(t, out.String(), "listener says")
}

func TestRuntime_StrictRejectsUnregistered(t *testing.T) {
	err := NewRuntime(WithStrict(true)).Launch(context.Background(), planOf(
		domain.NodeDescriptor{Package: "demo", Executable: "talker"},
	))
	assert.ErrorIs(t, err, ErrExecutableNotAllowed)
}

func TestRuntime_FailingNodeStopsOthers(t *testing.T) {
	skipOnWindows(t)

	rt := NewRuntime(WithStrict(true))
	rt.Register("demo/sleeper", "sleep", "30")
	rt.Register("demo/crasher", "false")

	start := time.Now()
	err := rt.Launch(context.Background(), planOf(
		domain.NodeDescriptor{Package: "demo", Executable: "sleeper"},
		domain.NodeDescriptor{Package: "demo", Executable: "crasher"},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crasher")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRuntime_Cancellation(t *testing.T) {
	skipOnWindows(t)

	rt := NewRuntime(WithStrict(true))
	rt.Register("demo/sleeper", "sleep", "30")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := rt.Launch(ctx, planOf(domain.NodeDescriptor{Package: "demo", Executable: "sleeper"}))
	assert.Error(t, err)
}

func TestRuntime_InterruptIsReportedAsCancellation(t *testing.T) {
	skipOnWindows(t)

	rt := NewRuntime(WithStrict(true), WithStopTimeout(5*time.Second))
	rt.Register("demo/sleeper", "sleep", "30")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	err := rt.Launch(ctx, planOf(domain.NodeDescriptor{Package: "demo", Executable: "sleeper"}))
	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "killed")
	// sleep exits on SIGINT, well before the stop timeout.
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRuntime_InterruptGivesNodesTimeToShutDown(t *testing.T) {
	skipOnWindows(t)

	// The node traps SIGINT and prints a farewell before exiting.
	script := filepath.Join(t.TempDir(), "graceful")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ntrap 'echo shutting down; exit 0' INT\nwhile true; do sleep 0.05; done\n"), 0o755))

	var out syncBuffer
	rt := NewRuntime(WithStrict(true), WithStdout(&out))
	rt.Register("demo/graceful", script)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	err := rt.Launch(ctx, planOf(domain.NodeDescriptor{Package: "demo", Executable: "graceful", Output: "screen"}))
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out.String(), "shutting down")
}

func TestRuntime_DefaultLauncherWritesParams(t *testing.T) {
	skipOnWindows(t)

	// The fake launcher prints the file passed after --params-file.
	script := filepath.Join(t.TempDir(), "fake-ros2")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nwhile [ $# -gt 0 ]; do\n  if [ \"$1\" = --params-file ]; then cat \"$2\"; fi\n  shift\ndone\n"), 0o755))

	var out syncBuffer
	rt := NewRuntime(WithLauncher(script), WithStdout(&out))
	err := rt.Launch(context.Background(), planOf(domain.NodeDescriptor{
		Package: "demo", Executable: "talker", Output: "screen",
		Parameters: map[string]any{"rate": 10},
	}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ros__parameters")
	assert.Contains(t, out.String(), "rate: 10")
}

func TestRuntime_LogOutput(t *testing.T) {
	skipOnWindows(t)

	var logs syncBuffer
	rt := NewRuntime(WithStrict(true), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	rt.Register("demo/talker", "printf", "one\ntwo\n")

	require.NoError(t, rt.Launch(context.Background(), planOf(domain.NodeDescriptor{Package: "demo", Executable: "talker"})))
	lines := strings.Count(logs.String(), "node=talker")
	assert.GreaterOrEqual(t, lines, 2)
	assert.Contains(t, logs.String(), "msg=one")
	assert.Contains(t, logs.String(), "msg=two")
}

func TestRuntime_LogsFinalLineWithoutNewline(t *testing.T) {
	skipOnWindows(t)

	var logs syncBuffer
	rt := NewRuntime(WithStrict(true), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	rt.Register("demo/crasher", "sh", "-c", `printf 'first\nfatal: no trailing newline'; exit 3`)

	err := rt.Launch(context.Background(), planOf(domain.NodeDescriptor{Package: "demo", Executable: "crasher"}))
	require.Error(t, err)
	assert.Contains(t, logs.String(), "msg=first")
	assert.Contains(t, logs.String(), `msg="fatal: no trailing newline"`)
}

func TestLogWriter_Flush(t *testing.T) {
	var logs bytes.Buffer
	w := &logWriter{logger: slog.New(slog.NewTextHandler(&logs, nil)), node: "talker"}

	_, err := w.Write([]byte("first\npartial"))
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "partial")

	w.Flush()
	assert.Contains(t, logs.String(), "msg=partial")
	assert.Empty(t, w.pending)

	before := logs.Len()
	w.Flush()
	assert.Equal(t, before, logs.Len())
}

func TestLoadExecutables(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "executables.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
executables:
  - executable: ros_gz_sim/create
    command: echo
    args: ["spawn"]
    env:
      GZ_VERSION: harmonic
  - executable: incomplete/entry
`), 0o644))

	execs, err := LoadExecutables(yamlPath)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, "echo", execs["ros_gz_sim/create"].Command)
	assert.Equal(t, "harmonic", execs["ros_gz_sim/create"].Environment["GZ_VERSION"])

	jsonPath := filepath.Join(dir, "executables.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"executables":[{"executable":"a/b","command":"true"}]}`), 0o644))
	execs, err = LoadExecutables(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, execs, "a/b")

	execs, err = LoadExecutables(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, execs)

	require.NoError(t, os.WriteFile(yamlPath, []byte("executables: ["), 0o644))
	_, err = LoadExecutables(yamlPath)
	assert.Error(t, err)
}

func TestWithRegistry(t *testing.T) {
	skipOnWindows(t)

	var out syncBuffer
	rt := NewRuntime(WithStrict(true), WithStdout(&out), WithRegistry(map[string]ProcessConfig{
		"demo/env": {Executable: "demo/env", Command: "sh", Args: []string{"-c", "echo $GREETING"}, Environment: map[string]string{"GREETING": "hello"}},
	}))
	require.NoError(t, rt.Launch(context.Background(), planOf(domain.NodeDescriptor{Package: "demo", Executable: "env", Output: "screen"})))
	assert.Contains(t, out.String(), "hello")
}
