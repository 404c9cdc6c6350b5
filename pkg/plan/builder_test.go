package plan

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/launchplan/pkg/adapters/memory"
	"github.com/aretw0/launchplan/pkg/compose"
	"github.com/aretw0/launchplan/pkg/condition"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/dsl"
	"github.com/aretw0/launchplan/pkg/ports"
	"github.com/aretw0/launchplan/pkg/xacro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func child() *domain.Plan {
	b := dsl.New("child")
	b.Arg("gazebo", "false", "").Arg("namespace", "", "")
	b.Node("pkg", "publisher").Namespace("{{ namespace }}")
	b.Compose(compose.Rule{
		Name:  "sim",
		When:  condition.Flag("gazebo"),
		Nodes: []domain.NodeSpec{dsl.Spec("ros_gz_bridge", "parameter_bridge").Build()},
	})
	return b.MustBuild()
}

func newBuilder(plans ...*domain.Plan) *Builder {
	return New(memory.NewCatalog(plans...), xacro.NewResolver(memory.EchoEngine{}))
}

func TestBuild_ResolvesInOrder(t *testing.T) {
	b := dsl.New("p")
	b.Arg("description_file", "/k.xacro", "").Arg("lidar", "false", "")
	b.Artifact("robot_description", "{{ description_file }}", "lidar")
	b.Node("robot_state_publisher", "robot_state_publisher").
		Param("robot_description", "{{ artifacts.robot_description }}")

	lp, err := newBuilder().Build(context.Background(), b.MustBuild(), map[string]string{"lidar": "true"})
	require.NoError(t, err)

	require.Len(t, lp.Steps, 4)
	assert.Equal(t, domain.ActionDeclare, lp.Steps[0].Kind)
	assert.False(t, lp.Steps[0].Argument.Overridden)
	assert.True(t, lp.Steps[1].Argument.Overridden)
	assert.Equal(t, "true", lp.Steps[1].Argument.Value)
	assert.Equal(t, "false", lp.Steps[1].Argument.Default)

	assert.Equal(t, "xacro /k.xacro lidar:=true", lp.Steps[2].Artifact.Command)
	artifact, ok := lp.Artifact("robot_description")
	require.True(t, ok)
	assert.Equal(t, "<!-- xacro /k.xacro lidar:=true -->", artifact)

	nodes := lp.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, artifact, nodes[0].Parameters["robot_description"])
}

func TestBuild_InclusionOverrideTakesPrecedence(t *testing.T) {
	parent := dsl.New("parent").
		Arg("gazebo", "true", "").
		Include("child", dsl.Forward("gazebo")...).
		MustBuild()

	lp, err := newBuilder(child()).Build(context.Background(), parent, nil)
	require.NoError(t, err)

	require.Len(t, lp.Steps, 2)
	inc := lp.Steps[1]
	require.Equal(t, domain.ActionInclude, inc.Kind)
	assert.Equal(t, map[string]string{"gazebo": "true"}, inc.Overrides)

	v, err := inc.Include.Arguments.Get("gazebo")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	// The child's bridge is selected because of the forwarded value.
	nodes := lp.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "ros_gz_bridge/parameter_bridge", nodes[1].ExecutableID())
	assert.Equal(t, "sim", inc.Include.Steps[3].Rule)
}

func TestBuild_IncludeFactory(t *testing.T) {
	parent := dsl.New("parent").
		IncludeFactory("inline", func() (*domain.Plan, error) { return child(), nil }, dsl.With("namespace", "robot1")).
		MustBuild()

	lp, err := New(nil, nil).Build(context.Background(), parent, nil)
	require.NoError(t, err)
	assert.Equal(t, "robot1", lp.Nodes()[0].Namespace)
}

func TestBuild_InclusionFailures(t *testing.T) {
	factoryErr := errors.New("definition file corrupt")

	tests := []struct {
		name   string
		parent *domain.Plan
	}{
		{
			name:   "unknown plan",
			parent: dsl.New("parent").Include("missing").MustBuild(),
		},
		{
			name: "factory failure",
			parent: dsl.New("parent").
				IncludeFactory("broken", func() (*domain.Plan, error) { return nil, factoryErr }).
				MustBuild(),
		},
		{
			name: "nil plan",
			parent: dsl.New("parent").
				IncludeFactory("empty", func() (*domain.Plan, error) { return nil, nil }).
				MustBuild(),
		},
		{
			name:   "self inclusion",
			parent: dsl.New("parent").Include("parent").MustBuild(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(tt.parent)
			_, err := b.Build(context.Background(), tt.parent, nil)
			require.ErrorIs(t, err, domain.ErrPlanInclusion)

			var incErr *domain.PlanInclusionError
			require.ErrorAs(t, err, &incErr)
			assert.Equal(t, "parent", incErr.Parent)
		})
	}

	_, err := newBuilder().Build(context.Background(), tests[1].parent, nil)
	assert.ErrorIs(t, err, factoryErr)
	_, err = newBuilder().Build(context.Background(), tests[0].parent, nil)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestBuild_IndirectCycle(t *testing.T) {
	a := dsl.New("a").Include("b").MustBuild()
	bp := dsl.New("b").Include("a").MustBuild()

	_, err := newBuilder(a, bp).Build(context.Background(), a, nil)
	require.ErrorIs(t, err, domain.ErrPlanInclusion)
	assert.Contains(t, err.Error(), "inclusion cycle")
}

func TestBuild_MaxDepth(t *testing.T) {
	catalog := memory.NewCatalog()
	for i := range 5 {
		b := dsl.New(name(i))
		if i < 4 {
			b.Include(name(i + 1))
		}
		require.NoError(t, catalog.Register(name(i), func() (*domain.Plan, error) { return b.Build() }))
	}
	root, err := catalog.Locate(name(0))
	require.NoError(t, err)
	def, err := root()
	require.NoError(t, err)

	_, err = New(catalog, nil, WithMaxDepth(2)).Build(context.Background(), def, nil)
	assert.ErrorIs(t, err, domain.ErrPlanInclusion)

	_, err = New(catalog, nil).Build(context.Background(), def, nil)
	assert.NoError(t, err)
}

func name(i int) string { return string(rune('a' + i)) }

func TestBuild_NestedErrorsKeepTheirKind(t *testing.T) {
	engineErr := errors.New("xacro: unknown macro")
	failing := ports.TemplateEngineFunc(func(context.Context, []string) (string, error) { return "", engineErr })

	c := dsl.New("child").Arg("f", "/k.xacro", "")
	c.Artifact("robot_description", "{{ f }}")
	parent := dsl.New("parent").Include("child").MustBuild()

	_, err := New(memory.NewCatalog(c.MustBuild()), xacro.NewResolver(failing)).Build(context.Background(), parent, nil)
	require.ErrorIs(t, err, domain.ErrTemplateExpansion)
	assert.ErrorIs(t, err, engineErr)
	assert.NotErrorIs(t, err, domain.ErrPlanInclusion)
	assert.Contains(t, err.Error(), `including "child"`)
}

func TestBuild_InvalidOverride(t *testing.T) {
	def := dsl.New("p").Argument(domain.Argument{Name: "world", Default: "empty", Choices: []string{"empty", "house"}}).MustBuild()
	_, err := newBuilder().Build(context.Background(), def, map[string]string{"world": "moon"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBuild_WarnsAboutUnusedOverrides(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	def := dsl.New("p").Arg("gazebo", "false", "").MustBuild()
	_, err := New(nil, nil, WithLogger(logger)).Build(context.Background(), def, map[string]string{"gazeb": "true"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "gazeb")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestBuild_Hooks(t *testing.T) {
	var built []*domain.PlanEvent
	var expanded []*domain.ArtifactEvent
	hooks := domain.LifecycleHooks{
		OnPlanBuilt:        func(_ context.Context, e *domain.PlanEvent) { built = append(built, e) },
		OnTemplateExpanded: func(_ context.Context, e *domain.ArtifactEvent) { expanded = append(expanded, e) },
	}

	b := dsl.New("p").Arg("f", "/k.xacro", "")
	b.Artifact("urdf", "{{ f }}")
	b.Node("pkg", "exe")
	builder := New(nil, xacro.NewResolver(memory.EchoEngine{}), WithHooks(hooks))

	_, err := builder.Build(context.Background(), b.MustBuild(), nil)
	require.NoError(t, err)
	require.Len(t, built, 1)
	assert.Equal(t, domain.EventPlanBuilt, built[0].Type)
	assert.Equal(t, 1, built[0].Nodes)
	require.Len(t, expanded, 1)
	assert.Equal(t, "urdf", expanded[0].Key)
	assert.Equal(t, "p", expanded[0].Plan)

	_, err = builder.Build(context.Background(), dsl.New("q").Include("missing").MustBuild(), nil)
	require.Error(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, domain.EventPlanFailed, built[1].Type)
	assert.ErrorIs(t, built[1].Err, domain.ErrPlanInclusion)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newBuilder().Build(ctx, dsl.New("p").Arg("a", "", "").MustBuild(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildNamed(t *testing.T) {
	lp, err := newBuilder(child()).BuildNamed(context.Background(), "child", map[string]string{"gazebo": "true"})
	require.NoError(t, err)
	assert.Equal(t, 2, lp.NodeCount())

	_, err = newBuilder().BuildNamed(context.Background(), "child", nil)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}
