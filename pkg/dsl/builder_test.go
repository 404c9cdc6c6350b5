package dsl

import (
	"testing"

	"github.com/aretw0/launchplan/pkg/compose"
	"github.com/aretw0/launchplan/pkg/condition"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimplePlan(t *testing.T) {
	b := New("description").Describe("publishes the robot model")

	b.Arg("namespace", "", "node namespace").
		Arg("description_file", "/share/kobuki.urdf.xacro", "").
		Arg("gazebo", "false", "")

	b.Artifact("robot_description", "{{ description_file }}", "gazebo")

	b.Node("robot_state_publisher", "robot_state_publisher").
		Namespace("{{ namespace }}").
		Param("robot_description", "{{ artifacts.robot_description }}").
		Remap("/tf", "tf").
		Remap("/tf_static", "tf_static")

	b.Compose(compose.Rule{
		Name:  "bridge",
		When:  condition.Flag("gazebo"),
		Nodes: []domain.NodeSpec{Spec("ros_gz_bridge", "parameter_bridge").Param("use_sim_time", true).Build()},
	})

	plan, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "description", plan.Name())
	assert.Equal(t, "publishes the robot model", plan.Description())

	actions := plan.Actions()
	require.Len(t, actions, 6)

	var kinds []domain.ActionKind
	for _, a := range actions {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []domain.ActionKind{
		domain.ActionDeclare, domain.ActionDeclare, domain.ActionDeclare,
		domain.ActionArtifact, domain.ActionStart, domain.ActionCompose,
	}, kinds)

	node := actions[4].Node
	require.NotNil(t, node)
	assert.Equal(t, "{{ namespace }}", node.Namespace)
	assert.Equal(t, []domain.Remapping{{From: "/tf", To: "tf"}, {From: "/tf_static", To: "tf_static"}}, node.Remappings)

	assert.Equal(t, []string{"namespace", "description_file", "gazebo"}, argNames(plan.Arguments()))
}

func TestBuilder_DuplicateArgument(t *testing.T) {
	_, err := New("p").Arg("gazebo", "false", "").Arg("gazebo", "true", "").Build()
	require.ErrorIs(t, err, domain.ErrDuplicateArgument)

	var dup *domain.DuplicateArgumentError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "p", dup.Plan)
}

func TestBuilder_ReferenceBeforeDeclaration(t *testing.T) {
	b := New("p")
	b.Node("pkg", "exe").Namespace("{{ namespace }}")
	b.Arg("namespace", "", "")

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrUnknownArgument)
}

func TestBuilder_UnknownReferences(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Builder)
		want  error
	}{
		{
			name:  "artifact macro key",
			build: func(b *Builder) { b.Artifact("robot_description", "/k.xacro", "lidar") },
			want:  domain.ErrUnknownArgument,
		},
		{
			name:  "artifact template path",
			build: func(b *Builder) { b.Artifact("robot_description", "{{ description_file }}") },
			want:  domain.ErrUnknownArgument,
		},
		{
			name: "compose predicate",
			build: func(b *Builder) {
				b.Compose(compose.Rule{When: condition.Flag("camera")})
			},
			want: domain.ErrUnknownArgument,
		},
		{
			name:  "include override",
			build: func(b *Builder) { b.Include("child", With("gazebo", "{{ gazebo }}")) },
			want:  domain.ErrUnknownArgument,
		},
		{
			name: "node artifact",
			build: func(b *Builder) {
				b.Node("pkg", "exe").Param("robot_description", "{{ artifacts.robot_description }}")
			},
			want: domain.ErrUnknownArtifact,
		},
		{
			name: "composed node artifact",
			build: func(b *Builder) {
				b.Compose(compose.Rule{Nodes: []domain.NodeSpec{
					Spec("pkg", "exe").Args("{{ artifacts.urdf }}").Build(),
				}})
			},
			want: domain.ErrUnknownArtifact,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("p")
			tt.build(b)
			_, err := b.Build()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuilder_MalformedActions(t *testing.T) {
	_, err := New("").Build()
	assert.Error(t, err)

	b := New("p")
	b.Node("", "exe")
	_, err = b.Build()
	assert.Error(t, err)

	_, err = New("p").Include("").Build()
	assert.Error(t, err)

	_, err = New("p").Arg("bad-name", "", "").Build()
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = New("p").Artifact("a", "/x").Artifact("a", "/y").Build()
	assert.Error(t, err)
}

func TestBuilder_Include(t *testing.T) {
	child := New("child").Arg("gazebo", "false", "").MustBuild()

	plan, err := New("parent").
		Arg("gazebo", "true", "").
		Include("child", Forward("gazebo")...).
		IncludeFactory("inline", func() (*domain.Plan, error) { return child, nil }, With("gazebo", "true")).
		Build()
	require.NoError(t, err)

	actions := plan.Actions()
	require.Len(t, actions, 3)
	assert.Equal(t, "child", actions[1].Include.Plan)
	assert.Equal(t, []domain.Override{{Name: "gazebo", Value: "{{ gazebo }}"}}, actions[1].Include.Overrides)
	assert.NotNil(t, actions[2].Include.Factory)
}

func TestBuilder_PlanIsIsolatedFromBuilder(t *testing.T) {
	b := New("p").Arg("namespace", "", "")
	nb := b.Node("pkg", "exe").Param("rate", 10)

	plan, err := b.Build()
	require.NoError(t, err)

	nb.Param("rate", 20).Remap("/a", "/b")
	assert.Equal(t, 10, plan.Actions()[1].Node.Parameters["rate"])
	assert.Empty(t, plan.Actions()[1].Node.Remappings)
}

func TestMustBuild_Panics(t *testing.T) {
	assert.Panics(t, func() { New("p").Arg("a", "", "").Arg("a", "", "").MustBuild() })
}

func argNames(args []domain.Argument) []string {
	var out []string
	for _, a := range args {
		out = append(out, a.Name)
	}
	return out
}
