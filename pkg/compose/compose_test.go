package compose

import (
	"testing"

	"github.com/aretw0/launchplan/pkg/condition"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func args(kv ...string) domain.Resolved {
	var names []string
	values := make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values[kv[i]] = kv[i+1]
	}
	return domain.NewResolved(names, values)
}

func bridge(name string) domain.NodeSpec {
	return domain.NodeSpec{
		Package:    "ros_gz_bridge",
		Executable: "parameter_bridge",
		Name:       name,
		Parameters: map[string]any{"use_sim_time": true},
	}
}

func TestCompose_Empty(t *testing.T) {
	nodes, err := New().Compose(args("gazebo", "true"))
	require.NoError(t, err)
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestCompose_DeclarationOrder(t *testing.T) {
	c := New(
		Rule{Name: "first", When: condition.Flag("a"), Nodes: []domain.NodeSpec{bridge("one"), bridge("two")}},
		Rule{Name: "skipped", When: condition.Flag("b"), Nodes: []domain.NodeSpec{bridge("never")}},
		Rule{Name: "last", When: condition.Always(), Nodes: []domain.NodeSpec{bridge("three")}},
	)

	nodes, err := c.Compose(args("a", "true", "b", "false"))
	require.NoError(t, err)

	var names []string
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"one", "two", "three"}, names)

	sel, err := c.Select(domain.Scope{Args: args("a", "true", "b", "false")})
	require.NoError(t, err)
	assert.Equal(t, "first", sel[0].Rule)
	assert.Equal(t, "last", sel[2].Rule)
}

func TestCompose_UnknownArgument(t *testing.T) {
	c := New(Rule{When: condition.And(condition.Flag("camera"), condition.Flag("gazebo"))})
	_, err := c.Compose(args("camera", "true"))
	require.ErrorIs(t, err, domain.ErrUnknownArgument)
	assert.Contains(t, err.Error(), "camera == 'true' && gazebo == 'true'")
}

func TestCompose_InterpolatesNodes(t *testing.T) {
	c := New(Rule{
		When: condition.Always(),
		Nodes: []domain.NodeSpec{{
			Package:    "robot_state_publisher",
			Executable: "robot_state_publisher",
			Namespace:  "{{ namespace }}",
			Parameters: map[string]any{"robot_description": "{{ artifacts.robot_description }}"},
		}},
	})

	nodes, err := c.ComposeScope(domain.Scope{
		Args:      args("namespace", "kobuki"),
		Artifacts: map[string]string{"robot_description": "<robot/>"},
	})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "kobuki", nodes[0].Namespace)
	assert.Equal(t, "<robot/>", nodes[0].Parameters["robot_description"])

	_, err = c.Compose(args("namespace", "kobuki"))
	assert.ErrorIs(t, err, domain.ErrUnknownArtifact)
}

func TestComposer_References(t *testing.T) {
	c := New(
		Rule{When: condition.Flag("gazebo"), Nodes: []domain.NodeSpec{{Package: "p", Executable: "e", Namespace: "{{ namespace }}"}}},
		Rule{When: condition.And(condition.Flag("camera"), condition.Flag("gazebo"))},
	)
	assert.Equal(t, []string{"gazebo", "namespace", "camera"}, c.References())
}

func TestCompose_RulesAreCopied(t *testing.T) {
	rules := []Rule{{Name: "a", When: condition.Always()}}
	c := New(rules...)
	rules[0].Name = "mutated"
	assert.Equal(t, "a", c.Rules()[0].Name)
}

func TestCompose_PureAndOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		flags := []string{"lidar", "camera", "gazebo"}
		values := make([]string, 0, 2*len(flags))
		for _, f := range flags {
			values = append(values, f, rapid.SampledFrom([]string{"true", "false", "TRUE", ""}).Draw(t, f))
		}
		resolved := args(values...)

		n := rapid.IntRange(0, 6).Draw(t, "rules")
		rules := make([]Rule, n)
		for i := range rules {
			f := rapid.SampledFrom(flags).Draw(t, "flag")
			rules[i] = Rule{When: condition.Flag(f), Nodes: []domain.NodeSpec{bridge(f)}}
		}
		c := New(rules...)

		first, err := c.Compose(resolved)
		if err != nil {
			t.Fatal(err)
		}
		second, err := c.Compose(resolved)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, first, second)

		// Only rules whose flag is exactly "true" contribute.
		want := 0
		for _, r := range rules {
			if v, _ := resolved.Get(r.When.Name); v == "true" {
				want++
			}
		}
		assert.Len(t, first, want)
	})
}
