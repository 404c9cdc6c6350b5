package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionMarkdown(t *testing.T) {
	def := domain.NewPlan("kobuki_description", "Kobuki robot description",
		domain.Action{Kind: domain.ActionDeclare, Argument: &domain.Argument{Name: "gazebo", Default: "false", Description: "Enable gazebo | plugins"}},
		domain.Action{Kind: domain.ActionDeclare, Argument: &domain.Argument{Name: "world", Default: "empty", Choices: []string{"empty", "house"}}},
	)

	md := DefinitionMarkdown(def)
	assert.Contains(t, md, "# kobuki_description")
	assert.Contains(t, md, "Kobuki robot description")
	assert.Contains(t, md, "| `gazebo` | `false` | Enable gazebo \\| plugins |")
	assert.Contains(t, md, "(one of: empty, house)")

	assert.Contains(t, DefinitionMarkdown(domain.NewPlan("empty", "")), "_No arguments._")
}

func TestPlanMarkdown(t *testing.T) {
	child := &domain.LaunchPlan{
		Name:      "kobuki_description",
		Arguments: domain.NewResolved([]string{"gazebo"}, map[string]string{"gazebo": "true"}),
		Steps: []domain.Step{
			{Kind: domain.ActionArtifact, Artifact: &domain.ArtifactStep{Key: "robot_description", Command: "xacro k.urdf.xacro", Size: 4096}},
			{Kind: domain.ActionStart, Node: &domain.NodeDescriptor{
				Package: "robot_state_publisher", Executable: "robot_state_publisher",
				Parameters: map[string]any{"robot_description": strings.Repeat("x", 100)},
				Remappings: []domain.Remapping{{From: "/tf", To: "tf"}},
			}},
			{Kind: domain.ActionStart, Rule: "simulation bridge", Node: &domain.NodeDescriptor{
				Package: "ros_gz_bridge", Executable: "parameter_bridge", Name: "bridge_ros_gz",
			}},
		},
	}
	root := &domain.LaunchPlan{
		Name: "kobuki_spawn",
		Steps: []domain.Step{
			{Kind: domain.ActionInclude, Include: child},
			{Kind: domain.ActionStart, Node: &domain.NodeDescriptor{
				Package: "ros_gz_sim", Executable: "create", Arguments: []string{"-model", "kobuki"},
			}},
		},
	}

	md := PlanMarkdown(root)
	assert.Contains(t, md, "# kobuki_spawn")
	assert.Contains(t, md, "## kobuki_description")
	assert.Contains(t, md, "| `gazebo` | `true` |")
	assert.Contains(t, md, "artifact **robot_description** (4096 bytes)")
	assert.Contains(t, md, "param `robot_description` = `<100 bytes>`")
	assert.Contains(t, md, "remap `/tf` → `tf`")
	assert.Contains(t, md, "node **bridge_ros_gz** `ros_gz_bridge/parameter_bridge` _(simulation bridge)_")
	assert.Contains(t, md, "args `-model kobuki`")
}

func TestPrint_NonTerminalIsRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, "# title\n"))
	assert.Equal(t, "# title\n", buf.String())
	assert.False(t, IsTerminal(&buf))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
