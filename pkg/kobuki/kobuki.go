// Package kobuki defines the launch plans of the Kobuki robot: publishing its
// description and spawning it in the simulator.
package kobuki

import (
	"fmt"

	"github.com/aretw0/launchplan/pkg/args"
	"github.com/aretw0/launchplan/pkg/compose"
	"github.com/aretw0/launchplan/pkg/condition"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/dsl"
)

// Plan names.
const (
	DescriptionPlan = "kobuki_description"
	SpawnPlan       = "kobuki_spawn"
)

// Package is the installed package holding the robot template and bridge config.
const Package = "kobuki_description"

// RobotDescription is the artifact key of the expanded URDF.
const RobotDescription = "robot_description"

// Camera topics bridged from the simulator.
const (
	CameraImageTopic = "/rgbd_camera/image"
	CameraDepthTopic = "/rgbd_camera/depth_image"
)

// MacroKeys are the template macros, in the order they are passed to xacro.
var MacroKeys = []string{"lidar", "camera", "structure", "gazebo"}

// Paths are the installed files the plans point at.
type Paths struct {
	Description string
	Bridge      string
}

// Locate resolves the installed file paths through provider.
func Locate(provider args.PathProvider) (Paths, error) {
	desc, err := args.PackageFile(provider, Package, "urdf", "kobuki.urdf.xacro")
	if err != nil {
		return Paths{}, fmt.Errorf("locating description template: %w", err)
	}
	bridge, err := args.PackageFile(provider, Package, "config", "bridge", "kobuki_bridge.yaml")
	if err != nil {
		return Paths{}, fmt.Errorf("locating bridge config: %w", err)
	}
	return Paths{Description: desc, Bridge: bridge}, nil
}

// SimulationBridge is the ros_gz parameter bridge driven by the kobuki bridge config.
func SimulationBridge(configFile string) *dsl.NodeBuilder {
	return dsl.Spec("ros_gz_bridge", "parameter_bridge").
		Name("bridge_ros_gz").
		Param("config_file", configFile).
		Param("use_sim_time", true).
		Output("screen")
}

func cameraBridge(name, topic string) domain.NodeSpec {
	return dsl.Spec("ros_gz_image", "image_bridge").
		Name(name).
		Param("use_sim_time", true).
		Args(topic).
		Output("screen").
		Build()
}

// Rules returns the conditional node groups of the description plan:
// the simulation bridge when gazebo is enabled, and the two camera bridges
// when both camera and gazebo are enabled.
func Rules(bridgeConfig string) []compose.Rule {
	return []compose.Rule{
		{
			Name:  "simulation bridge",
			When:  condition.Flag("gazebo"),
			Nodes: []domain.NodeSpec{SimulationBridge(bridgeConfig).Build()},
		},
		{
			Name: "camera bridges",
			When: condition.And(condition.Flag("camera"), condition.Flag("gazebo")),
			Nodes: []domain.NodeSpec{
				cameraBridge("bridge_gz_ros_camera_image", CameraImageTopic),
				cameraBridge("bridge_gz_ros_camera_depth", CameraDepthTopic),
			},
		},
	}
}

// Description builds the kobuki_description plan: it expands the URDF, starts
// robot_state_publisher with it and joint_state_publisher for the TF tree,
// then adds the bridges selected by the flags.
func Description(provider args.PathProvider) (*domain.Plan, error) {
	paths, err := Locate(provider)
	if err != nil {
		return nil, err
	}

	b := dsl.New(DescriptionPlan).Describe("Publish the Kobuki robot description and TF tree")
	b.Arg("lidar", "false", "Enable lidar sensor").
		Arg("camera", "false", "Enable camera sensor").
		Arg("structure", "true", "Enable structure elements").
		Arg("gazebo", "false", "Enable gazebo plugins").
		Arg("description_file", paths.Description, "Absolute path to the robot description file").
		Arg("namespace", "", "Namespace to apply to the nodes")

	b.Artifact(RobotDescription, "{{ description_file }}", MacroKeys...)

	b.Node("robot_state_publisher", "robot_state_publisher").
		Namespace("{{ namespace }}").
		Param(RobotDescription, "{{ artifacts."+RobotDescription+" }}").
		Remap("/tf", "tf").
		Remap("/tf_static", "tf_static")

	b.Node("joint_state_publisher", "joint_state_publisher").
		Name("joint_state_publisher").
		Namespace("{{ namespace }}").
		Remap("/tf", "tf").
		Remap("/tf_static", "tf_static")

	b.Compose(Rules(paths.Bridge)...)

	return b.Build()
}

// Spawn builds the kobuki_spawn plan: it includes the description plan with
// gazebo forwarded, creates the entity in the simulator from the published
// robot_description topic, and starts the simulation bridge.
func Spawn(provider args.PathProvider) (*domain.Plan, error) {
	paths, err := Locate(provider)
	if err != nil {
		return nil, err
	}

	b := dsl.New(SpawnPlan).Describe("Spawn the Kobuki robot in Gazebo")
	for _, axis := range []string{"x", "y", "z", "R", "P", "Y"} {
		b.Arg(axis, "0.0", "Spawn pose "+axis)
	}
	b.Arg("model_name", "kobuki", "Entity name in the simulator").
		Arg("gazebo", "true", "Enable gazebo plugins")

	b.Include(DescriptionPlan, dsl.Forward("gazebo")...)

	b.Node("ros_gz_sim", "create").
		Output("screen").
		Args("-model", "{{ model_name }}", "-topic", RobotDescription).
		Args("-x", "{{ x }}", "-y", "{{ y }}", "-z", "{{ z }}").
		Args("-R", "{{ R }}", "-P", "{{ P }}", "-Y", "{{ Y }}")

	b.Start(SimulationBridge(paths.Bridge).Build())

	return b.Build()
}

// Registrar is the subset of a catalog that accepts plan factories.
type Registrar interface {
	Register(name string, factory domain.PlanFactory) error
}

// Register adds both kobuki plans to catalog.
func Register(catalog Registrar, provider args.PathProvider) error {
	if err := catalog.Register(DescriptionPlan, func() (*domain.Plan, error) { return Description(provider) }); err != nil {
		return err
	}
	return catalog.Register(SpawnPlan, func() (*domain.Plan, error) { return Spawn(provider) })
}
