/*
Package dsl provides a Go DSL for declaring launch plans.

Plans are written with a fluent builder instead of documents, which keeps
them type checked and lets tests construct variants cheaply. Build validates
the definition (no duplicate arguments, every reference after its
declaration) and returns an immutable domain.Plan.

Example usage:

	b := dsl.New("kobuki_description")
	b.Arg("gazebo", "false", "Enable simulation integration").
		Arg("namespace", "", "Node namespace").
		Arg("description_file", "/opt/ros/share/kobuki_description/urdf/kobuki.urdf.xacro", "")
	b.Artifact("robot_description", "{{ description_file }}", "gazebo")
	b.Node("robot_state_publisher", "robot_state_publisher").
		Namespace("{{ namespace }}").
		Param("robot_description", "{{ artifacts.robot_description }}").
		Remap("/tf", "tf")
	b.Compose(compose.Rule{
		Name:  "simulation bridge",
		When:  condition.Flag("gazebo"),
		Nodes: []domain.NodeSpec{dsl.Spec("ros_gz_bridge", "parameter_bridge").Build()},
	})

	plan, err := b.Build()
*/
package dsl
