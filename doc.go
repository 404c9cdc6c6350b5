/*
Package launchplan is a declarative launch-orchestration core for robot software.

A plan declares named arguments, expands templates such as a xacro robot
description, starts nodes (some of them only when a condition over the
arguments holds) and includes other plans with forwarded arguments. Building a
plan resolves every argument, expands every artifact and interpolates every
node, producing a LaunchPlan. Nothing is started unless the whole build
succeeded; a Runtime then starts the nodes.

# Usage

	eng, err := launchplan.New(
		launchplan.WithPathProvider(args.SharePrefix{Root: "/opt/ros/jazzy/share"}),
	)
	if err != nil {
		log.Fatal(err)
	}

	lp, err := eng.Build(ctx, kobuki.SpawnPlan, map[string]string{"x": "1.0"})
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range lp.Nodes() {
		fmt.Println(n.ExecutableID())
	}

Plans come from Go definitions (see package dsl) or from documents in a
directory read by the loam catalog (see package adapters/loam).
*/
package launchplan
