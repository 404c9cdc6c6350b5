package dsl

import (
	"maps"
	"slices"

	"github.com/aretw0/launchplan/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	spec   domain.NodeSpec
	action int
}

// Spec starts a detached node definition, for use in compose rules.
func Spec(pkg, executable string) *NodeBuilder {
	return &NodeBuilder{spec: domain.NodeSpec{Package: pkg, Executable: executable}, action: -1}
}

// Name sets the node name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.spec.Name = name
	return n
}

// Namespace sets the node namespace, usually "{{ namespace }}".
func (n *NodeBuilder) Namespace(ns string) *NodeBuilder {
	n.spec.Namespace = ns
	return n
}

// Param sets a node parameter. String values may contain placeholders.
func (n *NodeBuilder) Param(key string, value any) *NodeBuilder {
	if n.spec.Parameters == nil {
		n.spec.Parameters = make(map[string]any)
	}
	n.spec.Parameters[key] = value
	return n
}

// Remap adds a topic remapping.
func (n *NodeBuilder) Remap(from, to string) *NodeBuilder {
	n.spec.Remappings = append(n.spec.Remappings, domain.Remapping{From: from, To: to})
	return n
}

// Args appends command line arguments.
func (n *NodeBuilder) Args(args ...string) *NodeBuilder {
	n.spec.Arguments = append(n.spec.Arguments, args...)
	return n
}

// Output selects where the node output goes ("screen", "log").
func (n *NodeBuilder) Output(output string) *NodeBuilder {
	n.spec.Output = output
	return n
}

// Build returns a copy of the underlying domain.NodeSpec.
// This is primarily used by the Builder, but exposed for compose rules.
func (n *NodeBuilder) Build() domain.NodeSpec {
	s := n.spec
	s.Parameters = maps.Clone(n.spec.Parameters)
	s.Remappings = slices.Clone(n.spec.Remappings)
	s.Arguments = slices.Clone(n.spec.Arguments)
	return s
}
