package domain

import "encoding/json"

// ResolvedArgument is a declaration together with its final value.
type ResolvedArgument struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Default     string `json:"default" yaml:"default"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Overridden  bool   `json:"overridden,omitempty" yaml:"overridden,omitempty"`
}

// ArtifactStep records a template expansion that happened while building.
// The artifact text itself lives in LaunchPlan.Artifacts.
type ArtifactStep struct {
	Key     string `json:"key" yaml:"key"`
	Command string `json:"command" yaml:"command"`
	Size    int    `json:"size" yaml:"size"`
}

// Step is one entry of a resolved plan.
type Step struct {
	Kind     ActionKind        `json:"kind" yaml:"kind"`
	Argument *ResolvedArgument `json:"argument,omitempty" yaml:"argument,omitempty"`
	Artifact *ArtifactStep     `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Node     *NodeDescriptor   `json:"node,omitempty" yaml:"node,omitempty"`
	// Rule names the composer rule that produced Node, empty for unconditional starts.
	Rule      string            `json:"rule,omitempty" yaml:"rule,omitempty"`
	Include   *LaunchPlan       `json:"include,omitempty" yaml:"include,omitempty"`
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// LaunchPlan is a fully resolved plan: every argument has a value, every
// artifact was expanded and every inclusion was built. It is what the runtime executes.
type LaunchPlan struct {
	Name      string            `json:"name" yaml:"name"`
	Arguments Resolved          `json:"arguments" yaml:"arguments"`
	Artifacts map[string]string `json:"-" yaml:"-"`
	Steps     []Step            `json:"steps" yaml:"steps"`
}

// Nodes returns every node start in declared order, with included plans inlined.
func (p *LaunchPlan) Nodes() []NodeDescriptor {
	var out []NodeDescriptor
	for _, s := range p.Steps {
		switch s.Kind {
		case ActionStart:
			if s.Node != nil {
				out = append(out, s.Node.Clone())
			}
		case ActionInclude:
			if s.Include != nil {
				out = append(out, s.Include.Nodes()...)
			}
		}
	}
	return out
}

// NodeCount returns the number of node starts including nested plans.
func (p *LaunchPlan) NodeCount() int {
	return len(p.Nodes())
}

// Artifact looks up an artifact in this plan, then in included plans.
func (p *LaunchPlan) Artifact(key string) (string, bool) {
	if v, ok := p.Artifacts[key]; ok {
		return v, true
	}
	for _, s := range p.Steps {
		if s.Kind == ActionInclude && s.Include != nil {
			if v, ok := s.Include.Artifact(key); ok {
				return v, true
			}
		}
	}
	return "", false
}

// MarshalJSON encodes the mapping as a JSON object.
func (r Resolved) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.values)
}

// MarshalYAML encodes the mapping as a YAML mapping.
func (r Resolved) MarshalYAML() (any, error) {
	return r.values, nil
}
