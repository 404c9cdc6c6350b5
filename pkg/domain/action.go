package domain

import (
	"slices"
)

// ActionKind identifies what a plan action does.
type ActionKind string

// Standard Action Kinds
const (
	// ActionDeclare declares an argument. Declarations precede every action referencing them.
	ActionDeclare ActionKind = "declare"

	// ActionArtifact expands a template into a named artifact (e.g. robot_description).
	ActionArtifact ActionKind = "artifact"

	// ActionStart starts one node unconditionally.
	ActionStart ActionKind = "start"

	// ActionCompose appends the output of a conditional composer.
	ActionCompose ActionKind = "compose"

	// ActionInclude embeds another plan, forwarding argument overrides.
	ActionInclude ActionKind = "include"
)

// Composer evaluates conditional node groups against resolved arguments.
// Implementations must be pure.
type Composer interface {
	ComposeScope(scope Scope) ([]NodeDescriptor, error)
	// References lists the argument names the composer reads.
	References() []string
}

// ArtifactSpec describes a template expansion: the template path (which may
// contain placeholders) and the ordered argument keys passed as macros.
type ArtifactSpec struct {
	Key      string   `json:"key" yaml:"key" mapstructure:"key"`
	Template string   `json:"template" yaml:"template" mapstructure:"template"`
	Keys     []string `json:"with,omitempty" yaml:"with,omitempty" mapstructure:"with"`
}

// Override is one forwarded argument of an inclusion. Value may contain placeholders
// resolved against the including plan.
type Override struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// PlanFactory produces a plan definition on demand.
type PlanFactory func() (*Plan, error)

// Inclusion references a child plan by catalog name or by factory.
type Inclusion struct {
	Plan      string
	Factory   PlanFactory
	Overrides []Override
}

// Action is one entry of a plan definition. Exactly one payload field is set, matching Kind.
type Action struct {
	Kind     ActionKind
	Argument *Argument
	Artifact *ArtifactSpec
	Node     *NodeSpec
	Composer Composer
	Include  *Inclusion
}

// Plan is an immutable plan definition.
type Plan struct {
	name        string
	description string
	actions     []Action
}

// NewPlan creates a plan definition. The actions slice is copied.
func NewPlan(name, description string, actions ...Action) *Plan {
	return &Plan{
		name:        name,
		description: description,
		actions:     slices.Clone(actions),
	}
}

// Name returns the plan name.
func (p *Plan) Name() string { return p.name }

// Description returns the human readable summary of the plan.
func (p *Plan) Description() string { return p.description }

// Actions returns a copy of the ordered actions.
func (p *Plan) Actions() []Action { return slices.Clone(p.actions) }

// Arguments returns the declared arguments in declaration order.
func (p *Plan) Arguments() []Argument {
	var out []Argument
	for _, a := range p.actions {
		if a.Kind == ActionDeclare && a.Argument != nil {
			out = append(out, *a.Argument)
		}
	}
	return out
}
