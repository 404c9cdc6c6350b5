package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Remapping is a static rename of a topic, scoped to one node.
type Remapping struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

// NodeDescriptor captures everything the runtime needs to start one node.
// It is a value: once built it is never mutated, use Clone to derive copies.
type NodeDescriptor struct {
	Package    string         `json:"package" yaml:"package"`
	Executable string         `json:"executable" yaml:"executable"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Namespace  string         `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Remappings []Remapping    `json:"remappings,omitempty" yaml:"remappings,omitempty"`
	Arguments  []string       `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Output     string         `json:"output,omitempty" yaml:"output,omitempty"`
}

// ExecutableID returns "package/executable".
func (n NodeDescriptor) ExecutableID() string {
	return n.Package + "/" + n.Executable
}

// DisplayName returns the node name, falling back to the executable.
func (n NodeDescriptor) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Executable
}

// Clone returns a deep copy of the slices and the parameter map, including
// nested maps and lists inside parameter values.
func (n NodeDescriptor) Clone() NodeDescriptor {
	c := n
	c.Parameters = copyParams(n.Parameters)
	c.Remappings = slices.Clone(n.Remappings)
	c.Arguments = slices.Clone(n.Arguments)
	return c
}

// NodeSpec is the template a NodeDescriptor is built from.
// String fields, string parameter values, remappings and arguments may contain
// "{{ name }}" and "{{ artifacts.key }}" placeholders.
type NodeSpec struct {
	Package    string         `json:"package" yaml:"package" mapstructure:"package"`
	Executable string         `json:"executable" yaml:"executable" mapstructure:"executable"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Namespace  string         `json:"namespace,omitempty" yaml:"namespace,omitempty" mapstructure:"namespace"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
	Remappings []Remapping    `json:"remappings,omitempty" yaml:"remappings,omitempty" mapstructure:"remappings"`
	Arguments  []string       `json:"arguments,omitempty" yaml:"arguments,omitempty" mapstructure:"arguments"`
	Output     string         `json:"output,omitempty" yaml:"output,omitempty" mapstructure:"output"`
}

// Build interpolates the spec against scope.
// Parameter values that are not strings are deep-copied unchanged.
func (s NodeSpec) Build(scope Scope) (NodeDescriptor, error) {
	if s.Package == "" || s.Executable == "" {
		return NodeDescriptor{}, fmt.Errorf("node spec %q: package and executable are required", s.Name)
	}

	d := NodeDescriptor{
		Package:    s.Package,
		Executable: s.Executable,
		Output:     s.Output,
	}

	var err error
	if d.Name, err = Interpolate(s.Name, scope); err != nil {
		return NodeDescriptor{}, s.wrap("name", err)
	}
	if d.Namespace, err = Interpolate(s.Namespace, scope); err != nil {
		return NodeDescriptor{}, s.wrap("namespace", err)
	}

	if len(s.Parameters) > 0 {
		d.Parameters = make(map[string]any, len(s.Parameters))
		for _, key := range slices.Sorted(maps.Keys(s.Parameters)) {
			value := s.Parameters[key]
			str, ok := value.(string)
			if !ok {
				d.Parameters[key] = copyValue(value)
				continue
			}
			if d.Parameters[key], err = Interpolate(str, scope); err != nil {
				return NodeDescriptor{}, s.wrap("parameter "+key, err)
			}
		}
	}

	for _, r := range s.Remappings {
		from, err := Interpolate(r.From, scope)
		if err != nil {
			return NodeDescriptor{}, s.wrap("remapping", err)
		}
		to, err := Interpolate(r.To, scope)
		if err != nil {
			return NodeDescriptor{}, s.wrap("remapping", err)
		}
		d.Remappings = append(d.Remappings, Remapping{From: from, To: to})
	}

	for _, a := range s.Arguments {
		v, err := Interpolate(a, scope)
		if err != nil {
			return NodeDescriptor{}, s.wrap("arguments", err)
		}
		d.Arguments = append(d.Arguments, v)
	}

	return d, nil
}

// References lists every argument name the spec depends on.
func (s NodeSpec) References() []string {
	var names []string
	names = append(names, References(s.Name)...)
	names = append(names, References(s.Namespace)...)
	for _, key := range slices.Sorted(maps.Keys(s.Parameters)) {
		if str, ok := s.Parameters[key].(string); ok {
			names = append(names, References(str)...)
		}
	}
	for _, r := range s.Remappings {
		names = append(names, References(r.From)...)
		names = append(names, References(r.To)...)
	}
	for _, a := range s.Arguments {
		names = append(names, References(a)...)
	}
	return names
}

func (s NodeSpec) wrap(field string, err error) error {
	return fmt.Errorf("node %s/%s %s: %w", s.Package, s.Executable, field, err)
}

// ArtifactReferences lists every artifact key the spec depends on.
func (s NodeSpec) ArtifactReferences() []string {
	var keys []string
	fields := []string{s.Name, s.Namespace}
	for _, key := range slices.Sorted(maps.Keys(s.Parameters)) {
		if str, ok := s.Parameters[key].(string); ok {
			fields = append(fields, str)
		}
	}
	for _, r := range s.Remappings {
		fields = append(fields, r.From, r.To)
	}
	fields = append(fields, s.Arguments...)
	for _, f := range fields {
		keys = append(keys, ArtifactReferences(f)...)
	}
	return keys
}

func copyParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue copies the containers a decoded document produces.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyParams(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
