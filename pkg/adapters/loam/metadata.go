package loam

// PlanMetadata represents the frontmatter of a plan document.
// Polymorphic sections stay raw and are decoded with mapstructure, since YAML
// scalars ("false", false, 0.0) must all end up as argument strings.
type PlanMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Description string `json:"description" mapstructure:"description"`

	// Arguments are declared first, in file order.
	Arguments []map[string]any `json:"arguments" mapstructure:"arguments"`

	// Artifacts are expanded after the declarations.
	Artifacts []map[string]any `json:"artifacts" mapstructure:"artifacts"`

	// Includes embed other plans (by catalog name) after the artifacts.
	Includes []IncludeMetadata `json:"includes" mapstructure:"includes"`

	// Nodes without "when" start unconditionally; the others form one
	// conditional block placed after them.
	Nodes []map[string]any `json:"nodes" mapstructure:"nodes"`
}

// IncludeMetadata is one inclusion. With maps child argument names to values
// that may reference the including plan's arguments.
type IncludeMetadata struct {
	Plan string         `json:"plan" mapstructure:"plan"`
	With map[string]any `json:"with" mapstructure:"with"`
}

// nodeDocument is the decoded form of one entry of PlanMetadata.Nodes.
type nodeDocument struct {
	Package    string           `mapstructure:"package"`
	Executable string           `mapstructure:"executable"`
	Name       string           `mapstructure:"name"`
	Namespace  string           `mapstructure:"namespace"`
	Parameters map[string]any   `mapstructure:"parameters"`
	Remappings []map[string]any `mapstructure:"remappings"`
	Arguments  []any            `mapstructure:"arguments"`
	Output     string           `mapstructure:"output"`
	When       string           `mapstructure:"when"`
	Rule       string           `mapstructure:"rule"`
}
