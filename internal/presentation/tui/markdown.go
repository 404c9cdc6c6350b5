package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/launchplan/pkg/domain"
)

// DefinitionMarkdown documents the arguments a plan declares.
func DefinitionMarkdown(def *domain.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", def.Name())
	if d := def.Description(); d != "" {
		fmt.Fprintf(&sb, "%s\n\n", d)
	}
	args := def.Arguments()
	if len(args) == 0 {
		sb.WriteString("_No arguments._\n")
		return sb.String()
	}
	sb.WriteString("| Argument | Default | Description |\n|---|---|---|\n")
	for _, a := range args {
		desc := a.Description
		if len(a.Choices) > 0 {
			desc = strings.TrimSpace(desc + " (one of: " + strings.Join(a.Choices, ", ") + ")")
		}
		fmt.Fprintf(&sb, "| `%s` | `%s` | %s |\n", a.Name, a.Default, cell(desc))
	}
	return sb.String()
}

// PlanMarkdown summarizes a resolved plan: arguments, artifacts, nodes and inclusions.
func PlanMarkdown(plan *domain.LaunchPlan) string {
	var sb strings.Builder
	writePlan(&sb, plan, 1)
	return sb.String()
}

func writePlan(sb *strings.Builder, plan *domain.LaunchPlan, level int) {
	heading := strings.Repeat("#", min(level, 6))
	fmt.Fprintf(sb, "%s %s\n\n", heading, plan.Name)

	if plan.Arguments.Len() > 0 {
		values := plan.Arguments.Map()
		sb.WriteString("| Argument | Value |\n|---|---|\n")
		for _, name := range plan.Arguments.Names() {
			fmt.Fprintf(sb, "| `%s` | `%s` |\n", name, values[name])
		}
		sb.WriteString("\n")
	}

	for _, s := range plan.Steps {
		switch s.Kind {
		case domain.ActionArtifact:
			if s.Artifact != nil {
				fmt.Fprintf(sb, "- artifact **%s** (%d bytes): `%s`\n", s.Artifact.Key, s.Artifact.Size, s.Artifact.Command)
			}
		case domain.ActionStart:
			if s.Node != nil {
				writeNode(sb, *s.Node, s.Rule)
			}
		}
	}
	sb.WriteString("\n")

	for _, s := range plan.Steps {
		if s.Kind == domain.ActionInclude && s.Include != nil {
			writePlan(sb, s.Include, level+1)
		}
	}
}

func writeNode(sb *strings.Builder, n domain.NodeDescriptor, rule string) {
	fmt.Fprintf(sb, "- node **%s** `%s`", n.DisplayName(), n.ExecutableID())
	if n.Namespace != "" {
		fmt.Fprintf(sb, " in `%s`", n.Namespace)
	}
	if rule != "" {
		fmt.Fprintf(sb, " _(%s)_", rule)
	}
	sb.WriteString("\n")
	for _, k := range slices.Sorted(maps.Keys(n.Parameters)) {
		v := fmt.Sprint(n.Parameters[k])
		if len(v) > 60 {
			v = fmt.Sprintf("<%d bytes>", len(v))
		}
		fmt.Fprintf(sb, "  - param `%s` = `%s`\n", k, v)
	}
	for _, r := range n.Remappings {
		fmt.Fprintf(sb, "  - remap `%s` → `%s`\n", r.From, r.To)
	}
	if len(n.Arguments) > 0 {
		fmt.Fprintf(sb, "  - args `%s`\n", strings.Join(n.Arguments, " "))
	}
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
