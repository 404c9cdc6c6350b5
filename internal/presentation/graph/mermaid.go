package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/launchplan/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a resolved plan.
// It applies semantic styling:
// - Plan: ((Circle))
// - Artifact: [/Parallelogram/]
// - Conditional node: [[Subroutine]], edge labelled with the rule
// - Node: [Rectangle]
// Included plans hang off their parent with a dotted edge labelled with the overrides.
func GenerateMermaid(plan *domain.LaunchPlan) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if plan == nil {
		return sb.String()
	}

	g := &generator{sb: &sb, ids: make(map[string]int)}
	g.plan(plan)

	if len(g.conditional) > 0 {
		sb.WriteString("\n    classDef conditional fill:#fff3e0,stroke:#e65100,color:#000;\n")
		for _, id := range g.conditional {
			fmt.Fprintf(&sb, "    class %s conditional;\n", id)
		}
	}
	return sb.String()
}

type generator struct {
	sb          *strings.Builder
	ids         map[string]int
	conditional []string
}

// id returns a unique Mermaid identifier derived from name.
func (g *generator) id(name string) string {
	base := sanitizeMermaidID(name)
	g.ids[base]++
	if n := g.ids[base]; n > 1 {
		return fmt.Sprintf("%s_%d", base, n)
	}
	return base
}

func (g *generator) plan(p *domain.LaunchPlan) string {
	planID := g.id("plan_" + p.Name)
	fmt.Fprintf(g.sb, "    %s((\"%s\"))\n", planID, escape(p.Name))

	for _, s := range p.Steps {
		switch s.Kind {
		case domain.ActionArtifact:
			if s.Artifact == nil {
				continue
			}
			id := g.id("artifact_" + s.Artifact.Key)
			fmt.Fprintf(g.sb, "    %s[/\"%s\"/]\n", id, escape(s.Artifact.Key))
			fmt.Fprintf(g.sb, "    %s -- \"%s\" --> %s\n", planID, escape(s.Artifact.Command), id)
		case domain.ActionStart:
			if s.Node == nil {
				continue
			}
			id := g.id("node_" + s.Node.DisplayName())
			label := escape(s.Node.DisplayName()) + " <br/> " + escape(s.Node.ExecutableID())
			if s.Rule == "" {
				fmt.Fprintf(g.sb, "    %s[\"%s\"]\n", id, label)
				fmt.Fprintf(g.sb, "    %s --> %s\n", planID, id)
				continue
			}
			g.conditional = append(g.conditional, id)
			fmt.Fprintf(g.sb, "    %s[[\"%s\"]]\n", id, label)
			fmt.Fprintf(g.sb, "    %s -- \"%s\" --> %s\n", planID, escape(s.Rule), id)
		case domain.ActionInclude:
			if s.Include == nil {
				continue
			}
			childID := g.plan(s.Include)
			if len(s.Overrides) == 0 {
				fmt.Fprintf(g.sb, "    %s -.-> %s\n", planID, childID)
				continue
			}
			fmt.Fprintf(g.sb, "    %s -. \"%s\" .-> %s\n", planID, escape(overrides(s.Overrides)), childID)
		}
	}
	return planID
}

func overrides(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, k+":="+m[k])
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, id)
}
