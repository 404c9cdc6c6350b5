package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/launchplan/pkg/compose"
	"github.com/aretw0/launchplan/pkg/condition"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/dsl"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Catalog adapts a Loam repository of plan documents to ports.Catalog.
type Catalog struct {
	Repo *loam.TypedRepository[PlanMetadata]
}

// New creates a new Loam catalog.
func New(repo *loam.TypedRepository[PlanMetadata]) *Catalog {
	return &Catalog{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at path.
func Open(path string) (*Catalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PlanMetadata](repo)), nil
}

// Locate returns a factory that reads and decodes the named document on each call.
func (c *Catalog) Locate(name string) (domain.PlanFactory, error) {
	index, err := c.index(context.Background())
	if err != nil {
		return nil, err
	}
	docID, ok := index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlanNotFound, name)
	}
	return func() (*domain.Plan, error) {
		doc, err := c.Repo.Get(context.Background(), docID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", docID, err)
		}
		return Decode(name, doc.Data, doc.Content)
	}, nil
}

// List returns the plan names of all documents, sorted.
func (c *Catalog) List() ([]string, error) {
	index, err := c.index(context.Background())
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(index)), nil
}

// index maps plan names to document IDs, failing on collisions.
func (c *Catalog) index(ctx context.Context) (map[string]string, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: plan '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
	}
	return seen, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable. The channel carries the IDs of changed documents.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Decode turns document metadata into a validated plan definition.
// The document body becomes the description when the frontmatter has none.
func Decode(name string, meta PlanMetadata, content string) (*domain.Plan, error) {
	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(content)
	}
	b := dsl.New(name).Describe(description)

	for i, raw := range meta.Arguments {
		a, err := decodeArgument(raw)
		if err != nil {
			return nil, fmt.Errorf("plan %s: arguments[%d]: %w", name, i, err)
		}
		b.Argument(a)
	}

	for i, raw := range meta.Artifacts {
		var spec domain.ArtifactSpec
		if err := mapstructure.Decode(raw, &spec); err != nil {
			return nil, fmt.Errorf("plan %s: artifacts[%d]: %w", name, i, err)
		}
		b.Artifact(spec.Key, spec.Template, spec.Keys...)
	}

	for _, inc := range meta.Includes {
		overrides := make([]domain.Override, 0, len(inc.With))
		for _, k := range slices.Sorted(maps.Keys(inc.With)) {
			overrides = append(overrides, dsl.With(k, scalar(inc.With[k])))
		}
		b.Include(inc.Plan, overrides...)
	}

	var rules []compose.Rule
	for i, raw := range meta.Nodes {
		var doc nodeDocument
		if err := mapstructure.Decode(raw, &doc); err != nil {
			return nil, fmt.Errorf("plan %s: nodes[%d]: %w", name, i, err)
		}
		spec, err := doc.spec()
		if err != nil {
			return nil, fmt.Errorf("plan %s: nodes[%d]: %w", name, i, err)
		}
		if doc.When == "" {
			b.Start(spec)
			continue
		}
		pred, err := condition.Parse(doc.When)
		if err != nil {
			return nil, fmt.Errorf("plan %s: nodes[%d]: %w", name, i, err)
		}
		rule := doc.Rule
		if rule == "" {
			rule = doc.When
		}
		rules = append(rules, compose.Rule{Name: rule, When: pred, Nodes: []domain.NodeSpec{spec}})
	}
	if len(rules) > 0 {
		b.Compose(rules...)
	}

	return b.Build()
}

func decodeArgument(raw map[string]any) (domain.Argument, error) {
	a := domain.Argument{
		Name:        scalar(raw["name"]),
		Default:     scalar(raw["default"]),
		Description: scalar(raw["description"]),
	}
	if a.Name == "" {
		return domain.Argument{}, fmt.Errorf("argument without name")
	}
	if choices, ok := raw["choices"].([]any); ok {
		for _, c := range choices {
			a.Choices = append(a.Choices, scalar(c))
		}
	}
	return a, nil
}

func (d nodeDocument) spec() (domain.NodeSpec, error) {
	s := domain.NodeSpec{
		Package:    d.Package,
		Executable: d.Executable,
		Name:       d.Name,
		Namespace:  d.Namespace,
		Output:     d.Output,
	}
	if len(d.Parameters) > 0 {
		s.Parameters = make(map[string]any, len(d.Parameters))
		for k, v := range d.Parameters {
			s.Parameters[k] = normalize(v)
		}
	}
	for _, r := range d.Remappings {
		var rm domain.Remapping
		if err := mapstructure.Decode(r, &rm); err != nil {
			return domain.NodeSpec{}, fmt.Errorf("remapping: %w", err)
		}
		s.Remappings = append(s.Remappings, rm)
	}
	for _, a := range d.Arguments {
		s.Arguments = append(s.Arguments, scalar(a))
	}
	return s, nil
}

// scalar renders a YAML/JSON scalar the way it was written.
func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// normalize converts strict-mode json.Number values into int64 or float64.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalize(sub)
		}
		return out
	default:
		return val
	}
}
