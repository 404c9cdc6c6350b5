package ports

import "context"

// TemplateEngine expands a robot description template.
// argv is the full macro invocation, program first ("xacro", path, "k:=v"...).
// The engine is opaque: its output is returned as is and its errors are not interpreted.
type TemplateEngine interface {
	Expand(ctx context.Context, argv []string) (string, error)
}

// TemplateEngineFunc adapts a function to TemplateEngine.
type TemplateEngineFunc func(ctx context.Context, argv []string) (string, error)

// Expand implements TemplateEngine.
func (f TemplateEngineFunc) Expand(ctx context.Context, argv []string) (string, error) {
	return f(ctx, argv)
}
