package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ArtifactPrefix is the reserved namespace for artifact references ("{{ artifacts.robot_description }}").
const ArtifactPrefix = "artifacts."

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)?)\s*\}\}`)

// Scope is what a placeholder may refer to while a plan is being built.
type Scope struct {
	Args      Lookup
	Artifacts map[string]string
}

// Interpolate replaces every "{{ name }}" with the resolved argument value and
// every "{{ artifacts.key }}" with a previously produced artifact.
// Substituted text is never re-scanned.
func Interpolate(s string, scope Scope) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	var firstErr error
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if firstErr != nil {
			return m
		}
		ref := placeholder.FindStringSubmatch(m)[1]
		if key, ok := strings.CutPrefix(ref, ArtifactPrefix); ok {
			v, found := scope.Artifacts[key]
			if !found {
				firstErr = fmt.Errorf("%w: %q", ErrUnknownArtifact, key)
				return m
			}
			return v
		}
		if scope.Args == nil {
			firstErr = &UnknownArgumentError{Name: ref}
			return m
		}
		v, err := scope.Args.Get(ref)
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// References returns the argument names referenced by s, in order of appearance.
// Artifact references are not included.
func References(s string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		if strings.HasPrefix(m[1], ArtifactPrefix) || strings.Contains(m[1], ".") {
			continue
		}
		names = append(names, m[1])
	}
	return names
}

// ArtifactReferences returns the artifact keys referenced by s.
func ArtifactReferences(s string) []string {
	var keys []string
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		if key, ok := strings.CutPrefix(m[1], ArtifactPrefix); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
