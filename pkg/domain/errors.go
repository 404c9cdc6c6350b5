package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateArgument is returned when an argument name is declared twice in the same plan.
	ErrDuplicateArgument = errors.New("duplicate argument")

	// ErrUnknownArgument is returned when a consumer references an argument that was never declared.
	ErrUnknownArgument = errors.New("unknown argument")

	// ErrTemplateExpansion is returned when the external template engine fails.
	ErrTemplateExpansion = errors.New("template expansion failed")

	// ErrPlanInclusion is returned when a nested plan cannot be located or produced.
	ErrPlanInclusion = errors.New("plan inclusion failed")

	// ErrInvalidArgument is returned for malformed argument names or values outside the declared choices.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownArtifact is returned when a node references an artifact no earlier action produced.
	ErrUnknownArtifact = errors.New("unknown artifact")

	// ErrPlanNotFound is returned by catalogs for names they do not hold.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrCacheMiss is returned by artifact caches when the key is absent or expired.
	ErrCacheMiss = errors.New("artifact not cached")
)

// DuplicateArgumentError reports a declaration conflict.
type DuplicateArgumentError struct {
	Plan string
	Name string
}

func (e *DuplicateArgumentError) Error() string {
	if e.Plan == "" {
		return fmt.Sprintf("argument %q declared more than once", e.Name)
	}
	return fmt.Sprintf("plan %q: argument %q declared more than once", e.Plan, e.Name)
}

func (e *DuplicateArgumentError) Is(target error) bool { return target == ErrDuplicateArgument }

// UnknownArgumentError reports a lookup of an undeclared argument.
type UnknownArgumentError struct {
	Name string
}

func (e *UnknownArgumentError) Error() string {
	return fmt.Sprintf("argument %q is not declared", e.Name)
}

func (e *UnknownArgumentError) Is(target error) bool { return target == ErrUnknownArgument }

// TemplateExpansionError wraps a failure reported by the external template engine.
// The engine error is kept verbatim and is reachable through errors.Unwrap.
type TemplateExpansionError struct {
	Command string
	Err     error
}

func (e *TemplateExpansionError) Error() string {
	return fmt.Sprintf("expanding %q: %v", e.Command, e.Err)
}

func (e *TemplateExpansionError) Unwrap() error { return e.Err }

func (e *TemplateExpansionError) Is(target error) bool { return target == ErrTemplateExpansion }

// PlanInclusionError reports a nested plan that could not be located or built by its factory.
type PlanInclusionError struct {
	Parent string
	Child  string
	Err    error
}

func (e *PlanInclusionError) Error() string {
	return fmt.Sprintf("plan %q: including %q: %v", e.Parent, e.Child, e.Err)
}

func (e *PlanInclusionError) Unwrap() error { return e.Err }

func (e *PlanInclusionError) Is(target error) bool { return target == ErrPlanInclusion }

// InvalidArgumentError reports a malformed argument name or a value outside its choices.
type InvalidArgumentError struct {
	Name   string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.Name, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
