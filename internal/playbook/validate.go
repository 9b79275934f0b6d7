package playbook

import (
	"regexp"
	"strings"

	"github.com/kestrelworks/playbook/internal/errors"
)

var (
	// namePattern constrains playbook names: leading letter or digit, then
	// letters, digits, hyphens, underscores.
	namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	// stepIDPattern constrains step ids the same way.
	stepIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	// varNamePattern constrains variable names to substitutable identifiers.
	varNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidName reports whether name is a well-formed playbook name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Validate performs per-playbook structural validation, independent of
// inheritance: identifier patterns, size caps, unique step ids, unique
// variable names, step dependencies and payloads, and a well-formed
// extends list. The first failure wins; a single malformed
// playbook fails the entire resolution it participates in.
func Validate(pb *Playbook) error {
	if pb == nil {
		return errors.NewValidation("playbook_nil", "playbook is nil")
	}
	if !ValidName(pb.Name) {
		return errors.NewValidation("invalid_playbook_name", "invalid playbook name %q", pb.Name).
			WithDetail("name", pb.Name).
			WithDetail("pattern", namePattern.String())
	}
	if pb.Title == "" || len(pb.Title) > MaxTitleLength {
		return errors.NewValidation("invalid_playbook_title", "playbook %q: title must be 1-%d characters", pb.Name, MaxTitleLength).
			WithDetail("playbook", pb.Name)
	}
	if pb.Version < 1 {
		return errors.NewValidation("invalid_playbook_version", "playbook %q: version must be >= 1, got %d", pb.Name, pb.Version).
			WithDetail("playbook", pb.Name).
			WithDetail("version", pb.Version)
	}
	if len(pb.Steps) > MaxSteps {
		return errors.NewValidation("too_many_steps", "playbook %q: %d steps exceeds limit of %d", pb.Name, len(pb.Steps), MaxSteps).
			WithDetail("playbook", pb.Name).
			WithDetail("count", len(pb.Steps)).
			WithDetail("limit", MaxSteps)
	}
	if len(pb.Variables) > MaxVariables {
		return errors.NewValidation("too_many_variables", "playbook %q: %d variables exceeds limit of %d", pb.Name, len(pb.Variables), MaxVariables).
			WithDetail("playbook", pb.Name).
			WithDetail("count", len(pb.Variables)).
			WithDetail("limit", MaxVariables)
	}

	if err := validateExtends(pb); err != nil {
		return err
	}
	if err := ValidateVariables(pb.Variables); err != nil {
		return err
	}
	// A playbook that extends parents may depend on ancestor steps; those
	// references are checked against the merged id set during resolution.
	return validateSteps(pb.Steps, len(pb.Extends) == 0)
}

// validateExtends checks the extends list: length cap, no duplicates, no
// self-reference. Names are compared case-insensitively.
func validateExtends(pb *Playbook) error {
	if len(pb.Extends) > MaxExtends {
		return errors.NewValidation("too_many_extends", "playbook %q: extends %d parents, limit is %d", pb.Name, len(pb.Extends), MaxExtends).
			WithDetail("playbook", pb.Name).
			WithDetail("limit", MaxExtends)
	}

	self := strings.ToLower(pb.Name)
	seen := make(map[string]bool, len(pb.Extends))
	for _, parent := range pb.Extends {
		if !ValidName(parent) {
			return errors.NewValidation("invalid_parent_name", "playbook %q: invalid parent name %q", pb.Name, parent).
				WithDetail("playbook", pb.Name).
				WithDetail("parent", parent)
		}
		key := strings.ToLower(parent)
		if key == self {
			return errors.NewConflict("self_extension", "playbook %q cannot extend itself", pb.Name).
				WithDetail("playbook", pb.Name).
				WithDetail("cycle", []string{pb.Name, pb.Name})
		}
		if seen[key] {
			return errors.NewConflict("duplicate_parent", "playbook %q extends %q more than once", pb.Name, parent).
				WithDetail("playbook", pb.Name).
				WithDetail("parent", parent)
		}
		seen[key] = true
	}
	return nil
}

// ValidateVariables checks variable declarations: identifier names, unique
// names, supported types, and type-homogeneous default and enum values.
func ValidateVariables(vars []Variable) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if !varNamePattern.MatchString(v.Name) {
			return errors.NewValidation("invalid_variable_name", "invalid variable name %q", v.Name).
				WithDetail("variable", v.Name).
				WithDetail("pattern", varNamePattern.String())
		}
		if seen[v.Name] {
			return errors.NewConflict("duplicate_variable", "duplicate variable name %q", v.Name).
				WithDetail("variable", v.Name)
		}
		seen[v.Name] = true

		if !v.Type.Valid() {
			return errors.NewValidation("invalid_variable_type", "variable %q: unsupported type %q", v.Name, v.Type).
				WithDetail("variable", v.Name).
				WithDetail("type", string(v.Type))
		}
		if !IsValidDefaultForType(v.Default, v.Type) {
			return errors.NewValidation("invalid_variable_default", "variable %q: default %v does not match type %q", v.Name, v.Default, v.Type).
				WithDetail("variable", v.Name).
				WithDetail("default", v.Default).
				WithDetail("expected_type", string(v.Type))
		}
		if v.Enum != nil && !IsValidEnumForType(v.Enum, v.Type) {
			return errors.NewValidation("invalid_variable_enum", "variable %q: enum must be non-empty and every element must match type %q", v.Name, v.Type).
				WithDetail("variable", v.Name).
				WithDetail("enum", v.Enum).
				WithDetail("expected_type", string(v.Type))
		}
		if len(v.Description) > MaxDescriptionLength {
			return errors.NewValidation("description_too_long", "variable %q: description exceeds %d characters", v.Name, MaxDescriptionLength).
				WithDetail("variable", v.Name)
		}
	}
	return nil
}

// ValidateSteps checks steps within a single playbook: id pattern and
// uniqueness, title bounds, in-playbook dependsOn references, no
// self-dependency, and the variant payload selected by the step type.
// Every dependsOn reference must resolve locally; callers validating a
// playbook with parents use Validate, which defers existence checks to
// the merged id set.
func ValidateSteps(steps []Step) error {
	return validateSteps(steps, true)
}

func validateSteps(steps []Step, requireLocalDeps bool) error {
	ids := make(map[string]bool, len(steps))
	for _, s := range steps {
		if !stepIDPattern.MatchString(s.ID) {
			return errors.NewValidation("invalid_step_id", "invalid step id %q", s.ID).
				WithDetail("step", s.ID).
				WithDetail("pattern", stepIDPattern.String())
		}
		if ids[s.ID] {
			return errors.NewConflict("duplicate_step", "duplicate step id %q", s.ID).
				WithDetail("step", s.ID)
		}
		ids[s.ID] = true
	}
	if !requireLocalDeps {
		ids = nil
	}

	for _, s := range steps {
		if err := validateStep(s, ids); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks one step; a nil ids map defers dependsOn existence
// to post-merge validation, self-dependency is rejected either way.
func validateStep(s Step, ids map[string]bool) error {
	if s.Title == "" || len(s.Title) > MaxTitleLength {
		return errors.NewValidation("invalid_step_title", "step %q: title must be 1-%d characters", s.ID, MaxTitleLength).
			WithDetail("step", s.ID)
	}
	if len(s.Description) > MaxDescriptionLength {
		return errors.NewValidation("description_too_long", "step %q: description exceeds %d characters", s.ID, MaxDescriptionLength).
			WithDetail("step", s.ID)
	}

	for _, dep := range s.DependsOn {
		if dep == s.ID {
			return errors.NewConflict("self_dependency", "step %q depends on itself", s.ID).
				WithDetail("step", s.ID)
		}
		if ids != nil && !ids[dep] {
			return errors.NewNotFound("unknown_dependency", "step %q depends on unknown step %q", s.ID, dep).
				WithDetail("step", s.ID).
				WithDetail("depends_on", dep)
		}
	}

	switch s.Type {
	case StepTask:
		// No required payload; assignee, classification, priority and
		// complexity are free-form substitutable text.
		return nil
	case StepFunction:
		return validateFunctionStep(s)
	default:
		return errors.NewValidation("invalid_step_type", "step %q: unsupported step type %q", s.ID, s.Type).
			WithDetail("step", s.ID).
			WithDetail("type", string(s.Type))
	}
}

func validateFunctionStep(s Step) error {
	if !s.Runtime.Valid() {
		return errors.NewValidation("invalid_runtime", "step %q: unsupported runtime %q", s.ID, s.Runtime).
			WithDetail("step", s.ID).
			WithDetail("runtime", string(s.Runtime))
	}
	switch s.Runtime {
	case RuntimeShell:
		if s.Command == "" {
			return errors.NewValidation("missing_command", "step %q: shell runtime requires a command", s.ID).
				WithDetail("step", s.ID)
		}
	default:
		if s.Code == "" {
			return errors.NewValidation("missing_code", "step %q: %s runtime requires code", s.ID, s.Runtime).
				WithDetail("step", s.ID).
				WithDetail("runtime", string(s.Runtime))
		}
	}
	if s.TimeoutSeconds < 0 || s.TimeoutSeconds > MaxFunctionTimeout {
		return errors.NewValidation("invalid_timeout", "step %q: timeout must be in (0, %d] seconds, got %d", s.ID, MaxFunctionTimeout, s.TimeoutSeconds).
			WithDetail("step", s.ID).
			WithDetail("timeout_seconds", s.TimeoutSeconds)
	}
	return nil
}
