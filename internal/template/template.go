// Package template implements {{name}} placeholder extraction and
// substitution for playbook text fields.
package template

import (
	"regexp"

	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/playbook"
)

// placeholderExpr matches a well-formed {{identifier}} placeholder. No
// whitespace is allowed inside the braces; "{{ env }}" is literal text.
var placeholderExpr = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// ExtractVariableNames returns the placeholder names appearing in the
// template, deduplicated, in first-occurrence order.
func ExtractVariableNames(tmpl string) []string {
	matches := placeholderExpr.FindAllStringSubmatch(tmpl, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

// HasVariables reports whether the template contains at least one
// well-formed placeholder.
func HasVariables(tmpl string) bool {
	return placeholderExpr.MatchString(tmpl)
}

// Substitute replaces every placeholder with the stringified resolved
// value. A placeholder naming a variable absent from vars is a validation
// error unless allowMissing is set, in which case it substitutes the empty
// string.
func Substitute(tmpl string, vars map[string]any, allowMissing bool) (string, error) {
	var missing string
	out := placeholderExpr.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderExpr.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return ""
		}
		return playbook.FormatValue(value)
	})
	if missing != "" && !allowMissing {
		return "", errors.NewValidation("missing_template_variable", "template references undefined variable %q", missing).
			WithDetail("variable", missing).
			WithDetail("template", tmpl)
	}
	return out, nil
}

// SubstituteStep renders a step's substitutable text fields against
// resolved variables: title, description, and for task steps the assignee,
// classification, priority, and complexity. The returned step is a copy;
// the input is never mutated.
func SubstituteStep(step playbook.Step, vars map[string]any) (playbook.Step, error) {
	out := step.Clone()

	fields := []*string{&out.Title, &out.Description}
	if step.Type == playbook.StepTask {
		fields = append(fields, &out.Assignee, &out.Classification, &out.Priority, &out.Complexity)
	}
	for _, f := range fields {
		rendered, err := Substitute(*f, vars, false)
		if err != nil {
			return playbook.Step{}, err
		}
		*f = rendered
	}
	return out, nil
}
