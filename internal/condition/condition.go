// Package condition implements the step inclusion expression language: a
// four-form grammar over {{variable}} references with a string-based truth
// table. Parsing is strict; evaluation is pure and total over any resolved
// variable map.
package condition

import (
	"regexp"
	"strings"

	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/playbook"
)

// Op is the comparison performed by a condition.
type Op string

const (
	// OpTruthy includes the step when the variable is truthy: {{name}}.
	OpTruthy Op = "truthy"
	// OpNotTruthy includes the step when the variable is falsy: !{{name}}.
	OpNotTruthy Op = "not-truthy"
	// OpEquals compares the stringified variable to a literal: {{name}} == value.
	OpEquals Op = "equals"
	// OpNotEquals is the negation of OpEquals: {{name}} != value.
	OpNotEquals Op = "not-equals"
)

// Condition is a parsed inclusion expression.
type Condition struct {
	// Variable is the referenced variable name.
	Variable string
	// Op is the comparison form.
	Op Op
	// Value is the literal right-hand side for equals/not-equals.
	Value string
}

var (
	truthyExpr    = regexp.MustCompile(`^\s*\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\s*$`)
	notTruthyExpr = regexp.MustCompile(`^\s*!\s*\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\s*$`)
	compareExpr   = regexp.MustCompile(`^\s*\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\s*(==|!=)\s*(.*?)\s*$`)
)

// falsyStrings is the engine's own truth table, distinct from Go's zero
// values: a stringified, lowercased value is falsy iff it appears here.
var falsyStrings = map[string]bool{
	"":      true,
	"false": true,
	"0":     true,
	"no":    true,
	"off":   true,
}

// Parse parses an inclusion expression. Only four forms are accepted:
// {{name}}, !{{name}}, {{name}} == value, {{name}} != value. Any other
// shape is a validation error; bare names without braces are rejected.
func Parse(expr string) (Condition, error) {
	if m := notTruthyExpr.FindStringSubmatch(expr); m != nil {
		return Condition{Variable: m[1], Op: OpNotTruthy}, nil
	}
	if m := truthyExpr.FindStringSubmatch(expr); m != nil {
		return Condition{Variable: m[1], Op: OpTruthy}, nil
	}
	if m := compareExpr.FindStringSubmatch(expr); m != nil {
		op := OpEquals
		if m[2] == "!=" {
			op = OpNotEquals
		}
		return Condition{Variable: m[1], Op: op, Value: m[3]}, nil
	}
	return Condition{}, errors.NewValidation("invalid_condition", "invalid condition syntax: %q", expr).
		WithDetail("condition", expr).
		WithDetail("expected", "{{name}}, !{{name}}, {{name}} == value, or {{name}} != value")
}

// IsTruthy applies the engine truth table: nil is false; otherwise the
// value is stringified, lowercased, and false iff it is exactly one of
// "", "false", "0", "no", "off".
func IsTruthy(value any) bool {
	if value == nil {
		return false
	}
	s := strings.ToLower(playbook.FormatValue(value))
	return !falsyStrings[s]
}

// Evaluate applies a parsed condition to resolved variables. It is pure and
// total: a missing variable is falsy for the truthy forms and compares as
// the empty string for the equality forms. Only Parse can fail.
func Evaluate(c Condition, vars map[string]any) bool {
	value, ok := vars[c.Variable]

	switch c.Op {
	case OpTruthy:
		return ok && IsTruthy(value)
	case OpNotTruthy:
		return !ok || !IsTruthy(value)
	case OpEquals, OpNotEquals:
		s := ""
		if ok {
			s = playbook.FormatValue(value)
		}
		if c.Op == OpEquals {
			return s == c.Value
		}
		return s != c.Value
	}
	return false
}

// EvaluateString parses and evaluates an expression in one call.
func EvaluateString(expr string, vars map[string]any) (bool, error) {
	c, err := Parse(expr)
	if err != nil {
		return false, err
	}
	return Evaluate(c, vars), nil
}
