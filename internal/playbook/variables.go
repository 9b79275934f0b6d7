package playbook

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kestrelworks/playbook/internal/errors"
)

// IsValidDefaultForType reports whether value is an acceptable default for
// the given type. A nil value is always acceptable (no default). Numbers
// exclude NaN.
func IsValidDefaultForType(value any, t VarType) bool {
	if value == nil {
		return true
	}
	return matchesType(value, t)
}

// IsValidEnumForType reports whether values form an acceptable enum for the
// given type: non-empty, every element type-matching.
func IsValidEnumForType(values []any, t VarType) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !matchesType(v, t) {
			return false
		}
	}
	return true
}

func matchesType(value any, t VarType) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		f, ok := toFloat(value)
		return ok && !math.IsNaN(f)
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	}
	return false
}

// toFloat normalizes any Go numeric kind to float64. YAML decoding yields
// int for whole numbers and float64 otherwise, so both must count as number.
func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// equalValues compares two values of the same declared type. Numbers
// compare numerically so that int 1 equals float64 1.
func equalValues(a, b any, t VarType) bool {
	if t == TypeNumber {
		fa, oka := toFloat(a)
		fb, okb := toFloat(b)
		return oka && okb && fa == fb
	}
	return a == b
}

// FormatValue renders a resolved variable value in its default textual
// form, used by both condition evaluation and template substitution.
// Whole floats render without a decimal point.
func FormatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ResolveVariables produces the concrete variable values for an
// instantiation. For each declared variable, in declaration order: use the
// provided value if present, else the default if present, else fail when
// required, else omit. Values are checked against the declared type and,
// when an enum is declared, against membership. The first failure wins.
func ResolveVariables(vars []Variable, provided map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(vars))

	for _, v := range vars {
		value, ok := provided[v.Name]
		if !ok {
			if v.Default != nil {
				value = v.Default
			} else if v.Required {
				return nil, errors.NewValidation("missing_required_variable", "variable %q is required", v.Name).
					WithDetail("variable", v.Name).
					WithDetail("expected_type", string(v.Type))
			} else {
				continue
			}
		}

		if !matchesType(value, v.Type) {
			return nil, errors.NewValidation("variable_type_mismatch", "variable %q: value %v does not match type %q", v.Name, value, v.Type).
				WithDetail("variable", v.Name).
				WithDetail("value", value).
				WithDetail("expected_type", string(v.Type))
		}
		if v.Enum != nil && !enumContains(v.Enum, value, v.Type) {
			return nil, errors.NewValidation("variable_not_in_enum", "variable %q: value %v is not in the allowed set", v.Name, value).
				WithDetail("variable", v.Name).
				WithDetail("value", value).
				WithDetail("enum", v.Enum)
		}

		resolved[v.Name] = value
	}

	return resolved, nil
}

func enumContains(enum []any, value any, t VarType) bool {
	for _, e := range enum {
		if equalValues(e, value, t) {
			return true
		}
	}
	return false
}
