package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/playbook/internal/errors"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		expr    string
		want    Condition
		wantErr bool
	}{
		"truthy":                 {expr: "{{enabled}}", want: Condition{Variable: "enabled", Op: OpTruthy}},
		"truthy with spaces":     {expr: "  {{ enabled }}  ", want: Condition{Variable: "enabled", Op: OpTruthy}},
		"negated":                {expr: "!{{enabled}}", want: Condition{Variable: "enabled", Op: OpNotTruthy}},
		"negated with spaces":    {expr: " ! {{ enabled }}", want: Condition{Variable: "enabled", Op: OpNotTruthy}},
		"equals":                 {expr: "{{env}} == prod", want: Condition{Variable: "env", Op: OpEquals, Value: "prod"}},
		"not equals":             {expr: "{{env}} != prod", want: Condition{Variable: "env", Op: OpNotEquals, Value: "prod"}},
		"value keeps inner text": {expr: "{{msg}} == hello world", want: Condition{Variable: "msg", Op: OpEquals, Value: "hello world"}},
		"empty comparison value": {expr: "{{msg}} == ", want: Condition{Variable: "msg", Op: OpEquals, Value: ""}},
		"bare name":              {expr: "enabled", wantErr: true},
		"empty braces":           {expr: "{{}}", wantErr: true},
		"single braces":          {expr: "{enabled}", wantErr: true},
		"empty string":           {expr: "", wantErr: true},
		"unsupported operator":   {expr: "{{n}} > 3", wantErr: true},
		"name starting with digit": {expr: "{{1abc}}", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.expr)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err), "expected a validation error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsTruthy(t *testing.T) {
	t.Parallel()

	falsy := []any{nil, "", "false", "FALSE", "0", 0, "no", "NO", "off", "OFF", false}
	for _, v := range falsy {
		assert.False(t, IsTruthy(v), "expected %#v to be falsy", v)
	}

	truthy := []any{"hello", 1, -1, true, "yes", "on", 0.5}
	for _, v := range truthy {
		assert.True(t, IsTruthy(v), "expected %#v to be truthy", v)
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	vars := map[string]any{
		"enabled": true,
		"env":     "prod",
		"count":   0,
	}

	tests := map[string]struct {
		expr string
		want bool
	}{
		"truthy true":                {"{{enabled}}", true},
		"truthy falsy value":         {"{{count}}", false},
		"truthy missing variable":    {"{{ghost}}", false},
		"negated missing variable":   {"!{{ghost}}", true},
		"negated truthy":             {"!{{enabled}}", false},
		"equals match":               {"{{env}} == prod", true},
		"equals mismatch":            {"{{env}} == dev", false},
		"not equals":                 {"{{env}} != dev", true},
		"missing compares as empty":  {"{{ghost}} == ", true},
		"missing not equals literal": {"{{ghost}} != prod", true},
		"bool stringifies for equals": {"{{enabled}} == true", true},
		"number stringifies":          {"{{count}} == 0", true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := EvaluateString(tc.expr, vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "expr %q", tc.expr)
		})
	}
}

func TestEvaluate_PureOverAnyMap(t *testing.T) {
	t.Parallel()

	// Evaluation never errors, even with a nil variable map.
	c, err := Parse("{{anything}}")
	require.NoError(t, err)
	assert.False(t, Evaluate(c, nil))
}
