package playbook

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/playbook/internal/errors"
)

func TestIsValidDefaultForType(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		value any
		typ   VarType
		want  bool
	}{
		"nil is always valid":     {nil, TypeString, true},
		"string matches string":   {"hello", TypeString, true},
		"number rejects string":   {"1", TypeNumber, false},
		"int matches number":      {3, TypeNumber, true},
		"float matches number":    {3.5, TypeNumber, true},
		"NaN rejected":            {math.NaN(), TypeNumber, false},
		"bool matches boolean":    {true, TypeBoolean, true},
		"string rejects bool":     {true, TypeString, false},
		"boolean rejects string":  {"true", TypeBoolean, false},
		"number rejects bool":     {false, TypeNumber, false},
		"string rejects number":   {1.0, TypeString, false},
		"unknown type rejects":    {"x", "date", false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsValidDefaultForType(tc.value, tc.typ))
		})
	}
}

func TestIsValidEnumForType(t *testing.T) {
	t.Parallel()

	assert.False(t, IsValidEnumForType(nil, TypeString), "empty enum is invalid")
	assert.False(t, IsValidEnumForType([]any{}, TypeString), "empty enum is invalid")
	assert.True(t, IsValidEnumForType([]any{"a", "b"}, TypeString))
	assert.True(t, IsValidEnumForType([]any{1, 2.5}, TypeNumber))
	assert.False(t, IsValidEnumForType([]any{"a", 1}, TypeString), "heterogeneous enum is invalid")
	assert.False(t, IsValidEnumForType([]any{true, "false"}, TypeBoolean))
}

func TestResolveVariables(t *testing.T) {
	t.Parallel()

	vars := []Variable{
		{Name: "env", Type: TypeString, Required: true, Enum: []any{"dev", "prod"}},
		{Name: "retries", Type: TypeNumber, Default: 3},
		{Name: "dry_run", Type: TypeBoolean},
	}

	t.Run("provided wins over default", func(t *testing.T) {
		t.Parallel()
		got, err := ResolveVariables(vars, map[string]any{"env": "prod", "retries": 5})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"env": "prod", "retries": 5}, got)
	})

	t.Run("default fills missing value", func(t *testing.T) {
		t.Parallel()
		got, err := ResolveVariables(vars, map[string]any{"env": "dev"})
		require.NoError(t, err)
		assert.Equal(t, 3, got["retries"])
	})

	t.Run("optional without default is omitted", func(t *testing.T) {
		t.Parallel()
		got, err := ResolveVariables(vars, map[string]any{"env": "dev"})
		require.NoError(t, err)
		_, present := got["dry_run"]
		assert.False(t, present)
	})

	t.Run("missing required fails", func(t *testing.T) {
		t.Parallel()
		_, err := ResolveVariables(vars, nil)
		require.Error(t, err)
		e := errors.As(err)
		require.NotNil(t, e)
		assert.Equal(t, errors.Validation, e.Kind)
		assert.Equal(t, "missing_required_variable", e.Code)
		assert.Equal(t, "env", e.Detail("variable"))
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		t.Parallel()
		_, err := ResolveVariables(vars, map[string]any{"env": "dev", "retries": "many"})
		require.Error(t, err)
		assert.Equal(t, "variable_type_mismatch", errors.As(err).Code)
	})

	t.Run("enum membership enforced", func(t *testing.T) {
		t.Parallel()
		_, err := ResolveVariables(vars, map[string]any{"env": "staging"})
		require.Error(t, err)
		assert.Equal(t, "variable_not_in_enum", errors.As(err).Code)
	})

	t.Run("numeric enum compares across kinds", func(t *testing.T) {
		t.Parallel()
		numVars := []Variable{{Name: "n", Type: TypeNumber, Enum: []any{1, 2}}}
		_, err := ResolveVariables(numVars, map[string]any{"n": 2.0})
		assert.NoError(t, err)
	})
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", FormatValue("hello"))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "false", FormatValue(false))
	assert.Equal(t, "1", FormatValue(float64(1)))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "42", FormatValue(42))
}
