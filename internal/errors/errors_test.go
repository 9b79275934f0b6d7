package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Validation Error", Validation.String())
	assert.Equal(t, "Conflict Error", Conflict.String())
	assert.Equal(t, "Not Found Error", NotFound.String())
}

func TestConstructorsAndPredicates(t *testing.T) {
	t.Parallel()

	v := NewValidation("bad_shape", "field %q is malformed", "title")
	assert.Equal(t, `field "title" is malformed`, v.Error())
	assert.True(t, IsValidation(v))
	assert.False(t, IsConflict(v))

	c := NewConflict("duplicate", "duplicate id")
	assert.True(t, IsConflict(c))

	n := NewNotFound("missing", "no such thing")
	assert.True(t, IsNotFound(n))

	assert.False(t, IsValidation(stderrors.New("plain")))
}

func TestDetailsAndCycle(t *testing.T) {
	t.Parallel()

	err := NewConflict("inheritance_cycle", "cycle detected").
		WithDetail("cycle", []string{"a", "b", "a"}).
		WithDetail("playbook", "a")

	assert.Equal(t, []string{"a", "b", "a"}, err.Cycle())
	assert.Equal(t, "a", err.Detail("playbook"))
	assert.Nil(t, err.Detail("absent"))
	assert.Nil(t, NewValidation("x", "y").Cycle())
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	t.Parallel()

	inner := NewNotFound("missing", "gone")
	wrapped := fmt.Errorf("resolving: %w", inner)

	e := As(wrapped)
	require.NotNil(t, e)
	assert.Equal(t, NotFound, e.Kind)
	assert.True(t, IsNotFound(wrapped))
	assert.Nil(t, As(stderrors.New("plain")))
}

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	err := NewConflict("inheritance_cycle", "cycle detected").
		WithDetail("cycle", []string{"a", "b", "a"}).
		WithDetail("playbook", "a")

	out := FormatErrorPlain(err)
	assert.Contains(t, out, "Error [Conflict Error]: cycle detected")
	assert.Contains(t, out, "code: inheritance_cycle")
	assert.Contains(t, out, "cycle: a -> b -> a")
	assert.Contains(t, out, "playbook: a")

	assert.Empty(t, FormatErrorPlain(nil))
}
