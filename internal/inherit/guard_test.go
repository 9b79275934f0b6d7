package inherit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckNoCycle_Valid(t *testing.T) {
	t.Parallel()

	base := pb("base", nil)
	mixin := pb("mixin", []string{"base"})
	loader := newMapLoader(base, mixin)

	check, err := CheckNoCycle(context.Background(), "newbie", []string{"mixin", "base"}, loader)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Empty(t, check.Cycle)
}

func TestCheckNoCycle_SelfExtension(t *testing.T) {
	t.Parallel()

	loader := newMapLoader()
	check, err := CheckNoCycle(context.Background(), "solo", []string{"Solo"}, loader)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, []string{"solo", "solo"}, check.Cycle)
	assert.Empty(t, loader.loads, "self-extension is rejected without loading")
}

func TestCheckNoCycle_DirectCycle(t *testing.T) {
	t.Parallel()

	// a extends b is already persisted; creating b extends a closes a 2-cycle.
	a := pb("a", []string{"b"})
	loader := newMapLoader(a)

	check, err := CheckNoCycle(context.Background(), "b", []string{"a"}, loader)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, []string{"b", "a", "b"}, check.Cycle)
}

func TestCheckNoCycle_TransitiveCycle(t *testing.T) {
	t.Parallel()

	// a extends b extends c persisted; creating c extends a closes the loop.
	a := pb("a", []string{"b"})
	b := pb("b", []string{"c"})
	loader := newMapLoader(a, b)

	check, err := CheckNoCycle(context.Background(), "c", []string{"a"}, loader)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, []string{"c", "a", "b", "c"}, check.Cycle)
}

func TestCheckNoCycle_CaseInsensitive(t *testing.T) {
	t.Parallel()

	a := pb("Alpha", []string{"beta"})
	loader := newMapLoader(a)

	check, err := CheckNoCycle(context.Background(), "BETA", []string{"alpha"}, loader)
	require.NoError(t, err)
	assert.False(t, check.Valid)
}

func TestCheckNoCycle_MissingParentIsNotAnError(t *testing.T) {
	t.Parallel()

	loader := newMapLoader()
	check, err := CheckNoCycle(context.Background(), "child", []string{"not-yet-created"}, loader)
	require.NoError(t, err)
	assert.True(t, check.Valid, "existence is a separate concern; the branch just terminates")
}

func TestCheckNoCycle_SharedAncestorWalkedOnce(t *testing.T) {
	t.Parallel()

	base := pb("base", nil)
	mixin1 := pb("mixin1", []string{"base"})
	mixin2 := pb("mixin2", []string{"base"})
	loader := newMapLoader(base, mixin1, mixin2)

	check, err := CheckNoCycle(context.Background(), "child", []string{"mixin1", "mixin2"}, loader)
	require.NoError(t, err)
	assert.True(t, check.Valid)

	baseLoads := 0
	for _, name := range loader.loads {
		if name == "base" {
			baseLoads++
		}
	}
	assert.Equal(t, 1, baseLoads)
}
