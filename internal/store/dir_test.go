package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/inherit"
)

const basePlaybookYAML = `
name: base
title: Base playbook
version: 1
variables:
  - name: env
    type: string
    default: dev
steps:
  - id: s1
    type: task
    title: First step
`

const childPlaybookYAML = `
name: child
title: Child playbook
version: 1
extends: [base]
steps:
  - id: s2
    type: task
    title: Second step
    depends_on: [s1]
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseBytes(t *testing.T) {
	t.Parallel()

	t.Run("valid yaml", func(t *testing.T) {
		t.Parallel()
		pb, err := ParseBytes([]byte(basePlaybookYAML))
		require.NoError(t, err)
		assert.Equal(t, "base", pb.Name)
		require.Len(t, pb.Variables, 1)
		assert.Equal(t, "dev", pb.Variables[0].Default)
	})

	t.Run("json decodes through the yaml parser", func(t *testing.T) {
		t.Parallel()
		pb, err := ParseBytes([]byte(`{"name": "jsonbook", "title": "JSON", "version": 1}`))
		require.NoError(t, err)
		assert.Equal(t, "jsonbook", pb.Name)
	})

	t.Run("structural validation applies", func(t *testing.T) {
		t.Parallel()
		_, err := ParseBytes([]byte("name: bad name\ntitle: x\nversion: 1\n"))
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := ParseBytes([]byte("{not yaml"))
		assert.Error(t, err)
	})
}

func TestDir_LoadAndResolve(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", basePlaybookYAML)
	writeFile(t, dir, "child.yml", childPlaybookYAML)
	writeFile(t, dir, "notes.txt", "not a playbook")

	d := NewDir(dir)
	ctx := context.Background()

	pb, found, err := d.Load(ctx, "CHILD")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"base"}, pb.Extends)

	_, found, err = d.Load(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, found)

	names, err := d.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "child"}, names)

	resolved, err := inherit.Resolve(ctx, pb, d)
	require.NoError(t, err)
	assert.Len(t, resolved.Steps, 2)
}

func TestDir_DuplicateNamesAcrossFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "one.yaml", basePlaybookYAML)
	writeFile(t, dir, "two.yaml", basePlaybookYAML)

	d := NewDir(dir)
	_, _, err := d.Load(context.Background(), "base")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate playbook name")
}

func TestDir_InvalidateRescans(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", basePlaybookYAML)

	d := NewDir(dir)
	ctx := context.Background()

	_, found, err := d.Load(ctx, "child")
	require.NoError(t, err)
	assert.False(t, found)

	writeFile(t, dir, "child.yaml", childPlaybookYAML)
	_, found, err = d.Load(ctx, "child")
	require.NoError(t, err)
	assert.False(t, found, "index is cached until invalidated")

	d.Invalidate()
	_, found, err = d.Load(ctx, "child")
	require.NoError(t, err)
	assert.True(t, found)
}
