package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, ".playbooks", cfg.Dir)
	assert.False(t, cfg.Watch)
	assert.Empty(t, cfg.GitRepo)
	assert.False(t, cfg.NoColor)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("dir: /srv/playbooks\nwatch: true\n"), 0o644))

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "/srv/playbooks", cfg.Dir)
	assert.True(t, cfg.Watch)
}

func TestLoad_LegacyJSONProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dir": "/json/playbooks"}`), 0o644))

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "/json/playbooks", cfg.Dir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("dir: /from/file\n"), 0o644))

	t.Setenv("PLAYBOOK_DIR", "/from/env")
	t.Setenv("PLAYBOOK_GIT_REF", "main")

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Dir)
	assert.Equal(t, "main", cfg.GitRef)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := LoadWithOptions(LoadOptions{ProjectConfigPath: "/nonexistent/config.yml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "git_ref", envTransform("PLAYBOOK_GIT_REF"))
	assert.Equal(t, "dir", envTransform("PLAYBOOK_DIR"))
}
