// Package config provides hierarchical configuration for the playbook CLI
// using koanf. Values are loaded with priority: environment variables >
// project config (.playbook/config.yml) > user config
// (~/.config/playbook/config.yml) > defaults. Legacy JSON config files are
// still read for compatibility.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces environment overrides, e.g. PLAYBOOK_DIR,
// PLAYBOOK_GIT_REF.
const envPrefix = "PLAYBOOK_"

// Configuration controls where the CLI loads playbooks from and how it
// renders output.
type Configuration struct {
	// Dir is the directory of playbook files the loader reads.
	Dir string `koanf:"dir"`
	// Watch keeps the directory loader in sync with file changes.
	Watch bool `koanf:"watch"`
	// GitRepo, when set, loads playbooks from a git repository instead of
	// a plain directory.
	GitRepo string `koanf:"git_repo"`
	// GitRef is the revision to read playbooks from (default HEAD).
	GitRef string `koanf:"git_ref"`
	// GitPath is the subpath within the repository tree holding playbooks.
	GitPath string `koanf:"git_path"`
	// NoColor disables colored output.
	NoColor bool `koanf:"no_color"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config location.
	ProjectConfigPath string
}

// Load loads configuration with default options.
func Load() (*Configuration, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if path, ok := userConfigPath(); ok {
		if err := loadFileConfig(k, path, "user"); err != nil {
			return nil, err
		}
	}

	projectPath := opts.ProjectConfigPath
	if projectPath != "" {
		if !fileExists(projectPath) {
			return nil, fmt.Errorf("config file not found: %s", projectPath)
		}
		if err := loadFileConfig(k, projectPath, "project"); err != nil {
			return nil, err
		}
	} else if path := projectConfigPath(); fileExists(path) {
		if err := loadFileConfig(k, path, "project"); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"dir":      ".playbooks",
		"watch":    false,
		"git_repo": "",
		"git_ref":  "",
		"git_path": "",
		"no_color": false,
	}
}

// loadFileConfig loads a config file, picking the parser by extension.
// YAML is the native format; JSON is supported for legacy configs.
func loadFileConfig(k *koanf.Koanf, path, kind string) error {
	var parser koanf.Parser = yaml.Parser()
	if filepath.Ext(path) == ".json" {
		parser = json.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("loading %s config %s: %w", kind, path, err)
	}
	return nil
}

// userConfigPath returns the first existing user config file, preferring
// YAML over legacy JSON.
func userConfigPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	candidates := []string{
		filepath.Join(home, ".config", "playbook", "config.yml"),
		filepath.Join(home, ".config", "playbook", "config.yaml"),
		filepath.Join(home, ".playbook", "config.json"),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

func projectConfigPath() string {
	return filepath.Join(".playbook", "config.yml")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// envTransform maps PLAYBOOK_GIT_REF to git_ref.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}
