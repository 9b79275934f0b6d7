package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kestrelworks/playbook/internal/playbook"
)

// playbookExtensions are the file extensions the directory and git loaders
// recognize as playbook definitions. YAML is a superset of JSON, so .json
// files decode through the same parser.
var playbookExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// ParseBytes decodes a playbook definition and validates it structurally.
func ParseBytes(data []byte) (*playbook.Playbook, error) {
	var pb playbook.Playbook
	if err := yaml.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("parsing playbook: %w", err)
	}
	if err := playbook.Validate(&pb); err != nil {
		return nil, err
	}
	return &pb, nil
}

// ParseFile decodes and validates a playbook file.
func ParseFile(path string) (*playbook.Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	pb, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return pb, nil
}

// Dir is a read-only loader over a directory of playbook files. The
// directory is scanned and parsed once, on first use; Invalidate forces a
// rescan on the next load.
type Dir struct {
	dir string

	mu    sync.RWMutex
	index map[string]*playbook.Playbook
}

// NewDir creates a loader over the given directory.
func NewDir(dir string) *Dir {
	return &Dir{dir: dir}
}

// Load implements playbook.Loader. The returned playbook is a copy.
func (d *Dir) Load(_ context.Context, name string) (*playbook.Playbook, bool, error) {
	index, err := d.ensureIndex()
	if err != nil {
		return nil, false, err
	}
	pb, ok := index[strings.ToLower(name)]
	if !ok {
		return nil, false, nil
	}
	return pb.Clone(), true, nil
}

// Names returns the playbook names found in the directory, sorted.
func (d *Dir) Names() ([]string, error) {
	index, err := d.ensureIndex()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for _, pb := range index {
		names = append(names, pb.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate discards the parsed index. The next load rescans the
// directory.
func (d *Dir) Invalidate() {
	d.mu.Lock()
	d.index = nil
	d.mu.Unlock()
}

func (d *Dir) ensureIndex() (map[string]*playbook.Playbook, error) {
	d.mu.RLock()
	index := d.index
	d.mu.RUnlock()
	if index != nil {
		return index, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index != nil {
		return d.index, nil
	}

	index, err := scanDir(d.dir)
	if err != nil {
		return nil, err
	}
	d.index = index
	return index, nil
}

// scanDir parses every playbook file directly under dir and indexes the
// results by lowercased name. Two files declaring the same name is a
// configuration mistake surfaced as an error.
func scanDir(dir string) (map[string]*playbook.Playbook, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading playbook directory: %w", err)
	}

	index := make(map[string]*playbook.Playbook)
	sources := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !playbookExtensions[filepath.Ext(entry.Name())] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		pb, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(pb.Name)
		if first, dup := sources[key]; dup {
			return nil, fmt.Errorf("duplicate playbook name %q: first in %s, also in %s", pb.Name, first, entry.Name())
		}
		sources[key] = entry.Name()
		index[key] = pb
	}
	return index, nil
}
