// Package store provides playbook loaders: an in-memory store that doubles
// as the reference persistence layer, a read-only directory loader for
// playbook files, an fsnotify-backed watching wrapper, and a loader that
// reads playbooks from a git revision. All of them satisfy playbook.Loader
// with case-insensitive name lookup.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/inherit"
	"github.com/kestrelworks/playbook/internal/playbook"
)

// Memory is an in-memory playbook store. Create and Update enforce the
// structural validators, case-insensitive name uniqueness, the pre-creation
// cycle guard, and monotonic versioning, so the persisted graph can never
// acquire a cycle one write at a time.
type Memory struct {
	mu        sync.RWMutex
	playbooks map[string]*playbook.Playbook
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{playbooks: make(map[string]*playbook.Playbook)}
}

// Load implements playbook.Loader. The returned playbook is a copy.
func (m *Memory) Load(_ context.Context, name string) (*playbook.Playbook, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pb, ok := m.playbooks[strings.ToLower(name)]
	if !ok {
		return nil, false, nil
	}
	return pb.Clone(), true, nil
}

// Create persists a new playbook at version 1. It fails with a conflict
// when the name is taken or when the extends list would introduce a cycle
// into the persisted graph.
func (m *Memory) Create(ctx context.Context, pb *playbook.Playbook) (*playbook.Playbook, error) {
	stored := pb.Clone()
	stored.Version = 1
	if err := playbook.Validate(stored); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(stored.Name)
	if _, exists := m.playbooks[key]; exists {
		return nil, errors.NewConflict("duplicate_playbook", "playbook %q already exists", stored.Name).
			WithDetail("playbook", stored.Name)
	}
	if err := m.checkExtendsLocked(ctx, stored); err != nil {
		return nil, err
	}

	m.playbooks[key] = stored
	return stored.Clone(), nil
}

// Update replaces an existing playbook, incrementing its version. The
// cycle guard runs against the rest of the persisted graph, so an update
// cannot introduce a cycle either.
func (m *Memory) Update(ctx context.Context, pb *playbook.Playbook) (*playbook.Playbook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(pb.Name)
	current, exists := m.playbooks[key]
	if !exists {
		return nil, errors.NewNotFound("playbook_not_found", "playbook %q does not exist", pb.Name).
			WithDetail("playbook", pb.Name)
	}

	stored := pb.Clone()
	stored.Version = current.Version + 1
	if err := playbook.Validate(stored); err != nil {
		return nil, err
	}
	if err := m.checkExtendsLocked(ctx, stored); err != nil {
		return nil, err
	}

	m.playbooks[key] = stored
	return stored.Clone(), nil
}

// Delete removes a playbook by name.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(name)
	if _, exists := m.playbooks[key]; !exists {
		return errors.NewNotFound("playbook_not_found", "playbook %q does not exist", name).
			WithDetail("playbook", name)
	}
	delete(m.playbooks, key)
	return nil
}

// Names returns the stored playbook names, sorted.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.playbooks))
	for _, pb := range m.playbooks {
		names = append(names, pb.Name)
	}
	sort.Strings(names)
	return names
}

// checkExtendsLocked runs the pre-creation cycle guard against the store
// contents, excluding the playbook being written. The guard's loader view
// must not include the new node, so lookups of the written name report
// absent. Callers hold m.mu; the loader reads the map directly.
func (m *Memory) checkExtendsLocked(ctx context.Context, pb *playbook.Playbook) error {
	self := strings.ToLower(pb.Name)
	loader := playbook.LoaderFunc(func(_ context.Context, name string) (*playbook.Playbook, bool, error) {
		key := strings.ToLower(name)
		if key == self {
			return nil, false, nil
		}
		p, ok := m.playbooks[key]
		if !ok {
			return nil, false, nil
		}
		return p, true, nil
	})

	check, err := inherit.CheckNoCycle(ctx, pb.Name, pb.Extends, loader)
	if err != nil {
		return err
	}
	if !check.Valid {
		return errors.NewConflict("inheritance_cycle", "%s", check.Reason).
			WithDetail("cycle", check.Cycle)
	}
	return nil
}
