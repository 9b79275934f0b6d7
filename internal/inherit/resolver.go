// Package inherit resolves playbook inheritance: it walks the extends
// graph depth-first into an ordered, deduplicated ancestor chain, merges
// variable and step definitions across the chain with last-write-wins
// override rules, and guards playbook creation against introducing cycles.
package inherit

import (
	"context"
	"strings"

	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/playbook"
)

// Chain is a resolved inheritance chain: playbooks ordered from root
// ancestors to the target, plus the set of distinct (lowercased) names
// visited. Under diamond inheritance each ancestor appears exactly once,
// at the position of its first completed resolution.
type Chain struct {
	// Playbooks is the resolution order: root ancestors first, target last.
	Playbooks []*playbook.Playbook
	// Names is the set of lowercased playbook names in the chain.
	Names map[string]bool
}

// Target returns the playbook the chain was resolved for.
func (c *Chain) Target() *playbook.Playbook {
	return c.Playbooks[len(c.Playbooks)-1]
}

// lowerName normalizes a playbook name for case-insensitive comparison.
func lowerName(name string) string {
	return strings.ToLower(name)
}

// resolveState is the arena for a single top-level resolution call. Each
// call owns its own visiting/visited sets, so concurrent resolutions never
// share state. Keys are lowercased playbook names.
type resolveState struct {
	visiting map[string]bool
	visited  map[string]bool
	path     []string
	chain    []*playbook.Playbook
}

// ResolveChain resolves the full inheritance graph of pb into an ordered
// chain. Traversal is depth-first and left-to-right over extends lists,
// loading parents sequentially so that cycle paths and override order are
// deterministic. Every playbook entering the traversal is structurally
// validated first; a malformed playbook anywhere fails the resolution.
func ResolveChain(ctx context.Context, pb *playbook.Playbook, loader playbook.Loader) (*Chain, error) {
	if err := playbook.Validate(pb); err != nil {
		return nil, err
	}

	st := &resolveState{
		visiting: make(map[string]bool),
		visited:  make(map[string]bool),
	}
	if err := st.resolve(ctx, pb, loader); err != nil {
		return nil, err
	}

	return &Chain{Playbooks: st.chain, Names: st.visited}, nil
}

func (st *resolveState) resolve(ctx context.Context, pb *playbook.Playbook, loader playbook.Loader) error {
	key := strings.ToLower(pb.Name)
	if st.visiting[key] {
		return st.cycleError(pb.Name)
	}
	st.visiting[key] = true
	st.path = append(st.path, pb.Name)

	for _, parentName := range pb.Extends {
		parentKey := strings.ToLower(parentName)
		// Self-extension is a 2-cycle; reject without consulting the loader.
		if parentKey == key {
			return errors.NewConflict("self_extension", "playbook %q cannot extend itself", pb.Name).
				WithDetail("playbook", pb.Name).
				WithDetail("cycle", []string{pb.Name, pb.Name})
		}
		// Diamond dedup: a fully resolved ancestor is not processed again.
		if st.visited[parentKey] {
			continue
		}
		if st.visiting[parentKey] {
			return st.cycleError(parentName)
		}

		parent, found, err := loader.Load(ctx, parentName)
		if err != nil {
			return err
		}
		if !found {
			return errors.NewNotFound("parent_not_found", "playbook %q extends unknown playbook %q", pb.Name, parentName).
				WithDetail("playbook", pb.Name).
				WithDetail("parent", parentName)
		}
		if err := playbook.Validate(parent); err != nil {
			return err
		}
		if err := st.resolve(ctx, parent, loader); err != nil {
			return err
		}
	}

	delete(st.visiting, key)
	st.visited[key] = true
	st.chain = append(st.chain, pb)
	st.path = st.path[:len(st.path)-1]
	return nil
}

// cycleError reports a detected inheritance cycle with the full path from
// the cycle's first occurrence back to the repeated name.
func (st *resolveState) cycleError(name string) error {
	cycle := buildCyclePath(st.path, name)
	return errors.NewConflict("inheritance_cycle", "inheritance cycle detected: %s", strings.Join(cycle, " -> ")).
		WithDetail("cycle", cycle)
}

// buildCyclePath trims the traversal path to the segment forming the cycle
// and closes it with the repeated name.
func buildCyclePath(path []string, repeated string) []string {
	key := strings.ToLower(repeated)
	for i, name := range path {
		if strings.ToLower(name) == key {
			return append(append([]string{}, path[i:]...), repeated)
		}
	}
	return append(append([]string{}, path...), repeated)
}
