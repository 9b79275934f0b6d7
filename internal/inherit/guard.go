package inherit

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelworks/playbook/internal/playbook"
)

// CycleCheck is the verdict of the pre-creation cycle guard.
type CycleCheck struct {
	// Valid is true when creating the playbook would not introduce a cycle.
	Valid bool
	// Reason describes the rejection when Valid is false.
	Reason string
	// Cycle is the path that would form the cycle, proposed name first and
	// last.
	Cycle []string
}

// guardState tracks traversal across all proposed parents so shared
// ancestors are walked once and a pre-existing malformed graph cannot loop
// the traversal.
type guardState struct {
	proposed string
	loader   playbook.Loader
	visited  map[string]bool
}

// CheckNoCycle answers whether creating (or updating) a playbook named
// proposedName with the given extends list would introduce an inheritance
// cycle, before the playbook exists in the loader's view. The persistence
// layer must consult it before committing a create or update, since the
// persisted graph must stay acyclic one insertion at a time.
//
// A proposed parent missing from the loader is not an error here; existence
// is a separate concern and that branch simply terminates. The error return
// is reserved for loader I/O failures.
func CheckNoCycle(ctx context.Context, proposedName string, proposedExtends []string, loader playbook.Loader) (CycleCheck, error) {
	proposedKey := lowerName(proposedName)

	// Self-extension is the trivial 2-cycle, checked before any loading.
	for _, parent := range proposedExtends {
		if lowerName(parent) == proposedKey {
			return CycleCheck{
				Valid:  false,
				Reason: fmt.Sprintf("playbook %q cannot extend itself", proposedName),
				Cycle:  []string{proposedName, proposedName},
			}, nil
		}
	}

	st := &guardState{
		proposed: proposedKey,
		loader:   loader,
		visited:  make(map[string]bool),
	}
	for _, parent := range proposedExtends {
		cycle, err := st.walk(ctx, parent, []string{proposedName})
		if err != nil {
			return CycleCheck{}, err
		}
		if cycle != nil {
			return CycleCheck{
				Valid:  false,
				Reason: fmt.Sprintf("extending %q would create an inheritance cycle: %s", parent, strings.Join(cycle, " -> ")),
				Cycle:  cycle,
			}, nil
		}
	}

	return CycleCheck{Valid: true}, nil
}

// walk traverses a persisted parent's transitive extends. It returns the
// closed cycle path when the traversal reaches the proposed name, nil
// otherwise.
func (st *guardState) walk(ctx context.Context, name string, path []string) ([]string, error) {
	key := lowerName(name)
	if key == st.proposed {
		return append(append([]string{}, path...), name), nil
	}
	if st.visited[key] {
		return nil, nil
	}
	st.visited[key] = true

	pb, found, err := st.loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		// Not yet persisted; nothing to traverse.
		return nil, nil
	}

	path = append(path, pb.Name)
	for _, parent := range pb.Extends {
		cycle, err := st.walk(ctx, parent, path)
		if err != nil || cycle != nil {
			return cycle, err
		}
	}
	return nil, nil
}
