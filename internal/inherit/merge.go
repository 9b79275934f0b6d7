package inherit

import (
	"context"

	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/playbook"
)

// Resolved is a playbook with inheritance applied: the original playbook,
// the merged variables and steps, and the chain they were merged from.
// It is derived data, recomputed on demand and never persisted.
type Resolved struct {
	// Original is the playbook resolution was requested for.
	Original *playbook.Playbook
	// Variables is the merged variable set across the chain.
	Variables []playbook.Variable
	// Steps is the merged step sequence across the chain.
	Steps []playbook.Step
	// Chain is the inheritance chain the merge consumed.
	Chain *Chain
}

// MergeVariables merges variable definitions across a chain. Later chain
// members override earlier ones by name, replacing the entire definition
// (type, default, enum, description) rather than merging field-wise. A
// name's position is fixed by its first appearance; its content is that of
// its last appearance.
func MergeVariables(chain []*playbook.Playbook) []playbook.Variable {
	var order []string
	byName := make(map[string]playbook.Variable)

	for _, pb := range chain {
		for _, v := range pb.Variables {
			if _, seen := byName[v.Name]; !seen {
				order = append(order, v.Name)
			}
			byName[v.Name] = v.Clone()
		}
	}

	merged := make([]playbook.Variable, len(order))
	for i, name := range order {
		merged[i] = byName[name]
	}
	return merged
}

// MergeSteps merges step definitions across a chain with the same
// first-seen-position, last-seen-content semantics as MergeVariables,
// keyed by step id. A step appearing only in a later chain member is
// appended after all steps already known.
func MergeSteps(chain []*playbook.Playbook) []playbook.Step {
	var order []string
	byID := make(map[string]playbook.Step)

	for _, pb := range chain {
		for _, s := range pb.Steps {
			if _, seen := byID[s.ID]; !seen {
				order = append(order, s.ID)
			}
			byID[s.ID] = s.Clone()
		}
	}

	merged := make([]playbook.Step, len(order))
	for i, id := range order {
		merged[i] = byID[id]
	}
	return merged
}

// ValidateMergedSteps re-validates dependencies against the merged step
// set. A step may legally depend on an ancestor's step once merged, but
// every reference must resolve, and self-dependency stays rejected.
func ValidateMergedSteps(steps []playbook.Step) error {
	ids := make(map[string]bool, len(steps))
	for _, s := range steps {
		ids[s.ID] = true
	}

	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if dep == s.ID {
				return errors.NewConflict("self_dependency", "step %q depends on itself", s.ID).
					WithDetail("step", s.ID)
			}
			if !ids[dep] {
				return errors.NewNotFound("unknown_dependency", "step %q depends on step %q, which is not present in the merged playbook", s.ID, dep).
					WithDetail("step", s.ID).
					WithDetail("depends_on", dep)
			}
		}
	}
	return nil
}

// Resolve applies inheritance to a playbook: resolve the chain, merge
// variables and steps, and re-validate merged dependencies. A playbook
// with no extends short-circuits to copies of its own definitions without
// touching the loader.
func Resolve(ctx context.Context, pb *playbook.Playbook, loader playbook.Loader) (*Resolved, error) {
	if len(pb.Extends) == 0 {
		if err := playbook.Validate(pb); err != nil {
			return nil, err
		}
		return &Resolved{
			Original:  pb,
			Variables: playbook.CloneVariables(pb.Variables),
			Steps:     playbook.CloneSteps(pb.Steps),
			Chain: &Chain{
				Playbooks: []*playbook.Playbook{pb},
				Names:     map[string]bool{lowerName(pb.Name): true},
			},
		}, nil
	}

	chain, err := ResolveChain(ctx, pb, loader)
	if err != nil {
		return nil, err
	}

	steps := MergeSteps(chain.Playbooks)
	if err := ValidateMergedSteps(steps); err != nil {
		return nil, err
	}

	return &Resolved{
		Original:  pb,
		Variables: MergeVariables(chain.Playbooks),
		Steps:     steps,
		Chain:     chain,
	}, nil
}
