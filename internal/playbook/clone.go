package playbook

// Clone creates a deep copy of the playbook. The resolver and merge engine
// never mutate their inputs; outputs are freshly constructed copies owned
// by the caller.
func (p *Playbook) Clone() *Playbook {
	clone := *p

	if p.Steps != nil {
		clone.Steps = CloneSteps(p.Steps)
	}
	if p.Variables != nil {
		clone.Variables = CloneVariables(p.Variables)
	}
	if p.Extends != nil {
		clone.Extends = make([]string, len(p.Extends))
		copy(clone.Extends, p.Extends)
	}

	return &clone
}

// Clone creates a deep copy of the step.
func (s Step) Clone() Step {
	clone := s
	if s.DependsOn != nil {
		clone.DependsOn = make([]string, len(s.DependsOn))
		copy(clone.DependsOn, s.DependsOn)
	}
	return clone
}

// Clone creates a deep copy of the variable.
func (v Variable) Clone() Variable {
	clone := v
	if v.Enum != nil {
		clone.Enum = make([]any, len(v.Enum))
		copy(clone.Enum, v.Enum)
	}
	return clone
}

// CloneSteps deep copies a step slice.
func CloneSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return out
}

// CloneVariables deep copies a variable slice.
func CloneVariables(vars []Variable) []Variable {
	out := make([]Variable, len(vars))
	for i, v := range vars {
		out[i] = v.Clone()
	}
	return out
}
