// Package playbook defines the playbook data model: typed variables, task
// and function steps, and the extends list that links a playbook to its
// parents. It also provides per-playbook structural validation and
// variable value resolution.
package playbook

import "context"

// VarType is the value type of a playbook variable.
type VarType string

const (
	// TypeString accepts string values.
	TypeString VarType = "string"
	// TypeNumber accepts numeric values (any Go numeric kind, NaN excluded).
	TypeNumber VarType = "number"
	// TypeBoolean accepts boolean values.
	TypeBoolean VarType = "boolean"
)

// Valid reports whether t is one of the supported variable types.
func (t VarType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean:
		return true
	}
	return false
}

// StepType discriminates the two step shapes.
type StepType string

const (
	// StepTask is a work item handed to an assignee.
	StepTask StepType = "task"
	// StepFunction is an executable function with a runtime payload.
	StepFunction StepType = "function"
)

// Runtime identifies the execution runtime of a function step.
type Runtime string

const (
	// RuntimeTypeScript runs the step's code as TypeScript.
	RuntimeTypeScript Runtime = "typescript"
	// RuntimePython runs the step's code as Python.
	RuntimePython Runtime = "python"
	// RuntimeShell runs the step's command in a shell.
	RuntimeShell Runtime = "shell"
)

// Valid reports whether r is one of the supported runtimes.
func (r Runtime) Valid() bool {
	switch r {
	case RuntimeTypeScript, RuntimePython, RuntimeShell:
		return true
	}
	return false
}

// Structural limits enforced by Validate.
const (
	// MaxSteps is the maximum number of steps in a single playbook.
	MaxSteps = 50
	// MaxVariables is the maximum number of variables in a single playbook.
	MaxVariables = 50
	// MaxExtends is the maximum number of parents a playbook may extend.
	MaxExtends = 10
	// MaxTitleLength bounds playbook and step titles.
	MaxTitleLength = 200
	// MaxDescriptionLength bounds descriptions.
	MaxDescriptionLength = 2000
	// MaxFunctionTimeout is the upper bound for a function step timeout, in seconds.
	MaxFunctionTimeout = 3600
)

// Playbook is a named, versioned template of steps and variables,
// optionally inheriting from other playbooks via Extends.
type Playbook struct {
	// Name is the unique, pattern-constrained identifier of the playbook.
	// Lookup by name is case-insensitive.
	Name string `yaml:"name" json:"name"`
	// Title is the human-readable title.
	Title string `yaml:"title" json:"title"`
	// Version starts at 1 and is incremented on every update.
	Version int `yaml:"version" json:"version"`
	// Steps is the ordered sequence of step templates.
	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`
	// Variables declares the typed slots an instantiation must fill.
	Variables []Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
	// Extends lists parent playbook names, left to right. No duplicates,
	// no self-reference.
	Extends []string `yaml:"extends,omitempty" json:"extends,omitempty"`
}

// Variable is a typed, optionally-defaulted, optionally-enumerated named
// slot. Default and Enum, when present, must be value-type-homogeneous
// with Type.
type Variable struct {
	// Name is the identifier of the variable, unique within a playbook.
	Name string `yaml:"name" json:"name"`
	// Type is one of string, number, boolean.
	Type VarType `yaml:"type" json:"type"`
	// Required forces a value to be provided at instantiation when no
	// default exists.
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`
	// Default is used when no value is provided. Must match Type.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
	// Enum restricts values to a non-empty set. Every element must match Type.
	Enum []any `yaml:"enum,omitempty" json:"enum,omitempty"`
	// Description explains what the variable is for.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Step is one unit of work template within a playbook. Type discriminates
// the task shape from the function shape; validation branches exhaustively
// on it.
type Step struct {
	// ID is the identifier of the step, unique within a playbook.
	ID string `yaml:"id" json:"id"`
	// Type is the step shape: task or function.
	Type StepType `yaml:"type" json:"type"`
	// Title is the human-readable title. Supports {{var}} substitution.
	Title string `yaml:"title" json:"title"`
	// Description explains the step. Supports {{var}} substitution.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// DependsOn lists step ids that must complete before this step.
	// After merging across an inheritance chain, every reference must
	// resolve within the merged step set.
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	// Condition is an inclusion expression evaluated against resolved
	// variables at instantiation time. Empty means always included.
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`

	// Task step fields. All support {{var}} substitution.
	Assignee       string `yaml:"assignee,omitempty" json:"assignee,omitempty"`
	Classification string `yaml:"classification,omitempty" json:"classification,omitempty"`
	Priority       string `yaml:"priority,omitempty" json:"priority,omitempty"`
	Complexity     string `yaml:"complexity,omitempty" json:"complexity,omitempty"`

	// Function step fields. Runtime selects the payload: Command for
	// shell, Code for typescript and python.
	Runtime        Runtime `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Code           string  `yaml:"code,omitempty" json:"code,omitempty"`
	Command        string  `yaml:"command,omitempty" json:"command,omitempty"`
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty" json:"timeout_seconds,omitempty"`
}

// Loader looks up an already-persisted playbook by name, case-insensitively.
// A missing playbook is reported as found=false with a nil error; errors are
// reserved for I/O failures. This is the engine's only suspension point, so
// it takes a context for cancellation pass-through.
type Loader interface {
	Load(ctx context.Context, name string) (pb *Playbook, found bool, err error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, name string) (*Playbook, bool, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, name string) (*Playbook, bool, error) {
	return f(ctx, name)
}
