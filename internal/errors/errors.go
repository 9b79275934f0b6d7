// Package errors provides structured error handling for the playbook engine.
// Every engine failure is one of three kinds (validation, conflict,
// not-found), each carrying a machine-readable code and structured details.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes an engine error.
type Kind int

const (
	// Validation errors are caused by malformed input: bad shapes, types,
	// lengths, patterns, or condition syntax.
	Validation Kind = iota
	// Conflict errors are structural contradictions: duplicate ids or names,
	// self-dependency, self-extension, or an inheritance cycle.
	Conflict
	// NotFound errors reference an entity that does not exist: an unresolved
	// dependsOn target or a missing parent playbook.
	NotFound
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "Validation Error"
	case Conflict:
		return "Conflict Error"
	case NotFound:
		return "Not Found Error"
	default:
		return "Error"
	}
}

// Error is a structured engine error with a kind, a stable machine-readable
// code, and optional structured details (field name, offending value,
// expected shape). Engine errors are never retried internally; they
// propagate to the caller as the terminal result of the operation.
type Error struct {
	// Kind is the error category (Validation, Conflict, NotFound).
	Kind Kind
	// Code is a stable machine-readable identifier, e.g. "inheritance_cycle".
	Code string
	// Message is a human-readable description of what went wrong.
	Message string
	// Details holds structured diagnostics keyed by field name.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithDetail attaches a structured detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Detail returns the detail stored under key, or nil.
func (e *Error) Detail(key string) any {
	return e.Details[key]
}

// Cycle returns the cycle path carried by a conflict error, or nil when the
// error carries none.
func (e *Error) Cycle() []string {
	path, _ := e.Details["cycle"].([]string)
	return path
}

// NewValidation creates a validation error.
func NewValidation(code, format string, args ...any) *Error {
	return &Error{Kind: Validation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewConflict creates a conflict error.
func NewConflict(code, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a not-found error.
func NewNotFound(code, format string, args ...any) *Error {
	return &Error{Kind: NotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// As attempts to convert an error to an engine *Error.
// Returns nil if the error is not one.
func As(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf reports the kind of an engine error and whether err is one.
func KindOf(err error) (Kind, bool) {
	if e := As(err); e != nil {
		return e.Kind, true
	}
	return 0, false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Validation
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Conflict
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == NotFound
}
