// Package errors defines the fatal, eager error shape every pass of the
// compiler aborts with: a typed kind, the offending module and
// identifier where applicable, and an optional wrapped cause.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is one of the compiler's fatal error kinds.
type Kind string

const (
	ParseLink        Kind = "ParseLink"
	Redefinition     Kind = "Redefinition"
	Undefined        Kind = "Undefined"
	ArityMismatch    Kind = "ArityMismatch"
	NarrowOverflow   Kind = "NarrowOverflow"
	TypeConflict     Kind = "TypeConflict"
	PlacementConflict Kind = "PlacementConflict"
	InputAmbiguity   Kind = "InputAmbiguity"
	ShortCycle       Kind = "ShortCycle"
	EmitInvalid      Kind = "EmitInvalid"
)

// SourceLocation names where in the source the error originated.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// CompileError is the single error type every compiler pass returns.
type CompileError struct {
	Kind     Kind
	Module   string
	Ident    string
	Message  string
	Location SourceLocation
	cause    error
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s", e.Kind)
	if e.Module != "" {
		fmt.Fprintf(&sb, " in module %q", e.Module)
	}
	if e.Ident != "" {
		fmt.Fprintf(&sb, " (%s)", e.Ident)
	}
	fmt.Fprintf(&sb, ": %s", e.Message)
	if e.Location.File != "" {
		fmt.Fprintf(&sb, "\n  at %s:%d:%d", e.Location.File, e.Location.Line, e.Location.Column)
	}
	if e.cause != nil {
		fmt.Fprintf(&sb, "\n  caused by: %v", e.cause)
	}
	return sb.String()
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *CompileError) Unwrap() error { return e.cause }

// New builds a CompileError with no source location or cause.
func New(kind Kind, module, ident, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Kind:    kind,
		Module:  module,
		Ident:   ident,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap builds a CompileError around a lower-level Go error (file I/O,
// JSON/zlib failures), annotating it with compiler context via
// github.com/pkg/errors so the original cause's stack is preserved.
func Wrap(cause error, kind Kind, module, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Kind:    kind,
		Module:  module,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.Wrap(cause, string(kind)),
	}
}

// WithLocation attaches a source location and returns the same error for chaining.
func (e *CompileError) WithLocation(file string, line, column int) *CompileError {
	e.Location = SourceLocation{File: file, Line: line, Column: column}
	return e
}
