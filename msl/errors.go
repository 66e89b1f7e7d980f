package msl

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a source error for programmatic handling.
type ErrorKind uint8

const (
	// ErrSyntax covers unbalanced brackets, disallowed characters and
	// malformed expressions.
	ErrSyntax ErrorKind = iota

	// ErrValidation covers missing required sub-decorators and malformed
	// variable declarations.
	ErrValidation

	// ErrDimensionMismatch is raised when a size value count does not
	// match the dimensionality the type requires.
	ErrDimensionMismatch

	// ErrUnknownWildcard is raised when an expression references a
	// wildcard name no caller-supplied wildcard carries.
	ErrUnknownWildcard

	// ErrEvaluation is raised when an expression evaluates to a
	// non-finite or otherwise unusable value.
	ErrEvaluation

	// ErrUnresolvableCategory is raised when a reference declaration's
	// WGSL form matches no known resource category.
	ErrUnresolvableCategory

	// ErrDecoratorOrder is raised when @binding textually precedes
	// @group on one declaration line.
	ErrDecoratorOrder

	// ErrShaderKindConflict is raised when both @compute and @fragment
	// entry decorators are present. Always fatal.
	ErrShaderKindConflict

	// ErrBindingCollision reports a (group, binding) pair claimed more
	// than once after allocation. Diagnostic only, never aborts.
	ErrBindingCollision
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrValidation:
		return "validation error"
	case ErrDimensionMismatch:
		return "dimension mismatch"
	case ErrUnknownWildcard:
		return "unknown wildcard"
	case ErrEvaluation:
		return "evaluation error"
	case ErrUnresolvableCategory:
		return "unresolvable category"
	case ErrDecoratorOrder:
		return "decorator order error"
	case ErrShaderKindConflict:
		return "shader kind conflict"
	case ErrBindingCollision:
		return "binding collision"
	default:
		return "error"
	}
}

// SourceError represents an error with source location information.
type SourceError struct {
	Kind    ErrorKind
	Message string
	Span    Span
	Source  string // Original source code (for context display)
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Span.Start.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s: %s",
		e.Span.Start.Line, e.Span.Start.Column, e.Kind, e.Message)
}

// FormatWithContext returns the error message with source context.
// Shows the problematic line with a caret pointing to the error location.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Span.Start.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	lineNum := e.Span.Start.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Span.Start.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s: %s\n", e.Kind, e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}

// NewSourceError creates a new SourceError.
func NewSourceError(kind ErrorKind, message string, span Span, source string) *SourceError {
	return &SourceError{
		Kind:    kind,
		Message: message,
		Span:    span,
		Source:  source,
	}
}

// NewSourceErrorf creates a new SourceError with formatted message.
func NewSourceErrorf(kind ErrorKind, span Span, source string, format string, args ...any) *SourceError {
	return &SourceError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		Source:  source,
	}
}

// SourceErrors represents a list of source errors.
type SourceErrors []*SourceError

// Error implements the error interface.
func (el SourceErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// FormatAll returns all errors formatted with context.
func (el SourceErrors) FormatAll() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.FormatWithContext())
	}
	return sb.String()
}

// Add adds an error to the list.
func (el *SourceErrors) Add(err *SourceError) {
	*el = append(*el, err)
}

// Len returns the number of errors.
func (el SourceErrors) Len() int {
	return len(el)
}

// HasErrors returns true if there are any errors.
func (el SourceErrors) HasErrors() bool {
	return len(el) > 0
}
