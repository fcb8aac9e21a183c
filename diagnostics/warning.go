package diagnostics

import (
	"fmt"
	"io"
)

// ExpansionWarning represents a non-fatal problem noticed while expanding.
type ExpansionWarning struct {
	message string
	span    Span
}

// NewExpansionWarning creates a new ExpansionWarning with the given message and span.
func NewExpansionWarning(message string, span Span) ExpansionWarning {
	return ExpansionWarning{
		message: message,
		span:    span,
	}
}

// NewPartialExpansionWarning creates a warning for an expansion that
// produced output despite a matching error.
func NewPartialExpansionWarning(macroName, cause string, span Span) ExpansionWarning {
	return NewExpansionWarning(fmt.Sprintf("Macro `%s!` expanded with errors: %s", macroName, cause), span)
}

// NewRecursionLimitWarning creates a warning for nested expansions that were
// not followed because the depth budget ran out.
func NewRecursionLimitWarning(depth int, span Span) ExpansionWarning {
	return NewExpansionWarning(fmt.Sprintf("Nested macro expansion stopped at depth %d.", depth), span)
}

// Message returns the warning message.
func (w ExpansionWarning) Message() string {
	return w.message
}

// Span returns the span of the warning.
func (w ExpansionWarning) Span() Span {
	return w.span
}

// PrettyPrint writes a pretty-printed representation of the warning to the writer.
func (w ExpansionWarning) PrettyPrint(writer io.Writer, fileName, text string) error {
	return PrettyPrint(writer, fileName, text, w.span, w.message, WarningColorer{})
}
