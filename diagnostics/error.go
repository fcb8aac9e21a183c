package diagnostics

import (
	"fmt"
	"io"
	"strings"
)

// ExpansionError is a failed macro call, located at the call site in a real
// source file.
type ExpansionError struct {
	span    Span
	reason  string
	message string
	chain   []string
}

// NewExpansionError creates an error with the given failure reason, message
// and span.
func NewExpansionError(reason, message string, span Span) ExpansionError {
	return ExpansionError{
		span:    span,
		reason:  reason,
		message: message,
	}
}

// NewDefinitionNotFoundError creates an error for a call whose macro
// definition could not be resolved.
func NewDefinitionNotFoundError(macroName string, span Span) ExpansionError {
	return NewExpansionError("DefinitionNotFound", fmt.Sprintf("Macro definition for `%s!` could not be resolved.", macroName), span)
}

// NewOutputTooLargeError creates an error for an expansion that produced
// too many tokens.
func NewOutputTooLargeError(count, limit int, span Span) ExpansionError {
	return NewExpansionError("OutputTooLarge", fmt.Sprintf("Macro expansion produced %d tokens, exceeding the limit of %d.", count, limit), span)
}

// NewReparseFailureError creates an error for an expansion that could not be
// parsed as the expected fragment.
func NewReparseFailureError(fragment string, span Span) ExpansionError {
	return NewExpansionError("ReparseFailure", fmt.Sprintf("Macro expansion does not parse as %s.", fragment), span)
}

// WithChain returns a copy of the error carrying the enclosing call chain,
// innermost call first.
func (e ExpansionError) WithChain(chain []string) ExpansionError {
	e.chain = append([]string(nil), chain...)
	return e
}

// Span returns the span of the error.
func (e ExpansionError) Span() Span {
	return e.span
}

// Reason returns the failure classification.
func (e ExpansionError) Reason() string {
	return e.reason
}

// Message returns the error message.
func (e ExpansionError) Message() string {
	return e.message
}

// Chain returns the enclosing call chain.
func (e ExpansionError) Chain() []string {
	return e.chain
}

// Error implements the error interface.
func (e ExpansionError) Error() string {
	if len(e.chain) == 0 {
		return e.message
	}
	return e.message + " (in " + strings.Join(e.chain, " <- ") + ")"
}

// PrettyPrint writes a pretty-printed representation of the error to the writer.
func (e ExpansionError) PrettyPrint(w io.Writer, fileName, text string) error {
	return PrettyPrint(w, fileName, text, e.span, e.Error(), ErrorColorer{})
}
