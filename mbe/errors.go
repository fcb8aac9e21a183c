package mbe

import (
	"errors"
	"fmt"

	"github.com/satishbabariya/expand-go/tt"
)

var (
	// ErrNoMatchingRule is returned when no rule of a macro applies.
	ErrNoMatchingRule = errors.New("no matching rule")
	// ErrUnexpectedToken is returned when the input does not fit a matcher.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrConversion is returned when a token tree cannot be parsed as the
	// requested fragment.
	ErrConversion = errors.New("conversion error")
	// ErrInvalidRepeat is returned for repetitions that could match nothing.
	ErrInvalidRepeat = errors.New("invalid repeat")
	// ErrRepeatLimit is returned when one repetition runs repeatLimit times
	// while matching or transcribing.
	ErrRepeatLimit = errors.New("repetition limit reached")
)

func repeatLimitErrorf(stage string) error {
	return fmt.Errorf("%w while %s: %d iterations", ErrRepeatLimit, stage, repeatLimit)
}

// BindingError reports a metavariable that could not be resolved while
// transcribing.
type BindingError struct {
	Message string
}

func (e *BindingError) Error() string {
	return "binding error: " + e.Message
}

func bindingErrorf(format string, args ...any) error {
	return &BindingError{Message: fmt.Sprintf(format, args...)}
}

// ParseError reports a malformed macro definition.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "macro definition: " + e.Message
}

func parseErrorf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// matchErrorf describes a matcher failure; it wraps ErrUnexpectedToken.
func matchErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedToken, fmt.Sprintf(format, args...))
}

// ExpandResult is an expansion output together with the first error met while
// producing it. Value is usable even when Err is set.
type ExpandResult struct {
	Value *tt.Subtree
	Err   error
}
