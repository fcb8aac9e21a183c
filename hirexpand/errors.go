package hirexpand

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/expand-go/diagnostics"
	"github.com/satishbabariya/expand-go/internal/debug"
)

const (
	// TokenLimit is the largest token count an expansion may produce.
	TokenLimit = 65536
	// MaxCallChainDepth bounds the walk from an expansion to its real file.
	MaxCallChainDepth = 128
)

// ErrNoCorrespondence is returned by hypothetical expansion and token
// mapping when a token has no counterpart on the other side.
var ErrNoCorrespondence = errors.New("token has no counterpart in the expansion")

// ErrorKind classifies expansion failures.
type ErrorKind uint8

const (
	DefinitionNotFound ErrorKind = iota
	ArgumentsUnresolvable
	RuleMatchFailure
	OutputTooLarge
	UnsupportedOnEagerCall
	ReparseFailure
)

var errorKindNames = [...]string{
	DefinitionNotFound:     "DefinitionNotFound",
	ArgumentsUnresolvable:  "ArgumentsUnresolvable",
	RuleMatchFailure:       "RuleMatchFailure",
	OutputTooLarge:         "OutputTooLarge",
	UnsupportedOnEagerCall: "UnsupportedOnEagerCall",
	ReparseFailure:         "ReparseFailure",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// ExpandError describes why a call produced no usable expansion. Chain holds
// the text of the enclosing calls, innermost first, up to the real file; Span
// is the outermost call site in that file when Located is set.
type ExpandError struct {
	Kind       ErrorKind
	Call       MacroCallID
	Message    string
	TokenCount int
	Chain      []string
	Span       diagnostics.Span
	Located    bool
	Err        error
}

func (e *ExpandError) Error() string {
	return e.Message
}

func (e *ExpandError) Unwrap() error {
	return e.Err
}

// Diagnostic converts e into a diagnostics entry.
func (e *ExpandError) Diagnostic() diagnostics.ExpansionError {
	var d diagnostics.ExpansionError
	switch e.Kind {
	case OutputTooLarge:
		d = diagnostics.NewOutputTooLargeError(e.TokenCount, TokenLimit, e.Span)
	default:
		d = diagnostics.NewExpansionError(e.Kind.String(), e.Message, e.Span)
	}
	return d.WithChain(e.Chain)
}

// DiagnosticSink receives the failures of memoized expansions.
type DiagnosticSink interface {
	Report(err *ExpandError)
}

// SinkFunc adapts a function to DiagnosticSink.
type SinkFunc func(err *ExpandError)

func (f SinkFunc) Report(err *ExpandError) { f(err) }

// LogSink writes failures to the debug logger as warnings.
type LogSink struct{}

func (LogSink) Report(err *ExpandError) {
	debug.Warn("fail on macro_parse",
		"reason", err.Message,
		"kind", err.Kind.String(),
		"call", err.Call.String(),
		"parents", strings.Join(err.Chain, "\n"))
}

// DiagnosticsSink collects located failures into d. Failures without a
// location are dropped.
func DiagnosticsSink(d *diagnostics.Diagnostics) DiagnosticSink {
	return SinkFunc(func(err *ExpandError) {
		if err.Located {
			d.PushError(err.Diagnostic())
		}
	})
}

// MultiSink reports to every sink in order.
func MultiSink(sinks ...DiagnosticSink) DiagnosticSink {
	return SinkFunc(func(err *ExpandError) {
		for _, s := range sinks {
			s.Report(err)
		}
	})
}
