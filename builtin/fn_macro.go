package builtin

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/tt"
)

var (
	// ErrBadArguments is returned when a builtin gets arguments it cannot use.
	ErrBadArguments = errors.New("invalid macro arguments")
	// ErrCompileError is returned by compile_error!.
	ErrCompileError = errors.New("compile_error! invoked")
	// ErrEnvNotDefined is returned by env! for a missing variable.
	ErrEnvNotDefined = errors.New("environment variable not defined")
)

func badArgs(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s!: %s", ErrBadArguments, name, fmt.Sprintf(format, args...))
}

func expandLine(site CallSite, _ *tt.Subtree) mbe.ExpandResult {
	return mbe.ExpandResult{Value: literal(strconv.Itoa(site.Line))}
}

func expandColumn(site CallSite, _ *tt.Subtree) mbe.ExpandResult {
	return mbe.ExpandResult{Value: literal(strconv.Itoa(site.Column))}
}

func expandFile(site CallSite, _ *tt.Subtree) mbe.ExpandResult {
	return mbe.ExpandResult{Value: literal(strconv.Quote(site.File))}
}

func expandStringify(_ CallSite, arg *tt.Subtree) mbe.ExpandResult {
	content := &tt.Subtree{TokenTrees: arg.TokenTrees}
	return mbe.ExpandResult{Value: literal(strconv.Quote(content.String()))}
}

func expandCompileError(_ CallSite, arg *tt.Subtree) mbe.ExpandResult {
	trees := unwrapGroups(arg.TokenTrees)
	if len(trees) == 1 {
		if lit, ok := trees[0].(tt.Literal); ok {
			if msg, err := strconv.Unquote(lit.Text); err == nil {
				return mbe.ExpandResult{Value: &tt.Subtree{}, Err: fmt.Errorf("%w: %s", ErrCompileError, msg)}
			}
		}
	}
	return mbe.ExpandResult{Value: &tt.Subtree{}, Err: badArgs("compile_error", "expected a string literal")}
}

// expandFormatArgs lowers the arguments into a call building the formatter
// arguments. The format string itself is not interpreted.
func expandFormatArgs(_ CallSite, arg *tt.Subtree, newline bool) mbe.ExpandResult {
	name := "format_args"
	if newline {
		name = "format_args_nl"
	}
	args := splitArgs(arg)
	if len(args) == 0 {
		return mbe.ExpandResult{Value: &tt.Subtree{}, Err: badArgs(name, "missing format string")}
	}
	var argTrees []tt.TokenTree
	for _, a := range args[1:] {
		argTrees = append(argTrees, quote("std::fmt::ArgumentV1::new(&($0), std::fmt::Display::fmt),", a).TokenTrees...)
	}
	return mbe.ExpandResult{Value: quote("std::fmt::Arguments::new_v1(&[], &[$0])", argTrees)}
}

func expandAssert(_ CallSite, arg *tt.Subtree) mbe.ExpandResult {
	args := splitArgs(arg)
	if len(args) == 0 {
		return mbe.ExpandResult{Value: &tt.Subtree{}, Err: badArgs("assert", "missing condition")}
	}
	var panicArgs []tt.TokenTree
	for i, a := range args[1:] {
		if i > 0 {
			panicArgs = append(panicArgs, tt.Punct{Char: ',', Spacing: tt.Alone, ID: tt.Unspecified})
		}
		panicArgs = append(panicArgs, a...)
	}
	return mbe.ExpandResult{Value: quote("{ if !($0) { std::rt::begin_panic($1); } }", args[0], panicArgs)}
}
