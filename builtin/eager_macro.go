package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satishbabariya/expand-go/tt"
)

func expandConcat(arg *tt.Subtree) (*tt.Subtree, error) {
	var b strings.Builder
	for i, a := range splitArgs(arg) {
		trees := unwrapGroups(a)
		if len(trees) != 1 {
			return nil, badArgs("concat", "argument %d is not a literal", i+1)
		}
		lit, ok := trees[0].(tt.Literal)
		if !ok {
			return nil, badArgs("concat", "argument %d is not a literal", i+1)
		}
		b.WriteString(literalValue(lit.Text))
	}
	return literal(strconv.Quote(b.String())), nil
}

// literalValue is the text a literal contributes to concat!.
func literalValue(text string) string {
	if strings.HasPrefix(text, `"`) || strings.HasPrefix(text, "'") {
		if v, err := strconv.Unquote(text); err == nil {
			return v
		}
	}
	return text
}

func envKey(name string, arg *tt.Subtree) (string, error) {
	args := splitArgs(arg)
	if len(args) == 0 {
		return "", badArgs(name, "missing variable name")
	}
	trees := unwrapGroups(args[0])
	if len(trees) == 1 {
		if lit, ok := trees[0].(tt.Literal); ok {
			if key, err := strconv.Unquote(lit.Text); err == nil {
				return key, nil
			}
		}
	}
	return "", badArgs(name, "expected a string literal")
}

func expandEnv(env Environment, arg *tt.Subtree) (*tt.Subtree, error) {
	key, err := envKey("env", arg)
	if err != nil {
		return nil, err
	}
	if env != nil {
		if v, ok := env.Lookup(key); ok {
			return literal(strconv.Quote(v)), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEnvNotDefined, key)
}

func expandOptionEnv(env Environment, arg *tt.Subtree) (*tt.Subtree, error) {
	key, err := envKey("option_env", arg)
	if err != nil {
		return nil, err
	}
	if env != nil {
		if v, ok := env.Lookup(key); ok {
			return quote("std::option::Option::Some($0)", literal(strconv.Quote(v)).TokenTrees), nil
		}
	}
	return quote("std::option::Option::None"), nil
}
