// Package builtin implements the macros provided by the language itself:
// function-like macros, derives, and eagerly expanded macros.
//
// Builtin expanders never renumber tokens. Tokens of the argument keep their
// ids in the output and tokens produced by the expander have unspecified ids.
package builtin

import (
	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/tt"
)

// CallSite locates a call in the real file it originates from. Line and
// Column are one-based.
type CallSite struct {
	File   string
	Line   int
	Column int
}

// FnLikeExpander is a builtin function-like macro.
type FnLikeExpander uint8

const (
	Line FnLikeExpander = iota
	Column
	File
	Stringify
	CompileError
	FormatArgs
	FormatArgsNl
	Assert
)

var fnLikeNames = [...]string{
	Line:         "line",
	Column:       "column",
	File:         "file",
	Stringify:    "stringify",
	CompileError: "compile_error",
	FormatArgs:   "format_args",
	FormatArgsNl: "format_args_nl",
	Assert:       "assert",
}

func (e FnLikeExpander) String() string { return fnLikeNames[e] }

// Expand runs the macro on its argument.
func (e FnLikeExpander) Expand(site CallSite, arg *tt.Subtree) mbe.ExpandResult {
	switch e {
	case Line:
		return expandLine(site, arg)
	case Column:
		return expandColumn(site, arg)
	case File:
		return expandFile(site, arg)
	case Stringify:
		return expandStringify(site, arg)
	case CompileError:
		return expandCompileError(site, arg)
	case FormatArgs:
		return expandFormatArgs(site, arg, false)
	case FormatArgsNl:
		return expandFormatArgs(site, arg, true)
	case Assert:
		return expandAssert(site, arg)
	}
	return mbe.ExpandResult{Value: &tt.Subtree{}, Err: mbe.ErrNoMatchingRule}
}

// MapIDDown is the identity.
func (FnLikeExpander) MapIDDown(id tt.TokenID) tt.TokenID { return id }

// MapIDUp is the identity; every id comes from the call.
func (FnLikeExpander) MapIDUp(id tt.TokenID) (tt.TokenID, mbe.Origin) { return id, mbe.OriginCall }

// DeriveExpander is a builtin derive.
type DeriveExpander uint8

const (
	DeriveCopy DeriveExpander = iota
	DeriveClone
	DeriveDefault
	DeriveDebug
	DeriveHash
	DeriveEq
	DerivePartialEq
	DeriveOrd
	DerivePartialOrd
)

var deriveNames = [...]string{
	DeriveCopy:       "Copy",
	DeriveClone:      "Clone",
	DeriveDefault:    "Default",
	DeriveDebug:      "Debug",
	DeriveHash:       "Hash",
	DeriveEq:         "Eq",
	DerivePartialEq:  "PartialEq",
	DeriveOrd:        "Ord",
	DerivePartialOrd: "PartialOrd",
}

var deriveTraits = [...]string{
	DeriveCopy:       "core::marker::Copy",
	DeriveClone:      "core::clone::Clone",
	DeriveDefault:    "core::default::Default",
	DeriveDebug:      "core::fmt::Debug",
	DeriveHash:       "core::hash::Hash",
	DeriveEq:         "core::cmp::Eq",
	DerivePartialEq:  "core::cmp::PartialEq",
	DeriveOrd:        "core::cmp::Ord",
	DerivePartialOrd: "core::cmp::PartialOrd",
}

func (e DeriveExpander) String() string { return deriveNames[e] }

// TraitPath is the path of the implemented trait.
func (e DeriveExpander) TraitPath() string { return deriveTraits[e] }

// Expand derives the trait for the item in arg.
func (e DeriveExpander) Expand(site CallSite, arg *tt.Subtree) mbe.ExpandResult {
	return expandDerive(e.TraitPath(), arg)
}

// MapIDDown is the identity.
func (DeriveExpander) MapIDDown(id tt.TokenID) tt.TokenID { return id }

// MapIDUp is the identity; every id comes from the call.
func (DeriveExpander) MapIDUp(id tt.TokenID) (tt.TokenID, mbe.Origin) { return id, mbe.OriginCall }

// EagerExpander is a builtin macro expanded when its call is discovered.
// Its argument must already be fully expanded.
type EagerExpander uint8

const (
	Concat EagerExpander = iota
	Env
	OptionEnv
)

var eagerNames = [...]string{
	Concat:    "concat",
	Env:       "env",
	OptionEnv: "option_env",
}

func (e EagerExpander) String() string { return eagerNames[e] }

// Environment supplies the values read by env! and option_env!.
type Environment interface {
	Lookup(key string) (string, bool)
}

// MapEnv is an Environment backed by a map.
type MapEnv map[string]string

func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Expand runs the macro. The output is always an expression.
func (e EagerExpander) Expand(env Environment, arg *tt.Subtree) (*tt.Subtree, error) {
	switch e {
	case Concat:
		return expandConcat(arg)
	case Env:
		return expandEnv(env, arg)
	case OptionEnv:
		return expandOptionEnv(env, arg)
	}
	return nil, mbe.ErrNoMatchingRule
}

// Kind tells which table a builtin name resolved to.
type Kind uint8

const (
	KindNone Kind = iota
	KindFnLike
	KindDerive
	KindEager
)

// Builtin is a resolved builtin macro name.
type Builtin struct {
	Kind   Kind
	FnLike FnLikeExpander
	Derive DeriveExpander
	Eager  EagerExpander
}

var byName = func() map[string]Builtin {
	m := make(map[string]Builtin)
	for i, name := range fnLikeNames {
		m[name] = Builtin{Kind: KindFnLike, FnLike: FnLikeExpander(i)}
	}
	for i, name := range eagerNames {
		m[name] = Builtin{Kind: KindEager, Eager: EagerExpander(i)}
	}
	return m
}()

var derivesByName = func() map[string]DeriveExpander {
	m := make(map[string]DeriveExpander)
	for i, name := range deriveNames {
		m[name] = DeriveExpander(i)
	}
	return m
}()

// Find resolves the name of a builtin function-like or eager macro.
func Find(name string) (Builtin, bool) {
	b, ok := byName[name]
	return b, ok
}

// FindDerive resolves the name of a builtin derive.
func FindDerive(name string) (DeriveExpander, bool) {
	d, ok := derivesByName[name]
	return d, ok
}
