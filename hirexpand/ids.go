// Package hirexpand expands macro calls into syntax trees. Every tree the
// engine can parse is addressed by a HirFileID: either a real source file or
// the expansion of one macro call, so expansions of expansions are queried
// the same way as ordinary files.
package hirexpand

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/satishbabariya/expand-go/builtin"
	"github.com/satishbabariya/expand-go/diagnostics"
	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

// FileID identifies a real source file.
type FileID = diagnostics.FileID

// LazyMacroID is the interned id of a MacroCallLoc.
type LazyMacroID uint32

// EagerMacroID is the interned id of an EagerCallLoc.
type EagerMacroID uint32

// MacroCallID identifies one macro invocation, lazy or eager.
type MacroCallID struct {
	eager bool
	id    uint32
}

// LazyCall wraps a lazy macro id.
func LazyCall(id LazyMacroID) MacroCallID { return MacroCallID{id: uint32(id)} }

// EagerCall wraps an eager macro id.
func EagerCall(id EagerMacroID) MacroCallID { return MacroCallID{eager: true, id: uint32(id)} }

// Lazy returns the lazy id, if c is lazy.
func (c MacroCallID) Lazy() (LazyMacroID, bool) {
	return LazyMacroID(c.id), !c.eager
}

// Eager returns the eager id, if c is eager.
func (c MacroCallID) Eager() (EagerMacroID, bool) {
	return EagerMacroID(c.id), c.eager
}

// File returns the virtual file holding the expansion of c.
func (c MacroCallID) File() HirFileID { return MacroFile(c) }

func (c MacroCallID) String() string {
	if c.eager {
		return fmt.Sprintf("eager#%d", c.id)
	}
	return fmt.Sprintf("lazy#%d", c.id)
}

// HirFileID is either a real file or the expansion of a macro call.
type HirFileID struct {
	macro bool
	file  FileID
	call  MacroCallID
}

// RealFile addresses a source file.
func RealFile(file FileID) HirFileID { return HirFileID{file: file} }

// MacroFile addresses the expansion of call.
func MacroFile(call MacroCallID) HirFileID { return HirFileID{macro: true, call: call} }

// IsMacro reports whether h is a macro expansion.
func (h HirFileID) IsMacro() bool { return h.macro }

// FileID returns the real file, if h is one.
func (h HirFileID) FileID() (FileID, bool) { return h.file, !h.macro }

// MacroCall returns the call whose expansion h is, if h is a macro file.
func (h HirFileID) MacroCall() (MacroCallID, bool) { return h.call, h.macro }

func (h HirFileID) String() string {
	if h.macro {
		return "macro(" + h.call.String() + ")"
	}
	return fmt.Sprintf("file(%d)", h.file)
}

// FileAstID is the index of a node in its file's AstIDMap.
type FileAstID uint32

// AstID addresses a node in any virtual file.
type AstID struct {
	File  HirFileID
	Local FileAstID
}

// InFile pairs a value with the virtual file it belongs to.
type InFile[T any] struct {
	File  HirFileID
	Value T
}

// NewInFile creates an InFile.
func NewInFile[T any](file HirFileID, value T) InFile[T] {
	return InFile[T]{File: file, Value: value}
}

// MacroDefKind tells how a macro definition expands.
type MacroDefKind uint8

const (
	// Declarative macros are defined with macro_rules!.
	Declarative MacroDefKind = iota
	BuiltinFnLike
	BuiltinDerive
	BuiltinEager
)

func (k MacroDefKind) String() string {
	switch k {
	case Declarative:
		return "declarative"
	case BuiltinFnLike:
		return "builtin"
	case BuiltinDerive:
		return "derive"
	case BuiltinEager:
		return "eager"
	}
	return "unknown"
}

// MacroDefID identifies a macro definition. Declarative definitions point at
// their macro_rules! node; builtins carry their expander identity.
type MacroDefID struct {
	Kind   MacroDefKind
	AstID  AstID
	HasAST bool
	FnLike builtin.FnLikeExpander
	Derive builtin.DeriveExpander
	Eager  builtin.EagerExpander
}

// DeclarativeDef returns the id of the macro_rules! definition at ast.
func DeclarativeDef(ast AstID) MacroDefID {
	return MacroDefID{Kind: Declarative, AstID: ast, HasAST: true}
}

// BuiltinDef returns the id of a resolved builtin. It reports false for
// KindNone.
func BuiltinDef(b builtin.Builtin) (MacroDefID, bool) {
	switch b.Kind {
	case builtin.KindFnLike:
		return MacroDefID{Kind: BuiltinFnLike, FnLike: b.FnLike}, true
	case builtin.KindDerive:
		return MacroDefID{Kind: BuiltinDerive, Derive: b.Derive}, true
	case builtin.KindEager:
		return MacroDefID{Kind: BuiltinEager, Eager: b.Eager}, true
	}
	return MacroDefID{}, false
}

// DeriveDef returns the id of a builtin derive.
func DeriveDef(d builtin.DeriveExpander) MacroDefID {
	return MacroDefID{Kind: BuiltinDerive, Derive: d}
}

func (d MacroDefID) String() string {
	switch d.Kind {
	case BuiltinFnLike:
		return d.FnLike.String()
	case BuiltinDerive:
		return d.Derive.String()
	case BuiltinEager:
		return d.Eager.String()
	}
	return fmt.Sprintf("macro_rules@%s#%d", d.AstID.File, d.AstID.Local)
}

// MacroCallKind locates the node a call expands from: a `path!(...)` call
// node, or the item carrying a derive attribute.
type MacroCallKind struct {
	Attr bool
	AST  AstID
	Name string
}

// FnLikeCall is a call written as `path!(...)`.
func FnLikeCall(ast AstID) MacroCallKind { return MacroCallKind{AST: ast} }

// AttrCall is an attribute-driven call on the item at ast.
func AttrCall(ast AstID, name string) MacroCallKind {
	return MacroCallKind{Attr: true, AST: ast, Name: name}
}

// File returns the virtual file the call is written in.
func (k MacroCallKind) File() HirFileID { return k.AST.File }

// MacroCallLoc is the interned key of a lazy call.
type MacroCallLoc struct {
	Def  MacroDefID
	Kind MacroCallKind
}

// EagerCallLoc is the interned key of an eager call: its output is computed
// once, when the call is discovered.
type EagerCallLoc struct {
	Def      MacroDefID
	Fragment syntax.FragmentKind
	Subtree  *tt.Subtree
	File     HirFileID
}

func hashEagerCallLoc(loc EagerCallLoc) uint64 {
	var buf [8]byte
	h := xxh3.New()
	_, _ = h.WriteString(loc.Def.String())
	_, _ = h.WriteString(loc.File.String())
	_, _ = h.Write([]byte{byte(loc.Fragment)})
	if loc.Subtree != nil {
		binary.LittleEndian.PutUint64(buf[:], loc.Subtree.Fingerprint())
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func equalEagerCallLoc(a, b EagerCallLoc) bool {
	if a.Def != b.Def || a.Fragment != b.Fragment || a.File != b.File {
		return false
	}
	if a.Subtree == nil || b.Subtree == nil {
		return a.Subtree == b.Subtree
	}
	return tt.Equal(a.Subtree, b.Subtree)
}
