package hirexpand

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/satishbabariya/expand-go/builtin"
	"github.com/satishbabariya/expand-go/diagnostics"
	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/query"
	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

// Options configures a Database.
type Options struct {
	// MemoCapacity bounds each memo table; zero or less means unbounded.
	MemoCapacity int
	// MaxCallChainDepth bounds walks from an expansion up to its real file.
	MaxCallChainDepth int
	// Sink receives the failures of memoized expansions. Defaults to LogSink.
	Sink DiagnosticSink
}

// MacroArg is the argument of a call converted to a token tree. Map ranges
// are relative to the argument node.
type MacroArg struct {
	Subtree *tt.Subtree
	Map     *mbe.TokenMap
}

// MacroDefinition is a resolved macro definition. Map relates the ids of a
// declarative definition to its body; it is empty for builtins.
type MacroDefinition struct {
	Expander Expander
	Map      *mbe.TokenMap
}

// MacroParse is the syntax tree of an expansion and the map from output
// token ids to ranges in that tree.
type MacroParse struct {
	Node *syntax.Node
	Map  *mbe.TokenMap
}

// AstDatabase is the query surface of the expansion engine.
type AstDatabase interface {
	AstIDMap(file HirFileID) *AstIDMap
	ParseOrExpand(file HirFileID) *syntax.Node
	InternMacro(loc MacroCallLoc) LazyMacroID
	LookupInternMacro(id LazyMacroID) (MacroCallLoc, bool)
	MacroArg(call MacroCallID) *MacroArg
	MacroDef(def MacroDefID) *MacroDefinition
	ParseMacro(call MacroCallID) (*MacroParse, *ExpandError)
	MacroExpand(call MacroCallID) (*tt.Subtree, *ExpandError)
	InternEagerExpansion(loc EagerCallLoc) EagerMacroID
	LookupInternEagerExpansion(id EagerMacroID) (EagerCallLoc, bool)
}

var _ AstDatabase = (*Database)(nil)

type sourceFile struct {
	text    string
	path    string
	hasText bool
}

type defResult struct {
	def *MacroDefinition
	err error
}

type expansion struct {
	subtree *tt.Subtree
	err     *ExpandError
}

type parsed struct {
	parse *MacroParse
	err   *ExpandError
}

// Database holds the source inputs and memoizes every derived query. Any
// input change bumps the revision, which discards all derived values;
// interned call ids stay valid.
type Database struct {
	opts Options
	rt   *query.Runtime

	mu    sync.RWMutex
	files map[FileID]sourceFile
	env   builtin.MapEnv

	lazy  *query.Interner[MacroCallLoc]
	eager *query.HashInterner[EagerCallLoc]

	parseFile   *query.Memo[FileID, *syntax.Parse]
	astIDMap    *query.Memo[HirFileID, *AstIDMap]
	macroArg    *query.Memo[MacroCallID, *MacroArg]
	macroDef    *query.Memo[MacroDefID, defResult]
	macroExpand *query.Memo[MacroCallID, expansion]
	parseMacro  *query.Memo[MacroCallID, parsed]
}

// NewDatabase creates an empty database.
func NewDatabase(opts Options) *Database {
	if opts.MaxCallChainDepth <= 0 {
		opts.MaxCallChainDepth = MaxCallChainDepth
	}
	if opts.Sink == nil {
		opts.Sink = LogSink{}
	}
	db := &Database{
		opts:  opts,
		rt:    query.NewRuntime(),
		files: make(map[FileID]sourceFile),
		env:   builtin.MapEnv{},
		lazy:  query.NewInterner[MacroCallLoc](),
		eager: query.NewHashInterner(hashEagerCallLoc, equalEagerCallLoc),
	}
	c := opts.MemoCapacity
	db.parseFile = query.NewMemo(db.rt, "parse", c, db.computeParseFile)
	db.astIDMap = query.NewMemo(db.rt, "ast_id_map", c, db.computeAstIDMap)
	db.macroArg = query.NewMemo(db.rt, "macro_arg", c, db.computeMacroArg)
	db.macroDef = query.NewMemo(db.rt, "macro_def", c, db.computeMacroDef)
	db.macroExpand = query.NewMemo(db.rt, "macro_expand", c, func(call MacroCallID) expansion {
		sub, err := db.macroExpandWithArg(call, nil)
		return expansion{subtree: sub, err: err}
	})
	db.parseMacro = query.NewMemo(db.rt, "parse_macro", c, func(call MacroCallID) parsed {
		p, err := db.parseMacroWithArg(call, nil, true)
		return parsed{parse: p, err: err}
	})
	return db
}

// SetFileText sets the text of file.
func (db *Database) SetFileText(file FileID, text string) {
	db.mu.Lock()
	f := db.files[file]
	f.text, f.hasText = text, true
	db.files[file] = f
	db.mu.Unlock()
	db.rt.Bump()
}

// SetFilePath sets the path reported for file by file!.
func (db *Database) SetFilePath(file FileID, path string) {
	db.mu.Lock()
	f := db.files[file]
	f.path = path
	db.files[file] = f
	db.mu.Unlock()
	db.rt.Bump()
}

// SetEnv replaces the environment read by env! and option_env!.
func (db *Database) SetEnv(env map[string]string) {
	db.mu.Lock()
	db.env = make(builtin.MapEnv, len(env))
	for k, v := range env {
		db.env[k] = v
	}
	db.mu.Unlock()
	db.rt.Bump()
}

// FileText returns the text of file.
func (db *Database) FileText(file FileID) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	f, ok := db.files[file]
	return f.text, ok && f.hasText
}

// FilePath returns the path of file.
func (db *Database) FilePath(file FileID) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.files[file].path
}

// Env returns a snapshot of the environment.
func (db *Database) Env() builtin.Environment {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make(builtin.MapEnv, len(db.env))
	for k, v := range db.env {
		out[k] = v
	}
	return out
}

// Revision returns the current input revision.
func (db *Database) Revision() query.Revision { return db.rt.Revision() }

// Stats returns the statistics of every memo table.
func (db *Database) Stats() []query.TableStats { return db.rt.Stats() }

// ParseFile parses a real file, or returns nil if it has no text.
func (db *Database) ParseFile(file FileID) *syntax.Parse {
	return db.parseFile.Get(file)
}

func (db *Database) computeParseFile(file FileID) *syntax.Parse {
	text, ok := db.FileText(file)
	if !ok {
		return nil
	}
	return syntax.ParseSourceFile(text)
}

// ParseOrExpand returns the tree of any virtual file. It is not memoized
// itself; both of its sources are.
func (db *Database) ParseOrExpand(file HirFileID) *syntax.Node {
	if f, ok := file.FileID(); ok {
		if p := db.ParseFile(f); p != nil {
			return p.Tree()
		}
		return nil
	}
	call, _ := file.MacroCall()
	p, _ := db.ParseMacro(call)
	if p == nil {
		return nil
	}
	return p.Node
}

// AstIDMap returns the map of file, empty if the file has no tree.
func (db *Database) AstIDMap(file HirFileID) *AstIDMap {
	return db.astIDMap.Get(file)
}

func (db *Database) computeAstIDMap(file HirFileID) *AstIDMap {
	return NewAstIDMap(db.ParseOrExpand(file))
}

// AstNode resolves id to its node, or nil.
func (db *Database) AstNode(id AstID) *syntax.Node {
	ptr, ok := db.AstIDMap(id.File).Get(id.Local)
	if !ok {
		return nil
	}
	root := db.ParseOrExpand(id.File)
	if root == nil {
		return nil
	}
	return ptr.ToNode(root)
}

// InternMacro returns the id of a lazy call location.
func (db *Database) InternMacro(loc MacroCallLoc) LazyMacroID {
	return LazyMacroID(db.lazy.Intern(loc))
}

// LookupInternMacro returns the location interned under id.
func (db *Database) LookupInternMacro(id LazyMacroID) (MacroCallLoc, bool) {
	return db.lazy.Lookup(uint32(id))
}

// InternEagerExpansion returns the id of an eager call location.
func (db *Database) InternEagerExpansion(loc EagerCallLoc) EagerMacroID {
	return EagerMacroID(db.eager.Intern(loc))
}

// LookupInternEagerExpansion returns the location interned under id.
func (db *Database) LookupInternEagerExpansion(id EagerMacroID) (EagerCallLoc, bool) {
	return db.eager.Lookup(uint32(id))
}

// AsLazyMacro interns a call of def and returns its id.
func (db *Database) AsLazyMacro(def MacroDefID, kind MacroCallKind) MacroCallID {
	return LazyCall(db.InternMacro(MacroCallLoc{Def: def, Kind: kind}))
}

func (db *Database) callNode(kind MacroCallKind) *syntax.Node {
	return db.AstNode(kind.AST)
}

// callArg is the node whose tokens form the argument of a call.
func (db *Database) callArg(kind MacroCallKind) *syntax.Node {
	node := db.callNode(kind)
	if node == nil {
		return nil
	}
	if kind.Attr {
		return node
	}
	return node.Child(syntax.TokenTree)
}

// MacroArg returns the argument of call; nil for eager calls or when the
// call has no argument.
func (db *Database) MacroArg(call MacroCallID) *MacroArg {
	return db.macroArg.Get(call)
}

func (db *Database) computeMacroArg(call MacroCallID) *MacroArg {
	lazy, ok := call.Lazy()
	if !ok {
		return nil
	}
	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return nil
	}
	arg := db.callArg(loc.Kind)
	if arg == nil {
		return nil
	}
	sub, m := mbe.SyntaxNodeToTokenTree(arg)
	return &MacroArg{Subtree: sub, Map: m}
}

// MacroDef resolves def to its expander, or returns nil.
func (db *Database) MacroDef(def MacroDefID) *MacroDefinition {
	return db.macroDef.Get(def).def
}

func (db *Database) macroDefinition(def MacroDefID) (*MacroDefinition, error) {
	r := db.macroDef.Get(def)
	return r.def, r.err
}

func (db *Database) computeMacroDef(def MacroDefID) defResult {
	switch def.Kind {
	case Declarative:
		if !def.HasAST {
			return defResult{err: errors.New("declarative macro without a definition node")}
		}
		node := db.AstNode(def.AstID)
		if node == nil {
			return defResult{err: fmt.Errorf("definition node %s not found", def)}
		}
		body := node.Child(syntax.TokenTree)
		if body == nil {
			return defResult{err: fmt.Errorf("definition %s has no body", def)}
		}
		sub, m := mbe.SyntaxNodeToTokenTree(body)
		rules, err := mbe.ParseMacroRules(sub)
		if err != nil {
			return defResult{err: fmt.Errorf("parse macro definition: %w", err)}
		}
		return defResult{def: &MacroDefinition{Expander: RulesExpander{Rules: rules}, Map: m}}
	case BuiltinFnLike:
		return defResult{def: &MacroDefinition{Expander: FnLikeExpander{Builtin: def.FnLike}, Map: &mbe.TokenMap{}}}
	case BuiltinDerive:
		return defResult{def: &MacroDefinition{Expander: DeriveExpander{Builtin: def.Derive}, Map: &mbe.TokenMap{}}}
	}
	return defResult{err: fmt.Errorf("%s expands eagerly and has no expander", def)}
}

// expander returns the definition of a lazy call.
func (db *Database) expander(call MacroCallID) (*MacroDefinition, error) {
	lazy, ok := call.Lazy()
	if !ok {
		return nil, errors.New("eager call has no expander")
	}
	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return nil, fmt.Errorf("unknown call %s", call)
	}
	return db.macroDefinition(loc.Def)
}

// MacroExpand returns the token tree a call expands to. A partial expansion
// is returned together with its error; on other failures the tree is nil.
func (db *Database) MacroExpand(call MacroCallID) (*tt.Subtree, *ExpandError) {
	r := db.macroExpand.Get(call)
	return r.subtree, r.err
}

func (db *Database) macroExpandWithArg(call MacroCallID, arg *MacroArg) (*tt.Subtree, *ExpandError) {
	lazy, ok := call.Lazy()
	if !ok {
		if arg != nil {
			return nil, db.fail(call, UnsupportedOnEagerCall, "hypothetical macro expansion not implemented for eager macro", nil)
		}
		id, _ := call.Eager()
		loc, ok := db.LookupInternEagerExpansion(id)
		if !ok {
			return nil, db.fail(call, DefinitionNotFound, "unknown eager macro call", nil)
		}
		return loc.Subtree, nil
	}

	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return nil, db.fail(call, DefinitionNotFound, "unknown macro call", nil)
	}
	if arg == nil {
		arg = db.MacroArg(call)
	}
	if arg == nil {
		return nil, db.fail(call, ArgumentsUnresolvable, "failed to convert macro arguments into a token tree", nil)
	}
	def, err := db.macroDefinition(loc.Def)
	if def == nil {
		msg := "failed to find macro definition"
		if err != nil {
			msg += ": " + err.Error()
		}
		return nil, db.fail(call, DefinitionNotFound, msg, err)
	}

	res := Expand(def.Expander, db.callSite(loc.Kind), arg.Subtree)
	out := res.Value
	if out == nil {
		out = &tt.Subtree{}
	}
	if count := out.Count(); count > TokenLimit {
		e := db.fail(call, OutputTooLarge, fmt.Sprintf("total tokens count exceed limit: count = %d", count), nil)
		e.TokenCount = count
		return nil, e
	}
	if res.Err != nil {
		return out, db.fail(call, RuleMatchFailure, res.Err.Error(), res.Err)
	}
	return out, nil
}

// ParseMacro parses the expansion of call. The error of a partial expansion
// is returned alongside its tree.
func (db *Database) ParseMacro(call MacroCallID) (*MacroParse, *ExpandError) {
	r := db.parseMacro.Get(call)
	return r.parse, r.err
}

func (db *Database) parseMacroWithArg(call MacroCallID, arg *MacroArg, report bool) (*MacroParse, *ExpandError) {
	var (
		sub *tt.Subtree
		err *ExpandError
	)
	if arg != nil {
		sub, err = db.macroExpandWithArg(call, arg)
	} else {
		sub, err = db.MacroExpand(call)
	}
	if err != nil && report {
		db.opts.Sink.Report(err)
	}
	if sub == nil {
		return nil, err
	}

	kind := db.fragmentKind(call)
	parse, m, cerr := mbe.TokenTreeToSyntaxNode(sub, kind)
	if cerr != nil {
		rerr := db.fail(call, ReparseFailure, fmt.Sprintf("expansion does not parse as %s: %v", kind, cerr), cerr)
		if report {
			db.opts.Sink.Report(rerr)
		}
		return nil, rerr
	}
	return &MacroParse{Node: parse.Tree(), Map: m}, err
}

// FragmentKind returns what the expansion of call parses as.
func (db *Database) FragmentKind(call MacroCallID) syntax.FragmentKind {
	return db.fragmentKind(call)
}

func (db *Database) fragmentKind(call MacroCallID) syntax.FragmentKind {
	if id, ok := call.Eager(); ok {
		loc, _ := db.LookupInternEagerExpansion(id)
		return loc.Fragment
	}
	lazy, _ := call.Lazy()
	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return syntax.FragmentExpr
	}
	node := db.callNode(loc.Kind)
	if node == nil {
		return syntax.FragmentExpr
	}
	return ToFragmentKind(node)
}

// CallNode returns the call node that produced file, if file is the
// expansion of a lazy call.
func (db *Database) CallNode(file HirFileID) (InFile[*syntax.Node], bool) {
	call, ok := file.MacroCall()
	if !ok {
		return InFile[*syntax.Node]{}, false
	}
	lazy, ok := call.Lazy()
	if !ok {
		return InFile[*syntax.Node]{}, false
	}
	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return InFile[*syntax.Node]{}, false
	}
	node := db.callNode(loc.Kind)
	if node == nil {
		return InFile[*syntax.Node]{}, false
	}
	return NewInFile(loc.Kind.File(), node), true
}

// OriginalFile returns the real file an expansion ultimately comes from. It
// fails if the chain is longer than the configured depth.
func (db *Database) OriginalFile(file HirFileID) (FileID, bool) {
	cur := file
	for i := 0; i <= db.opts.MaxCallChainDepth; i++ {
		if f, ok := cur.FileID(); ok {
			return f, true
		}
		call, _ := cur.MacroCall()
		if lazy, ok := call.Lazy(); ok {
			loc, ok := db.LookupInternMacro(lazy)
			if !ok {
				return 0, false
			}
			cur = loc.Kind.File()
			continue
		}
		id, _ := call.Eager()
		loc, ok := db.LookupInternEagerExpansion(id)
		if !ok {
			return 0, false
		}
		cur = loc.File
	}
	return 0, false
}

// CallChain returns the calls enclosing call, innermost first, up to the
// nearest real file. The walk stops after MaxCallChainDepth steps.
func (db *Database) CallChain(call MacroCallID) []InFile[*syntax.Node] {
	lazy, ok := call.Lazy()
	if !ok {
		return nil
	}
	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return nil
	}
	return db.parents(loc.Kind.File())
}

func (db *Database) parents(file HirFileID) []InFile[*syntax.Node] {
	var out []InFile[*syntax.Node]
	cur := file
	for len(out) < db.opts.MaxCallChainDepth {
		n, ok := db.CallNode(cur)
		if !ok {
			break
		}
		out = append(out, n)
		cur = n.File
	}
	return out
}

// upmost returns the outermost call site of node, if it lies in a real file.
func (db *Database) upmost(node InFile[*syntax.Node]) (InFile[*syntax.Node], bool) {
	if parents := db.parents(node.File); len(parents) > 0 {
		node = parents[len(parents)-1]
	}
	_, ok := node.File.FileID()
	return node, ok
}

// OriginalSpan locates node by the outermost call site it comes from, or by
// its own range when it lies in a real file.
func (db *Database) OriginalSpan(node InFile[*syntax.Node]) (diagnostics.Span, bool) {
	return db.span(node)
}

func (db *Database) span(node InFile[*syntax.Node]) (diagnostics.Span, bool) {
	site, ok := db.upmost(node)
	if !ok {
		return diagnostics.Span{}, false
	}
	f, _ := site.File.FileID()
	r := site.Value.TextRange()
	return diagnostics.NewSpan(r.Start, r.End, f), true
}

// callSite locates a call for line!, column! and file!.
func (db *Database) callSite(kind MacroCallKind) builtin.CallSite {
	node := db.callNode(kind)
	if node == nil {
		return builtin.CallSite{}
	}
	return db.siteOf(NewInFile(kind.File(), node))
}

func (db *Database) siteOf(node InFile[*syntax.Node]) builtin.CallSite {
	sp, ok := db.span(node)
	if !ok {
		return builtin.CallSite{}
	}
	text, _ := db.FileText(sp.FileID)
	start := min(sp.Start, len(text))
	return builtin.CallSite{
		File:   db.FilePath(sp.FileID),
		Line:   strings.Count(text[:start], "\n") + 1,
		Column: start - strings.LastIndex(text[:start], "\n"),
	}
}

// fail builds an error for call, with its enclosing call chain and the
// location of its outermost call site.
func (db *Database) fail(call MacroCallID, kind ErrorKind, msg string, cause error) *ExpandError {
	e := &ExpandError{Kind: kind, Call: call, Message: msg, Err: cause}
	lazy, ok := call.Lazy()
	if !ok {
		return e
	}
	loc, ok := db.LookupInternMacro(lazy)
	if !ok {
		return e
	}
	for _, p := range db.parents(loc.Kind.File()) {
		e.Chain = append(e.Chain, p.Value.Text())
	}
	if node := db.callNode(loc.Kind); node != nil {
		e.Span, e.Located = db.span(NewInFile(loc.Kind.File(), node))
	}
	return e
}
