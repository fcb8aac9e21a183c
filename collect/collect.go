// Package collect discovers the macro calls of a file, resolves them by name
// and expands them, following the calls found in expansions.
package collect

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/satishbabariya/expand-go/builtin"
	"github.com/satishbabariya/expand-go/hirexpand"
	"github.com/satishbabariya/expand-go/internal/debug"
	"github.com/satishbabariya/expand-go/syntax"
)

// DefaultMaxDepth bounds how many expansion levels are followed.
const DefaultMaxDepth = 16

// SiteKind tells how a call site was written.
type SiteKind uint8

const (
	FnLike SiteKind = iota
	Derive
	Eager
)

func (k SiteKind) String() string {
	switch k {
	case Derive:
		return "derive"
	case Eager:
		return "eager"
	}
	return "fn-like"
}

// Site is a resolved call site.
type Site struct {
	ID    hirexpand.MacroCallID
	Name  string
	Kind  SiteKind
	Node  hirexpand.InFile[*syntax.Node]
	Depth int

	def   hirexpand.MacroDefID
	scope *scope
}

// Unresolved is a call whose name matched no definition.
type Unresolved struct {
	Name  string
	Node  hirexpand.InFile[*syntax.Node]
	Depth int
}

// Outcome is the expansion of one site. Expansion is set when the output
// parsed, even if Err reports a partial expansion.
type Outcome struct {
	Site
	Fragment  syntax.FragmentKind
	Expansion *syntax.Node
	Err       *hirexpand.ExpandError
}

// OK reports whether the site expanded without error.
func (o Outcome) OK() bool { return o.Err == nil && o.Expansion != nil }

// Result is everything collected from one file, in discovery order.
// Truncated holds the sites found beyond the depth budget; they are not
// expanded.
type Result struct {
	Outcomes   []Outcome
	Unresolved []Unresolved
	Truncated  []Site
}

// Counts tallies outcomes by failure kind. Clean expansions count as "ok",
// unresolved names as "unresolved".
func (r *Result) Counts() map[string]int {
	out := map[string]int{}
	for _, o := range r.Outcomes {
		switch {
		case o.Err != nil:
			out[o.Err.Kind.String()]++
		case o.Expansion != nil:
			out["ok"]++
		}
	}
	if len(r.Unresolved) > 0 {
		out["unresolved"] = len(r.Unresolved)
	}
	return out
}

// Options configures ExpandAll.
type Options struct {
	// MaxDepth bounds the expansion levels followed; DefaultMaxDepth if zero.
	MaxDepth int
	// Concurrency bounds parallel expansions; GOMAXPROCS if zero.
	Concurrency int
}

// ExpandAll collects and expands every call of file. Calls found on one
// level are expanded concurrently; the calls inside their expansions form
// the next level.
func ExpandAll(ctx context.Context, db *hirexpand.Database, file hirexpand.FileID, opts Options) (*Result, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}

	res := &Result{}
	w := &walker{db: db, result: res}
	level := w.walk(hirexpand.RealFile(file), nil, 0)

	for depth := 0; len(level) > 0; depth++ {
		outcomes, err := expandLevel(ctx, db, level, opts.Concurrency)
		if err != nil {
			return nil, err
		}
		res.Outcomes = append(res.Outcomes, outcomes...)
		debug.Debug("expanded call sites", "depth", depth, "count", len(outcomes))

		var next []Site
		for _, o := range outcomes {
			if o.Expansion == nil || o.Kind == Eager {
				continue
			}
			next = append(next, w.walk(o.ID.File(), o.scope, depth+1)...)
		}
		if depth+1 >= opts.MaxDepth {
			res.Truncated = next
			break
		}
		level = next
	}
	return res, nil
}

func expandLevel(ctx context.Context, db *hirexpand.Database, sites []Site, limit int) ([]Outcome, error) {
	out := make([]Outcome, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = expandSite(db, site)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("expand call sites: %w", err)
	}
	return out, nil
}

func expandSite(db *hirexpand.Database, site Site) Outcome {
	o := Outcome{Site: site}
	if site.Kind == Eager {
		o.Fragment = syntax.FragmentExpr
		id, err := db.ExpandEagerMacro(site.Node, site.def, site.scope.resolver())
		if err != nil {
			var xerr *hirexpand.ExpandError
			if !errors.As(err, &xerr) {
				xerr = &hirexpand.ExpandError{Kind: hirexpand.ArgumentsUnresolvable, Message: err.Error(), Err: err}
			}
			o.Err = xerr
			return o
		}
		o.ID = id
	}
	o.Fragment = db.FragmentKind(o.ID)
	parse, err := db.ParseMacro(o.ID)
	if parse != nil {
		o.Expansion = parse.Node
	}
	o.Err = err
	return o
}

type walker struct {
	db     *hirexpand.Database
	result *Result
}

// walk visits the tree of file in textual order. Definitions extend the
// scope seen by later calls.
func (w *walker) walk(file hirexpand.HirFileID, sc *scope, depth int) []Site {
	root := w.db.ParseOrExpand(file)
	if root == nil {
		return nil
	}
	ids := w.db.AstIDMap(file)
	var sites []Site
	for _, n := range root.Descendants() {
		switch n.Kind() {
		case syntax.MacroCall:
			name := callName(n)
			if name == "" {
				continue
			}
			if name == "macro_rules" {
				if def := n.Child(syntax.Name); def != nil {
					if id, ok := ids.AstID(n); ok {
						sc = sc.define(def.Text(), hirexpand.DeclarativeDef(hirexpand.AstID{File: file, Local: id}))
					}
				}
				continue
			}
			site, ok := w.fnLike(file, ids, n, name, sc, depth)
			if !ok {
				w.result.Unresolved = append(w.result.Unresolved, Unresolved{Name: name, Node: hirexpand.NewInFile(file, n), Depth: depth})
				continue
			}
			sites = append(sites, site)
		case syntax.StructDef, syntax.EnumDef:
			sites = append(sites, w.derives(file, ids, n, sc, depth)...)
		}
	}
	return sites
}

func (w *walker) fnLike(file hirexpand.HirFileID, ids *hirexpand.AstIDMap, n *syntax.Node, name string, sc *scope, depth int) (Site, bool) {
	def, ok := sc.lookup(name)
	if !ok {
		return Site{}, false
	}
	site := Site{Name: name, Node: hirexpand.NewInFile(file, n), Depth: depth, def: def, scope: sc}
	if def.Kind == hirexpand.BuiltinEager {
		site.Kind = Eager
		return site, true
	}
	if def.Kind == hirexpand.BuiltinDerive {
		return Site{}, false
	}
	local, ok := ids.AstID(n)
	if !ok {
		return Site{}, false
	}
	site.ID = w.db.AsLazyMacro(def, hirexpand.FnLikeCall(hirexpand.AstID{File: file, Local: local}))
	return site, true
}

func (w *walker) derives(file hirexpand.HirFileID, ids *hirexpand.AstIDMap, item *syntax.Node, sc *scope, depth int) []Site {
	local, ok := ids.AstID(item)
	if !ok {
		return nil
	}
	var sites []Site
	for _, attr := range item.Children() {
		if attr.Kind() != syntax.Attr {
			continue
		}
		path := attr.Child(syntax.Path)
		if path == nil || strings.TrimSpace(path.Text()) != "derive" {
			continue
		}
		for _, name := range deriveNames(attr.Child(syntax.TokenTree)) {
			d, ok := builtin.FindDerive(name)
			if !ok {
				w.result.Unresolved = append(w.result.Unresolved, Unresolved{Name: name, Node: hirexpand.NewInFile(file, attr), Depth: depth})
				continue
			}
			def := hirexpand.DeriveDef(d)
			sites = append(sites, Site{
				ID:    w.db.AsLazyMacro(def, hirexpand.AttrCall(hirexpand.AstID{File: file, Local: local}, name)),
				Name:  name,
				Kind:  Derive,
				Node:  hirexpand.NewInFile(file, item),
				Depth: depth,
				def:   def,
				scope: sc,
			})
		}
	}
	return sites
}

// callName is the last segment of the path of a call.
func callName(n *syntax.Node) string {
	path := n.Child(syntax.Path)
	if path == nil {
		return ""
	}
	text := path.Text()
	if i := strings.LastIndex(text, "::"); i >= 0 {
		text = text[i+2:]
	}
	return strings.TrimSpace(text)
}

// deriveNames lists the last path segment of each entry of `(A, b::C)`.
func deriveNames(tree *syntax.Node) []string {
	if tree == nil {
		return nil
	}
	var (
		names []string
		last  string
	)
	for _, tok := range tree.DescendantTokens() {
		switch tok.Kind() {
		case syntax.Ident:
			last = tok.Text()
		case syntax.Comma, syntax.RParen:
			if last != "" {
				names = append(names, last)
			}
			last = ""
		}
	}
	return names
}
