package builtin

import (
	"strconv"

	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/tt"
)

// quote builds a token tree from template text. `$0`, `$1`, ... are replaced
// by the corresponding spliced token trees, which keep their ids. Template
// tokens get unspecified ids.
func quote(template string, splices ...[]tt.TokenTree) *tt.Subtree {
	sub, _ := mbe.ParseToTokenTree(template)
	sub = sub.MapIDs(func(tt.TokenID) tt.TokenID { return tt.Unspecified })
	if sub.Delimiter != nil {
		sub = &tt.Subtree{TokenTrees: []tt.TokenTree{sub}}
	}
	return splice(sub, splices)
}

func splice(sub *tt.Subtree, splices [][]tt.TokenTree) *tt.Subtree {
	out := &tt.Subtree{Delimiter: sub.Delimiter}
	trees := sub.TokenTrees
	for i := 0; i < len(trees); i++ {
		switch tree := trees[i].(type) {
		case *tt.Subtree:
			out.TokenTrees = append(out.TokenTrees, splice(tree, splices))
			continue
		case tt.Punct:
			if tree.Char == '$' && i+1 < len(trees) {
				if lit, ok := trees[i+1].(tt.Literal); ok {
					if n, err := strconv.Atoi(lit.Text); err == nil && n < len(splices) {
						out.TokenTrees = append(out.TokenTrees, splices[n]...)
						i++
						continue
					}
				}
			}
			if tree.Spacing == tt.Joint && i+1 < len(trees) {
				// Keep template punctuation from gluing onto spliced tokens.
				if next, ok := trees[i+1].(tt.Punct); ok && next.Char == '$' {
					tree.Spacing = tt.Alone
				}
			}
			out.TokenTrees = append(out.TokenTrees, tree)
			continue
		}
		out.TokenTrees = append(out.TokenTrees, trees[i])
	}
	return out
}

func literal(text string) *tt.Subtree {
	return &tt.Subtree{TokenTrees: []tt.TokenTree{tt.Literal{Text: text, ID: tt.Unspecified}}}
}

// splitArgs splits the top level of arg at commas. A trailing comma does not
// start a new argument.
func splitArgs(arg *tt.Subtree) [][]tt.TokenTree {
	var (
		out [][]tt.TokenTree
		cur []tt.TokenTree
	)
	for _, tree := range arg.TokenTrees {
		if p, ok := tree.(tt.Punct); ok && p.Char == ',' {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, tree)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// unwrapGroups removes invisible groups left by earlier expansions.
func unwrapGroups(trees []tt.TokenTree) []tt.TokenTree {
	if len(trees) == 1 {
		if sub, ok := trees[0].(*tt.Subtree); ok && sub.Delimiter == nil {
			return unwrapGroups(sub.TokenTrees)
		}
	}
	return trees
}
