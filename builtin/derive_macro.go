package builtin

import (
	"github.com/satishbabariya/expand-go/mbe"
	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

type adtInfo struct {
	name   string
	params []string
}

func parseADT(arg *tt.Subtree) (adtInfo, error) {
	parse, _, err := mbe.TokenTreeToSyntaxNode(arg, syntax.FragmentItems)
	if err != nil {
		return adtInfo{}, err
	}
	for _, item := range parse.Tree().Children() {
		if item.Kind() != syntax.StructDef && item.Kind() != syntax.EnumDef {
			continue
		}
		name := item.Child(syntax.Name)
		if name == nil {
			break
		}
		info := adtInfo{name: name.Text()}
		if list := item.Child(syntax.TypeParamList); list != nil {
			for _, param := range list.Children() {
				if param.Kind() != syntax.TypeParam {
					continue
				}
				if n := param.Child(syntax.Name); n != nil {
					info.params = append(info.params, n.Text())
				}
			}
		}
		return info, nil
	}
	return adtInfo{}, badArgs("derive", "expected a struct or enum")
}

func ident(text string) tt.Ident {
	return tt.Ident{Text: text, ID: tt.Unspecified}
}

func comma() tt.Punct {
	return tt.Punct{Char: ',', Spacing: tt.Alone, ID: tt.Unspecified}
}

// expandDerive produces an empty impl of trait for the item in arg, bounding
// every type parameter by the same trait.
func expandDerive(trait string, arg *tt.Subtree) mbe.ExpandResult {
	info, err := parseADT(arg)
	if err != nil {
		return mbe.ExpandResult{Value: &tt.Subtree{}, Err: err}
	}
	traitPath := quote(trait).TokenTrees
	name := []tt.TokenTree{ident(info.name)}
	if len(info.params) == 0 {
		return mbe.ExpandResult{Value: quote("impl $0 for $1 {}", traitPath, name)}
	}

	var bounded, args []tt.TokenTree
	for _, p := range info.params {
		bounded = append(bounded, quote("$0: $1,", []tt.TokenTree{ident(p)}, traitPath).TokenTrees...)
		args = append(args, ident(p), comma())
	}
	return mbe.ExpandResult{Value: quote("impl<$0> $1 for $2<$3> {}", bounded, traitPath, name, args)}
}
