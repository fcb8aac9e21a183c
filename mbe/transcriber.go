package mbe

import (
	"github.com/satishbabariya/expand-go/tt"
)

type nestingState struct {
	idx   int
	atEnd bool
	hit   bool
}

type expandCtx struct {
	bindings *bindings
	nesting  []*nestingState
}

// get resolves name under the current repetition indices. Resolving marks
// the enclosing repetitions as driven by a binding, and an exhausted binding
// marks them finished.
func (c *expandCtx) get(name string) (fragment, error) {
	b, ok := c.bindings.inner[name]
	if !ok {
		return fragment{}, bindingErrorf("could not find binding `%s`", name)
	}
	for _, state := range c.nesting {
		state.hit = true
		if b.kind == bindingFragment {
			break
		}
		if b.kind == bindingEmpty {
			state.atEnd = true
			return fragment{}, bindingErrorf("could not find empty binding `%s`", name)
		}
		if state.idx >= len(b.nested) {
			state.atEnd = true
			return fragment{}, bindingErrorf("could not find nested binding `%s`", name)
		}
		b = b.nested[state.idx]
	}
	switch b.kind {
	case bindingNested:
		return fragment{}, bindingErrorf("expected simple binding, found nested binding `%s`", name)
	case bindingEmpty:
		return fragment{}, bindingErrorf("expected simple binding, found empty binding `%s`", name)
	}
	return b.fragment, nil
}

func transcribe(template []Op, b *bindings) ExpandResult {
	ctx := &expandCtx{bindings: b}
	return expandOps(ctx, template, nil)
}

func expandOps(ctx *expandCtx, ops []Op, delim *tt.Delimiter) ExpandResult {
	var (
		buf      []tt.TokenTree
		firstErr error
	)
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, op := range ops {
		switch op := op.(type) {
		case LeafOp:
			buf = append(buf, op.Leaf)
		case SubtreeOp:
			res := expandOps(ctx, op.Ops, op.Delimiter)
			if res.Err != nil {
				keep(res.Err)
			}
			buf = append(buf, res.Value)
		case VarOp:
			f, err := expandVar(ctx, op)
			if err != nil {
				keep(err)
			}
			buf = pushFragment(buf, f)
		case RepeatOp:
			f, err := expandRepeat(ctx, op)
			if err != nil {
				keep(err)
			}
			buf = pushFragment(buf, f)
		}
	}
	return ExpandResult{Value: &tt.Subtree{Delimiter: delim, TokenTrees: buf}, Err: firstErr}
}

func expandVar(ctx *expandCtx, op VarOp) (fragment, error) {
	if !ctx.bindings.contains(op.Name) {
		// Unbound variables are emitted verbatim, as in nested macro
		// definitions.
		return fragment{tree: &tt.Subtree{TokenTrees: []tt.TokenTree{
			tt.Punct{Char: '$', Spacing: tt.Alone, ID: tt.Unspecified},
			tt.Ident{Text: op.Name, ID: tt.Unspecified},
		}}}, nil
	}
	f, err := ctx.get(op.Name)
	if err != nil {
		return fragment{tree: &tt.Subtree{}}, err
	}
	return f, nil
}

func expandRepeat(ctx *expandCtx, op RepeatOp) (fragment, error) {
	state := &nestingState{}
	ctx.nesting = append(ctx.nesting, state)
	defer func() { ctx.nesting = ctx.nesting[:len(ctx.nesting)-1] }()

	var (
		buf      []tt.TokenTree
		sepLen   int
		counter  int
		limitErr error
	)
	for {
		res := expandOps(ctx, op.Ops, nil)
		if state.atEnd || !state.hit {
			break
		}
		state.idx++
		state.hit = false
		counter++
		if counter == repeatLimit {
			limitErr = repeatLimitErrorf("transcribing")
			break
		}
		if res.Err != nil {
			continue
		}
		buf = append(buf, res.Value.TokenTrees...)
		if op.Separator != nil {
			leaves := op.Separator.leaves()
			sepLen = len(leaves)
			buf = append(buf, leaves...)
		}
		if op.Kind == ZeroOrOne {
			break
		}
	}
	if sepLen > 0 && len(buf) >= sepLen {
		buf = buf[:len(buf)-sepLen]
	}

	f := fragment{tree: &tt.Subtree{TokenTrees: buf}}
	if op.Kind == OneOrMore && counter == 0 {
		return f, ErrUnexpectedToken
	}
	return f, limitErr
}

func pushFragment(buf []tt.TokenTree, f fragment) []tt.TokenTree {
	if sub, ok := f.tree.(*tt.Subtree); ok && f.kind == fragmentTokens && sub.Delimiter == nil {
		return append(buf, sub.TokenTrees...)
	}
	return append(buf, f.tree)
}
