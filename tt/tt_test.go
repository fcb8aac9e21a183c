package tt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample is `(a => {1})`.
func sample() *Subtree {
	return &Subtree{
		Delimiter: &Delimiter{ID: 0, Kind: Parenthesis},
		TokenTrees: []TokenTree{
			Ident{Text: "a", ID: 1},
			Punct{Char: '=', Spacing: Joint, ID: 2},
			Punct{Char: '>', Spacing: Alone, ID: 3},
			&Subtree{
				Delimiter:  &Delimiter{ID: 4, Kind: Brace},
				TokenTrees: []TokenTree{Literal{Text: "1", ID: 5}},
			},
		},
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, 5, sample().Count())
	assert.Equal(t, 0, (&Subtree{}).Count())
}

func TestString(t *testing.T) {
	assert.Equal(t, "(a => {1})", sample().String())
}

func TestFingerprintIncludesIDs(t *testing.T) {
	a, b := sample(), sample()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.True(t, Equal(a, b))

	shifted := a.MapIDs(func(id TokenID) TokenID { return id + 10 })
	assert.NotEqual(t, a.Fingerprint(), shifted.Fingerprint())
	assert.False(t, Equal(a, shifted))
	assert.Equal(t, a.String(), shifted.String())
}

func TestMapIDsKeepsUnspecified(t *testing.T) {
	s := &Subtree{TokenTrees: []TokenTree{Ident{Text: "x", ID: Unspecified}, Ident{Text: "y", ID: 2}}}
	out := s.MapIDs(func(id TokenID) TokenID { return id * 2 })
	assert.Equal(t, Unspecified, out.TokenTrees[0].(Ident).ID)
	assert.Equal(t, TokenID(4), out.TokenTrees[1].(Ident).ID)
}

func TestMaxID(t *testing.T) {
	id, ok := sample().MaxID()
	require.True(t, ok)
	assert.Equal(t, TokenID(5), id)

	_, ok = (&Subtree{TokenTrees: []TokenTree{Ident{Text: "x", ID: Unspecified}}}).MaxID()
	assert.False(t, ok)
}
