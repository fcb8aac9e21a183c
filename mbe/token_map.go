package mbe

import (
	"github.com/satishbabariya/expand-go/syntax"
	"github.com/satishbabariya/expand-go/tt"
)

// TokenTextRange is the text range recorded for a token id. Delimiter ranges
// span from the opening to the closing character.
type TokenTextRange struct {
	rng       syntax.TextRange
	delimiter bool
}

// Range returns the recorded range.
func (r TokenTextRange) Range() syntax.TextRange { return r.rng }

// IsDelimiter reports whether the id belongs to a delimiter pair.
func (r TokenTextRange) IsDelimiter() bool { return r.delimiter }

// ByKind picks the range of the token with the given kind. For delimiters
// this is the opening or closing character.
func (r TokenTextRange) ByKind(kind syntax.SyntaxKind) (syntax.TextRange, bool) {
	if !r.delimiter {
		return r.rng, true
	}
	switch kind {
	case syntax.LParen, syntax.LBrack, syntax.LCurly:
		return syntax.NewRange(r.rng.Start, r.rng.Start+1), true
	case syntax.RParen, syntax.RBrack, syntax.RCurly:
		return syntax.NewRange(r.rng.End-1, r.rng.End), true
	}
	return syntax.TextRange{}, false
}

type tokenEntry struct {
	id  tt.TokenID
	rng TokenTextRange
}

// TokenMap relates token ids of one token-tree snapshot to text ranges.
type TokenMap struct {
	entries []tokenEntry
}

// TokenByRange finds the id of the token, or delimiter character, at exactly
// the given range.
func (m *TokenMap) TokenByRange(r syntax.TextRange) (tt.TokenID, bool) {
	if m == nil {
		return 0, false
	}
	for _, e := range m.entries {
		if !e.rng.delimiter {
			if e.rng.rng == r {
				return e.id, true
			}
			continue
		}
		open, _ := e.rng.ByKind(syntax.LParen)
		closing, _ := e.rng.ByKind(syntax.RParen)
		if open == r || closing == r {
			return e.id, true
		}
	}
	return 0, false
}

// RangeByToken returns the range recorded for id.
func (m *TokenMap) RangeByToken(id tt.TokenID) (TokenTextRange, bool) {
	if m == nil {
		return TokenTextRange{}, false
	}
	for _, e := range m.entries {
		if e.id == id {
			return e.rng, true
		}
	}
	return TokenTextRange{}, false
}

// Len returns the number of recorded ids.
func (m *TokenMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

func (m *TokenMap) insert(id tt.TokenID, r syntax.TextRange) {
	m.entries = append(m.entries, tokenEntry{id: id, rng: TokenTextRange{rng: r}})
}

// insertDelim records an opening delimiter and returns a handle for closing it.
func (m *TokenMap) insertDelim(id tt.TokenID, open syntax.TextRange) int {
	m.entries = append(m.entries, tokenEntry{id: id, rng: TokenTextRange{rng: open, delimiter: true}})
	return len(m.entries) - 1
}

func (m *TokenMap) closeDelim(idx int, closing syntax.TextRange) {
	m.entries[idx].rng.rng.End = closing.End
}
