package syntax

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// SourceLexer defines the token rules of the source language. Longer
// punctuation must come before its prefixes.
var SourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?:[^*]|\*[^/])*\*/`},
	{Name: "Float", Pattern: `\d[\d_]*\.\d[\d_]*(?:f32|f64)?`},
	{Name: "Int", Pattern: `\d[\d_]*(?:[iu](?:8|16|32|64|128|size))?`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Char", Pattern: `'(?:\\.|[^'\\])'`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Punct", Pattern: `\.\.=|\.\.\.|\.\.|::|=>|->|==|!=|<=|>=|&&|\|\||\+=|-=|\*=|/=|%=|[;,(){}\[\]<>@#~?$&|+*/^%.:=!\-]`},
	{Name: "Unknown", Pattern: `.`},
})

var lexerSymbols = lexerSymbolNames()

func lexerSymbolNames() map[lexer.TokenType]string {
	names := make(map[lexer.TokenType]string)
	for name, tt := range SourceLexer.Symbols() {
		names[tt] = name
	}
	return names
}

// RawToken is a lexed token, trivia included.
type RawToken struct {
	Kind SyntaxKind
	Text string
}

// Lex splits text into raw tokens. The concatenation of the token texts is
// always equal to text.
func Lex(text string) []RawToken {
	var out []RawToken
	lex, err := SourceLexer.Lex("", strings.NewReader(text))
	if err != nil {
		return []RawToken{{Kind: Unknown, Text: text}}
	}

	consumed := 0
	for {
		tok, err := lex.Next()
		if err != nil {
			// Keep the text lossless: whatever the lexer could not handle
			// becomes one unknown token.
			if consumed < len(text) {
				out = append(out, RawToken{Kind: Unknown, Text: text[consumed:]})
			}
			return out
		}
		if tok.EOF() {
			break
		}
		out = append(out, RawToken{Kind: classify(lexerSymbols[tok.Type], tok.Value), Text: tok.Value})
		consumed += len(tok.Value)
	}
	return out
}

func classify(rule, text string) SyntaxKind {
	switch rule {
	case "Whitespace":
		return Whitespace
	case "Comment":
		return Comment
	case "Float":
		return FloatNumber
	case "Int":
		return IntNumber
	case "String":
		return String
	case "Char":
		return Char
	case "Ident":
		return IdentKind(text)
	case "Punct":
		if k, ok := PunctFromText(text); ok {
			return k
		}
	}
	return Unknown
}
