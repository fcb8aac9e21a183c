// Package syntax provides the concrete syntax tree, lexer and parser for the
// macro-capable source language consumed by the expansion engine.
package syntax

import "fmt"

// SyntaxKind identifies the kind of a token or node in the concrete syntax tree.
type SyntaxKind uint16

const (
	// Tombstone marks an abandoned or forwarded parser event.
	Tombstone SyntaxKind = iota
	// EOF is returned by token sources past the last token.
	EOF

	// Trivia and literals
	Whitespace
	Comment
	Ident
	IntNumber
	FloatNumber
	String
	Char
	Unknown
	// LDollar and RDollar bound an invisible group of a token tree, such as
	// a captured expression. They have no text.
	LDollar
	RDollar

	// Punctuation
	Semicolon
	Comma
	LParen
	RParen
	LCurly
	RCurly
	LBrack
	RBrack
	LAngle
	RAngle
	At
	Pound
	Tilde
	Question
	Dollar
	Amp
	Pipe
	Plus
	Star
	Slash
	Caret
	Percent
	Underscore
	Dot
	Dot2
	Dot3
	Dot2Eq
	Colon
	Colon2
	Eq
	Eq2
	FatArrow
	Bang
	Neq
	Minus
	ThinArrow
	LtEq
	GtEq
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	Amp2
	Pipe2

	// Keywords
	AsKw
	AwaitKw
	BreakKw
	ConstKw
	ContinueKw
	CrateKw
	ElseKw
	EnumKw
	FalseKw
	FnKw
	ForKw
	IfKw
	ImplKw
	InKw
	LetKw
	LoopKw
	MatchKw
	ModKw
	MoveKw
	MutKw
	PubKw
	RefKw
	ReturnKw
	SelfKw
	StaticKw
	StructKw
	SuperKw
	TrueKw
	UseKw
	WhileKw

	// Nodes
	SourceFile
	MacroItems
	MacroStmts
	ErrorNode
	Attr
	Visibility
	Name
	NameRef
	Path
	PathSegment
	TypeArgList
	TypeParamList
	TypeParam
	TypeBoundList
	FnDef
	ParamList
	Param
	RetType
	StructDef
	RecordFieldDefList
	RecordFieldDef
	TupleFieldDefList
	TupleFieldDef
	EnumDef
	EnumVariantList
	EnumVariant
	Module
	ItemList
	UseItem
	UseTree
	UseTreeList
	ConstDef
	StaticDef
	ImplBlock
	MacroCall
	TokenTree
	PathType
	RefType
	TupleType
	ArrayType
	SliceType
	PlaceholderType
	IdentPat
	PlaceholderPat
	LiteralPat
	TuplePat
	TupleStructPat
	PathPat
	RefPat
	LetStmt
	ExprStmt
	Block
	BlockExpr
	Literal
	PathExpr
	RecordLit
	RecordFieldList
	RecordField
	CallExpr
	MethodCallExpr
	FieldExpr
	IndexExpr
	ArgList
	TryExpr
	AwaitExpr
	CastExpr
	RefExpr
	PrefixExpr
	BinExpr
	RangeExpr
	ParenExpr
	TupleExpr
	ArrayExpr
	IfExpr
	Condition
	MatchExpr
	MatchArmList
	MatchArm
	MatchGuard
	WhileExpr
	LoopExpr
	ForExpr
	ReturnExpr
	BreakExpr
	ContinueExpr
	LambdaExpr
	MetaItem

	kindCount
)

var kindNames = map[SyntaxKind]string{
	Tombstone: "TOMBSTONE", EOF: "EOF",
	Whitespace: "WHITESPACE", Comment: "COMMENT", Ident: "IDENT", IntNumber: "INT_NUMBER",
	FloatNumber: "FLOAT_NUMBER", String: "STRING", Char: "CHAR", Unknown: "UNKNOWN",
	LDollar: "L_DOLLAR", RDollar: "R_DOLLAR",
	Semicolon: "SEMICOLON", Comma: "COMMA", LParen: "L_PAREN", RParen: "R_PAREN",
	LCurly: "L_CURLY", RCurly: "R_CURLY", LBrack: "L_BRACK", RBrack: "R_BRACK",
	LAngle: "L_ANGLE", RAngle: "R_ANGLE", At: "AT", Pound: "POUND", Tilde: "TILDE",
	Question: "QUESTION", Dollar: "DOLLAR", Amp: "AMP", Pipe: "PIPE", Plus: "PLUS",
	Star: "STAR", Slash: "SLASH", Caret: "CARET", Percent: "PERCENT", Underscore: "UNDERSCORE",
	Dot: "DOT", Dot2: "DOT2", Dot3: "DOT3", Dot2Eq: "DOT2EQ", Colon: "COLON", Colon2: "COLON2",
	Eq: "EQ", Eq2: "EQ2", FatArrow: "FAT_ARROW", Bang: "BANG", Neq: "NEQ", Minus: "MINUS",
	ThinArrow: "THIN_ARROW", LtEq: "LTEQ", GtEq: "GTEQ", PlusEq: "PLUSEQ", MinusEq: "MINUSEQ",
	StarEq: "STAREQ", SlashEq: "SLASHEQ", PercentEq: "PERCENTEQ", Amp2: "AMP2", Pipe2: "PIPE2",
	AsKw: "AS_KW", AwaitKw: "AWAIT_KW", BreakKw: "BREAK_KW", ConstKw: "CONST_KW",
	ContinueKw: "CONTINUE_KW", CrateKw: "CRATE_KW", ElseKw: "ELSE_KW", EnumKw: "ENUM_KW",
	FalseKw: "FALSE_KW", FnKw: "FN_KW", ForKw: "FOR_KW", IfKw: "IF_KW", ImplKw: "IMPL_KW",
	InKw: "IN_KW", LetKw: "LET_KW", LoopKw: "LOOP_KW", MatchKw: "MATCH_KW", ModKw: "MOD_KW",
	MoveKw: "MOVE_KW", MutKw: "MUT_KW", PubKw: "PUB_KW", RefKw: "REF_KW", ReturnKw: "RETURN_KW",
	SelfKw: "SELF_KW", StaticKw: "STATIC_KW", StructKw: "STRUCT_KW", SuperKw: "SUPER_KW",
	TrueKw: "TRUE_KW", UseKw: "USE_KW", WhileKw: "WHILE_KW",
	SourceFile: "SOURCE_FILE", MacroItems: "MACRO_ITEMS", MacroStmts: "MACRO_STMTS",
	ErrorNode: "ERROR", Attr: "ATTR", Visibility: "VISIBILITY", Name: "NAME", NameRef: "NAME_REF",
	Path: "PATH", PathSegment: "PATH_SEGMENT", TypeArgList: "TYPE_ARG_LIST",
	TypeParamList: "TYPE_PARAM_LIST", TypeParam: "TYPE_PARAM", TypeBoundList: "TYPE_BOUND_LIST",
	FnDef: "FN_DEF", ParamList: "PARAM_LIST", Param: "PARAM", RetType: "RET_TYPE",
	StructDef: "STRUCT_DEF", RecordFieldDefList: "RECORD_FIELD_DEF_LIST",
	RecordFieldDef: "RECORD_FIELD_DEF", TupleFieldDefList: "TUPLE_FIELD_DEF_LIST",
	TupleFieldDef: "TUPLE_FIELD_DEF", EnumDef: "ENUM_DEF", EnumVariantList: "ENUM_VARIANT_LIST",
	EnumVariant: "ENUM_VARIANT", Module: "MODULE", ItemList: "ITEM_LIST", UseItem: "USE_ITEM",
	UseTree: "USE_TREE", UseTreeList: "USE_TREE_LIST", ConstDef: "CONST_DEF",
	StaticDef: "STATIC_DEF", ImplBlock: "IMPL_BLOCK", MacroCall: "MACRO_CALL",
	TokenTree: "TOKEN_TREE", PathType: "PATH_TYPE", RefType: "REF_TYPE",
	TupleType: "TUPLE_TYPE", ArrayType: "ARRAY_TYPE", SliceType: "SLICE_TYPE",
	PlaceholderType: "PLACEHOLDER_TYPE", IdentPat: "IDENT_PAT", PlaceholderPat: "PLACEHOLDER_PAT",
	LiteralPat: "LITERAL_PAT", TuplePat: "TUPLE_PAT", TupleStructPat: "TUPLE_STRUCT_PAT",
	PathPat: "PATH_PAT", RefPat: "REF_PAT", LetStmt: "LET_STMT", ExprStmt: "EXPR_STMT",
	Block: "BLOCK", BlockExpr: "BLOCK_EXPR", Literal: "LITERAL", PathExpr: "PATH_EXPR",
	RecordLit: "RECORD_LIT", RecordFieldList: "RECORD_FIELD_LIST", RecordField: "RECORD_FIELD",
	CallExpr: "CALL_EXPR", MethodCallExpr: "METHOD_CALL_EXPR", FieldExpr: "FIELD_EXPR",
	IndexExpr: "INDEX_EXPR", ArgList: "ARG_LIST", TryExpr: "TRY_EXPR", AwaitExpr: "AWAIT_EXPR",
	CastExpr: "CAST_EXPR", RefExpr: "REF_EXPR", PrefixExpr: "PREFIX_EXPR", BinExpr: "BIN_EXPR",
	RangeExpr: "RANGE_EXPR", ParenExpr: "PAREN_EXPR", TupleExpr: "TUPLE_EXPR",
	ArrayExpr: "ARRAY_EXPR", IfExpr: "IF_EXPR", Condition: "CONDITION", MatchExpr: "MATCH_EXPR",
	MatchArmList: "MATCH_ARM_LIST", MatchArm: "MATCH_ARM", MatchGuard: "MATCH_GUARD",
	WhileExpr: "WHILE_EXPR", LoopExpr: "LOOP_EXPR", ForExpr: "FOR_EXPR",
	ReturnExpr: "RETURN_EXPR", BreakExpr: "BREAK_EXPR", ContinueExpr: "CONTINUE_EXPR",
	LambdaExpr: "LAMBDA_EXPR", MetaItem: "META_ITEM",
}

// String returns the upper snake case name of the kind.
func (k SyntaxKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SyntaxKind(%d)", uint16(k))
}

// IsTrivia reports whether tokens of this kind are skipped by the parser.
func (k SyntaxKind) IsTrivia() bool {
	return k == Whitespace || k == Comment
}

// IsKeyword reports whether k is a reserved keyword.
func (k SyntaxKind) IsKeyword() bool {
	return k >= AsKw && k <= WhileKw
}

// IsPunct reports whether k is a punctuation token.
func (k SyntaxKind) IsPunct() bool {
	return k >= Semicolon && k <= Pipe2
}

// IsLiteral reports whether k is a literal token.
func (k SyntaxKind) IsLiteral() bool {
	switch k {
	case IntNumber, FloatNumber, String, Char, TrueKw, FalseKw:
		return true
	}
	return false
}

// IsNode reports whether k names a composite node rather than a token.
func (k SyntaxKind) IsNode() bool {
	return k >= SourceFile && k < kindCount
}

var keywords = map[string]SyntaxKind{
	"as": AsKw, "await": AwaitKw, "break": BreakKw, "const": ConstKw, "continue": ContinueKw,
	"crate": CrateKw, "else": ElseKw, "enum": EnumKw, "false": FalseKw, "fn": FnKw,
	"for": ForKw, "if": IfKw, "impl": ImplKw, "in": InKw, "let": LetKw, "loop": LoopKw,
	"match": MatchKw, "mod": ModKw, "move": MoveKw, "mut": MutKw, "pub": PubKw, "ref": RefKw,
	"return": ReturnKw, "self": SelfKw, "static": StaticKw, "struct": StructKw,
	"super": SuperKw, "true": TrueKw, "use": UseKw, "while": WhileKw,
}

// KeywordFromText returns the keyword kind for text, if text is a keyword.
func KeywordFromText(text string) (SyntaxKind, bool) {
	k, ok := keywords[text]
	return k, ok
}

var puncts = map[string]SyntaxKind{
	";": Semicolon, ",": Comma, "(": LParen, ")": RParen, "{": LCurly, "}": RCurly,
	"[": LBrack, "]": RBrack, "<": LAngle, ">": RAngle, "@": At, "#": Pound, "~": Tilde,
	"?": Question, "$": Dollar, "&": Amp, "|": Pipe, "+": Plus, "*": Star, "/": Slash,
	"^": Caret, "%": Percent, ".": Dot, "..": Dot2, "...": Dot3, "..=": Dot2Eq, ":": Colon,
	"::": Colon2, "=": Eq, "==": Eq2, "=>": FatArrow, "!": Bang, "!=": Neq, "-": Minus,
	"->": ThinArrow, "<=": LtEq, ">=": GtEq, "+=": PlusEq, "-=": MinusEq, "*=": StarEq,
	"/=": SlashEq, "%=": PercentEq, "&&": Amp2, "||": Pipe2,
}

// PunctFromText returns the punctuation kind spelled by text.
func PunctFromText(text string) (SyntaxKind, bool) {
	k, ok := puncts[text]
	return k, ok
}

// IdentKind classifies identifier-like text as a keyword, `_`, or a plain identifier.
func IdentKind(text string) SyntaxKind {
	if text == "_" {
		return Underscore
	}
	if k, ok := keywords[text]; ok {
		return k
	}
	return Ident
}

// LiteralKind classifies literal text produced by the lexer.
func LiteralKind(text string) SyntaxKind {
	switch {
	case text == "true":
		return TrueKw
	case text == "false":
		return FalseKw
	case len(text) > 0 && text[0] == '"':
		return String
	case len(text) > 0 && text[0] == '\'':
		return Char
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			return FloatNumber
		}
	}
	return IntNumber
}
