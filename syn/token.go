// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import "strconv"

// A Kind is the class of a token.
type Kind int

// The token kinds.
const (
	EOF Kind = iota

	// Literals and names.
	Ident
	Number
	String
	Boolean
	DotIndex

	// Punctuation and operators.
	LParen
	RParen
	LBrack
	RBrack
	LBrace
	RBrace
	Comma
	Arrow
	Equal
	LessEq
	GreaterEq
	Less
	Greater
	Plus
	Minus
	Times
	Divide
	Modulo

	// Reserved words.
	DoKw
	AsKw
	DefineKw
	TypeKw
	MatchKw
	CaseKw
	DefaultKw
	OrKw
	AndKw
	NotKw
	MapKw
	NumKw
	BoolKw
	StrKw

	nKinds
)

var kindNames = [...]string{
	EOF:       "end of file",
	Ident:     "identifier",
	Number:    "number",
	String:    "string",
	Boolean:   "boolean",
	DotIndex:  "static index",
	LParen:    `"("`,
	RParen:    `")"`,
	LBrack:    `"["`,
	RBrack:    `"]"`,
	LBrace:    `"{"`,
	RBrace:    `"}"`,
	Comma:     `","`,
	Arrow:     `"->"`,
	Equal:     `"="`,
	LessEq:    `"<="`,
	GreaterEq: `">="`,
	Less:      `"<"`,
	Greater:   `">"`,
	Plus:      `"+"`,
	Minus:     `"-"`,
	Times:     `"*"`,
	Divide:    `"/"`,
	Modulo:    `"%"`,
	DoKw:      `"do"`,
	AsKw:      `"as"`,
	DefineKw:  `"define"`,
	TypeKw:    `"type"`,
	MatchKw:   `"match"`,
	CaseKw:    `"case"`,
	DefaultKw: `"default"`,
	OrKw:      `"or"`,
	AndKw:     `"and"`,
	NotKw:     `"not"`,
	MapKw:     `"map"`,
	NumKw:     `"num"`,
	BoolKw:    `"bool"`,
	StrKw:     `"str"`,
}

func (k Kind) String() string {
	if k < 0 || k >= nKinds {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Lexeme returns the fixed source text of operator and reserved-word kinds.
// It returns the empty string for kinds with variable text.
func (k Kind) Lexeme() string {
	if k < LParen || k >= nKinds {
		return ""
	}
	s := kindNames[k]
	return s[1 : len(s)-1]
}

// IsKeyword returns whether the kind is a reserved word.
func (k Kind) IsKeyword() bool { return k >= DoKw && k < nKinds }

// keywords maps reserved words to their token kinds.
// The words true and false are reserved as boolean literals.
var keywords = map[string]Kind{
	"do":      DoKw,
	"as":      AsKw,
	"define":  DefineKw,
	"type":    TypeKw,
	"match":   MatchKw,
	"case":    CaseKw,
	"default": DefaultKw,
	"or":      OrKw,
	"and":     AndKw,
	"not":     NotKw,
	"map":     MapKw,
	"num":     NumKw,
	"bool":    BoolKw,
	"str":     StrKw,
	"true":    Boolean,
	"false":   Boolean,
}

// A Token is a classified lexeme.
type Token struct {
	Kind Kind
	// Text is the lexeme.
	// String lexemes include their quotes.
	Text string
	// Pos is the byte offset of the start of the lexeme.
	Pos int
	// Line is the 1-based line of the start of the lexeme.
	Line int
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return t.Kind.String()
	case Ident, Number, String, Boolean, DotIndex:
		return t.Kind.String() + " " + t.Text
	default:
		return t.Kind.String()
	}
}
