// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package syn has the syntax of the query language:
// its tokens, lexer, abstract syntax tree, renderer, and parser.
package syn

import "github.com/eaburns/jql/loc"

// A Node is a node of the AST with location information.
//
// The set of nodes is closed;
// every node is a pointer to one of the types in this file.
type Node interface {
	GetRange() loc.Range
	// String returns the canonical rendering of the node.
	String() string
}

// A Program is a sequence of top-level forms,
// in the order they appear in the source.
type Program struct {
	loc.Range
	Forms []Form
}

// A Form is a top-level form: *Statement, *VarDefine, or *TypeDef.
type Form interface {
	Node
	isForm()
}

// A Statement is a do form.
type Statement struct {
	loc.Range
	Expr Expr
}

// A VarDefine binds a name to the value of an expression.
type VarDefine struct {
	loc.Range
	Type TypeSig
	Name *Identifier
	Expr Expr
}

// A TypeDef names a type.
type TypeDef struct {
	loc.Range
	Name *Identifier
	Type TypeSig
}

func (*Statement) isForm() {}
func (*VarDefine) isForm() {}
func (*TypeDef) isForm()   {}

// A TypeSig is a type signature:
// *NumType, *BoolType, *StrType, *VectorType,
// *FuncType, *StructType, or *NamedType.
type TypeSig interface {
	Node
	isTypeSig()
}

// A NumType is the num type.
type NumType struct{ loc.Range }

// A BoolType is the bool type.
type BoolType struct{ loc.Range }

// A StrType is the str type.
type StrType struct{ loc.Range }

// A VectorType is the type of vectors of Elem.
type VectorType struct {
	loc.Range
	Elem TypeSig
}

// A FuncType is the type of maps from Parms to Ret.
type FuncType struct {
	loc.Range
	Parms []TypeSig
	Ret   TypeSig
}

// A StructType is a type with positional fields.
type StructType struct {
	loc.Range
	Fields []TypeSig
}

// A NamedType refers to a type by name.
type NamedType struct {
	loc.Range
	Name string
}

func (*NumType) isTypeSig()    {}
func (*BoolType) isTypeSig()   {}
func (*StrType) isTypeSig()    {}
func (*VectorType) isTypeSig() {}
func (*FuncType) isTypeSig()   {}
func (*StructType) isTypeSig() {}
func (*NamedType) isTypeSig()  {}

// An Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

// A Match selects the consequence of the first case whose test matches.
//
// If Pivot is nil, the tests are boolean conditions.
// Otherwise each test is compared to the Pivot.
type Match struct {
	loc.Range
	Pivot   Expr
	Cases   []*Case
	Default Expr
}

// A Case is a single case of a Match.
type Case struct {
	loc.Range
	Test   Expr
	Conseq Expr
}

// A MapExpr is a function literal.
// Defs are local definitions visible in the Body
// and in the definitions that follow them.
type MapExpr struct {
	loc.Range
	Parms []*Parm
	Defs  []*VarDefine
	Body  Expr
}

// A Parm is a typed parameter of a MapExpr.
type Parm struct {
	loc.Range
	Type TypeSig
	Name *Identifier
}

// An Or is a disjunction of two or more operands.
type Or struct {
	loc.Range
	Operands []Expr
}

// An And is a conjunction of two or more operands.
type And struct {
	loc.Range
	Operands []Expr
}

// A Not is a boolean negation.
type Not struct {
	loc.Range
	Expr Expr
}

// A Compare is a comparison.
// Op is one of Equal, LessEq, GreaterEq, Less, or Greater.
type Compare struct {
	loc.Range
	Op          Kind
	Left, Right Expr
}

// An Arith is a left-associative chain of arithmetic operators
// of the same precedence: either Plus and Minus or Times, Divide and Modulo.
type Arith struct {
	loc.Range
	Head Expr
	Tail []Operand
}

// An Operand is an operator and its right operand in an Arith.
type Operand struct {
	Op   Kind
	Expr Expr
}

// A Neg is an arithmetic negation.
type Neg struct {
	loc.Range
	Expr Expr
}

// An Apply is a pivot followed by one or more suffixes,
// applied left to right.
type Apply struct {
	loc.Range
	Pivot    Expr
	Suffixes []Suffix
}

// A Suffix is *Index, *ArgList, or *StaticIndex.
type Suffix interface {
	Node
	isSuffix()
}

// An Index selects an element of a vector.
type Index struct {
	loc.Range
	Expr Expr
}

// An ArgList calls a map.
type ArgList struct {
	loc.Range
	Args []Expr
}

// A StaticIndex selects a struct field by position.
type StaticIndex struct {
	loc.Range
	N int
}

func (*Index) isSuffix()       {}
func (*ArgList) isSuffix()     {}
func (*StaticIndex) isSuffix() {}

// An Identifier is a name.
type Identifier struct {
	loc.Range
	Name string
}

// A Vector is a vector literal.
type Vector struct {
	loc.Range
	Elems []Expr
}

// A Struct is a struct literal.
type Struct struct {
	loc.Range
	Fields []Expr
}

// A Group is a parenthesized expression.
type Group struct {
	loc.Range
	Expr Expr
}

// A BoolLit is a boolean literal.
type BoolLit struct {
	loc.Range
	Val bool
}

// A NumLit is a number literal.
type NumLit struct {
	loc.Range
	Val float64
}

// A StrLit is a string literal.
// Val is the unescaped string.
type StrLit struct {
	loc.Range
	Val string
}

func (*Match) isExpr()      {}
func (*MapExpr) isExpr()    {}
func (*Or) isExpr()         {}
func (*And) isExpr()        {}
func (*Not) isExpr()        {}
func (*Compare) isExpr()    {}
func (*Arith) isExpr()      {}
func (*Neg) isExpr()        {}
func (*Apply) isExpr()      {}
func (*Identifier) isExpr() {}
func (*Vector) isExpr()     {}
func (*Struct) isExpr()     {}
func (*Group) isExpr()      {}
func (*BoolLit) isExpr()    {}
func (*NumLit) isExpr()     {}
func (*StrLit) isExpr()     {}
