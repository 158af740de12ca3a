// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"fmt"
	"strconv"
	"strings"
)

// Indent is the unit of indentation of multi-line renderings
// embedded in a parent rendering.
const Indent = "\t"

// Render returns the canonical rendering of a node.
//
// The rendering of a Program parses to a Program
// that renders identically.
func Render(n Node) string {
	var s strings.Builder
	build(n, &s)
	return s.String()
}

// nest returns s unchanged if it is a single line.
// Otherwise it returns s on its own lines, indented by one level.
func nest(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	return "\n" + Indent + strings.Replace(s, "\n", "\n"+Indent, -1)
}

func build(n Node, s *strings.Builder) {
	switch n := n.(type) {
	case *Program:
		for _, f := range n.Forms {
			build(f, s)
			s.WriteRune('\n')
		}
	case *Statement:
		s.WriteString("do")
		buildNested(" ", n.Expr, s)
	case *VarDefine:
		s.WriteString("define ")
		build(n.Type, s)
		s.WriteRune(' ')
		s.WriteString(n.Name.Name)
		s.WriteString(" as")
		buildNested(" ", n.Expr, s)
	case *TypeDef:
		s.WriteString("type ")
		s.WriteString(n.Name.Name)
		s.WriteString(" as ")
		build(n.Type, s)
	case *NumType:
		s.WriteString("num")
	case *BoolType:
		s.WriteString("bool")
	case *StrType:
		s.WriteString("str")
	case *VectorType:
		s.WriteRune('[')
		build(n.Elem, s)
		s.WriteRune(']')
	case *FuncType:
		s.WriteRune('(')
		for i, p := range n.Parms {
			if i > 0 {
				s.WriteString(", ")
			}
			build(p, s)
		}
		s.WriteString(") -> ")
		build(n.Ret, s)
	case *StructType:
		s.WriteRune('{')
		for i, f := range n.Fields {
			if i > 0 {
				s.WriteString(", ")
			}
			build(f, s)
		}
		s.WriteRune('}')
	case *NamedType:
		s.WriteString(n.Name)
	case *Match:
		s.WriteString("match")
		if n.Pivot != nil {
			buildNested(" ", n.Pivot, s)
		}
		for _, c := range n.Cases {
			s.WriteRune('\n')
			build(c, s)
		}
		s.WriteString("\ndefault ->")
		buildNested(" ", n.Default, s)
	case *Case:
		s.WriteString("case")
		buildNested(" ", n.Test, s)
		s.WriteString(" ->")
		buildNested(" ", n.Conseq, s)
	case *MapExpr:
		s.WriteString("map (")
		for i, p := range n.Parms {
			if i > 0 {
				s.WriteString(", ")
			}
			build(p, s)
		}
		s.WriteString(") ->")
		var body strings.Builder
		for _, d := range n.Defs {
			build(d, &body)
			body.WriteRune('\n')
		}
		build(n.Body, &body)
		writeNested(" ", body.String(), s)
	case *Parm:
		build(n.Type, s)
		s.WriteRune(' ')
		s.WriteString(n.Name.Name)
	case *Or:
		buildChain(n.Operands, " or ", s)
	case *And:
		buildChain(n.Operands, " and ", s)
	case *Not:
		s.WriteString("not ")
		build(n.Expr, s)
	case *Compare:
		build(n.Left, s)
		s.WriteRune(' ')
		s.WriteString(n.Op.Lexeme())
		s.WriteRune(' ')
		build(n.Right, s)
	case *Arith:
		build(n.Head, s)
		for _, o := range n.Tail {
			s.WriteRune(' ')
			s.WriteString(o.Op.Lexeme())
			s.WriteRune(' ')
			build(o.Expr, s)
		}
	case *Neg:
		s.WriteRune('-')
		build(n.Expr, s)
	case *Apply:
		build(n.Pivot, s)
		for _, x := range n.Suffixes {
			build(x, s)
		}
	case *Index:
		s.WriteRune('[')
		build(n.Expr, s)
		s.WriteRune(']')
	case *ArgList:
		s.WriteRune('(')
		buildChain(n.Args, ", ", s)
		s.WriteRune(')')
	case *StaticIndex:
		s.WriteRune('.')
		s.WriteString(strconv.Itoa(n.N))
	case *Identifier:
		s.WriteString(n.Name)
	case *Vector:
		s.WriteRune('[')
		buildChain(n.Elems, ", ", s)
		s.WriteRune(']')
	case *Struct:
		s.WriteRune('{')
		buildChain(n.Fields, ", ", s)
		s.WriteRune('}')
	case *Group:
		s.WriteRune('(')
		build(n.Expr, s)
		s.WriteRune(')')
	case *BoolLit:
		s.WriteString(strconv.FormatBool(n.Val))
	case *NumLit:
		s.WriteString(strconv.FormatFloat(n.Val, 'f', -1, 64))
	case *StrLit:
		s.WriteString(strconv.Quote(n.Val))
	default:
		panic(fmt.Sprintf("impossible node type %T", n))
	}
}

func buildNested(sep string, n Node, s *strings.Builder) {
	writeNested(sep, Render(n), s)
}

// writeNested writes sep followed by sub on the same line,
// or, if sub spans multiple lines, sub indented on the following lines.
func writeNested(sep, sub string, s *strings.Builder) {
	sub = nest(sub)
	if !strings.HasPrefix(sub, "\n") {
		s.WriteString(sep)
	}
	s.WriteString(sub)
}

func buildChain(es []Expr, sep string, s *strings.Builder) {
	for i, e := range es {
		if i > 0 {
			s.WriteString(sep)
		}
		build(e, s)
	}
}

func (n *Program) String() string     { return Render(n) }
func (n *Statement) String() string   { return Render(n) }
func (n *VarDefine) String() string   { return Render(n) }
func (n *TypeDef) String() string     { return Render(n) }
func (n *NumType) String() string     { return Render(n) }
func (n *BoolType) String() string    { return Render(n) }
func (n *StrType) String() string     { return Render(n) }
func (n *VectorType) String() string  { return Render(n) }
func (n *FuncType) String() string    { return Render(n) }
func (n *StructType) String() string  { return Render(n) }
func (n *NamedType) String() string   { return Render(n) }
func (n *Match) String() string       { return Render(n) }
func (n *Case) String() string        { return Render(n) }
func (n *MapExpr) String() string     { return Render(n) }
func (n *Parm) String() string        { return Render(n) }
func (n *Or) String() string          { return Render(n) }
func (n *And) String() string         { return Render(n) }
func (n *Not) String() string         { return Render(n) }
func (n *Compare) String() string     { return Render(n) }
func (n *Arith) String() string       { return Render(n) }
func (n *Neg) String() string         { return Render(n) }
func (n *Apply) String() string       { return Render(n) }
func (n *Index) String() string       { return Render(n) }
func (n *ArgList) String() string     { return Render(n) }
func (n *StaticIndex) String() string { return Render(n) }
func (n *Identifier) String() string  { return Render(n) }
func (n *Vector) String() string      { return Render(n) }
func (n *Struct) String() string      { return Render(n) }
func (n *Group) String() string       { return Render(n) }
func (n *BoolLit) String() string     { return Render(n) }
func (n *NumLit) String() string      { return Render(n) }
func (n *StrLit) String() string      { return Render(n) }
