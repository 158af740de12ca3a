// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import "fmt"

// A Visitor's Visit method is called by Walk for each node.
// If the returned Visitor w is non-nil,
// Walk visits each child of the node with w,
// followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk traverses the tree rooted at n in depth-first order,
// visiting children in source order.
func Walk(v Visitor, n Node) {
	if v = v.Visit(n); v == nil {
		return
	}
	switch n := n.(type) {
	case *Program:
		for _, f := range n.Forms {
			Walk(v, f)
		}
	case *Statement:
		Walk(v, n.Expr)
	case *VarDefine:
		Walk(v, n.Type)
		Walk(v, n.Name)
		Walk(v, n.Expr)
	case *TypeDef:
		Walk(v, n.Name)
		Walk(v, n.Type)
	case *NumType, *BoolType, *StrType, *NamedType:
		break
	case *VectorType:
		Walk(v, n.Elem)
	case *FuncType:
		for _, p := range n.Parms {
			Walk(v, p)
		}
		Walk(v, n.Ret)
	case *StructType:
		for _, f := range n.Fields {
			Walk(v, f)
		}
	case *Match:
		if n.Pivot != nil {
			Walk(v, n.Pivot)
		}
		for _, c := range n.Cases {
			Walk(v, c)
		}
		Walk(v, n.Default)
	case *Case:
		Walk(v, n.Test)
		Walk(v, n.Conseq)
	case *MapExpr:
		for _, p := range n.Parms {
			Walk(v, p)
		}
		for _, d := range n.Defs {
			Walk(v, d)
		}
		Walk(v, n.Body)
	case *Parm:
		Walk(v, n.Type)
		Walk(v, n.Name)
	case *Or:
		walkExprs(v, n.Operands)
	case *And:
		walkExprs(v, n.Operands)
	case *Not:
		Walk(v, n.Expr)
	case *Compare:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *Arith:
		Walk(v, n.Head)
		for _, o := range n.Tail {
			Walk(v, o.Expr)
		}
	case *Neg:
		Walk(v, n.Expr)
	case *Apply:
		Walk(v, n.Pivot)
		for _, s := range n.Suffixes {
			Walk(v, s)
		}
	case *Index:
		Walk(v, n.Expr)
	case *ArgList:
		walkExprs(v, n.Args)
	case *Vector:
		walkExprs(v, n.Elems)
	case *Struct:
		walkExprs(v, n.Fields)
	case *Group:
		Walk(v, n.Expr)
	case *StaticIndex, *Identifier, *BoolLit, *NumLit, *StrLit:
		break
	default:
		panic(fmt.Sprintf("impossible node type %T", n))
	}
	v.Visit(nil)
}

func walkExprs(v Visitor, es []Expr) {
	for _, e := range es {
		Walk(v, e)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at n in depth-first order,
// calling f(n) for each node and then f(nil) after its children.
// If f returns false, the children of the node are not visited.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}
