// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package sem resolves the names and checks the types of a syn.Program.
package sem

import "strings"

// A Type is the resolved type of an expression or a type signature.
type Type interface {
	String() string
	isType()
}

// A Basic is a primitive type.
type Basic int

// The basic types.
const (
	Num Basic = iota
	Bool
	Str
	// Any is the unconstrained type.
	// It is equal to every type.
	Any
)

// A Vector is the type of a homogeneous sequence.
type Vector struct {
	Elem Type
}

// A Func is the type of a map expression.
type Func struct {
	Parms []Type
	Ret   Type
}

// A Struct is the type of a positional record.
type Struct struct {
	Fields []Type
}

// A Var is a type parameter of a generic declaration.
// Vars are compared by identity.
type Var struct {
	Name string
}

func (Basic) isType()   {}
func (*Vector) isType() {}
func (*Func) isType()   {}
func (*Struct) isType() {}
func (*Var) isType()    {}

func (t Basic) String() string {
	switch t {
	case Num:
		return "num"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case Any:
		return "any"
	default:
		panic("impossible basic type")
	}
}

func (t *Vector) String() string { return "[" + t.Elem.String() + "]" }

func (t *Func) String() string {
	return "(" + typeList(t.Parms) + ") -> " + t.Ret.String()
}

func (t *Struct) String() string { return "{" + typeList(t.Fields) + "}" }

func (t *Var) String() string { return t.Name }

func typeList(ts []Type) string {
	var s strings.Builder
	for i, t := range ts {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(t.String())
	}
	return s.String()
}

// Equal returns whether two types are structurally identical
// or either is Any, at any depth.
func Equal(a, b Type) bool {
	if a == Any || b == Any {
		return true
	}
	switch a := a.(type) {
	case Basic:
		b, ok := b.(Basic)
		return ok && a == b
	case *Vector:
		b, ok := b.(*Vector)
		return ok && Equal(a.Elem, b.Elem)
	case *Func:
		b, ok := b.(*Func)
		return ok && equalList(a.Parms, b.Parms) && Equal(a.Ret, b.Ret)
	case *Struct:
		b, ok := b.(*Struct)
		return ok && equalList(a.Fields, b.Fields)
	case *Var:
		b, ok := b.(*Var)
		return ok && a == b
	default:
		panic("impossible type")
	}
}

func equalList(as, bs []Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// Subst returns the type with each Var in sub replaced by its mapped type.
// Parts of the type with no substituted Vars are shared, not copied.
func Subst(t Type, sub map[*Var]Type) Type {
	switch t := t.(type) {
	case Basic:
		return t
	case *Var:
		if s, ok := sub[t]; ok {
			return s
		}
		return t
	case *Vector:
		elem := Subst(t.Elem, sub)
		if elem == t.Elem {
			return t
		}
		return &Vector{Elem: elem}
	case *Func:
		parms, changed := substList(t.Parms, sub)
		ret := Subst(t.Ret, sub)
		if !changed && ret == t.Ret {
			return t
		}
		return &Func{Parms: parms, Ret: ret}
	case *Struct:
		fields, changed := substList(t.Fields, sub)
		if !changed {
			return t
		}
		return &Struct{Fields: fields}
	default:
		panic("impossible type")
	}
}

func substList(ts []Type, sub map[*Var]Type) ([]Type, bool) {
	var changed bool
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Subst(t, sub)
		changed = changed || out[i] != t
	}
	return out, changed
}

// unify returns the more constrained of two Equal types,
// replacing Any with the corresponding part of the other type.
func unify(a, b Type) Type {
	switch {
	case a == Any:
		return b
	case b == Any:
		return a
	}
	switch a := a.(type) {
	case *Vector:
		if b, ok := b.(*Vector); ok {
			return &Vector{Elem: unify(a.Elem, b.Elem)}
		}
	case *Func:
		if b, ok := b.(*Func); ok && len(a.Parms) == len(b.Parms) {
			return &Func{Parms: unifyList(a.Parms, b.Parms), Ret: unify(a.Ret, b.Ret)}
		}
	case *Struct:
		if b, ok := b.(*Struct); ok && len(a.Fields) == len(b.Fields) {
			return &Struct{Fields: unifyList(a.Fields, b.Fields)}
		}
	}
	return a
}

func unifyList(as, bs []Type) []Type {
	ts := make([]Type, len(as))
	for i := range as {
		ts[i] = unify(as[i], bs[i])
	}
	return ts
}
