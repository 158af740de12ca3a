// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"

	"github.com/eaburns/jql/syn"
)

// A Kind is the kind of name bound by a Scheme.
type Kind int

// The scheme kinds.
const (
	ValueScheme Kind = iota
	TypeScheme
	ParmScheme
)

func (k Kind) String() string {
	switch k {
	case ValueScheme:
		return "value"
	case TypeScheme:
		return "type"
	case ParmScheme:
		return "type parameter"
	default:
		panic("impossible scheme kind")
	}
}

// A Scheme is the possibly generic type bound to a name.
type Scheme struct {
	Name string
	Kind Kind
	// Parms are the type parameters of a generic declaration.
	Parms []*Var
	// Type is the declared type, in terms of Parms.
	// Type is nil while the scheme is pending:
	// bound, but with its declaration not yet resolved.
	Type Type
	// Def is the defining node,
	// or nil if the scheme is declared outside of the source.
	Def syn.Node
}

// Pending returns whether the declaration of the scheme
// is still being resolved.
func (s *Scheme) Pending() bool { return s.Type == nil }

// Inst returns the type of the scheme
// with the args substituted for its type parameters.
// It is an error if the number of args differs from the number of parameters.
func (s *Scheme) Inst(args []Type) (Type, error) {
	if s.Pending() {
		return nil, newError(nil, "%s %s is used in its own declaration", s.Kind, s.Name)
	}
	if len(args) != len(s.Parms) {
		return nil, newError(nil, "%s %s expects %d type arguments, got %d",
			s.Kind, s.Name, len(s.Parms), len(args))
	}
	if len(args) == 0 {
		return s.Type, nil
	}
	sub := make(map[*Var]Type, len(args))
	for i, v := range s.Parms {
		sub[v] = args[i]
	}
	return Subst(s.Type, sub), nil
}

func (s *Scheme) String() string {
	if len(s.Parms) == 0 {
		return fmt.Sprintf("%s %s", s.Kind, s.Name)
	}
	str := s.Kind.String() + " ("
	for i, p := range s.Parms {
		if i > 0 {
			str += ", "
		}
		str += p.Name
	}
	return str + ") " + s.Name
}

// An Env is a stack of scopes binding names to Schemes.
//
// A name may be bound once per scope.
// A binding in an inner scope shadows those of the outer scopes
// until the inner scope is popped.
type Env struct {
	names map[string][]*Scheme
	// frames are the names bound by each scope, innermost last.
	frames [][]string
}

// NewEnv returns a new Env with a single, empty, universe scope.
func NewEnv() *Env {
	return &Env{
		names:  make(map[string][]*Scheme),
		frames: make([][]string, 1),
	}
}

// Push pushes a new, empty scope.
func (e *Env) Push() { e.frames = append(e.frames, nil) }

// Pop pops the innermost scope, unbinding its names.
// The universe scope is never popped.
func (e *Env) Pop() {
	if len(e.frames) == 1 {
		panic("pop of the universe scope")
	}
	top := e.frames[len(e.frames)-1]
	for _, name := range top {
		ss := e.names[name]
		if len(ss) == 1 {
			delete(e.names, name)
		} else {
			e.names[name] = ss[:len(ss)-1]
		}
	}
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *Env) depth() int { return len(e.frames) }

func (e *Env) popTo(depth int) {
	for len(e.frames) > depth {
		e.Pop()
	}
}

// Bind binds the scheme's name in the innermost scope.
// It is an error if the name is already bound in that scope.
func (e *Env) Bind(s *Scheme) error {
	top := &e.frames[len(e.frames)-1]
	for _, name := range *top {
		if name == s.Name {
			ss := e.names[name]
			err := newError(s.Def, "%s redefined", s.Name)
			err.prev = ss[len(ss)-1]
			return err
		}
	}
	*top = append(*top, s.Name)
	e.names[s.Name] = append(e.names[s.Name], s)
	return nil
}

// unbind removes the scheme most recently bound in the innermost scope.
func (e *Env) unbind(s *Scheme) {
	top := &e.frames[len(e.frames)-1]
	for i := len(*top) - 1; i >= 0; i-- {
		if (*top)[i] == s.Name {
			*top = append((*top)[:i], (*top)[i+1:]...)
			break
		}
	}
	ss := e.names[s.Name]
	if len(ss) == 1 {
		delete(e.names, s.Name)
	} else {
		e.names[s.Name] = ss[:len(ss)-1]
	}
}

// Lookup returns the innermost Scheme bound to the name,
// or nil if the name is not bound.
func (e *Env) Lookup(name string) *Scheme {
	ss := e.names[name]
	if len(ss) == 0 {
		return nil
	}
	return ss[len(ss)-1]
}

// Declare binds a possibly generic value or type
// in the innermost scope and resolves its signature.
//
// The name is bound to a pending Scheme first.
// The signature is resolved in a new scope
// binding each of parms to a type parameter,
// and the scope is popped before the Scheme is completed.
func (e *Env) Declare(name string, kind Kind, parms []string, sig syn.TypeSig) (*Scheme, error) {
	if kind == ParmScheme {
		panic("declare of a type parameter")
	}
	return e.declare(&Scheme{Name: name, Kind: kind}, parms, sig)
}

// declare leaves the Env unchanged on error.
func (e *Env) declare(s *Scheme, parms []string, sig syn.TypeSig) (_ *Scheme, err error) {
	if err := e.Bind(s); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			e.unbind(s)
		}
	}()
	e.Push()
	defer e.Pop()
	for _, p := range parms {
		v := &Var{Name: p}
		s.Parms = append(s.Parms, v)
		if err := e.Bind(&Scheme{Name: p, Kind: ParmScheme, Type: v}); err != nil {
			return nil, at(s.Def, err)
		}
	}
	t, err := e.Resolve(sig)
	if err != nil {
		return nil, err
	}
	s.Type = t
	return s, nil
}

// Resolve returns the Type of a type signature.
// Named types are expanded to the types they name.
func (e *Env) Resolve(sig syn.TypeSig) (Type, error) {
	switch sig := sig.(type) {
	case *syn.NumType:
		return Num, nil
	case *syn.BoolType:
		return Bool, nil
	case *syn.StrType:
		return Str, nil
	case *syn.VectorType:
		elem, err := e.Resolve(sig.Elem)
		if err != nil {
			return nil, err
		}
		return &Vector{Elem: elem}, nil
	case *syn.FuncType:
		parms, err := e.resolveList(sig.Parms)
		if err != nil {
			return nil, err
		}
		ret, err := e.Resolve(sig.Ret)
		if err != nil {
			return nil, err
		}
		return &Func{Parms: parms, Ret: ret}, nil
	case *syn.StructType:
		fields, err := e.resolveList(sig.Fields)
		if err != nil {
			return nil, err
		}
		return &Struct{Fields: fields}, nil
	case *syn.NamedType:
		s := e.Lookup(sig.Name)
		switch {
		case s == nil:
			return nil, newError(sig, "undefined type %s", sig.Name)
		case s.Kind == ValueScheme:
			return nil, newError(sig, "value %s used as a type", sig.Name)
		case s.Pending():
			return nil, newError(sig, "invalid recursive type %s", sig.Name)
		}
		t, err := s.Inst(nil)
		if err != nil {
			return nil, at(sig, err)
		}
		return t, nil
	default:
		panic(fmt.Sprintf("impossible type signature %T", sig))
	}
}

func (e *Env) resolveList(sigs []syn.TypeSig) ([]Type, error) {
	var ts []Type
	for _, sig := range sigs {
		t, err := e.Resolve(sig)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}
