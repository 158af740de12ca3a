// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"

	"github.com/eaburns/jql/loc"
	"github.com/eaburns/jql/syn"
)

// Config are configuration parameters for the type checker.
type Config struct {
	// Env, if non-nil, holds the predeclared names.
	// The program is checked in a new scope pushed onto Env,
	// which is popped before Check returns.
	// The default is an empty Env.
	Env *Env
	// Locs, if non-nil, locates the errors.
	Locs *loc.Files
	// Trace is whether to enable debug tracing.
	Trace bool
}

// Info is the result of checking a Program.
type Info struct {
	// Types are the types of every expression.
	Types map[syn.Expr]Type
	// Defs are the schemes of the top-level definitions
	// in the order that they are defined.
	Defs []*Scheme
}

// Check type-checks a Program and returns the Info
// or the first error encountered.
func Check(prog *syn.Program, cfg Config) (*Info, error) {
	env := cfg.Env
	if env == nil {
		env = NewEnv()
	}
	x := &checker{
		cfg:  cfg,
		env:  env,
		info: &Info{Types: make(map[syn.Expr]Type)},
	}
	defer env.popTo(env.depth())
	env.Push()
	if err := checkProgram(x, prog); err != nil {
		return nil, locate(cfg.Locs, err)
	}
	return x.info, nil
}

type checker struct {
	cfg    Config
	env    *Env
	info   *Info
	indent string
}

func checkProgram(x *checker, prog *syn.Program) (err error) {
	defer x.tr("checkProgram")(&err)

	for _, form := range prog.Forms {
		switch form := form.(type) {
		case *syn.Statement:
			if _, err := checkExpr(x, form.Expr); err != nil {
				return err
			}
		case *syn.VarDefine:
			s, err := checkVarDefine(x, form)
			if err != nil {
				return err
			}
			x.info.Defs = append(x.info.Defs, s)
		case *syn.TypeDef:
			s, err := checkTypeDef(x, form)
			if err != nil {
				return err
			}
			x.info.Defs = append(x.info.Defs, s)
		default:
			panic(fmt.Sprintf("impossible form type %T", form))
		}
	}
	return nil
}

// checkVarDefine binds the defined name
// before the body is checked, so the body may refer to it.
func checkVarDefine(x *checker, def *syn.VarDefine) (_ *Scheme, err error) {
	defer x.tr("checkVarDefine(%s)", def.Name.Name)(&err)

	s, err := x.env.declare(&Scheme{Name: def.Name.Name, Kind: ValueScheme, Def: def}, nil, def.Type)
	if err != nil {
		return nil, err
	}
	x.log("%s: %s", s.Name, s.Type)
	t, err := checkExpr(x, def.Expr)
	if err != nil {
		return nil, err
	}
	if !Equal(s.Type, t) {
		return nil, newError(def.Expr, "%s is declared %s, but its definition has type %s", s.Name, s.Type, t)
	}
	return s, nil
}

func checkTypeDef(x *checker, def *syn.TypeDef) (_ *Scheme, err error) {
	defer x.tr("checkTypeDef(%s)", def.Name.Name)(&err)

	s, err := x.env.declare(&Scheme{Name: def.Name.Name, Kind: TypeScheme, Def: def}, nil, def.Type)
	if err != nil {
		return nil, err
	}
	x.log("%s: %s", s.Name, s.Type)
	return s, nil
}

func checkExpr(x *checker, expr syn.Expr) (t Type, err error) {
	defer x.tr("checkExpr(%s)", expr)(&err)

	switch expr := expr.(type) {
	case *syn.Match:
		t, err = checkMatch(x, expr)
	case *syn.MapExpr:
		t, err = checkMap(x, expr)
	case *syn.Or:
		t, err = checkOperands(x, expr.Operands, Bool)
	case *syn.And:
		t, err = checkOperands(x, expr.Operands, Bool)
	case *syn.Not:
		t, err = checkOperands(x, []syn.Expr{expr.Expr}, Bool)
	case *syn.Compare:
		t, err = checkCompare(x, expr)
	case *syn.Arith:
		es := []syn.Expr{expr.Head}
		for _, o := range expr.Tail {
			es = append(es, o.Expr)
		}
		t, err = checkOperands(x, es, Num)
	case *syn.Neg:
		t, err = checkOperands(x, []syn.Expr{expr.Expr}, Num)
	case *syn.Apply:
		t, err = checkApply(x, expr)
	case *syn.Identifier:
		t, err = checkIdentifier(x, expr)
	case *syn.Vector:
		t, err = checkVector(x, expr)
	case *syn.Struct:
		var fields []Type
		if fields, err = checkExprs(x, expr.Fields); err == nil {
			t = &Struct{Fields: fields}
		}
	case *syn.Group:
		t, err = checkExpr(x, expr.Expr)
	case *syn.BoolLit:
		t = Bool
	case *syn.NumLit:
		t = Num
	case *syn.StrLit:
		t = Str
	default:
		panic(fmt.Sprintf("impossible expression type %T", expr))
	}
	if err != nil {
		return nil, err
	}
	x.info.Types[expr] = t
	return t, nil
}

func checkExprs(x *checker, es []syn.Expr) ([]Type, error) {
	var ts []Type
	for _, e := range es {
		t, err := checkExpr(x, e)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// checkOperands checks that each operand has the given type,
// which is then also the result type.
func checkOperands(x *checker, es []syn.Expr, want Type) (Type, error) {
	for _, e := range es {
		t, err := checkExpr(x, e)
		if err != nil {
			return nil, err
		}
		if !Equal(t, want) {
			return nil, newError(e, "operand has type %s, expected %s", t, want)
		}
	}
	return want, nil
}

func checkCompare(x *checker, cmp *syn.Compare) (Type, error) {
	l, err := checkExpr(x, cmp.Left)
	if err != nil {
		return nil, err
	}
	r, err := checkExpr(x, cmp.Right)
	if err != nil {
		return nil, err
	}
	if !Equal(l, r) {
		return nil, newError(cmp, "mismatched types %s and %s in %s", l, r, cmp.Op.Lexeme())
	}
	if cmp.Op != syn.Equal {
		switch t := unify(l, r); t {
		case Num, Str, Any:
			break
		default:
			return nil, newError(cmp, "%s is not ordered", t)
		}
	}
	return Bool, nil
}

func checkMatch(x *checker, m *syn.Match) (_ Type, err error) {
	var testType Type = Bool
	if m.Pivot != nil {
		if testType, err = checkExpr(x, m.Pivot); err != nil {
			return nil, err
		}
	}
	var result Type
	branch := func(e syn.Expr) error {
		t, err := checkExpr(x, e)
		switch {
		case err != nil:
			return err
		case result == nil:
			result = t
		case !Equal(result, t):
			err := newError(e, "match branch has type %s, expected %s", t, result)
			note(err, "all cases and the default must have the same type")
			return err
		default:
			result = unify(result, t)
		}
		return nil
	}
	for _, c := range m.Cases {
		t, err := checkExpr(x, c.Test)
		if err != nil {
			return nil, err
		}
		if !Equal(t, testType) {
			if m.Pivot == nil {
				return nil, newError(c.Test, "case test has type %s, expected bool", t)
			}
			return nil, newError(c.Test, "case test has type %s, expected %s to match %s", t, testType, m.Pivot)
		}
		testType = unify(testType, t)
		if err := branch(c.Conseq); err != nil {
			return nil, err
		}
	}
	if err := branch(m.Default); err != nil {
		return nil, err
	}
	return result, nil
}

// checkMap checks a map expression in a new scope
// binding its parameters and then its local definitions.
func checkMap(x *checker, m *syn.MapExpr) (_ Type, err error) {
	x.env.Push()
	defer x.env.Pop()

	var parms []Type
	for _, p := range m.Parms {
		t, err := x.env.Resolve(p.Type)
		if err != nil {
			return nil, err
		}
		if err := x.env.Bind(&Scheme{Name: p.Name.Name, Kind: ValueScheme, Type: t, Def: p}); err != nil {
			return nil, err
		}
		parms = append(parms, t)
	}
	for _, def := range m.Defs {
		if _, err := checkVarDefine(x, def); err != nil {
			return nil, err
		}
	}
	ret, err := checkExpr(x, m.Body)
	if err != nil {
		return nil, err
	}
	return &Func{Parms: parms, Ret: ret}, nil
}

func checkApply(x *checker, app *syn.Apply) (Type, error) {
	t, err := checkExpr(x, app.Pivot)
	if err != nil {
		return nil, err
	}
	for _, suffix := range app.Suffixes {
		if t, err = checkSuffix(x, t, suffix); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func checkSuffix(x *checker, t Type, suffix syn.Suffix) (Type, error) {
	switch suffix := suffix.(type) {
	case *syn.Index:
		i, err := checkExpr(x, suffix.Expr)
		if err != nil {
			return nil, err
		}
		if !Equal(i, Num) {
			return nil, newError(suffix.Expr, "index has type %s, expected num", i)
		}
		switch t := t.(type) {
		case *Vector:
			return t.Elem, nil
		case Basic:
			if t == Any {
				return Any, nil
			}
		}
		return nil, newError(suffix, "cannot index %s", t)
	case *syn.ArgList:
		args, err := checkExprs(x, suffix.Args)
		if err != nil {
			return nil, err
		}
		if t == Any {
			return Any, nil
		}
		f, ok := t.(*Func)
		if !ok {
			return nil, newError(suffix, "cannot apply %s", t)
		}
		if len(args) != len(f.Parms) {
			return nil, newError(suffix, "got %d arguments, expected %d", len(args), len(f.Parms))
		}
		for i, arg := range args {
			if !Equal(arg, f.Parms[i]) {
				return nil, newError(suffix.Args[i], "argument %d has type %s, expected %s", i, arg, f.Parms[i])
			}
		}
		return f.Ret, nil
	case *syn.StaticIndex:
		if t == Any {
			return Any, nil
		}
		s, ok := t.(*Struct)
		if !ok {
			return nil, newError(suffix, "cannot select a field of %s", t)
		}
		if suffix.N >= len(s.Fields) {
			return nil, newError(suffix, "field %d out of range for %s", suffix.N, t)
		}
		return s.Fields[suffix.N], nil
	default:
		panic(fmt.Sprintf("impossible suffix type %T", suffix))
	}
}

func checkIdentifier(x *checker, id *syn.Identifier) (Type, error) {
	s := x.env.Lookup(id.Name)
	switch {
	case s == nil:
		return nil, newError(id, "undefined: %s", id.Name)
	case s.Kind != ValueScheme:
		return nil, newError(id, "%s %s used as a value", s.Kind, id.Name)
	}
	t, err := s.Inst(nil)
	if err != nil {
		return nil, at(id, err)
	}
	return t, nil
}

func checkVector(x *checker, vec *syn.Vector) (Type, error) {
	var elem Type = Any
	for i, e := range vec.Elems {
		t, err := checkExpr(x, e)
		if err != nil {
			return nil, err
		}
		if i > 0 && !Equal(elem, t) {
			return nil, newError(e, "vector element has type %s, expected %s", t, elem)
		}
		elem = unify(elem, t)
	}
	return &Vector{Elem: elem}, nil
}

// tr traces a call.
// The argument to the returned function,
// if non-nil, points to the error result of the call.
func (x *checker) tr(f string, vs ...interface{}) func(*error) {
	if !x.cfg.Trace {
		return func(*error) {}
	}
	x.log(f, vs...)
	olddent := x.indent
	x.indent += "---"
	return func(err *error) {
		x.indent = olddent
		if err != nil && *err != nil {
			x.log("%v", *err)
		}
	}
}

func (x *checker) log(f string, vs ...interface{}) {
	if !x.cfg.Trace {
		return
	}
	fmt.Print(x.indent)
	fmt.Printf(f, vs...)
	fmt.Println("")
}
