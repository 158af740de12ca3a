// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/eaburns/jql/syn"
	"github.com/eaburns/pretty"
)

// TestInst tests that instantiating a generic scheme
// with the wrong number of type arguments is an error,
// and with the right number is the same as resolving the signature
// with the arguments substituted for the parameters.
func TestInst(t *testing.T) {
	tests := []struct {
		parms []string
		sig   string
		args  []string
		// subst is sig with args substituted for parms.
		subst string
	}{
		{
			parms: []string{"T"},
			sig:   "[T]",
			args:  []string{"num"},
			subst: "[num]",
		},
		{
			parms: []string{"T", "U"},
			sig:   "(T) -> {T, U}",
			args:  []string{"num", "str"},
			subst: "(num) -> {num, str}",
		},
		{
			parms: []string{"T", "U"},
			sig:   "(T) -> {T, U}",
			args:  []string{"[bool]", "(num) -> num"},
			subst: "([bool]) -> {[bool], (num) -> num}",
		},
		{
			parms: []string{"K", "V"},
			sig:   "[{K, [V]}]",
			args:  []string{"{}", "{str}"},
			subst: "[{{}, [{str}]}]",
		},
		{
			parms: []string{"T"},
			sig:   "num",
			args:  []string{"str"},
			subst: "num",
		},
		{
			parms: nil,
			sig:   "{bool, str}",
			args:  nil,
			subst: "{bool, str}",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(fmt.Sprintf("%v %s", test.parms, test.sig), func(t *testing.T) {
			env := NewEnv()
			s, err := env.Declare("x", TypeScheme, test.parms, parseSig(t, test.parms, test.sig))
			if err != nil {
				t.Fatalf("failed to declare: %s", err)
			}
			var args []Type
			for _, a := range test.args {
				args = append(args, resolve(t, a))
			}

			for _, n := range []int{0, len(args) + 1} {
				if n == len(args) {
					continue
				}
				wrong := make([]Type, n)
				for i := range wrong {
					wrong[i] = Num
				}
				_, err := s.Inst(wrong)
				want := fmt.Sprintf("expects %d type arguments, got %d", len(args), n)
				if err == nil || !regexp.MustCompile(want).MatchString(err.Error()) {
					t.Errorf("Inst(%d args)=%v, want matching %q", n, err, want)
				}
			}

			got, err := s.Inst(args)
			if err != nil {
				t.Fatalf("failed to instantiate: %s", err)
			}
			want := resolve(t, test.subst)
			if !Equal(got, want) || got.String() != want.String() {
				t.Errorf("got %s, want %s\n%s", got, want, pretty.String(got))
			}
			// The scheme is unchanged.
			if s.Type.String() != test.sig {
				t.Errorf("scheme type changed to %s, want %s", s.Type, test.sig)
			}
		})
	}
}

func TestEnvScopes(t *testing.T) {
	env := NewEnv()
	outer := &Scheme{Name: "x", Kind: ValueScheme, Type: Num}
	if err := env.Bind(outer); err != nil {
		t.Fatalf("failed to bind: %s", err)
	}
	if err := env.Bind(&Scheme{Name: "x", Kind: ValueScheme, Type: Str}); err == nil {
		t.Errorf("rebinding in the same scope succeeded")
	}

	env.Push()
	inner := &Scheme{Name: "x", Kind: ValueScheme, Type: Str}
	if err := env.Bind(inner); err != nil {
		t.Fatalf("failed to shadow: %s", err)
	}
	if err := env.Bind(&Scheme{Name: "y", Kind: ValueScheme, Type: Bool}); err != nil {
		t.Fatalf("failed to bind: %s", err)
	}
	if got := env.Lookup("x"); got != inner {
		t.Errorf("got %v, want the inner x", got)
	}
	env.Pop()

	if got := env.Lookup("x"); got != outer {
		t.Errorf("got %v, want the outer x", got)
	}
	if got := env.Lookup("y"); got != nil {
		t.Errorf("got %v, want y unbound", got)
	}
}

func TestDeclare(t *testing.T) {
	env := NewEnv()
	box, err := env.Declare("box", TypeScheme, []string{"T"}, &syn.VectorType{
		Elem: &syn.NamedType{Name: "T"},
	})
	if err != nil {
		t.Fatalf("failed to declare: %s", err)
	}
	vec, ok := box.Type.(*Vector)
	if !ok || vec.Elem != box.Parms[0] {
		t.Errorf("got %s, want a vector of the parameter", pretty.String(box.Type))
	}
	if env.Lookup("T") != nil {
		t.Errorf("type parameter T is still bound")
	}
	if env.Lookup("box") != box {
		t.Errorf("box is not bound")
	}

	tests := []struct {
		name  string
		kind  Kind
		parms []string
		sig   syn.TypeSig
		err   string
	}{
		{
			name: "t",
			kind: TypeScheme,
			sig:  &syn.NamedType{Name: "t"},
			err:  "invalid recursive type t",
		},
		{
			name: "u",
			kind: TypeScheme,
			sig:  &syn.VectorType{Elem: &syn.StructType{Fields: []syn.TypeSig{&syn.NamedType{Name: "u"}}}},
			err:  "invalid recursive type u",
		},
		{
			name:  "f",
			kind:  TypeScheme,
			parms: []string{"T", "T"},
			sig:   &syn.NumType{},
			err:   "T redefined",
		},
		{
			name: "box",
			kind: ValueScheme,
			sig:  &syn.NumType{},
			err:  "box redefined\n\tprevious definition is predeclared",
		},
		{
			name: "v",
			kind: ValueScheme,
			sig:  &syn.NamedType{Name: "box"},
			err:  "type box expects 1 type arguments, got 0",
		},
		{
			name: "w",
			kind: ValueScheme,
			sig:  &syn.NamedType{Name: "nope"},
			err:  "undefined type nope",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := env.Declare(test.name, test.kind, test.parms, test.sig)
			if err == nil {
				t.Fatalf("declare succeeded, want error matching %q", test.err)
			}
			if err := locate(nil, err); !regexp.MustCompile(test.err).MatchString(err.Error()) {
				t.Errorf("got %v, want matching %q", err, test.err)
			}
			if test.name != "box" && env.Lookup(test.name) != nil {
				t.Errorf("%s is still bound after a failed declaration", test.name)
			}
		})
	}
	if env.Lookup("box") != box {
		t.Errorf("box is no longer bound")
	}
}

func TestDeclareAfterError(t *testing.T) {
	env := NewEnv()
	if _, err := env.Declare("t", TypeScheme, []string{"T"}, &syn.NamedType{Name: "nope"}); err == nil {
		t.Fatalf("declare succeeded, want undefined type")
	}
	if s := env.Lookup("t"); s != nil {
		t.Fatalf("t is bound to %s after a failed declaration", s)
	}
	if _, err := env.Declare("t", TypeScheme, nil, &syn.NumType{}); err != nil {
		t.Fatalf("failed to declare t again: %s", err)
	}
	prog, err := syn.NewParser("define t x as 1", syn.Config{Types: []string{"t"}}).Parse()
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	if _, err := Check(prog, Config{Env: env}); err != nil {
		t.Errorf("failed to check: %s", err)
	}
}

func TestEqual(t *testing.T) {
	v0, v1 := &Var{Name: "T"}, &Var{Name: "T"}
	tests := []struct {
		a, b Type
		want bool
	}{
		{Num, Num, true},
		{Num, Str, false},
		{Any, Num, true},
		{&Vector{Elem: Bool}, Any, true},
		{&Vector{Elem: Any}, &Vector{Elem: Str}, true},
		{&Vector{Elem: Num}, &Vector{Elem: Str}, false},
		{&Vector{Elem: Num}, &Struct{Fields: []Type{Num}}, false},
		{&Func{Parms: []Type{Num}, Ret: Str}, &Func{Parms: []Type{Num}, Ret: Str}, true},
		{&Func{Parms: []Type{Num}, Ret: Str}, &Func{Parms: []Type{Num, Num}, Ret: Str}, false},
		{&Func{Ret: Str}, &Func{Ret: Bool}, false},
		{&Struct{}, &Struct{}, true},
		{&Struct{Fields: []Type{Num, Any}}, &Struct{Fields: []Type{Num, Bool}}, true},
		{v0, v0, true},
		{v0, v1, false},
		{v0, Num, false},
	}
	for _, test := range tests {
		if got := Equal(test.a, test.b); got != test.want {
			t.Errorf("Equal(%s, %s)=%v, want %v", test.a, test.b, got, test.want)
		}
		if got := Equal(test.b, test.a); got != test.want {
			t.Errorf("Equal(%s, %s)=%v, want %v", test.b, test.a, got, test.want)
		}
	}
}

// parseSig parses a type signature that may reference the type names.
func parseSig(t *testing.T, names []string, src string) syn.TypeSig {
	t.Helper()
	prog, err := syn.NewParser("define "+src+" x as x", syn.Config{Types: names}).Parse()
	if err != nil {
		t.Fatalf("failed to parse %s: %s", src, err)
	}
	return prog.Forms[0].(*syn.VarDefine).Type
}

func resolve(t *testing.T, src string) Type {
	t.Helper()
	typ, err := NewEnv().Resolve(parseSig(t, nil, src))
	if err != nil {
		t.Fatalf("failed to resolve %s: %s", src, err)
	}
	return typ
}
