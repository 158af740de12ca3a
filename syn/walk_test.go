// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInspectOrder(t *testing.T) {
	p, err := Parse("define [num] v as [1, x] do match v[0] case 1 -> -y default -> f(2).0")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	var got []string
	Inspect(p, func(n Node) bool {
		if n != nil {
			got = append(got, strings.TrimPrefix(fmt.Sprintf("%T", n), "*syn."))
		}
		return true
	})
	want := []string{
		"Program",
		"VarDefine", "VectorType", "NumType", "Identifier",
		"Vector", "NumLit", "Identifier",
		"Statement", "Match",
		"Apply", "Identifier", "Index", "NumLit",
		"Case", "NumLit", "Neg", "Identifier",
		"Apply", "Identifier", "ArgList", "NumLit", "StaticIndex",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %v, want %v\n%s", got, want, diff)
	}
}

func TestInspectPrune(t *testing.T) {
	p, err := Parse("do map (num x) -> x + y do z")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	var idents []string
	Inspect(p, func(n Node) bool {
		switch n := n.(type) {
		case *MapExpr:
			return false
		case *Identifier:
			idents = append(idents, n.Name)
		}
		return true
	})
	if diff := cmp.Diff([]string{"z"}, idents); diff != "" {
		t.Errorf("got %v, want [z]\n%s", idents, diff)
	}
}

type depthVisitor struct {
	depth, max *int
}

func (v depthVisitor) Visit(n Node) Visitor {
	if n == nil {
		*v.depth--
		return nil
	}
	*v.depth++
	if *v.depth > *v.max {
		*v.max = *v.depth
	}
	return v
}

func TestWalkBalanced(t *testing.T) {
	p, err := Parse("do ((1))")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	var depth, max int
	Walk(depthVisitor{depth: &depth, max: &max}, p)
	if depth != 0 {
		t.Errorf("got final depth %d, want 0", depth)
	}
	// Program, Statement, Group, Group, NumLit.
	if max != 5 {
		t.Errorf("got max depth %d, want 5", max)
	}
}
