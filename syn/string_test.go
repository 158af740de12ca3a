// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestRender(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"", ""},
		{"do 5", "do 5\n"},
		{"do    5.50", "do 5.5\n"},
		{"define num x as 5 do 6", "define num x as 5\ndo 6\n"},
		{"do 8 type x as num", "do 8\ntype x as num\n"},
		{
			"define (num, [{num, str, bool}]) -> {bool, bool} x as y",
			"define (num, [{num, str, bool}]) -> {bool, bool} x as y\n",
		},
		{
			"define num x as (map (num x, num y) -> [x, y])(0, {1, 2}.0)[2]",
			"define num x as (map (num x, num y) -> [x, y])(0, {1, 2}.0)[2]\n",
		},
		{`do {1, {"hello", 56, true}}.1.1`, `do {1, {"hello", 56, true}}.1.1` + "\n"},
		{`do "a\tb\"c"`, `do "a\tb\"c"` + "\n"},
		{`do "C:\path" + "\'"`, `do "C:\\path" + "\\'"` + "\n"},
		{"do [].4.56.23[1203.453]()(x, y, z)", "do [].4.56.23[1203.453]()(x, y, z)\n"},
		{
			"do 6 and not -2 + -7 - - 8 or (3 and (6 or 3))",
			"do 6 and not -2 + -7 - -8 or (3 and (6 or 3))\n",
		},
		{"do a<=b do c>=d do e<f do g>h do i=j", "do a <= b\ndo c >= d\ndo e < f\ndo g > h\ndo i = j\n"},
		{"do 1*2/3%4", "do 1 * 2 / 3 % 4\n"},
		{
			"do match x + 5 case 3 -> 5 case 1 -> {} default -> 39",
			"do\n" +
				"\tmatch x + 5\n" +
				"\tcase 3 -> 5\n" +
				"\tcase 1 -> {}\n" +
				"\tdefault -> 39\n",
		},
		{
			"define str x as match default -> 50",
			"define str x as\n" +
				"\tmatch\n" +
				"\tdefault -> 50\n",
		},
		{
			"do map (num a) -> define num b as a * 2 b + 1",
			"do\n" +
				"\tmap (num a) ->\n" +
				"\t\tdefine num b as a * 2\n" +
				"\t\tb + 1\n",
		},
		{
			"do match case match default -> 1 -> 2 default -> 3",
			"do\n" +
				"\tmatch\n" +
				"\tcase\n" +
				"\t\tmatch\n" +
				"\t\tdefault -> 1 -> 2\n" +
				"\tdefault -> 3\n",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.src, func(t *testing.T) {
			p, err := Parse(test.src)
			if err != nil {
				t.Fatalf("failed to parse: %s", err)
			}
			if got := p.String(); got != test.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, test.want)
			}
		})
	}
}

// TestRenderRoundTrip tests that rendering parses to the same tree,
// which renders the same again.
func TestRenderRoundTrip(t *testing.T) {
	srcs := []string{
		"do 5",
		"define num x as 5 do 6",
		"do 8 type x as num",
		"define (num, [{num, str, bool}]) -> {bool, bool} x as y",
		"define num x as (map (num x, num y) -> [x, y])(0, {1, 2}.0)[2]",
		`do {1, {"hello", 56, true}}.1.1`,
		"",
		"do match x + 5 case 3 -> 5 case 1 -> {} default -> 39",
		"define str x as match default -> 50",
		"do [].4.56.23[1203.453]()(x, y, z)",
		"do 6 and not -2 + -7 - - 8 or (3 and (6 or 3))",
		"do (match x case 1 -> map () -> define num y as 2 y default -> 3)(4)",
		"type t as {num, [str]} define (t) -> t f as map (t x) -> x do f({1, [\"\"]})",
		"do 0.1 + 123456789012.5 + 1000000000000000000000",
	}
	for _, src := range srcs {
		src := src
		t.Run(src, func(t *testing.T) { checkRoundTrip(t, src) })
	}
}

func TestRenderRoundTripGenerated(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		g := &progGen{rnd: rnd}
		checkRoundTrip(t, g.program())
	}
}

// checkRoundTrip checks that the rendering of src
// parses to the same tree and renders the same again.
func checkRoundTrip(t *testing.T, src string) {
	t.Helper()
	p0, err := Parse(src)
	if err != nil {
		t.Errorf("failed to parse %q: %s", src, err)
		return
	}
	s0 := p0.String()
	p1, err := Parse(s0)
	if err != nil {
		t.Errorf("failed to parse rendering %q: %s", s0, err)
		return
	}
	if diff := cmp.Diff(p0, p1, ignoreRanges, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("rendering %q parsed to a different tree:\n%s", s0, diff)
	}
	if s1 := p1.String(); s1 != s0 {
		t.Errorf("rendering is not stable:\n%s\n----\n%s", s0, s1)
	}
}

// progGen generates random programs following the grammar.
// Tokens are separated by spaces so that adjacent tokens never merge.
type progGen struct {
	rnd   *rand.Rand
	types []string
}

func (g *progGen) program() string {
	var s strings.Builder
	for i := g.rnd.Intn(4); i >= 0; i-- {
		switch g.rnd.Intn(3) {
		case 0:
			name := fmt.Sprintf("t%d", len(g.types))
			s.WriteString("type " + name + " as " + g.typeSig(2) + "\n")
			g.types = append(g.types, name)
		case 1:
			s.WriteString(g.define(3) + "\n")
		default:
			s.WriteString("do " + g.expr(3) + "\n")
		}
	}
	return s.String()
}

func (g *progGen) typeSig(d int) string {
	n := 3
	if d > 0 {
		n = 6
	}
	if len(g.types) > 0 && g.rnd.Intn(4) == 0 {
		return g.types[g.rnd.Intn(len(g.types))]
	}
	switch g.rnd.Intn(n) {
	case 0:
		return "num"
	case 1:
		return "bool"
	case 2:
		return "str"
	case 3:
		return "[ " + g.typeSig(d-1) + " ]"
	case 4:
		return "( " + g.list(func() string { return g.typeSig(d - 1) }) + " ) -> " + g.typeSig(d-1)
	default:
		return "{ " + g.list(func() string { return g.typeSig(d - 1) }) + " }"
	}
}

// list returns zero to two comma-separated elements.
func (g *progGen) list(elem func() string) string {
	var elems []string
	for i := g.rnd.Intn(3); i > 0; i-- {
		elems = append(elems, elem())
	}
	return strings.Join(elems, " , ")
}

func (g *progGen) ident() string {
	names := []string{"a", "b", "x1", "foo_bar", "_z"}
	return names[g.rnd.Intn(len(names))]
}

func (g *progGen) define(d int) string {
	return "define " + g.typeSig(1) + " " + g.ident() + " as " + g.expr(d)
}

func (g *progGen) expr(d int) string {
	if d <= 0 {
		return g.term(0)
	}
	switch g.rnd.Intn(8) {
	case 0:
		s := "match"
		if g.rnd.Intn(2) == 0 {
			s += " " + g.expr(d-1)
		}
		for i := g.rnd.Intn(3); i > 0; i-- {
			s += " case " + g.expr(d-1) + " -> " + g.expr(d-1)
		}
		return s + " default -> " + g.expr(d-1)
	case 1:
		parm := func() string { return g.typeSig(1) + " " + g.ident() }
		s := "map ( " + g.list(parm) + " ) ->"
		ndefs := g.rnd.Intn(3)
		for i := 0; i < ndefs; i++ {
			s += " " + g.define(d-1)
		}
		body := g.expr(d - 1)
		if ndefs > 0 && strings.IndexAny(body[:1], "([-") == 0 {
			// The body would continue the last definition.
			body = "match default -> " + body
		}
		return s + " " + body
	default:
		return g.join(func() string { return g.and(d) }, "or")
	}
}

// join returns one or two elements separated by one of the ops.
func (g *progGen) join(elem func() string, ops ...string) string {
	s := elem()
	if g.rnd.Intn(3) == 0 {
		s += " " + ops[g.rnd.Intn(len(ops))] + " " + elem()
	}
	return s
}

func (g *progGen) and(d int) string {
	return g.join(func() string { return g.not(d) }, "and")
}

func (g *progGen) not(d int) string {
	if g.rnd.Intn(5) == 0 {
		return "not " + g.compare(d)
	}
	return g.compare(d)
}

func (g *progGen) compare(d int) string {
	return g.join(func() string { return g.sum(d) }, "=", "<=", ">=", "<", ">")
}

func (g *progGen) sum(d int) string {
	return g.join(func() string { return g.product(d) }, "+", "-")
}

func (g *progGen) product(d int) string {
	return g.join(func() string { return g.neg(d) }, "*", "/", "%")
}

func (g *progGen) neg(d int) string {
	if g.rnd.Intn(5) == 0 {
		return "- " + g.term(d)
	}
	return g.term(d)
}

func (g *progGen) term(d int) string {
	switch g.rnd.Intn(6) {
	case 0:
		nums := []string{"0", "7", "12.5", "0.25", "1000000"}
		return nums[g.rnd.Intn(len(nums))]
	case 1:
		bools := []string{"true", "false"}
		return bools[g.rnd.Intn(len(bools))]
	case 2:
		strs := []string{`""`, `"hi"`, `"a\"b"`, `"C:\path"`, `"\'"`, `"\t\\"`, `"\x41"`}
		return strs[g.rnd.Intn(len(strs))]
	default:
		return g.apply(d)
	}
}

func (g *progGen) apply(d int) string {
	s := g.addressable(d)
	if d <= 0 {
		return s
	}
	for i := g.rnd.Intn(3); i > 0; i-- {
		switch g.rnd.Intn(3) {
		case 0:
			s += " [ " + g.expr(d-1) + " ]"
		case 1:
			s += " ( " + g.list(func() string { return g.expr(d - 1) }) + " )"
		default:
			s += fmt.Sprintf(" .%d", g.rnd.Intn(10))
		}
	}
	return s
}

func (g *progGen) addressable(d int) string {
	if d <= 0 {
		return g.ident()
	}
	switch g.rnd.Intn(4) {
	case 0:
		return "{ " + g.list(func() string { return g.expr(d - 1) }) + " }"
	case 1:
		return "[ " + g.list(func() string { return g.expr(d - 1) }) + " ]"
	case 2:
		return "( " + g.expr(d-1) + " )"
	default:
		return g.ident()
	}
}

func TestNodeString(t *testing.T) {
	p, err := Parse("define (num, str) -> [bool] f as map (num n, str s) -> [n < 1]")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	def := p.Forms[0].(*VarDefine)
	m := def.Expr.(*MapExpr)
	tests := []struct {
		node Node
		want string
	}{
		{def.Type, "(num, str) -> [bool]"},
		{def.Name, "f"},
		{m.Parms[1], "str s"},
		{m.Body, "[n < 1]"},
		{m.Body.(*Vector).Elems[0], "n < 1"},
	}
	for _, test := range tests {
		if got := test.node.String(); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}
