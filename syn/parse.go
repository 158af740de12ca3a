// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"fmt"
	"strconv"

	"github.com/eaburns/jql/loc"
	"github.com/eaburns/peggy/peg"
)

// Config are configuration parameters for the parser.
type Config struct {
	// Path is the path of the source file, if any.
	// It is used in error messages and locations.
	Path string
	// Locs, if non-nil, has the source appended
	// when the parse succeeds.
	// The ranges of the AST nodes are offset
	// by the length of Locs before the parse.
	Locs *loc.Files
	// Types are names of types declared outside of the source.
	// They may be referenced by type signatures
	// in addition to the types declared by type forms.
	Types []string
	// Trace is whether to enable debug tracing.
	Trace bool
}

// A Parser parses a single source text into a Program.
//
// A Parser is single use: the first call to Parse
// returns the Program or the first error encountered,
// and every later call returns ErrHalted.
type Parser struct {
	cfg  Config
	text string
	lx   *Lexer
	offs int

	// tok is the lookahead token.
	tok Token
	// end is the end offset of the last consumed token.
	end    int
	halted bool

	// types are the type names declared by preceding type forms.
	types map[string]bool

	rules  []rule
	indent string
}

type rule struct {
	name string
	pos  int
}

// Parse parses the text into a Program.
func Parse(text string) (*Program, error) {
	return NewParser(text, Config{}).Parse()
}

// NewParser returns a new Parser for the text.
func NewParser(text string, cfg Config) *Parser {
	lx := NewLexer(text)
	lx.path = cfg.Path
	p := &Parser{
		cfg:   cfg,
		text:  text,
		lx:    lx,
		types: make(map[string]bool),
	}
	for _, name := range cfg.Types {
		p.types[name] = true
	}
	if cfg.Locs != nil {
		p.offs = cfg.Locs.Len()
	}
	return p
}

// Parse returns the parsed Program.
// The error is a *SyntaxError for malformed tokens,
// a *ParseError for malformed forms,
// or ErrHalted if Parse was already called.
func (p *Parser) Parse() (*Program, error) {
	if p.halted {
		return nil, ErrHalted
	}
	p.halted = true
	if err := p.next(); err != nil {
		return nil, err
	}
	prog, err := p.program()
	if err != nil {
		return nil, err
	}
	if p.cfg.Locs != nil {
		p.cfg.Locs.Add(p.cfg.Path, p.text)
	}
	return prog, nil
}

func (p *Parser) program() (_ *Program, err error) {
	defer p.tr("Program")(&err)

	prog := &Program{Range: loc.Range{p.offs, p.offs + len(p.text)}}
	for p.tok.Kind != EOF {
		var form Form
		switch p.tok.Kind {
		case DoKw:
			form, err = p.statement()
		case DefineKw:
			form, err = p.varDefine()
		case TypeKw:
			form, err = p.typeDef()
		default:
			return nil, p.fail(`"do", "define", or "type"`, "at the start of a top-level form")
		}
		if err != nil {
			return nil, err
		}
		prog.Forms = append(prog.Forms, form)
	}
	return prog, nil
}

func (p *Parser) statement() (_ *Statement, err error) {
	defer p.tr("Statement")(&err)

	start := p.tok.Pos
	if err := p.expect(DoKw, "to begin a statement"); err != nil {
		return nil, err
	}
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &Statement{Range: p.rng(start), Expr: expr}, nil
}

func (p *Parser) varDefine() (_ *VarDefine, err error) {
	defer p.tr("VarDefine")(&err)

	start := p.tok.Pos
	if err := p.expect(DefineKw, "to begin a definition"); err != nil {
		return nil, err
	}
	typ, err := p.typeSig()
	if err != nil {
		return nil, err
	}
	name, err := p.ident("to name the definition")
	if err != nil {
		return nil, err
	}
	if err := p.expect(AsKw, "after the defined name"); err != nil {
		return nil, err
	}
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &VarDefine{Range: p.rng(start), Type: typ, Name: name, Expr: expr}, nil
}

func (p *Parser) typeDef() (_ *TypeDef, err error) {
	defer p.tr("TypeDef")(&err)

	start := p.tok.Pos
	if err := p.expect(TypeKw, "to begin a type definition"); err != nil {
		return nil, err
	}
	name, err := p.ident("to name the type")
	if err != nil {
		return nil, err
	}
	if err := p.expect(AsKw, "after the type name"); err != nil {
		return nil, err
	}
	typ, err := p.typeSig()
	if err != nil {
		return nil, err
	}
	// The name is only usable after its own definition,
	// so a type cannot refer to itself.
	p.types[name.Name] = true
	return &TypeDef{Range: p.rng(start), Name: name, Type: typ}, nil
}

func (p *Parser) typeSig() (_ TypeSig, err error) {
	defer p.tr("TypeSig")(&err)

	start := p.tok.Pos
	switch p.tok.Kind {
	case NumKw:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &NumType{Range: p.rng(start)}, nil
	case BoolKw:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &BoolType{Range: p.rng(start)}, nil
	case StrKw:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &StrType{Range: p.rng(start)}, nil
	case Ident:
		name := p.tok.Text
		if !p.types[name] {
			return nil, p.fail("type", name+" is not a declared type")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &NamedType{Range: p.rng(start), Name: name}, nil
	case LBrack:
		if err := p.next(); err != nil {
			return nil, err
		}
		elem, err := p.typeSig()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RBrack, "to close a vector type"); err != nil {
			return nil, err
		}
		return &VectorType{Range: p.rng(start), Elem: elem}, nil
	case LParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		parms, err := p.typeSigs(RParen, "in a map parameter type list")
		if err != nil {
			return nil, err
		}
		if err := p.expect(Arrow, "before a map result type"); err != nil {
			return nil, err
		}
		ret, err := p.typeSig()
		if err != nil {
			return nil, err
		}
		return &FuncType{Range: p.rng(start), Parms: parms, Ret: ret}, nil
	case LBrace:
		if err := p.next(); err != nil {
			return nil, err
		}
		fields, err := p.typeSigs(RBrace, "in a struct type")
		if err != nil {
			return nil, err
		}
		return &StructType{Range: p.rng(start), Fields: fields}, nil
	default:
		return nil, p.fail("type", "in a type signature")
	}
}

// typeSigs parses a possibly empty, comma-separated list of type signatures
// and the closing token. The opening token is already consumed.
func (p *Parser) typeSigs(close Kind, context string) ([]TypeSig, error) {
	var typs []TypeSig
	if p.tok.Kind != close {
		for {
			typ, err := p.typeSig()
			if err != nil {
				return nil, err
			}
			typs = append(typs, typ)
			if p.tok.Kind != Comma {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(close, context); err != nil {
		return nil, err
	}
	return typs, nil
}

func (p *Parser) expr() (_ Expr, err error) {
	defer p.tr("Expr")(&err)

	switch p.tok.Kind {
	case MatchKw:
		return p.match()
	case MapKw:
		return p.mapExpr()
	default:
		return p.or()
	}
}

func (p *Parser) match() (_ *Match, err error) {
	defer p.tr("Match")(&err)

	start := p.tok.Pos
	if err := p.expect(MatchKw, "to begin a match"); err != nil {
		return nil, err
	}
	m := &Match{}
	if p.tok.Kind != CaseKw && p.tok.Kind != DefaultKw {
		if m.Pivot, err = p.expr(); err != nil {
			return nil, err
		}
	}
	for p.tok.Kind == CaseKw {
		c, err := p.matchCase()
		if err != nil {
			return nil, err
		}
		m.Cases = append(m.Cases, c)
	}
	if err := p.expect(DefaultKw, "to end a match"); err != nil {
		return nil, err
	}
	if err := p.expect(Arrow, "after default"); err != nil {
		return nil, err
	}
	if m.Default, err = p.expr(); err != nil {
		return nil, err
	}
	m.Range = p.rng(start)
	return m, nil
}

func (p *Parser) matchCase() (_ *Case, err error) {
	defer p.tr("Case")(&err)

	start := p.tok.Pos
	if err := p.expect(CaseKw, "to begin a case"); err != nil {
		return nil, err
	}
	test, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(Arrow, "after a case test"); err != nil {
		return nil, err
	}
	conseq, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &Case{Range: p.rng(start), Test: test, Conseq: conseq}, nil
}

func (p *Parser) mapExpr() (_ *MapExpr, err error) {
	defer p.tr("MapExpr")(&err)

	start := p.tok.Pos
	if err := p.expect(MapKw, "to begin a map"); err != nil {
		return nil, err
	}
	if err := p.expect(LParen, "to begin map parameters"); err != nil {
		return nil, err
	}
	m := &MapExpr{}
	if p.tok.Kind != RParen {
		for {
			parm, err := p.parm()
			if err != nil {
				return nil, err
			}
			m.Parms = append(m.Parms, parm)
			if p.tok.Kind != Comma {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(RParen, "to end map parameters"); err != nil {
		return nil, err
	}
	if err := p.expect(Arrow, "after map parameters"); err != nil {
		return nil, err
	}
	for p.tok.Kind == DefineKw {
		def, err := p.varDefine()
		if err != nil {
			return nil, err
		}
		m.Defs = append(m.Defs, def)
	}
	if m.Body, err = p.expr(); err != nil {
		return nil, err
	}
	m.Range = p.rng(start)
	return m, nil
}

func (p *Parser) parm() (_ *Parm, err error) {
	defer p.tr("Parm")(&err)

	start := p.tok.Pos
	typ, err := p.typeSig()
	if err != nil {
		return nil, err
	}
	name, err := p.ident("to name a map parameter")
	if err != nil {
		return nil, err
	}
	return &Parm{Range: p.rng(start), Type: typ, Name: name}, nil
}

func (p *Parser) or() (_ Expr, err error) {
	defer p.tr("Or")(&err)

	start := p.tok.Pos
	first, err := p.and()
	if err != nil || p.tok.Kind != OrKw {
		return first, err
	}
	operands := []Expr{first}
	for p.tok.Kind == OrKw {
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.and()
		if err != nil {
			return nil, err
		}
		operands = append(operands, e)
	}
	return &Or{Range: p.rng(start), Operands: operands}, nil
}

func (p *Parser) and() (_ Expr, err error) {
	defer p.tr("And")(&err)

	start := p.tok.Pos
	first, err := p.not()
	if err != nil || p.tok.Kind != AndKw {
		return first, err
	}
	operands := []Expr{first}
	for p.tok.Kind == AndKw {
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.not()
		if err != nil {
			return nil, err
		}
		operands = append(operands, e)
	}
	return &And{Range: p.rng(start), Operands: operands}, nil
}

func (p *Parser) not() (_ Expr, err error) {
	defer p.tr("Not")(&err)

	if p.tok.Kind != NotKw {
		return p.compare()
	}
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	e, err := p.compare()
	if err != nil {
		return nil, err
	}
	return &Not{Range: p.rng(start), Expr: e}, nil
}

func (p *Parser) compare() (_ Expr, err error) {
	defer p.tr("Compare")(&err)

	start := p.tok.Pos
	left, err := p.sum()
	if err != nil {
		return nil, err
	}
	switch op := p.tok.Kind; op {
	case Equal, LessEq, GreaterEq, Less, Greater:
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.sum()
		if err != nil {
			return nil, err
		}
		return &Compare{Range: p.rng(start), Op: op, Left: left, Right: right}, nil
	default:
		return left, nil
	}
}

func (p *Parser) sum() (_ Expr, err error) {
	defer p.tr("Sum")(&err)
	return p.arith(p.product, Plus, Minus)
}

func (p *Parser) product() (_ Expr, err error) {
	defer p.tr("Product")(&err)
	return p.arith(p.neg, Times, Divide, Modulo)
}

// arith parses a chain of operands separated by any of the operators.
func (p *Parser) arith(operand func() (Expr, error), ops ...Kind) (Expr, error) {
	start := p.tok.Pos
	head, err := operand()
	if err != nil {
		return nil, err
	}
	var tail []Operand
	for isOneOf(p.tok.Kind, ops) {
		op := p.tok.Kind
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := operand()
		if err != nil {
			return nil, err
		}
		tail = append(tail, Operand{Op: op, Expr: e})
	}
	if len(tail) == 0 {
		return head, nil
	}
	return &Arith{Range: p.rng(start), Head: head, Tail: tail}, nil
}

func isOneOf(k Kind, ks []Kind) bool {
	for _, kk := range ks {
		if k == kk {
			return true
		}
	}
	return false
}

func (p *Parser) neg() (_ Expr, err error) {
	defer p.tr("Negation")(&err)

	if p.tok.Kind != Minus {
		return p.term()
	}
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	e, err := p.term()
	if err != nil {
		return nil, err
	}
	return &Neg{Range: p.rng(start), Expr: e}, nil
}

func (p *Parser) term() (_ Expr, err error) {
	defer p.tr("Term")(&err)

	start, text := p.tok.Pos, p.tok.Text
	switch p.tok.Kind {
	case Boolean:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &BoolLit{Range: p.rng(start), Val: text == "true"}, nil
	case Number:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.fail("number", "number "+text+" is out of range")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &NumLit{Range: p.rng(start), Val: v}, nil
	case String:
		v := Unquote(text)
		if err := p.next(); err != nil {
			return nil, err
		}
		return &StrLit{Range: p.rng(start), Val: v}, nil
	default:
		return p.apply()
	}
}

func (p *Parser) apply() (_ Expr, err error) {
	defer p.tr("Application")(&err)

	start := p.tok.Pos
	pivot, err := p.addressable()
	if err != nil {
		return nil, err
	}
	var suffixes []Suffix
	for {
		sstart := p.tok.Pos
		switch p.tok.Kind {
		case LBrack:
			if err := p.next(); err != nil {
				return nil, err
			}
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(RBrack, "to close an index"); err != nil {
				return nil, err
			}
			suffixes = append(suffixes, &Index{Range: p.rng(sstart), Expr: e})
		case LParen:
			if err := p.next(); err != nil {
				return nil, err
			}
			args, err := p.exprs(RParen, "to close an argument list")
			if err != nil {
				return nil, err
			}
			suffixes = append(suffixes, &ArgList{Range: p.rng(sstart), Args: args})
		case DotIndex:
			n, err := strconv.Atoi(p.tok.Text[1:])
			if err != nil {
				return nil, p.fail("static index", "index "+p.tok.Text[1:]+" is out of range")
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			suffixes = append(suffixes, &StaticIndex{Range: p.rng(sstart), N: n})
		default:
			if len(suffixes) == 0 {
				return pivot, nil
			}
			return &Apply{Range: p.rng(start), Pivot: pivot, Suffixes: suffixes}, nil
		}
	}
}

func (p *Parser) addressable() (_ Expr, err error) {
	defer p.tr("Addressable")(&err)

	start := p.tok.Pos
	switch p.tok.Kind {
	case Ident:
		name := p.tok.Text
		if err := p.next(); err != nil {
			return nil, err
		}
		return &Identifier{Range: p.rng(start), Name: name}, nil
	case LBrace:
		if err := p.next(); err != nil {
			return nil, err
		}
		fields, err := p.exprs(RBrace, "to close a struct")
		if err != nil {
			return nil, err
		}
		return &Struct{Range: p.rng(start), Fields: fields}, nil
	case LBrack:
		if err := p.next(); err != nil {
			return nil, err
		}
		elems, err := p.exprs(RBrack, "to close a vector")
		if err != nil {
			return nil, err
		}
		return &Vector{Range: p.rng(start), Elems: elems}, nil
	case LParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RParen, "to close a group"); err != nil {
			return nil, err
		}
		return &Group{Range: p.rng(start), Expr: e}, nil
	default:
		return nil, p.fail("expression", "in an expression")
	}
}

// exprs parses a possibly empty, comma-separated list of expressions
// and the closing token. The opening token is already consumed.
func (p *Parser) exprs(close Kind, context string) ([]Expr, error) {
	var es []Expr
	if p.tok.Kind != close {
		for {
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			es = append(es, e)
			if p.tok.Kind != Comma {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(close, context); err != nil {
		return nil, err
	}
	return es, nil
}

func (p *Parser) ident(context string) (*Identifier, error) {
	if p.tok.Kind != Ident {
		if p.tok.Kind.IsKeyword() {
			context = p.tok.Text + " is reserved"
		}
		return nil, p.fail(Ident.String(), context)
	}
	start, name := p.tok.Pos, p.tok.Text
	if err := p.next(); err != nil {
		return nil, err
	}
	return &Identifier{Range: p.rng(start), Name: name}, nil
}

// expect consumes the lookahead token if it is of kind k;
// otherwise it returns a *ParseError.
func (p *Parser) expect(k Kind, context string) error {
	if p.tok.Kind != k {
		return p.fail(k.String(), context)
	}
	return p.next()
}

// next consumes the lookahead token and scans the next.
func (p *Parser) next() error {
	p.end = p.tok.Pos + len(p.tok.Text)
	tok, err := p.lx.Next()
	if err != nil {
		p.log("%v", err)
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) rng(start int) loc.Range {
	return loc.Range{start + p.offs, p.end + p.offs}
}

// fail returns a *ParseError for an unexpected lookahead token.
func (p *Parser) fail(want, context string) *ParseError {
	msg := fmt.Sprintf("Expected: %s, Found: %s", want, p.tok.Kind)
	if context != "" {
		msg += " (" + context + ")"
	}
	leaf := &peg.Fail{Pos: p.tok.Pos, Want: want}
	fail := leaf
	for i := len(p.rules) - 1; i >= 0; i-- {
		fail = &peg.Fail{
			Name: p.rules[i].name,
			Pos:  p.rules[i].pos,
			Kids: []*peg.Fail{fail},
		}
	}
	return &ParseError{
		Path: p.cfg.Path,
		Line: p.tok.Line,
		Pos:  p.tok.Pos,
		Msg:  msg,
		text: p.text,
		fail: fail,
	}
}

// tr pushes a grammar rule onto the rule stack
// and returns a function that pops it.
// The argument to the returned function, if non-nil,
// is the error result of the rule, which is traced.
func (p *Parser) tr(name string) func(*error) {
	p.rules = append(p.rules, rule{name: name, pos: p.tok.Pos})
	if !p.cfg.Trace {
		return func(*error) { p.rules = p.rules[:len(p.rules)-1] }
	}
	p.log("%s at %s", name, p.tok)
	olddent := p.indent
	p.indent += "---"
	return func(err *error) {
		p.indent = olddent
		p.rules = p.rules[:len(p.rules)-1]
		if err != nil && *err != nil {
			p.log("%s: %v", name, *err)
		}
	}
}

func (p *Parser) log(f string, vs ...interface{}) {
	if !p.cfg.Trace {
		return
	}
	fmt.Print(p.indent)
	fmt.Printf(f, vs...)
	fmt.Println("")
}
