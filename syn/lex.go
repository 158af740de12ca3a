// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eaburns/peggy/peg"
)

// A Lexer splits source text into tokens.
//
// A Lexer is single use: after it returns the EOF token or an error,
// every subsequent call to Next returns ErrHalted.
type Lexer struct {
	path   string
	text   string
	pos    int
	line   int
	halted bool
}

// NewLexer returns a new Lexer for the text.
func NewLexer(text string) *Lexer {
	return &Lexer{text: text, line: 1}
}

// Halted returns whether the lexer has finished.
func (lx *Lexer) Halted() bool { return lx.halted }

// Next returns the next token.
// The error is ErrHalted if the lexer has finished,
// or a *SyntaxError if the input is malformed.
func (lx *Lexer) Next() (Token, error) {
	if lx.halted {
		return Token{}, ErrHalted
	}
	lx.skipSpace()
	if lx.pos >= len(lx.text) {
		lx.halted = true
		return Token{Kind: EOF, Pos: lx.pos, Line: lx.line}, nil
	}

	start := lx.pos
	c := lx.text[lx.pos]
	lx.pos++
	switch c {
	case '(':
		return lx.token(LParen, start), nil
	case ')':
		return lx.token(RParen, start), nil
	case ',':
		return lx.token(Comma, start), nil
	case '=':
		return lx.token(Equal, start), nil
	case '+':
		return lx.token(Plus, start), nil
	case '*':
		return lx.token(Times, start), nil
	case '%':
		return lx.token(Modulo, start), nil
	case '/':
		return lx.token(Divide, start), nil
	case '[':
		return lx.token(LBrack, start), nil
	case ']':
		return lx.token(RBrack, start), nil
	case '{':
		return lx.token(LBrace, start), nil
	case '}':
		return lx.token(RBrace, start), nil
	case '-':
		if lx.accept('>') {
			return lx.token(Arrow, start), nil
		}
		return lx.token(Minus, start), nil
	case '<':
		if lx.accept('=') {
			return lx.token(LessEq, start), nil
		}
		return lx.token(Less, start), nil
	case '>':
		if lx.accept('=') {
			return lx.token(GreaterEq, start), nil
		}
		return lx.token(Greater, start), nil
	case '"':
		return lx.str(start)
	case '.':
		if !lx.digits() {
			return Token{}, lx.errorf(start, "expected an integer after %q", ".")
		}
		return lx.token(DotIndex, start), nil
	}
	switch {
	case isDigit(c):
		lx.pos--
		lx.digits()
		if lx.pos+1 < len(lx.text) && lx.text[lx.pos] == '.' && isDigit(lx.text[lx.pos+1]) {
			lx.pos++
			for lx.pos < len(lx.text) && isDigit(lx.text[lx.pos]) {
				lx.pos++
			}
		}
		return lx.token(Number, start), nil
	case isIdentStart(c):
		for lx.pos < len(lx.text) && isIdentByte(lx.text[lx.pos]) {
			lx.pos++
		}
		t := lx.token(Ident, start)
		if k, ok := keywords[t.Text]; ok {
			t.Kind = k
		}
		return t, nil
	default:
		r, _ := peg.DecodeRuneInString(lx.text[start:])
		return Token{}, lx.errorf(start, "invalid token %q", r)
	}
}

func (lx *Lexer) skipSpace() {
	for lx.pos < len(lx.text) {
		r, w := peg.DecodeRuneInString(lx.text[lx.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		if r == '\n' {
			lx.line++
		}
		lx.pos += w
	}
}

func (lx *Lexer) accept(c byte) bool {
	if lx.pos < len(lx.text) && lx.text[lx.pos] == c {
		lx.pos++
		return true
	}
	return false
}

// digits consumes an unsigned integer: either a lone 0,
// or a non-zero digit followed by the maximal run of digits.
// It returns false if there is no digit.
func (lx *Lexer) digits() bool {
	if lx.pos >= len(lx.text) || !isDigit(lx.text[lx.pos]) {
		return false
	}
	if lx.text[lx.pos] == '0' {
		lx.pos++
		return true
	}
	for lx.pos < len(lx.text) && isDigit(lx.text[lx.pos]) {
		lx.pos++
	}
	return true
}

// str scans a string literal; the opening quote is already consumed.
func (lx *Lexer) str(start int) (Token, error) {
	for lx.pos < len(lx.text) {
		c := lx.text[lx.pos]
		switch {
		case c == '\n':
			return Token{}, lx.errorf(start, "strings cannot span lines")
		case c == '\\':
			lx.pos++
			if lx.pos < len(lx.text) && lx.text[lx.pos] == '\n' {
				return Token{}, lx.errorf(start, "strings cannot span lines")
			}
			if lx.pos < len(lx.text) {
				lx.pos++
			}
		case c == '"':
			lx.pos++
			return lx.token(String, start), nil
		default:
			lx.pos++
		}
	}
	return Token{}, lx.errorf(start, "string missing closing quote")
}

func (lx *Lexer) token(k Kind, start int) Token {
	return Token{Kind: k, Text: lx.text[start:lx.pos], Pos: start, Line: lx.line}
}

func (lx *Lexer) errorf(pos int, f string, vs ...interface{}) *SyntaxError {
	lx.halted = true
	return &SyntaxError{
		Path: lx.path,
		Line: lx.line,
		Pos:  pos,
		Msg:  fmt.Sprintf(f, vs...),
	}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isIdentByte(c byte) bool { return isIdentStart(c) || isDigit(c) }

// Unquote returns the value of a string literal lexeme.
// The escapes produced by strconv.Quote are decoded;
// any other backslash is kept as literal text.
func Unquote(lit string) string {
	lit = lit[1 : len(lit)-1]
	var s strings.Builder
	for len(lit) > 0 {
		i := strings.IndexByte(lit, '\\')
		if i < 0 {
			s.WriteString(lit)
			break
		}
		s.WriteString(lit[:i])
		lit = lit[i:]
		r, multi, tail, err := strconv.UnquoteChar(lit, '"')
		switch {
		case err != nil:
			s.WriteByte('\\')
			lit = lit[1:]
		case r < utf8.RuneSelf || !multi:
			s.WriteByte(byte(r))
			lit = tail
		default:
			s.WriteRune(r)
			lit = tail
		}
	}
	return s.String()
}
