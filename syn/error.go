// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"errors"
	"fmt"

	"github.com/eaburns/peggy/peg"
)

// ErrHalted is returned by a Lexer or Parser that is used
// after it has already finished, successfully or not.
var ErrHalted = errors.New("halted")

// A SyntaxError is a lexical error.
type SyntaxError struct {
	Path string
	Line int
	// Pos is the byte offset of the offending input.
	Pos int
	Msg string
}

func (err *SyntaxError) Error() string {
	return errorString(err.Path, err.Line, err.Msg)
}

// A ParseError is a syntactic error.
type ParseError struct {
	Path string
	Line int
	// Pos is the byte offset of the offending token.
	Pos int
	Msg string

	text string
	fail *peg.Fail
}

func (err *ParseError) Error() string {
	return errorString(err.Path, err.Line, err.Msg)
}

// Tree returns the tree of grammar rules that were being parsed
// when the error occurred, outermost first.
// The leaf names the wanted token.
func (err *ParseError) Tree() *peg.Fail { return err.fail }

// Summary returns the error as described by the failure tree,
// with a column position.
func (err *ParseError) Summary() string {
	e := peg.SimpleError(err.text, err.fail)
	e.FilePath = err.Path
	return e.Error()
}

func errorString(path string, line int, msg string) string {
	if path == "" {
		return fmt.Sprintf("line %d: %s", line, msg)
	}
	return fmt.Sprintf("%s:%d: %s", path, line, msg)
}
