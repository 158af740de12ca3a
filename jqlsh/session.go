// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eaburns/jql/loc"
	"github.com/eaburns/jql/sem"
	"github.com/eaburns/jql/syn"
)

// A session holds the definitions accepted so far.
// Each input is checked after the definitions of all previous inputs.
type session struct {
	trace bool
	n     int
	locs  loc.Files
	forms []syn.Form
	types []string
	defs  []*sem.Scheme
}

// parse parses one input.
func (s *session) parse(input string) (*syn.Program, error) {
	cfg := syn.Config{
		Path:  fmt.Sprintf("input:%d", s.n+1),
		Locs:  &s.locs,
		Types: s.types,
		Trace: s.trace,
	}
	return syn.NewParser(input, cfg).Parse()
}

// tryParse parses an input without adding it to the session.
func (s *session) tryParse(input string) (*syn.Program, error) {
	return syn.NewParser(input, syn.Config{Types: s.types}).Parse()
}

// eval parses and checks an input.
// It returns a line describing each form of the input.
// The definitions of the input are kept only if there is no error.
func (s *session) eval(input string) ([]string, error) {
	prog, err := s.parse(input)
	if err != nil {
		return nil, err
	}
	s.n++
	forms := append(append([]syn.Form{}, s.forms...), prog.Forms...)
	info, err := sem.Check(&syn.Program{Forms: forms}, sem.Config{Locs: &s.locs, Trace: s.trace})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, form := range prog.Forms {
		switch form := form.(type) {
		case *syn.Statement:
			out = append(out, info.Types[form.Expr].String())
		case *syn.VarDefine:
			out = append(out, fmt.Sprintf("%s: %s", form.Name.Name, info.Types[form.Expr]))
			s.forms = append(s.forms, form)
		case *syn.TypeDef:
			out = append(out, "type "+form.Name.Name)
			s.forms = append(s.forms, form)
			s.types = append(s.types, form.Name.Name)
		}
	}
	s.defs = info.Defs
	return out, nil
}

// incomplete returns whether err is a parse error at the end of the input,
// meaning that more input may complete it.
func incomplete(input string, err error) bool {
	perr, ok := err.(*syn.ParseError)
	return ok && perr.Pos >= len(input)
}

// source returns the canonical rendering of the session's definitions.
func (s *session) source() string {
	return (&syn.Program{Forms: s.forms}).String()
}

// describe returns a line describing each definition of the session.
func (s *session) describe() []string {
	var lines []string
	for _, d := range s.defs {
		lines = append(lines, d.String()+": "+d.Type.String())
	}
	return lines
}

// complete returns the completions of the last word of the line
// from the reserved words and the names of the session's definitions.
func (s *session) complete(line string) []string {
	i := strings.LastIndexAny(line, " \t\n()[]{},.=<>+-*/%") + 1
	word := line[i:]
	if word == "" {
		return nil
	}
	words := []string{"true", "false"}
	for k := syn.DoKw; k.IsKeyword(); k++ {
		words = append(words, k.Lexeme())
	}
	for _, d := range s.defs {
		words = append(words, d.Name)
	}
	var cs []string
	for _, w := range words {
		if strings.HasPrefix(w, word) && w != word {
			cs = append(cs, line[:i]+w)
		}
	}
	sort.Strings(cs)
	return cs
}

func (s *session) reset() {
	*s = session{trace: s.trace}
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
