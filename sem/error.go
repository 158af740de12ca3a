// Copyright © 2020 The Pea Authors under an MIT-style license.

package sem

import (
	"fmt"
	"strings"

	"github.com/eaburns/jql/loc"
	"github.com/eaburns/jql/syn"
)

// A TypeError is a name resolution or type checking error.
type TypeError struct {
	// Loc is the location of the error,
	// or nil if the location is not known.
	Loc   *loc.Loc
	Msg   string
	Notes []string

	node syn.Node
	// prev is the previous definition of a redefined name.
	prev *Scheme
}

func newError(n syn.Node, f string, vs ...interface{}) *TypeError {
	return &TypeError{node: n, Msg: fmt.Sprintf(f, vs...)}
}

func note(err *TypeError, f string, vs ...interface{}) {
	err.Notes = append(err.Notes, fmt.Sprintf(f, vs...))
}

// at returns err with its node set to n
// if err is a *TypeError with no node.
func at(n syn.Node, err error) error {
	if terr, ok := err.(*TypeError); ok && terr.node == nil {
		terr.node = n
	}
	return err
}

func (err *TypeError) Error() string {
	var s strings.Builder
	if err.Loc != nil {
		s.WriteString(err.Loc.String())
		s.WriteString(": ")
	}
	s.WriteString(err.Msg)
	for _, n := range err.Notes {
		s.WriteString("\n\t")
		s.WriteString(n)
	}
	return s.String()
}

// locate fills the location and notes of a *TypeError.
func locate(locs *loc.Files, err error) error {
	terr, ok := err.(*TypeError)
	if !ok {
		return err
	}
	if terr.Loc == nil && terr.node != nil && locs != nil {
		terr.Loc = locs.Loc(terr.node.GetRange())
	}
	if terr.prev != nil {
		switch {
		case terr.prev.Def == nil:
			note(terr, "previous definition is predeclared")
		case locs != nil:
			if l := locs.Loc(terr.prev.Def.GetRange()); l != nil {
				note(terr, "previous definition at %s", l)
			}
		}
		terr.prev = nil
	}
	return terr
}
