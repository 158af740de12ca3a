// Copyright © 2020 The Pea Authors under an MIT-style license.

// jqlsh is an interactive shell that checks query source as it is entered.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eaburns/pretty"
	"github.com/peterh/liner"
)

const (
	promptMain  = "jql> "
	promptCont  = "...> "
	historyFile = ".jqlsh_history"
)

var (
	trace   = flag.Bool("trace", false, "enable parser and checker tracing")
	history = flag.String("history", defaultHistory(), "the history file, or empty for no history")
)

const help = `Enter forms to check them; definitions are kept for later input.
Input continues on the next line while it is incomplete.
Commands:
	:help          print this message
	:quit          exit
	:fmt           print the canonical rendering of the definitions
	:type          print the types of the definitions
	:ast <source>  print the syntax tree of the source
	:reset         forget all definitions
`

func main() {
	flag.Parse()
	pretty.Indent = "    "

	s := &session{trace: *trace}
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	if *history != "" {
		if f, err := os.Open(*history); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(*history); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		input, ok := readInput(ln, s)
		if !ok {
			fmt.Println("")
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		if strings.HasPrefix(strings.TrimSpace(input), ":") {
			if quit := command(s, strings.TrimSpace(input)); quit {
				return
			}
			continue
		}
		out, err := s.eval(input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Print(joinLines(out))
	}
}

// readInput reads lines until they parse
// or fail to parse before the end of the input.
// It returns false at the end of the input or when aborted.
func readInput(ln *liner.State, s *session) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted):
			return "", false
		case err != nil:
			fmt.Fprintln(os.Stderr, err)
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		input := b.String()
		if strings.HasPrefix(strings.TrimSpace(input), ":") {
			return input, true
		}
		if _, err := s.tryParse(input); !incomplete(input, err) {
			return input, true
		}
	}
}

func command(s *session, cmd string) (quit bool) {
	name, arg := cmd, ""
	if i := strings.IndexAny(cmd, " \t\n"); i >= 0 {
		name, arg = cmd[:i], strings.TrimSpace(cmd[i:])
	}
	switch name {
	case ":quit":
		return true
	case ":help":
		fmt.Print(help)
	case ":fmt":
		fmt.Print(s.source())
	case ":type":
		fmt.Print(joinLines(s.describe()))
	case ":ast":
		prog, err := s.tryParse(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}
		pretty.Print(prog)
		fmt.Println("")
	case ":reset":
		s.reset()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s, try :help\n", name)
	}
	return false
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
