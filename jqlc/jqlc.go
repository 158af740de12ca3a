// Copyright © 2020 The Pea Authors under an MIT-style license.

// jqlc checks, formats, and catalogs query source files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/eaburns/jql/catalog"
	"github.com/eaburns/jql/loc"
	"github.com/eaburns/jql/sem"
	"github.com/eaburns/jql/src"
	"github.com/eaburns/jql/syn"
	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/pretty"
)

var (
	tokens  = flag.Bool("tokens", false, "print the tokens of each source file")
	dumpAST = flag.Bool("ast", false, "print the syntax tree")
	format  = flag.Bool("fmt", false, "print the canonical rendering")
	tree    = flag.Bool("tree", false, "print the grammar rule tree of parse errors")
	trace   = flag.Bool("trace", false, "enable parser and checker tracing")
	verbose = flag.Bool("v", false, "enable verbose output")
	dbPath  = flag.String("db", "", "the catalog database file")
	put     = flag.String("put", "", "store the checked source in the catalog under this name")
	get     = flag.String("get", "", "print the named query from the catalog")
	del     = flag.String("delete", "", "delete the named query from the catalog")
	list    = flag.Bool("list", false, "list the queries in the catalog")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	pretty.Indent = "    "

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *get != "" || *del != "" || *list {
		if len(flag.Args()) != 0 {
			usage()
			os.Exit(1)
		}
		cat := openCatalog(ctx)
		defer cat.Close()
		catalogOps(ctx, cat)
		return
	}

	if len(flag.Args()) != 1 {
		usage()
		os.Exit(1)
	}
	s, err := src.Load(flag.Args()[0])
	if err != nil {
		die("failed to load source", err)
	}
	vprintf("loaded %d files from %s\n", len(s.Files), s.Path)
	if *tokens {
		printTokens(s)
		return
	}

	var locs loc.Files
	prog, err := s.Parse(syn.Config{Locs: &locs, Trace: *trace})
	if err != nil {
		die("", err)
	}
	if *dumpAST {
		pretty.Print(prog)
		fmt.Println("")
	}
	info, err := sem.Check(prog, sem.Config{Locs: &locs, Trace: *trace})
	if err != nil {
		die("", err)
	}
	for _, d := range info.Defs {
		vprintf("%s: %s\n", d, d.Type)
	}
	if *format {
		fmt.Print(prog)
	}
	if *put != "" {
		cat := openCatalog(ctx)
		defer cat.Close()
		if _, err := cat.Put(ctx, *put, prog.String()); err != nil {
			die("failed to store query", err)
		}
		vprintf("stored %s\n", *put)
	}
}

func printTokens(s *src.Src) {
	for _, path := range s.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			die("failed to read source", err)
		}
		lx := syn.NewLexer(string(data))
		for {
			tok, err := lx.Next()
			if err != nil {
				die(path, err)
			}
			fmt.Printf("%s:%d: %s\n", path, tok.Line, tok)
			if tok.Kind == syn.EOF {
				break
			}
		}
	}
}

func openCatalog(ctx context.Context) *catalog.Catalog {
	if *dbPath == "" {
		fmt.Fprintln(flag.CommandLine.Output(), "the -db flag is required")
		os.Exit(1)
	}
	cat, err := catalog.Open(ctx, *dbPath)
	if err != nil {
		die("", err)
	}
	return cat
}

func catalogOps(ctx context.Context, cat *catalog.Catalog) {
	switch {
	case *get != "":
		e, err := cat.Get(ctx, *get)
		if err != nil {
			die("", err)
		}
		for _, d := range e.Defs {
			vprintf("%s\n", d)
		}
		fmt.Print(e.Source)
	case *del != "":
		if err := cat.Delete(ctx, *del); err != nil {
			die("", err)
		}
		vprintf("deleted %s\n", *del)
	case *list:
		names, err := cat.List(ctx)
		if err != nil {
			die("", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	}
}

func vprintf(f string, vs ...interface{}) {
	if *verbose {
		fmt.Printf(f, vs...)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(out, "%s [flags] <source dir or file>\n", os.Args[0])
	fmt.Fprintf(out, "%s -db <file> [-get <name> | -delete <name> | -list]\n", os.Args[0])
	flag.PrintDefaults()
}

func die(s string, err error) {
	if pe, ok := err.(interface{ Tree() *peg.Fail }); ok && *tree {
		peg.PrettyWrite(os.Stdout, pe.Tree())
		fmt.Println("")
	}
	if s == "" {
		fmt.Fprintln(flag.CommandLine.Output(), err)
	} else {
		fmt.Fprintf(flag.CommandLine.Output(), "%s: %s\n", s, err)
	}
	os.Exit(1)
}
