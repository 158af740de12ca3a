// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package src locates and parses query source files.
package src

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eaburns/jql/loc"
	"github.com/eaburns/jql/syn"
)

// Ext is the file extension of query source files.
const Ext = ".jql"

// A Src is a set of query source files.
type Src struct {
	// Path is the absolute source path.
	// This is the path to the source file or directory.
	Path string
	// Dir may differ from Path
	// if the source is given as a file, not a directory.
	Dir string
	// Files contains the source file paths in alphabetical order.
	Files []string
}

// Load returns a *Src loaded from path.
// path may be either a source file or a directory of source files.
func Load(path string) (*Src, error) {
	path, err := realPath(path)
	if err != nil {
		return nil, err
	}
	files, dir, err := srcFiles(path)
	if err != nil {
		return nil, err
	}
	return &Src{Path: path, Dir: dir, Files: files}, nil
}

// Parse parses the source files, in order, into a single Program.
//
// The cfg.Path is ignored; each file is parsed with its own path.
// Each file may use the types defined in the files before it.
// If cfg.Locs is nil, a new loc.Files is used.
func (s *Src) Parse(cfg syn.Config) (*syn.Program, error) {
	if cfg.Locs == nil {
		cfg.Locs = &loc.Files{}
	}
	prog := &syn.Program{Range: loc.Range{cfg.Locs.Len(), cfg.Locs.Len()}}
	types := append([]string{}, cfg.Types...)
	for _, path := range s.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read source: %w", err)
		}
		fcfg := cfg
		fcfg.Path = path
		fcfg.Types = types
		p, err := syn.NewParser(string(data), fcfg).Parse()
		if err != nil {
			return nil, err
		}
		for _, form := range p.Forms {
			if def, ok := form.(*syn.TypeDef); ok {
				types = append(types, def.Name.Name)
			}
		}
		prog.Forms = append(prog.Forms, p.Forms...)
		prog.Range = loc.Range{prog.Range.Start(), p.Range.End()}
	}
	return prog, nil
}

func realPath(dir string) (string, error) {
	switch dir {
	case string([]rune{filepath.Separator}):
		return dir, nil
	case ".":
		return os.Getwd()
	default:
		base := filepath.Base(dir)
		dir, err := realPath(filepath.Dir(dir))
		if err != nil {
			return "", err
		}
		switch base {
		case ".":
			return dir, nil
		case "..":
			return filepath.Dir(dir), nil
		default:
			return filepath.Join(dir, base), nil
		}
	}
}

func srcFiles(path string) ([]string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, "", err
	}
	if !stat.IsDir() {
		return []string{path}, filepath.Dir(path), nil
	}
	finfos, err := f.Readdir(-1)
	if err != nil {
		return nil, "", err
	}
	var paths []string
	for _, finfo := range finfos {
		if finfo.IsDir() || !strings.HasSuffix(finfo.Name(), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(path, finfo.Name()))
	}
	sort.Strings(paths)
	return paths, path, nil
}
