// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package catalog stores named, checked query sources in SQLite.
//
// A query is stored in its canonical rendering
// along with the schemes of its top-level definitions.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/canonical/sqlair"
	"github.com/eaburns/jql/sem"
	"github.com/eaburns/jql/syn"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a named query is not in the catalog.
var ErrNotFound = errors.New("not found")

// An Entry is a stored query.
type Entry struct {
	Name string
	// Source is the canonical rendering of the query.
	Source string
	// Defs describe the top-level definitions of the query,
	// one per line, as "kind name: type".
	Defs []string
}

// A Catalog is a store of named queries.
type Catalog struct {
	db *sqlair.DB
}

// entryRow is a row of the query table.
type entryRow struct {
	Name   string `db:"name"`
	Source string `db:"source"`
	Defs   string `db:"defs"`
}

var (
	createStmt = sqlair.MustPrepare(`
CREATE TABLE IF NOT EXISTS query (
	name text PRIMARY KEY,
	source text NOT NULL,
	defs text NOT NULL
);`)
	putStmt    = sqlair.MustPrepare(`INSERT OR REPLACE INTO query (*) VALUES ($entryRow.*)`, entryRow{})
	getStmt    = sqlair.MustPrepare(`SELECT &entryRow.* FROM query WHERE name = $entryRow.name`, entryRow{})
	listStmt   = sqlair.MustPrepare(`SELECT &entryRow.name FROM query ORDER BY name`, entryRow{})
	deleteStmt = sqlair.MustPrepare(`DELETE FROM query WHERE name = $entryRow.name`, entryRow{})
)

// Open opens the catalog in the SQLite database at path,
// creating it if needed.
// The path ":memory:" opens a new in-memory catalog.
func Open(ctx context.Context, path string) (*Catalog, error) {
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a different database.
		sqldb.SetMaxOpenConns(1)
	}
	db := sqlair.NewDB(sqldb)
	if err := db.Query(ctx, createStmt).Run(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the catalog.
func (c *Catalog) Close() error { return c.db.PlainDB().Close() }

// Put parses and checks the query text
// and stores it under name, replacing any previous query of that name.
// If the text does not parse or check, the error is returned
// unwrapped and the catalog is unchanged.
func (c *Catalog) Put(ctx context.Context, name, text string) (*Entry, error) {
	if name == "" {
		return nil, errors.New("empty query name")
	}
	prog, err := syn.NewParser(text, syn.Config{Path: name}).Parse()
	if err != nil {
		return nil, err
	}
	info, err := sem.Check(prog, sem.Config{})
	if err != nil {
		return nil, err
	}
	e := &Entry{Name: name, Source: prog.String()}
	for _, s := range info.Defs {
		e.Defs = append(e.Defs, s.String()+": "+s.Type.String())
	}
	row := entryRow{Name: e.Name, Source: e.Source, Defs: strings.Join(e.Defs, "\n")}
	if err := c.db.Query(ctx, putStmt, row).Run(); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", name, err)
	}
	return e, nil
}

// Get returns the named query.
// The error is ErrNotFound if there is no query of that name.
func (c *Catalog) Get(ctx context.Context, name string) (*Entry, error) {
	row := entryRow{Name: name}
	switch err := c.db.Query(ctx, getStmt, row).Get(&row); {
	case errors.Is(err, sqlair.ErrNoRows):
		return nil, fmt.Errorf("query %s: %w", name, ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("failed to get %s: %w", name, err)
	}
	e := &Entry{Name: row.Name, Source: row.Source}
	if row.Defs != "" {
		e.Defs = strings.Split(row.Defs, "\n")
	}
	return e, nil
}

// List returns the names of the stored queries in alphabetical order.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	var rows []entryRow
	switch err := c.db.Query(ctx, listStmt).GetAll(&rows); {
	case errors.Is(err, sqlair.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	return names, nil
}

// Delete removes the named query.
// The error is ErrNotFound if there is no query of that name.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	var outcome sqlair.Outcome
	if err := c.db.Query(ctx, deleteStmt, entryRow{Name: name}).Get(&outcome); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	n, err := outcome.Result().RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("query %s: %w", name, ErrNotFound)
	}
	return nil
}
