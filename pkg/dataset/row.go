// Package dataset loads the evolution dataset into an immutable in-memory
// table. A Table is never mutated after Load returns; reloading produces a
// fresh Table that callers swap in atomically.
package dataset

import (
	"strings"
	"time"
)

// Row is one creature record in source order. Number is nil when the source
// cell is blank; it is never synthesized to 0. Evolutions holds the successor
// names exactly as listed (trimmed, empties dropped, column order preserved).
type Row struct {
	Number     *int
	Name       string
	Stage      string
	Attribute  string
	Evolutions []string
}

// Table is an immutable snapshot of a loaded dataset.
type Table struct {
	rows     []Row
	source   string
	loadedAt time.Time
}

// NewTable builds a table directly from already-parsed rows, for callers
// that assemble datasets programmatically rather than from a file.
func NewTable(rows []Row) *Table {
	out := make([]Row, len(rows))
	copy(out, rows)
	return &Table{rows: out, source: "inline", loadedAt: time.Now()}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Source returns the path the table was loaded from.
func (t *Table) Source() string { return t.source }

// LoadedAt returns the time Load produced this table.
func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// AllRows returns the rows in source order. The returned slice is a copy;
// the rows themselves share the underlying Evolutions slices and must be
// treated as read-only.
func (t *Table) AllRows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// RowsByName returns every row whose Name matches case-insensitively, in
// source order. Duplicate names are a normal dataset condition, not an error.
func (t *Table) RowsByName(name string) []Row {
	want := strings.ToLower(strings.TrimSpace(name))
	var out []Row
	for _, r := range t.rows {
		if strings.ToLower(r.Name) == want {
			out = append(out, r)
		}
	}
	return out
}

// Stats summarizes a table for banners and the dataset endpoint.
type Stats struct {
	Rows       int            `json:"rows"`
	Stages     map[string]int `json:"stages"`
	Attributes map[string]int `json:"attributes"`
}

// Stats tallies rows by stage and attribute.
func (t *Table) Stats() Stats {
	s := Stats{
		Rows:       len(t.rows),
		Stages:     make(map[string]int),
		Attributes: make(map[string]int),
	}
	for _, r := range t.rows {
		if r.Stage != "" {
			s.Stages[r.Stage]++
		}
		if r.Attribute != "" {
			s.Attributes[r.Attribute]++
		}
	}
	return s
}
