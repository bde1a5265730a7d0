// Package evolution resolves creature names against a loaded dataset table
// into lineages: the direct predecessors and successors of every matching
// row. Resolution is case-insensitive and total; bad input yields a typed
// NotFound outcome, not an error.
package evolution

import (
	"strings"

	"github.com/duynguyendang/digivolve/pkg/dataset"
)

// Resolver answers lineage queries over one immutable Table. Indexes are
// built once at construction; a Resolver is always replaced together with
// its Table on reload, so they cannot go stale.
type Resolver struct {
	table   *dataset.Table
	rows    []dataset.Row
	byName  map[string][]int // lower(name) -> row positions, table order
	reverse map[string][]int // lower(successor) -> positions of rows listing it
	names   []string         // distinct stored names, first-occurrence order
}

// NewResolver indexes t. Building is linear in rows plus edges.
func NewResolver(t *dataset.Table) *Resolver {
	r := &Resolver{
		table:   t,
		rows:    t.AllRows(),
		byName:  make(map[string][]int),
		reverse: make(map[string][]int),
	}
	for i, row := range r.rows {
		key := normalize(row.Name)
		if len(r.byName[key]) == 0 {
			r.names = append(r.names, row.Name)
		}
		r.byName[key] = append(r.byName[key], i)

		// One reverse entry per row, even when a row lists the same
		// successor more than once.
		seen := make(map[string]bool, len(row.Evolutions))
		for _, succ := range row.Evolutions {
			k := normalize(succ)
			if seen[k] {
				continue
			}
			seen[k] = true
			r.reverse[k] = append(r.reverse[k], i)
		}
	}
	return r
}

// Table returns the table this resolver was built over.
func (r *Resolver) Table() *dataset.Table { return r.table }

// Names returns the distinct stored names in first-occurrence order.
func (r *Resolver) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// FindPredecessors returns one Ref per row that lists name among its
// successors, in table order. A row counts once no matter how many times it
// repeats the name.
func (r *Resolver) FindPredecessors(name string) []Ref {
	refs := make([]Ref, 0)
	for _, i := range r.reverse[normalize(name)] {
		refs = append(refs, rowRef(r.rows[i]))
	}
	return refs
}

// FindSuccessors maps row's successor list to Refs in listed order. Each
// name resolves to the first matching row (stored casing, stage, number); a
// name with no row becomes a stub Ref with the name as written and nil
// stage and number. Stubs are data, not errors.
func (r *Resolver) FindSuccessors(row dataset.Row) []Ref {
	refs := make([]Ref, 0, len(row.Evolutions))
	for _, succ := range row.Evolutions {
		if matches := r.byName[normalize(succ)]; len(matches) > 0 {
			refs = append(refs, rowRef(r.rows[matches[0]]))
			continue
		}
		refs = append(refs, Ref{Name: succ})
	}
	return refs
}

// Resolve looks name up case-insensitively. No match yields NotFound with
// near-miss suggestions, one match yields Single, several yield Multiple
// with one lineage per matching row in table order.
func (r *Resolver) Resolve(name string) Result {
	matches := r.byName[normalize(name)]
	if len(matches) == 0 {
		return NotFound{Queried: name, Suggestions: r.Suggest(name, 3)}
	}
	entries := make([]Lineage, 0, len(matches))
	for _, i := range matches {
		entries = append(entries, r.lineage(r.rows[i]))
	}
	if len(entries) == 1 {
		return Single{Entry: entries[0]}
	}
	return Multiple{Queried: name, Entries: entries}
}

// CanEvolve reports whether any row matching from lists to as a successor,
// both sides case-insensitive.
func (r *Resolver) CanEvolve(from, to string) bool {
	want := normalize(to)
	for _, i := range r.byName[normalize(from)] {
		for _, succ := range r.rows[i].Evolutions {
			if normalize(succ) == want {
				return true
			}
		}
	}
	return false
}

// Dangling returns successor names that resolve to no row, as written,
// deduplicated case-insensitively in first-occurrence order.
func (r *Resolver) Dangling() []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range r.rows {
		for _, succ := range row.Evolutions {
			k := normalize(succ)
			if seen[k] || len(r.byName[k]) > 0 {
				continue
			}
			seen[k] = true
			out = append(out, succ)
		}
	}
	return out
}

func (r *Resolver) lineage(row dataset.Row) Lineage {
	return Lineage{
		Current:      describe(row),
		Predecessors: r.FindPredecessors(row.Name),
		Successors:   r.FindSuccessors(row),
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func rowRef(row dataset.Row) Ref {
	return Ref{Name: row.Name, Stage: optional(row.Stage), Number: row.Number}
}

func describe(row dataset.Row) Descriptor {
	return Descriptor{
		Name:      row.Name,
		Number:    row.Number,
		Stage:     optional(row.Stage),
		Attribute: optional(row.Attribute),
	}
}

// optional maps a blank cell to nil so it serializes as null.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
