package evolution

import (
	"encoding/json"
	"fmt"
)

// Wire field names are fixed: consumers of the original API read
// currentDigimon, preEvolutions and postEvolutions exactly as spelled.

// Ref points at one creature from a lineage. Stage and Number are nil when
// the reference is a stub (a name listed as a successor without a row of its
// own); nil serializes as JSON null, never as a zero value.
type Ref struct {
	Name   string  `json:"name"`
	Stage  *string `json:"stage"`
	Number *int    `json:"number"`
}

// Descriptor is the full record shape used for the lineage subject.
type Descriptor struct {
	Name      string  `json:"name"`
	Number    *int    `json:"number"`
	Stage     *string `json:"stage"`
	Attribute *string `json:"attribute"`
}

// Lineage is one resolved entry: the subject row plus its direct
// predecessors and successors. Empty edge lists serialize as [], never null.
type Lineage struct {
	Current      Descriptor `json:"currentDigimon"`
	Predecessors []Ref      `json:"preEvolutions"`
	Successors   []Ref      `json:"postEvolutions"`
}

// Result is the outcome of Resolve: Single, Multiple or NotFound.
type Result interface {
	isResult()
}

// Single wraps the lineage of an unambiguous name. It serializes as the
// entry object itself, not nested under a key.
type Single struct {
	Entry Lineage
}

func (Single) isResult() {}

func (s Single) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entry)
}

// Multiple holds every lineage for a duplicated name, in table order.
// Ambiguity is reported, never collapsed.
type Multiple struct {
	Queried string
	Entries []Lineage
}

func (Multiple) isResult() {}

func (m Multiple) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message string    `json:"message"`
		Results []Lineage `json:"results"`
	}{
		Message: fmt.Sprintf("Found %d results for: %s", len(m.Entries), m.Queried),
		Results: m.Entries,
	})
}

// NotFound reports a name with no matching row. Suggestions carries
// near-miss names when any exist.
type NotFound struct {
	Queried     string
	Suggestions []string
}

func (NotFound) isResult() {}

func (n NotFound) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error       bool     `json:"error"`
		Message     string   `json:"message"`
		Suggestions []string `json:"suggestions,omitempty"`
	}{
		Error:       true,
		Message:     fmt.Sprintf("Digimon not found: %s", n.Queried),
		Suggestions: n.Suggestions,
	})
}
