package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

func intp(n int) *int { return &n }

func graphFixture() *evolution.Resolver {
	return evolution.NewResolver(dataset.NewTable([]dataset.Row{
		{Number: intp(2), Name: "Koromon", Stage: "Baby II", Attribute: "Free", Evolutions: []string{"Agumon", "Agumon"}},
		{Number: intp(4), Name: "Agumon", Stage: "Child", Attribute: "Vaccine", Evolutions: []string{"Greymon"}},
		// Duplicate name: collapses into the first Agumon node.
		{Number: intp(44), Name: "agumon", Stage: "Adult", Attribute: "Virus", Evolutions: []string{"Greymon"}},
	}))
}

func TestBuildGraph(t *testing.T) {
	g := BuildGraph(graphFixture())

	// Koromon, Agumon (collapsed), Greymon (stub).
	if len(g.Nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d: %+v", len(g.Nodes), g.Nodes)
	}

	byID := make(map[string]D3Node)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	agumon, ok := byID["Agumon"]
	if !ok {
		t.Fatal("Expected collapsed node under first-occurrence spelling Agumon")
	}
	if agumon.Stage != "Child" || agumon.Number == nil || *agumon.Number != 4 {
		t.Errorf("Collapsed node should carry the first row's fields, got %+v", agumon)
	}
	if agumon.Group != "Child" {
		t.Errorf("Expected stage group Child, got %s", agumon.Group)
	}

	greymon, ok := byID["Greymon"]
	if !ok {
		t.Fatal("Expected stub node Greymon")
	}
	if !greymon.Stub || greymon.Group != "unknown" || greymon.Number != nil {
		t.Errorf("Unexpected stub node shape: %+v", greymon)
	}

	// Koromon->Agumon (deduped within the row) and Agumon->Greymon
	// (deduped across the two Agumon rows).
	if len(g.Links) != 2 {
		t.Fatalf("Expected 2 deduplicated links, got %+v", g.Links)
	}
	for _, l := range g.Links {
		if l.Relation != relationEvolvesTo {
			t.Errorf("Expected relation %s, got %s", relationEvolvesTo, l.Relation)
		}
	}
}

func TestSaveD3Graph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := SaveD3Graph(BuildGraph(graphFixture()), path); err != nil {
		t.Fatalf("SaveD3Graph failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded D3Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Exported file is not valid JSON: %v", err)
	}
	if len(decoded.Nodes) != 3 || len(decoded.Links) != 2 {
		t.Errorf("Round-trip mismatch: %d nodes, %d links", len(decoded.Nodes), len(decoded.Links))
	}
}

func TestBuildGraphEmpty(t *testing.T) {
	g := BuildGraph(evolution.NewResolver(dataset.NewTable(nil)))
	if g.Nodes == nil || g.Links == nil {
		t.Error("Expected empty slices, not nil")
	}
	if len(g.Nodes) != 0 || len(g.Links) != 0 {
		t.Errorf("Expected empty graph, got %+v", g)
	}
}
