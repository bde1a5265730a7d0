package export

import (
	"testing"

	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

func TestBuildStageBackbone(t *testing.T) {
	g := BuildStageBackbone(graphFixture())

	// Baby II, Child, unknown (the Greymon stub).
	if len(g.Nodes) != 3 {
		t.Fatalf("Expected 3 stage buckets, got %+v", g.Nodes)
	}
	if g.Nodes[0].ID != "Baby II" || g.Nodes[0].Count != 1 {
		t.Errorf("Expected first bucket Baby II with 1 member, got %+v", g.Nodes[0])
	}
	if g.Nodes[1].ID != "Child" || g.Nodes[1].Count != 1 {
		t.Errorf("Expected collapsed Agumon counted once under Child, got %+v", g.Nodes[1])
	}
	if g.Nodes[2].ID != "unknown" || g.Nodes[2].Count != 1 {
		t.Errorf("Expected stub bucket unknown with 1 member, got %+v", g.Nodes[2])
	}

	if len(g.Links) != 2 {
		t.Fatalf("Expected 2 stage links, got %+v", g.Links)
	}
	if g.Links[0].Source != "Baby II" || g.Links[0].Target != "Child" || g.Links[0].Value != 1 {
		t.Errorf("Unexpected first link: %+v", g.Links[0])
	}
	if g.Links[1].Source != "Child" || g.Links[1].Target != "unknown" || g.Links[1].Value != 1 {
		t.Errorf("Unexpected second link: %+v", g.Links[1])
	}
}

func TestBuildStageBackboneAggregatesEdges(t *testing.T) {
	r := evolution.NewResolver(dataset.NewTable([]dataset.Row{
		{Number: intp(4), Name: "Agumon", Stage: "Child", Attribute: "Vaccine", Evolutions: []string{"Greymon", "Tyranomon"}},
		{Number: intp(5), Name: "Gabumon", Stage: "Child", Attribute: "Data", Evolutions: []string{"Garurumon"}},
		{Number: intp(20), Name: "Greymon", Stage: "Adult", Attribute: "Vaccine"},
		{Number: intp(21), Name: "Tyranomon", Stage: "Adult", Attribute: "Data"},
		{Number: intp(22), Name: "Garurumon", Stage: "Adult", Attribute: "Data"},
	}))

	g := BuildStageBackbone(r)

	if len(g.Links) != 1 {
		t.Fatalf("Expected one aggregated Child->Adult link, got %+v", g.Links)
	}
	if g.Links[0].Value != 3 {
		t.Errorf("Expected 3 edges aggregated, got %d", g.Links[0].Value)
	}
}
