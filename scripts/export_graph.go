package main

import (
	"fmt"
	"os"

	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
	"github.com/duynguyendang/digivolve/pkg/export"
)

// Batch variant of the REPL export command: load a dataset, write the full
// evolution graph as D3 JSON.
func main() {
	path := "./data/digimon_list.xlsx"
	out := "evolution_graph.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if len(os.Args) > 2 {
		out = os.Args[2]
	}

	fmt.Printf("Exporting evolution graph from %s...\n", path)

	tbl, err := dataset.Load(path)
	if err != nil {
		fmt.Printf("Failed to load dataset: %v\n", err)
		os.Exit(1)
	}

	graph := export.BuildGraph(evolution.NewResolver(tbl))
	if err := export.SaveD3Graph(graph, out); err != nil {
		fmt.Printf("Failed to write graph: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d nodes and %d links to %s\n", len(graph.Nodes), len(graph.Links), out)
	fmt.Println("Success.")
}
