package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

// Dumps what the loader actually parsed out of a dataset file. Useful when a
// spreadsheet resolves strangely: shows numberless rows, duplicate names and
// dangling successor references.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <dataset> [name]", os.Args[0])
	}
	path := os.Args[1]

	tbl, err := dataset.Load(path)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	rows := tbl.AllRows()
	fmt.Printf("Loaded %d rows from %s\n", len(rows), path)

	numberless := 0
	seen := map[string][]string{}
	for _, row := range rows {
		if row.Number == nil {
			numberless++
		}
		key := strings.ToLower(strings.TrimSpace(row.Name))
		seen[key] = append(seen[key], row.Name)
	}
	fmt.Printf("Rows without a number: %d\n", numberless)

	for key, names := range seen {
		if len(names) > 1 {
			fmt.Printf("Duplicate name %q: %d rows (%s)\n", key, len(names), strings.Join(names, ", "))
		}
	}

	r := evolution.NewResolver(tbl)
	dangling := r.Dangling()
	fmt.Printf("Dangling successor references: %d\n", len(dangling))
	for _, name := range dangling {
		fmt.Printf("  - %s\n", name)
	}

	// Optional resolution probe
	if len(os.Args) > 2 {
		name := os.Args[2]
		switch res := r.Resolve(name).(type) {
		case evolution.Single:
			fmt.Printf("Name %s FOUND. Successors: %d, Predecessors: %d\n",
				res.Entry.Current.Name, len(res.Entry.Successors), len(res.Entry.Predecessors))
		case evolution.Multiple:
			fmt.Printf("Name %s FOUND %d times\n", name, len(res.Entries))
		case evolution.NotFound:
			fmt.Printf("Name %s NOT FOUND. Suggestions: %v\n", name, res.Suggestions)
		}
	}
}
