// Package repl implements the interactive lookup mode.
package repl

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/duynguyendang/digivolve/internal/manager"
	"github.com/duynguyendang/digivolve/pkg/evolution"
	"github.com/duynguyendang/digivolve/pkg/export"
)

// Run starts the interactive lookup loop. It reads from stdin until EOF or
// an exit command.
func Run(mgr *manager.Manager) {
	fmt.Println("\n--- Interactive Lookup Mode ---")
	printStats(mgr)

	fmt.Println("Type a Digimon name to look it up. Type 'help' for commands, 'exit' or 'quit' to stop.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		switch {
		case line == "help":
			printHelp()
		case line == "stats":
			printStats(mgr)
		case line == "reload":
			if tbl, err := mgr.Reload(); err != nil {
				fmt.Printf("❌ Reload failed: %v\n", err)
			} else {
				fmt.Printf("✅ Reloaded %d rows\n", tbl.Len())
			}
		case strings.HasPrefix(line, "search "):
			runSearch(mgr, strings.TrimPrefix(line, "search "))
		case strings.HasPrefix(line, "chain "):
			runChain(mgr, strings.TrimPrefix(line, "chain "))
		case strings.HasPrefix(line, "export "):
			runExport(mgr, strings.TrimPrefix(line, "export "))
		default:
			runLookup(mgr, line)
		}
	}
	fmt.Println("👋 Bye!")
}

func printHelp() {
	fmt.Println(`Commands:
  <name>           Look up a Digimon's evolution line
  search <query>   Fuzzy-search names
  chain <name>     Follow first successors until the line ends
  export <file>    Write the full graph as D3 JSON
  stats            Show dataset statistics
  reload           Re-read the dataset file
  exit | quit      Leave`)
}

func printStats(mgr *manager.Manager) {
	tbl, err := mgr.Table()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	stats := tbl.Stats()
	fmt.Printf("Total Digimon: %d\n", stats.Rows)

	if len(stats.Stages) > 0 {
		fmt.Printf("\n📊 Stages (%d):\n", len(stats.Stages))
		for _, name := range sortedKeys(stats.Stages) {
			fmt.Printf("   - %s: %d\n", name, stats.Stages[name])
		}
	}
	if len(stats.Attributes) > 0 {
		fmt.Printf("\n📊 Attributes (%d):\n", len(stats.Attributes))
		for _, name := range sortedKeys(stats.Attributes) {
			fmt.Printf("   - %s: %d\n", name, stats.Attributes[name])
		}
	}
	if r, err := mgr.Resolver(); err == nil {
		if dangling := r.Dangling(); len(dangling) > 0 {
			fmt.Printf("\nDangling references: %d (names listed as successors with no row of their own)\n", len(dangling))
		}
	}
	fmt.Println()
}

func runLookup(mgr *manager.Manager, name string) {
	res, err := mgr.Lookup(name)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	Render(res)
}

// Render pretty-prints a resolve outcome. The one-shot lookup command uses
// it too.
func Render(res evolution.Result) {
	switch r := res.(type) {
	case evolution.Single:
		renderEntry(r.Entry)
	case evolution.Multiple:
		fmt.Printf("\n✅ Found %d entries for %s:\n", len(r.Entries), r.Queried)
		for _, e := range r.Entries {
			renderEntry(e)
		}
	case evolution.NotFound:
		fmt.Printf("📭 Digimon not found: %s\n", r.Queried)
		if len(r.Suggestions) > 0 {
			fmt.Printf("   Did you mean: %s?\n", strings.Join(r.Suggestions, ", "))
		}
	}
}

func renderEntry(e evolution.Lineage) {
	fmt.Printf("\n✅ %s\n", describe(e.Current))
	fmt.Println("   Evolves from:")
	renderRefs(e.Predecessors)
	fmt.Println("   Evolves to:")
	renderRefs(e.Successors)
}

func renderRefs(refs []evolution.Ref) {
	if len(refs) == 0 {
		fmt.Println("      [None]")
		return
	}
	for _, r := range refs {
		if r.Stage != nil {
			fmt.Printf("      - %s (%s)\n", r.Name, *r.Stage)
		} else {
			fmt.Printf("      - %s\n", r.Name)
		}
	}
}

func describe(d evolution.Descriptor) string {
	s := d.Name
	var parts []string
	if d.Stage != nil {
		parts = append(parts, *d.Stage)
	}
	if d.Attribute != nil {
		parts = append(parts, *d.Attribute)
	}
	if len(parts) > 0 {
		s += fmt.Sprintf(" (%s)", strings.Join(parts, ", "))
	}
	if d.Number != nil {
		s += fmt.Sprintf(" #%d", *d.Number)
	}
	return s
}

func runSearch(mgr *manager.Manager, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		fmt.Println("Usage: search <query>")
		return
	}

	r, err := mgr.Resolver()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	matches := r.SearchNames(query, 10)
	if len(matches) == 0 {
		fmt.Println("📭 [No results]")
		return
	}

	fmt.Printf("\n✅ Found %d matches:\n", len(matches))
	for _, m := range matches {
		fmt.Printf("- %s (%.2f)\n", m.Name, m.Score)
	}
}

// runChain walks forward from name, always taking the first listed
// successor, until a dead end, an unknown reference, or a cycle.
func runChain(mgr *manager.Manager, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Usage: chain <name>")
		return
	}

	r, err := mgr.Resolver()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	var chain []string
	note := ""
	seen := make(map[string]bool)
	current := name

	for {
		var entry evolution.Lineage
		switch v := r.Resolve(current).(type) {
		case evolution.Single:
			entry = v.Entry
		case evolution.Multiple:
			entry = v.Entries[0]
		case evolution.NotFound:
			if len(chain) == 0 {
				fmt.Printf("📭 Digimon not found: %s\n", current)
				return
			}
			// Referenced name without a row of its own ends the walk.
			chain = append(chain, current)
			note = "(chain ends at a name with no row)"
		}
		if note != "" {
			break
		}

		key := strings.ToLower(strings.TrimSpace(entry.Current.Name))
		if seen[key] {
			note = "(cycle detected, stopped)"
			break
		}
		seen[key] = true

		label := describe(entry.Current)
		if len(entry.Successors) > 1 {
			label += fmt.Sprintf(" [+%d branches]", len(entry.Successors)-1)
		}
		chain = append(chain, label)

		if len(entry.Successors) == 0 {
			break
		}
		current = entry.Successors[0].Name
	}

	fmt.Printf("\n✅ %s\n", strings.Join(chain, " -> "))
	if note != "" {
		fmt.Printf("   %s\n", note)
	}
}

func runExport(mgr *manager.Manager, filename string) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		fmt.Println("Usage: export <filename>")
		return
	}

	r, err := mgr.Resolver()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	graph := export.BuildGraph(r)
	if err := export.SaveD3Graph(graph, filename); err != nil {
		fmt.Printf("Save error: %v\n", err)
		return
	}

	fmt.Printf("✅ Exported %d nodes and %d links to %s\n", len(graph.Nodes), len(graph.Links), filename)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
