// Package export renders a resolved dataset as a D3 force-directed graph:
// one node per distinct name, one link per evolution edge.
package export

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/duynguyendang/digivolve/pkg/evolution"
)

// D3Node represents a node in the D3 force-directed graph.
type D3Node struct {
	ID        string `json:"id"`   // canonical name, unique per graph
	Name      string `json:"name"` // display name, stored casing
	Stage     string `json:"stage,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Group     string `json:"group"`            // stage bucket for coloring
	Number    *int   `json:"number,omitempty"` // nil for stubs and numberless rows
	Stub      bool   `json:"stub,omitempty"`   // listed as a successor but has no row
}

// D3Link represents a link/edge in the D3 force-directed graph.
type D3Link struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// D3Graph represents the full graph structure for D3.js.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

const relationEvolvesTo = "evolves_to"

// BuildGraph flattens the resolver's table into nodes and links. Duplicate
// names collapse into one node carrying the first row's fields, matching the
// resolver's first-match policy; dangling successor names become stub nodes.
// Output order is deterministic: row order, then stub first-occurrence order.
func BuildGraph(r *evolution.Resolver) *D3Graph {
	// Canonical spelling per name: first row occurrence, else the spelling
	// Dangling reported.
	canon := make(map[string]string)
	for _, name := range r.Names() {
		canon[strings.ToLower(name)] = name
	}
	for _, name := range r.Dangling() {
		canon[strings.ToLower(name)] = name
	}

	nodes := make([]D3Node, 0)
	seenNode := make(map[string]bool)

	for _, row := range r.Table().AllRows() {
		id := canon[strings.ToLower(row.Name)]
		if seenNode[id] {
			continue
		}
		seenNode[id] = true

		group := row.Stage
		if group == "" {
			group = "unknown"
		}
		nodes = append(nodes, D3Node{
			ID:        id,
			Name:      id,
			Stage:     row.Stage,
			Attribute: row.Attribute,
			Group:     group,
			Number:    row.Number,
		})
	}
	for _, name := range r.Dangling() {
		nodes = append(nodes, D3Node{
			ID:    name,
			Name:  name,
			Group: "unknown",
			Stub:  true,
		})
	}

	links := make([]D3Link, 0)
	seenLink := make(map[string]bool)
	for _, row := range r.Table().AllRows() {
		src := canon[strings.ToLower(row.Name)]
		for _, succ := range row.Evolutions {
			dst := canon[strings.ToLower(succ)]
			key := src + "\x00" + dst
			if seenLink[key] {
				continue
			}
			seenLink[key] = true
			links = append(links, D3Link{Source: src, Target: dst, Relation: relationEvolvesTo})
		}
	}

	return &D3Graph{Nodes: nodes, Links: links}
}

// SaveD3Graph writes the graph to a JSON file.
func SaveD3Graph(graph *D3Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(graph)
}
