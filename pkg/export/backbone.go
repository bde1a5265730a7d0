package export

import (
	"strings"

	"github.com/duynguyendang/digivolve/pkg/evolution"
)

// StageNode is one stage bucket of the condensed graph.
type StageNode struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// StageLink aggregates every evolution edge crossing a pair of stages.
type StageLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// StageGraph is the stage-level backbone of the evolution graph.
type StageGraph struct {
	Nodes []StageNode `json:"nodes"`
	Links []StageLink `json:"links"`
}

// BuildStageBackbone condenses the name graph into stage buckets: one node
// per stage with its member count, one link per stage pair weighted by the
// number of distinct evolution edges crossing it. Names collapse the same
// way BuildGraph collapses them (first row wins, dangling names bucket as
// unknown), and output order follows first appearance in row order.
func BuildStageBackbone(r *evolution.Resolver) *StageGraph {
	stageFor := make(map[string]string)
	for _, row := range r.Table().AllRows() {
		key := strings.ToLower(row.Name)
		if _, ok := stageFor[key]; ok {
			continue
		}
		stage := row.Stage
		if stage == "" {
			stage = "unknown"
		}
		stageFor[key] = stage
	}
	for _, name := range r.Dangling() {
		stageFor[strings.ToLower(name)] = "unknown"
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	seenName := make(map[string]bool)
	member := func(key string) {
		if seenName[key] {
			return
		}
		seenName[key] = true
		stage := stageFor[key]
		if counts[stage] == 0 {
			order = append(order, stage)
		}
		counts[stage]++
	}
	for _, row := range r.Table().AllRows() {
		member(strings.ToLower(row.Name))
	}
	for _, name := range r.Dangling() {
		member(strings.ToLower(name))
	}

	links := make([]StageLink, 0)
	linkIdx := make(map[string]int)
	seenEdge := make(map[string]bool)
	for _, row := range r.Table().AllRows() {
		srcKey := strings.ToLower(row.Name)
		for _, succ := range row.Evolutions {
			dstKey := strings.ToLower(succ)
			edge := srcKey + "\x00" + dstKey
			if seenEdge[edge] {
				continue
			}
			seenEdge[edge] = true

			pair := stageFor[srcKey] + "\x00" + stageFor[dstKey]
			if i, ok := linkIdx[pair]; ok {
				links[i].Value++
				continue
			}
			linkIdx[pair] = len(links)
			links = append(links, StageLink{Source: stageFor[srcKey], Target: stageFor[dstKey], Value: 1})
		}
	}

	nodes := make([]StageNode, 0, len(order))
	for _, stage := range order {
		nodes = append(nodes, StageNode{ID: stage, Count: counts[stage]})
	}
	return &StageGraph{Nodes: nodes, Links: links}
}
