package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duynguyendang/digivolve/internal/manager"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

// MCPServer wraps the dataset manager to expose evolution lookups via MCP.
type MCPServer struct {
	manager *manager.Manager
}

// Run starts the MCP server on Stdio.
func Run(ctx context.Context, mgr *manager.Manager) error {
	s := server.NewMCPServer(
		"Digivolve",
		"1.0.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	ms := &MCPServer{manager: mgr}

	// --- Resources ---

	// Resource: Dataset Summary
	s.AddResource(
		mcp.NewResource(
			"digivolve://dataset/summary",
			"Dataset Summary",
			mcp.WithResourceDescription("Summary statistics of the loaded evolution dataset"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleDatasetSummary,
	)

	// Resource: Field Conventions
	s.AddResource(
		mcp.NewResource(
			"digivolve://schema/conventions",
			"Field Conventions",
			mcp.WithResourceDescription("Response field names and null semantics for evolution lookups"),
			mcp.WithMIMEType("text/markdown"),
		),
		ms.handleFieldConventions,
	)

	// --- Tools ---

	// Tool: Lookup Evolution
	s.AddTool(
		mcp.NewTool(
			"lookup_evolution",
			mcp.WithDescription("Look up a Digimon by name and return its full evolution line (predecessors and successors). Matching is case-insensitive."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The Digimon name to look up")),
		),
		ms.handleLookupEvolution,
	)

	// Tool: Get Pre-Evolutions
	s.AddTool(
		mcp.NewTool(
			"get_pre_evolutions",
			mcp.WithDescription("List the Digimon that evolve directly into the given one."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The Digimon name")),
		),
		ms.handleGetPreEvolutions,
	)

	// Tool: Get Post-Evolutions
	s.AddTool(
		mcp.NewTool(
			"get_post_evolutions",
			mcp.WithDescription("List the Digimon that the given one evolves directly into."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The Digimon name")),
		),
		ms.handleGetPostEvolutions,
	)

	// Tool: Search Digimon
	s.AddTool(
		mcp.NewTool(
			"search_digimon",
			mcp.WithDescription("Fuzzy-search Digimon names. Useful when the exact spelling is unknown."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The search query string")),
			mcp.WithNumber("limit", mcp.Description("Max number of results (default 10)")),
		),
		ms.handleSearchDigimon,
	)

	// Tool: Can Evolve
	s.AddTool(
		mcp.NewTool(
			"can_evolve",
			mcp.WithDescription("Check whether one Digimon evolves directly into another."),
			mcp.WithString("from", mcp.Required(), mcp.Description("Source Digimon name")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Target Digimon name")),
		),
		ms.handleCanEvolve,
	)

	// Start the server on Stdio
	slog.Info("Starting MCP server on Stdio")
	return server.ServeStdio(s)
}

// --- Resource Handlers ---

func (ms *MCPServer) handleDatasetSummary(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tbl, err := ms.manager.Table()
	if err != nil {
		return nil, err
	}
	r, err := ms.manager.Resolver()
	if err != nil {
		return nil, err
	}

	stats := tbl.Stats()
	summary := map[string]interface{}{
		"source":     tbl.Source(),
		"loaded_at":  tbl.LoadedAt(),
		"rows":       stats.Rows,
		"stages":     stats.Stages,
		"attributes": stats.Attributes,
		"dangling":   r.Dangling(),
	}

	jsonBytes, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (ms *MCPServer) handleFieldConventions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	content := `
# Digivolve Lookup Conventions

## 1. Result Shapes
- Unique match: an entry object with 'currentDigimon', 'preEvolutions' and 'postEvolutions'.
- Duplicate names: { "message": "Found N results for: X", "results": [entries] }.
- Unknown name: { "error": true, "message": "Digimon not found: X", "suggestions": [...] }.

## 2. Field Semantics
- 'number' is null when the dataset row has no number. It is never 0 as a placeholder.
- 'preEvolutions' and 'postEvolutions' are always arrays, empty when there are none.
- A successor with null 'stage' and null 'number' is a stub: the name is referenced
  by some row but has no row of its own.

## 3. Usage Guidelines
- Name matching is case-insensitive and ignores surrounding whitespace.
- Use 'search_digimon' first when the exact spelling is unknown.
- Use 'can_evolve' for yes/no questions instead of comparing lists yourself.
`
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/markdown",
			Text:     content,
		},
	}, nil
}

// --- Tool Handlers ---

func (ms *MCPServer) handleLookupEvolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, ok := args["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name argument required"), nil
	}

	res, err := ms.manager.Lookup(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal result"), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (ms *MCPServer) handleGetPreEvolutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, ok := args["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name argument required"), nil
	}

	refs, err := ms.lineRefs(name, func(e evolution.Lineage) []evolution.Ref { return e.Predecessors })
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("No pre-evolutions found."), nil
	}
	return mcp.NewToolResultText(strings.Join(formatRefs(refs), "\n")), nil
}

func (ms *MCPServer) handleGetPostEvolutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, ok := args["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name argument required"), nil
	}

	refs, err := ms.lineRefs(name, func(e evolution.Lineage) []evolution.Ref { return e.Successors })
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("No post-evolutions found."), nil
	}
	return mcp.NewToolResultText(strings.Join(formatRefs(refs), "\n")), nil
}

func (ms *MCPServer) handleSearchDigimon(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, ok := args["query"].(string)
	if !ok {
		return mcp.NewToolResultError("query argument required"), nil
	}

	limit := 10
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	r, err := ms.manager.Resolver()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	matches := r.SearchNames(query, limit)
	if len(matches) == 0 {
		return mcp.NewToolResultText("No matches found."), nil
	}

	formatted := make([]string, len(matches))
	for i, m := range matches {
		formatted[i] = fmt.Sprintf("%s (%.2f)", m.Name, m.Score)
	}
	return mcp.NewToolResultText(strings.Join(formatted, "\n")), nil
}

func (ms *MCPServer) handleCanEvolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	from, ok1 := args["from"].(string)
	to, ok2 := args["to"].(string)
	if !ok1 || !ok2 {
		return mcp.NewToolResultError("from and to arguments required"), nil
	}

	r, err := ms.manager.Resolver()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	verb := "cannot"
	if r.CanEvolve(from, to) {
		verb = "can"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s evolve directly into %s", from, verb, to)), nil
}

// lineRefs resolves a name and projects one side of its line. Duplicate
// entries contribute in order; a miss surfaces the not-found message with
// suggestions so the caller can retry.
func (ms *MCPServer) lineRefs(name string, side func(evolution.Lineage) []evolution.Ref) ([]evolution.Ref, error) {
	res, err := ms.manager.Lookup(name)
	if err != nil {
		return nil, err
	}

	switch r := res.(type) {
	case evolution.Single:
		return side(r.Entry), nil
	case evolution.Multiple:
		var refs []evolution.Ref
		for _, e := range r.Entries {
			refs = append(refs, side(e)...)
		}
		return refs, nil
	case evolution.NotFound:
		if len(r.Suggestions) > 0 {
			return nil, fmt.Errorf("digimon not found: %s (did you mean: %s?)", name, strings.Join(r.Suggestions, ", "))
		}
		return nil, fmt.Errorf("digimon not found: %s", name)
	default:
		return nil, fmt.Errorf("digimon not found: %s", name)
	}
}

func formatRefs(refs []evolution.Ref) []string {
	formatted := make([]string, len(refs))
	for i, r := range refs {
		stage := "?"
		if r.Stage != nil {
			stage = *r.Stage
		}
		formatted[i] = fmt.Sprintf("%s (%s)", r.Name, stage)
	}
	return formatted
}
