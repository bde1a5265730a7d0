package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/duynguyendang/digivolve/internal/manager"
	"github.com/duynguyendang/digivolve/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve evolution lookups over MCP on stdio",
	Long: `Exposes the dataset to MCP clients (agents, editors) over stdio.

Tools: lookup_evolution, get_pre_evolutions, get_post_evolutions,
search_digimon, can_evolve.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries the JSON-RPC stream; logs must go to stderr.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

		mgr := manager.New(cfg.DatasetPath, cfg.Dataset)
		if _, err := mgr.Reload(); err != nil {
			return err
		}
		return mcp.Run(cmd.Context(), mgr)
	},
}
