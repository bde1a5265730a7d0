package main

import (
	"github.com/spf13/cobra"

	"github.com/duynguyendang/digivolve/internal/manager"
	"github.com/duynguyendang/digivolve/pkg/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive lookup mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := manager.New(cfg.DatasetPath, cfg.Dataset)
		if _, err := mgr.Reload(); err != nil {
			return err
		}
		repl.Run(mgr)
		return nil
	},
}
