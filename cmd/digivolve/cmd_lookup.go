package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duynguyendang/digivolve/internal/manager"
	"github.com/duynguyendang/digivolve/pkg/evolution"
	"github.com/duynguyendang/digivolve/pkg/repl"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Resolve one Digimon and print its evolution line",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookupCmd,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print the raw JSON result")
}

func runLookupCmd(cmd *cobra.Command, args []string) error {
	mgr := manager.New(cfg.DatasetPath, cfg.Dataset)
	if _, err := mgr.Reload(); err != nil {
		return err
	}

	res, err := mgr.Lookup(args[0])
	if err != nil {
		return err
	}

	if lookupJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		repl.Render(res)
	}

	// A miss exits nonzero so scripts can branch on it.
	if _, ok := res.(evolution.NotFound); ok {
		os.Exit(1)
	}
	return nil
}
