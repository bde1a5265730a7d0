package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the dataset and report what the resolver will see",
	Long: `Loads the dataset once and reports rows, stages, attributes,
duplicate names and dangling successor references.

Dangling references and duplicates are normal for this dataset; --strict
turns them into a nonzero exit for CI use.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "fail on duplicates or dangling references")
}

func runCheck(cmd *cobra.Command, args []string) error {
	tbl, err := dataset.LoadWithOptions(cfg.DatasetPath, cfg.Dataset)
	if err != nil {
		return err
	}
	r := evolution.NewResolver(tbl)

	stats := tbl.Stats()
	fmt.Printf("Dataset: %s\n", tbl.Source())
	fmt.Printf("Rows: %d\n", stats.Rows)
	fmt.Printf("Stages: %d\n", len(stats.Stages))
	fmt.Printf("Attributes: %d\n", len(stats.Attributes))

	dups := duplicateNames(tbl)
	if len(dups) > 0 {
		fmt.Printf("\nDuplicate names (%d):\n", len(dups))
		for _, name := range dups {
			fmt.Printf("  - %s\n", name)
		}
	}

	dangling := r.Dangling()
	if len(dangling) > 0 {
		fmt.Printf("\nDangling successor references (%d):\n", len(dangling))
		for _, name := range dangling {
			fmt.Printf("  - %s\n", name)
		}
	}

	if checkStrict && (len(dups) > 0 || len(dangling) > 0) {
		return fmt.Errorf("strict check failed: %d duplicates, %d dangling references", len(dups), len(dangling))
	}

	fmt.Println("\nOK")
	return nil
}

// duplicateNames lists names appearing on more than one row, in first-seen
// casing and order.
func duplicateNames(tbl *dataset.Table) []string {
	counts := make(map[string]int)
	first := make(map[string]string)
	var order []string

	for _, row := range tbl.AllRows() {
		key := strings.ToLower(strings.TrimSpace(row.Name))
		if counts[key] == 0 {
			first[key] = row.Name
			order = append(order, key)
		}
		counts[key]++
	}

	var dups []string
	for _, key := range order {
		if counts[key] > 1 {
			dups = append(dups, first[key])
		}
	}
	return dups
}
