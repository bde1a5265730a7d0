package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/duynguyendang/digivolve/internal/config"
)

var (
	cfgFile     string
	datasetFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "digivolve",
	Short: "Digimon evolution lookup service",
	Long: `Digivolve loads a Digimon evolution dataset and answers lineage
queries: which Digimon evolves into which, forwards and backwards.

Run 'digivolve serve' for the REST API, 'digivolve repl' for interactive
lookups, or 'digivolve lookup <name>' for a one-shot query.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if datasetFlag != "" {
			cfg.DatasetPath = datasetFlag
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default digivolve.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&datasetFlag, "dataset", "", "dataset file, overrides config and DIGIVOLVE_DATASET")
	rootCmd.AddCommand(serveCmd, lookupCmd, replCmd, mcpCmd, checkCmd)
}
