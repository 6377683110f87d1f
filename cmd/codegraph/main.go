package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/cmd/codegraph/commands"
	"github.com/teranos/codegraph/display"
	"github.com/teranos/codegraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "codegraph",
	Short: "codegraph - dependency graph analysis for indexed codebases",
	Long: `codegraph - dependency graph analysis over a persisted code index.

codegraph builds symbol-level and file-level dependency graphs from an
indexed repository and answers structural questions: what depends on
what, where the cycles are, which code is load-bearing, and how to
divide work between parallel agents without conflicts.

Available commands:
  cycles    - Find circular dependencies
  rank      - Rank symbols by dependency centrality
  clusters  - Detect communities of tightly coupled code
  layers    - Assign architectural layers and find inverted dependencies
  impact    - Show what a symbol change would affect
  partition - Divide the codebase into agent work zones
  simulate  - Simulate a refactoring and report metric deltas
  db        - Manage the index database
  serve     - Serve graph analysis tools over MCP stdio

Examples:
  codegraph cycles --files       # File-level circular dependencies
  codegraph rank --top 10        # Ten most central symbols
  codegraph partition --agents 3 # Three non-conflicting work zones
  codegraph db stats             # Index counts and graph health`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput := display.ShouldOutputJSON(cmd)
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().String("database", "", "Path to the index database (overrides configuration)")

	rootCmd.AddCommand(commands.CyclesCmd)
	rootCmd.AddCommand(commands.RankCmd)
	rootCmd.AddCommand(commands.ClustersCmd)
	rootCmd.AddCommand(commands.LayersCmd)
	rootCmd.AddCommand(commands.ImpactCmd)
	rootCmd.AddCommand(commands.PartitionCmd)
	rootCmd.AddCommand(commands.SimulateCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
