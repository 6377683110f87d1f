package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/display"
	"github.com/teranos/codegraph/errors"
	"github.com/teranos/codegraph/graph"
)

// SimulateCmd applies a hypothetical refactoring to a graph clone.
var SimulateCmd = &cobra.Command{
	Use:   "simulate (move|extract)",
	Short: "Simulate a refactoring and report metric deltas",
	Long: `Apply a hypothetical refactoring to a clone of the dependency graph
and report how the health metrics move. The index is never modified.

Operations:
  move     relocate a symbol to another file
  extract  pull a symbol's outgoing dependencies into a new symbol in
           the target file, leaving a delegation call behind

Examples:
  codegraph simulate move --symbol 42 --to internal/util/helpers.go
  codegraph simulate extract --symbol 42 --to internal/core/split.go`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var (
	simulateSymbolFlag int64
	simulateToFlag     string
)

func init() {
	SimulateCmd.Flags().Int64Var(&simulateSymbolFlag, "symbol", 0, "Symbol id to operate on")
	SimulateCmd.Flags().StringVar(&simulateToFlag, "to", "", "Destination file path")
	SimulateCmd.MarkFlagRequired("symbol")
	SimulateCmd.MarkFlagRequired("to")
	SimulateCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	op := graph.Op(args[0])
	if op != graph.OpMove && op != graph.OpExtract {
		return errors.Wrapf(errors.ErrInvalidRequest, "unknown operation %q, expected move or extract", args[0])
	}

	g, database, err := buildGraph(cmd, false)
	if err != nil {
		return err
	}
	defer database.Close()

	result, err := graph.Simulate(g, op, graph.NodeID(simulateSymbolFlag), simulateToFlag)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(result)
	}

	pterm.Printf("Simulated %s of symbol %d to %s:\n\n", result.Op, result.SymbolID, result.TargetFile)
	for _, change := range result.Changes {
		var direction string
		switch change.Direction {
		case "improved":
			direction = pterm.Green("improved")
		case "degraded":
			direction = pterm.Red("degraded")
		default:
			direction = pterm.Gray("unchanged")
		}
		pterm.Printf("  %-18s %10.4f → %10.4f  %s\n", change.Metric, change.Before, change.After, direction)
	}
	return nil
}
