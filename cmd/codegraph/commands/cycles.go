package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/config"
	"github.com/teranos/codegraph/display"
	"github.com/teranos/codegraph/graph"
)

// CyclesCmd finds circular dependencies.
var CyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Find circular dependencies",
	Long: `Find circular dependencies (strongly connected components) in the
dependency graph. A cycle means a group of symbols or files that all
depend on each other, directly or transitively.

Examples:
  codegraph cycles                # Symbol-level cycles
  codegraph cycles --files        # File-level cycles
  codegraph cycles --min-size 3   # Only cycles with 3+ members`,
	RunE: runCycles,
}

var (
	cyclesMinSizeFlag int
	cyclesFilesFlag   bool
)

func init() {
	CyclesCmd.Flags().IntVar(&cyclesMinSizeFlag, "min-size", 0, "Minimum cycle size to report (default 2)")
	CyclesCmd.Flags().BoolVar(&cyclesFilesFlag, "files", false, "Analyze the file-level graph")
	CyclesCmd.Flags().Bool("json", false, "Output as JSON")
}

type cycleOutput struct {
	Size    int      `json:"size"`
	IDs     []int64  `json:"ids"`
	Members []string `json:"members"`
}

func runCycles(cmd *cobra.Command, args []string) error {
	minSize := cyclesMinSizeFlag
	if minSize == 0 {
		if cfg, err := config.Load(); err == nil {
			minSize = cfg.Graph.MinCycleSize
		}
	}

	g, database, err := buildGraph(cmd, cyclesFilesFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	cycles := graph.FindCycles(g, minSize)

	if display.ShouldOutputJSON(cmd) {
		out := make([]cycleOutput, 0, len(cycles))
		for _, cycle := range cycles {
			entry := cycleOutput{Size: len(cycle)}
			for _, id := range cycle {
				entry.IDs = append(entry.IDs, int64(id))
				entry.Members = append(entry.Members, memberName(g, id))
			}
			out = append(out, entry)
		}
		return display.OutputJSON(map[string]interface{}{
			"cycle_count": len(out),
			"cycles":      out,
		})
	}

	if len(cycles) == 0 {
		pterm.Success.Println("No circular dependencies found")
		return nil
	}

	pterm.Printf("Found %s circular dependency group(s):\n\n", pterm.Red(fmt.Sprintf("%d", len(cycles))))
	for i, cycle := range cycles {
		names := make([]string, 0, len(cycle))
		for _, id := range cycle {
			names = append(names, memberName(g, id))
		}
		pterm.Printf("  %d. [%d members] %s\n", i+1, len(cycle), strings.Join(names, " → "))
	}
	return nil
}

// memberName renders a node for human output: file path at file level,
// "name (file)" at symbol level.
func memberName(g *graph.DiGraph, id graph.NodeID) string {
	n := g.Node(id)
	if n == nil {
		return fmt.Sprintf("#%d", id)
	}
	if g.Level() == graph.LevelFile {
		return n.File
	}
	if n.File == "" {
		return n.Name
	}
	return fmt.Sprintf("%s (%s)", n.Name, n.File)
}
