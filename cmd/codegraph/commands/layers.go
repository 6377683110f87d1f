package commands

import (
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/display"
	"github.com/teranos/codegraph/graph"
)

// LayersCmd assigns architectural layers and reports violations.
var LayersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Assign architectural layers and find inverted dependencies",
	Long: `Assign each symbol a layer: layer 0 is foundational code with no
outgoing dependencies; higher layers depend downward. Cycles collapse
into a single unit so every symbol gets a finite layer.

With --violations, symbol edges are checked against the file-majority
layer view: an edge from a lower-layer file into a higher-layer file is
an inverted dependency.

Examples:
  codegraph layers               # Symbol layer assignment
  codegraph layers --files       # Majority layer per file
  codegraph layers --violations  # Inverted dependencies only`,
	RunE: runLayers,
}

var (
	layersFilesFlag      bool
	layersViolationsFlag bool
)

func init() {
	LayersCmd.Flags().BoolVar(&layersFilesFlag, "files", false, "Report the majority layer per file")
	LayersCmd.Flags().BoolVar(&layersViolationsFlag, "violations", false, "Report only inverted dependencies")
	LayersCmd.Flags().Bool("json", false, "Output as JSON")
}

type violationOutput struct {
	From          string `json:"from"`
	To            string `json:"to"`
	FromLayer     int    `json:"from_layer"`
	ToLayer       int    `json:"to_layer"`
	Distance      int    `json:"distance"`
	Kind          string `json:"kind"`
	MoveSensitive bool   `json:"move_sensitive"`
}

func runLayers(cmd *cobra.Command, args []string) error {
	g, database, err := buildGraph(cmd, false)
	if err != nil {
		return err
	}
	defer database.Close()

	layers := graph.DetectLayers(g)

	if layersViolationsFlag {
		return outputViolations(cmd, g, layers)
	}
	if layersFilesFlag {
		return outputFileLayers(cmd, g, layers)
	}
	return outputSymbolLayers(cmd, g, layers)
}

func outputSymbolLayers(cmd *cobra.Command, g *graph.DiGraph, layers map[graph.NodeID]int) error {
	byLayer := make(map[int][]string)
	maxLayer := 0
	for _, id := range g.NodeIDs() {
		l := layers[id]
		byLayer[l] = append(byLayer[l], memberName(g, id))
		if l > maxLayer {
			maxLayer = l
		}
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(map[string]interface{}{
			"max_layer": maxLayer,
			"layers":    byLayer,
		})
	}

	if g.NodeCount() == 0 {
		pterm.Info.Println("Index is empty, no layers to assign")
		return nil
	}

	for l := 0; l <= maxLayer; l++ {
		if len(byLayer[l]) == 0 {
			continue
		}
		pterm.Printf("%s (%d nodes)\n", pterm.LightCyan(pterm.Sprintf("Layer %d", l)), len(byLayer[l]))
		for _, name := range byLayer[l] {
			pterm.Printf("    %s\n", name)
		}
	}
	return nil
}

func outputFileLayers(cmd *cobra.Command, g *graph.DiGraph, layers map[graph.NodeID]int) error {
	fileLayers := graph.FileLayers(g, layers)

	files := make([]string, 0, len(fileLayers))
	for file := range fileLayers {
		files = append(files, file)
	}
	sort.Strings(files)

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(fileLayers)
	}

	if len(files) == 0 {
		pterm.Info.Println("Index is empty, no layers to assign")
		return nil
	}

	for _, file := range files {
		pterm.Printf("  %d  %s\n", fileLayers[file], file)
	}
	return nil
}

func outputViolations(cmd *cobra.Command, g *graph.DiGraph, layers map[graph.NodeID]int) error {
	// Check symbol edges against the file-majority layer view
	fileLayers := graph.FileLayers(g, layers)
	byFile := make(map[graph.NodeID]int, g.NodeCount())
	for _, id := range g.NodeIDs() {
		byFile[id] = fileLayers[g.Node(id).File]
	}

	violations := graph.FindViolations(g, byFile)
	out := make([]violationOutput, 0, len(violations))
	for _, v := range violations {
		out = append(out, violationOutput{
			From:          memberName(g, v.From),
			To:            memberName(g, v.To),
			FromLayer:     v.FromLayer,
			ToLayer:       v.ToLayer,
			Distance:      v.Distance,
			Kind:          v.Kind,
			MoveSensitive: v.MoveSensitive,
		})
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(map[string]interface{}{
			"violation_count": len(out),
			"violations":      out,
		})
	}

	if len(out) == 0 {
		pterm.Success.Println("No inverted dependencies found")
		return nil
	}

	pterm.Printf("Found %s inverted dependencies:\n\n", pterm.Red(pterm.Sprintf("%d", len(out))))
	for _, v := range out {
		marker := " "
		if v.MoveSensitive {
			marker = pterm.Red("!")
		}
		pterm.Printf("  %s L%d→L%d  %s %s %s\n", marker, v.FromLayer, v.ToLayer,
			v.From, pterm.Gray(v.Kind), v.To)
	}
	return nil
}
