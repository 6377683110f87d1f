package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/display"
	"github.com/teranos/codegraph/graph"
)

// ClustersCmd detects communities of tightly coupled code.
var ClustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Detect communities of tightly coupled code",
	Long: `Detect communities: groups of symbols (or files) with denser internal
than external connectivity. Each cluster gets a label from the majority
directory of its members, or the name of its most central member.

Examples:
  codegraph clusters          # Symbol-level communities
  codegraph clusters --files  # File-level communities`,
	RunE: runClusters,
}

var clustersFilesFlag bool

func init() {
	ClustersCmd.Flags().BoolVar(&clustersFilesFlag, "files", false, "Cluster the file-level graph")
	ClustersCmd.Flags().Bool("json", false, "Output as JSON")
}

type clusterOutput struct {
	ID      int      `json:"id"`
	Label   string   `json:"label"`
	Size    int      `json:"size"`
	Members []string `json:"members"`
}

func runClusters(cmd *cobra.Command, args []string) error {
	g, database, err := buildGraph(cmd, clustersFilesFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	clusters := graph.DetectClusters(g)
	labels := graph.LabelClusters(g, clusters)
	modularity := graph.Modularity(g, clusters)

	members := make(map[graph.ClusterID][]string)
	for _, id := range g.NodeIDs() {
		members[clusters[id]] = append(members[clusters[id]], memberName(g, id))
	}

	out := make([]clusterOutput, 0, len(members))
	for c := graph.ClusterID(0); int(c) < len(members); c++ {
		out = append(out, clusterOutput{
			ID:      int(c),
			Label:   labels[c],
			Size:    len(members[c]),
			Members: members[c],
		})
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(map[string]interface{}{
			"cluster_count": len(out),
			"modularity":    modularity,
			"clusters":      out,
		})
	}

	if len(out) == 0 {
		pterm.Info.Println("Index is empty, no communities to detect")
		return nil
	}

	pterm.Printf("Found %d communities (modularity %.3f):\n\n", len(out), modularity)
	for _, cluster := range out {
		pterm.Printf("  %s %s (%d members)\n",
			pterm.LightCyan(pterm.Sprintf("[%d]", cluster.ID)),
			pterm.Yellow(cluster.Label),
			cluster.Size)
		for _, member := range cluster.Members {
			pterm.Printf("      %s\n", member)
		}
	}
	return nil
}
