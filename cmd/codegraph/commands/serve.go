package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/logger"
	"github.com/teranos/codegraph/mcpserver"
)

// ServeCmd starts the MCP stdio server.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve graph analysis tools over MCP stdio",
	Long: `Start a Model Context Protocol server on stdio, exposing the graph
analysis passes as tools for agent harnesses: cycles, centrality
ranking, clusters, layers, violations, partitioning, simulation, and
index status.

Example MCP client registration:
  codegraph serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Mark the process as machine-consumed so any shared output paths
	// stay compact
	os.Setenv("CODEGRAPH_MCP", "1")

	database, err := openDatabase(databaseFlag(cmd))
	if err != nil {
		return err
	}
	defer database.Close()

	return mcpserver.NewMCPServer(database, logger.Logger).Serve()
}
