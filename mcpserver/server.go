// Package mcpserver exposes the graph analysis passes over the Model
// Context Protocol, so agent harnesses can query the dependency graph of
// the indexed repository through stdio tools.
package mcpserver

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/teranos/codegraph/graph"
	"github.com/teranos/codegraph/storage"
	"github.com/teranos/codegraph/version"
)

// MCPServer wraps the index store and graph builder and exposes the
// analysis passes as MCP tools.
type MCPServer struct {
	db      *sql.DB
	store   *storage.Store
	builder *graph.Builder
	logger  *zap.SugaredLogger
	server  *server.MCPServer
}

// NewMCPServer creates an MCP server over an open index database.
func NewMCPServer(db *sql.DB, logger *zap.SugaredLogger) *MCPServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	store := storage.NewStore(db, logger)

	s := &MCPServer{
		db:      db,
		store:   store,
		builder: graph.NewBuilder(store, logger),
		logger:  logger.Named("mcp"),
	}

	s.server = server.NewMCPServer(
		"codegraph",
		version.Get().Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// registerTools registers the graph analysis tool surface.
func (s *MCPServer) registerTools() {
	cyclesTool := mcp.NewTool("graph_cycles",
		mcp.WithDescription("Find circular dependencies (strongly connected components) in the indexed codebase"),
		mcp.WithNumber("min_size",
			mcp.Description("Minimum cycle size to report (default: 2)"),
		),
		mcp.WithBoolean("files",
			mcp.Description("Analyze the file-level graph instead of the symbol-level graph"),
		),
	)
	s.server.AddTool(cyclesTool, s.handleCycles)

	rankTool := mcp.NewTool("graph_rank",
		mcp.WithDescription("Rank symbols by dependency centrality (PageRank); high scores mark load-bearing code"),
		mcp.WithNumber("top",
			mcp.Description("Number of top-ranked symbols to return (default: 20)"),
		),
		mcp.WithBoolean("files",
			mcp.Description("Rank files instead of symbols"),
		),
	)
	s.server.AddTool(rankTool, s.handleRank)

	clustersTool := mcp.NewTool("graph_clusters",
		mcp.WithDescription("Detect communities of tightly coupled symbols with human-readable labels"),
		mcp.WithBoolean("files",
			mcp.Description("Cluster the file-level graph instead of the symbol-level graph"),
		),
	)
	s.server.AddTool(clustersTool, s.handleClusters)

	layersTool := mcp.NewTool("graph_layers",
		mcp.WithDescription("Assign architectural layers: layer 0 is foundational code with no outgoing dependencies"),
		mcp.WithBoolean("files",
			mcp.Description("Report the file-level majority layer per file"),
		),
	)
	s.server.AddTool(layersTool, s.handleLayers)

	violationsTool := mcp.NewTool("graph_violations",
		mcp.WithDescription("Find inverted dependencies: foundational code depending on higher-level code"),
	)
	s.server.AddTool(violationsTool, s.handleViolations)

	partitionTool := mcp.NewTool("graph_partition",
		mcp.WithDescription("Divide the codebase into non-conflicting work zones for parallel agents"),
		mcp.WithNumber("agents",
			mcp.Required(),
			mcp.Description("Number of agents to partition for"),
		),
		mcp.WithString("files",
			mcp.Description("Comma-separated file paths or path prefixes to restrict the partition to"),
		),
	)
	s.server.AddTool(partitionTool, s.handlePartition)

	simulateTool := mcp.NewTool("graph_simulate",
		mcp.WithDescription("Simulate a refactoring (move or extract) on a graph clone and report metric deltas"),
		mcp.WithString("op",
			mcp.Required(),
			mcp.Description("Operation: move or extract"),
		),
		mcp.WithNumber("symbol",
			mcp.Required(),
			mcp.Description("Symbol id to operate on"),
		),
		mcp.WithString("target_file",
			mcp.Required(),
			mcp.Description("Destination file path"),
		),
	)
	s.server.AddTool(simulateTool, s.handleSimulate)

	statusTool := mcp.NewTool("index_status",
		mcp.WithDescription("Report index counts, repository metadata, and overall graph health"),
	)
	s.server.AddTool(statusTool, s.handleStatus)
}

// Serve starts the MCP server on stdio transport. Blocks until the client
// disconnects.
func (s *MCPServer) Serve() error {
	s.logger.Infow("Serving MCP on stdio", "tools", 8)
	return server.ServeStdio(s.server)
}
