package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teranos/codegraph/graph"
	"github.com/teranos/codegraph/storage"
)

// buildGraph constructs the requested view fresh from current index state.
func (s *MCPServer) buildGraph(ctx context.Context, fileLevel bool) (*graph.DiGraph, error) {
	if fileLevel {
		return s.builder.BuildFileGraph(ctx)
	}
	return s.builder.BuildSymbolGraph(ctx)
}

func toolResultJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// cycleEntry is the serialized form of one cycle with resolved names.
type cycleEntry struct {
	Size    int      `json:"size"`
	Members []string `json:"members"`
	IDs     []int64  `json:"ids"`
}

func (s *MCPServer) handleCycles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minSize := request.GetInt("min_size", 0)
	fileLevel := request.GetBool("files", false)

	g, err := s.buildGraph(ctx, fileLevel)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	cycles := graph.FindCycles(g, minSize)
	entries := make([]cycleEntry, 0, len(cycles))
	for _, cycle := range cycles {
		entry := cycleEntry{Size: len(cycle)}
		for _, id := range cycle {
			entry.IDs = append(entry.IDs, int64(id))
			entry.Members = append(entry.Members, nodeLabel(g, id))
		}
		entries = append(entries, entry)
	}

	return toolResultJSON(map[string]interface{}{
		"cycle_count": len(entries),
		"cycles":      entries,
	})
}

func (s *MCPServer) handleRank(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	top := request.GetInt("top", 20)
	fileLevel := request.GetBool("files", false)

	g, err := s.buildGraph(ctx, fileLevel)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	scores := graph.PageRank(g)
	return toolResultJSON(map[string]interface{}{
		"total_nodes": g.NodeCount(),
		"top":         graph.TopRanked(g, scores, top),
	})
}

// clusterEntry is the serialized form of one community.
type clusterEntry struct {
	ID      int      `json:"id"`
	Label   string   `json:"label"`
	Size    int      `json:"size"`
	Members []string `json:"members"`
}

func (s *MCPServer) handleClusters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileLevel := request.GetBool("files", false)

	g, err := s.buildGraph(ctx, fileLevel)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	clusters := graph.DetectClusters(g)
	labels := graph.LabelClusters(g, clusters)

	members := make(map[graph.ClusterID][]string)
	for _, id := range g.NodeIDs() {
		c := clusters[id]
		members[c] = append(members[c], nodeLabel(g, id))
	}

	entries := make([]clusterEntry, 0, len(members))
	for c := graph.ClusterID(0); int(c) < len(members); c++ {
		entries = append(entries, clusterEntry{
			ID:      int(c),
			Label:   labels[c],
			Size:    len(members[c]),
			Members: members[c],
		})
	}

	return toolResultJSON(map[string]interface{}{
		"cluster_count": len(entries),
		"modularity":    graph.Modularity(g, clusters),
		"clusters":      entries,
	})
}

// layerEntry is one node or file with its assigned layer.
type layerEntry struct {
	Name  string `json:"name"`
	Layer int    `json:"layer"`
}

func (s *MCPServer) handleLayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileLevel := request.GetBool("files", false)

	g, err := s.buildGraph(ctx, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	layers := graph.DetectLayers(g)

	var entries []layerEntry
	maxLayer := 0
	if fileLevel {
		fileLayers := graph.FileLayers(g, layers)
		files := make([]string, 0, len(fileLayers))
		for file := range fileLayers {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			entries = append(entries, layerEntry{Name: file, Layer: fileLayers[file]})
			if fileLayers[file] > maxLayer {
				maxLayer = fileLayers[file]
			}
		}
	} else {
		for _, id := range g.NodeIDs() {
			entries = append(entries, layerEntry{Name: nodeLabel(g, id), Layer: layers[id]})
			if layers[id] > maxLayer {
				maxLayer = layers[id]
			}
		}
	}

	return toolResultJSON(map[string]interface{}{
		"max_layer": maxLayer,
		"layers":    entries,
	})
}

func (s *MCPServer) handleViolations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.buildGraph(ctx, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	// Symbol edges checked against the file-majority layer view: an edge
	// whose source file sits below its target file is inverted
	layers := graph.DetectLayers(g)
	fileLayers := graph.FileLayers(g, layers)
	byFile := make(map[graph.NodeID]int, g.NodeCount())
	for _, id := range g.NodeIDs() {
		byFile[id] = fileLayers[g.Node(id).File]
	}

	violations := graph.FindViolations(g, byFile)
	type violationEntry struct {
		From          string `json:"from"`
		To            string `json:"to"`
		FromLayer     int    `json:"from_layer"`
		ToLayer       int    `json:"to_layer"`
		Kind          string `json:"kind"`
		MoveSensitive bool   `json:"move_sensitive"`
	}
	entries := make([]violationEntry, 0, len(violations))
	for _, v := range violations {
		entries = append(entries, violationEntry{
			From:          nodeLabel(g, v.From),
			To:            nodeLabel(g, v.To),
			FromLayer:     v.FromLayer,
			ToLayer:       v.ToLayer,
			Kind:          v.Kind,
			MoveSensitive: v.MoveSensitive,
		})
	}

	return toolResultJSON(map[string]interface{}{
		"violation_count": len(entries),
		"violations":      entries,
	})
}

func (s *MCPServer) handlePartition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents, err := request.RequireInt("agents")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var targetFiles []string
	if raw := request.GetString("files", ""); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				targetFiles = append(targetFiles, f)
			}
		}
	}

	g, err := s.buildGraph(ctx, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	result, err := graph.PartitionForAgents(g, agents, targetFiles)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to partition: %v", err)), nil
	}
	return toolResultJSON(result)
}

func (s *MCPServer) handleSimulate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	op, err := request.RequireString("op")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	symbol, err := request.RequireInt("symbol")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetFile, err := request.RequireString("target_file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g, err := s.buildGraph(ctx, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
	}

	result, err := graph.Simulate(g, graph.Op(op), graph.NodeID(symbol), targetFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Simulation failed: %v", err)), nil
	}
	return toolResultJSON(result)
}

func (s *MCPServer) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, symbols, edges, err := s.store.Counts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read index counts: %v", err)), nil
	}

	status := map[string]interface{}{
		"files":   files,
		"symbols": symbols,
		"edges":   edges,
	}
	if root, err := s.store.GetMeta(ctx, storage.MetaRepoRoot); err == nil && root != "" {
		status["repo_root"] = root
	}
	if head, err := s.store.GetMeta(ctx, storage.MetaRepoHead); err == nil && head != "" {
		status["repo_head"] = head
	}

	if symbols > 0 {
		g, err := s.buildGraph(ctx, false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to build graph: %v", err)), nil
		}
		m := graph.ComputeMetrics(g)
		status["cycle_count"] = m.CycleCount
		status["modularity"] = m.Modularity
	}

	return toolResultJSON(status)
}

// nodeLabel renders one node for tool output: "name (file)" at symbol
// level, the path at file level.
func nodeLabel(g *graph.DiGraph, id graph.NodeID) string {
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
