package graph

import (
	"sort"

	"github.com/teranos/codegraph/errors"
)

// Op is a hypothetical refactoring applied to a cloned graph.
type Op string

const (
	// OpMove relocates a node to another file.
	OpMove Op = "move"
	// OpExtract pulls a node's outgoing dependencies into a new node in a
	// target file, leaving a single delegation edge behind.
	OpExtract Op = "extract"
)

// Metrics is the health snapshot compared before and after a simulation.
type Metrics struct {
	CycleCount       int     `json:"cycle_count"`
	LayerViolations  int     `json:"layer_violations"`
	Modularity       float64 `json:"modularity"`
	CentralitySpread float64 `json:"centrality_spread"`
}

// MetricChange reports one metric's movement across a simulation.
type MetricChange struct {
	Metric    string  `json:"metric"`
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"`
}

// SimulationResult pairs the applied operation with its metric deltas.
// The input graph is never mutated.
type SimulationResult struct {
	Op         Op             `json:"op"`
	SymbolID   NodeID         `json:"symbol_id"`
	TargetFile string         `json:"target_file"`
	Before     Metrics        `json:"before"`
	After      Metrics        `json:"after"`
	Changes    []MetricChange `json:"changes"`
}

// ComputeMetrics evaluates the health snapshot for a graph. An empty
// graph scores zero across the board.
func ComputeMetrics(g *DiGraph) Metrics {
	if g.NodeCount() == 0 {
		return Metrics{}
	}

	// Violations are judged against the file-majority layer view; layers
	// derived from the raw graph are violation-free by construction
	layers := DetectLayers(g)
	fileLayers := FileLayers(g, layers)
	byFile := make(map[NodeID]int, g.NodeCount())
	for _, id := range g.NodeIDs() {
		byFile[id] = fileLayers[g.Node(id).File]
	}

	scores := PageRank(g)

	min, max := 1.0, 0.0
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	spread := max - min
	if spread < 0 {
		spread = 0
	}

	return Metrics{
		CycleCount:       len(FindCycles(g, 2)),
		LayerViolations:  len(FindViolations(g, byFile)),
		Modularity:       Modularity(g, DetectClusters(g)),
		CentralitySpread: spread,
	}
}

// Simulate applies op to a clone of g and reports how the metrics moved.
// Returns ErrNotFound for an unknown symbol and ErrInvalidRequest for an
// unknown operation.
func Simulate(g *DiGraph, op Op, symbolID NodeID, targetFile string) (*SimulationResult, error) {
	if !g.HasNode(symbolID) {
		return nil, errors.Wrapf(errors.ErrNotFound, "symbol %d not in graph", symbolID)
	}

	clone := g.Clone()
	switch op {
	case OpMove:
		ApplyMove(clone, symbolID, targetFile)
	case OpExtract:
		ApplyExtract(clone, symbolID, targetFile)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "unknown operation %q", op)
	}

	before := ComputeMetrics(g)
	after := ComputeMetrics(clone)

	return &SimulationResult{
		Op:         op,
		SymbolID:   symbolID,
		TargetFile: targetFile,
		Before:     before,
		After:      after,
		Changes:    metricChanges(before, after),
	}, nil
}

// ApplyMove relocates a node to targetFile. Edges are untouched; on a
// file-level graph the move only relabels the node.
func ApplyMove(g *DiGraph, id NodeID, targetFile string) {
	g.Node(id).File = targetFile
}

// ApplyExtract creates a new node in targetFile, transfers the original
// node's outgoing edges to it, and leaves a single call edge from the
// original to the extraction. The new node id is one past the current
// maximum.
func ApplyExtract(g *DiGraph, id NodeID, targetFile string) NodeID {
	src := g.Node(id)
	extracted := &Node{
		ID:            g.MaxID() + 1,
		Name:          src.Name + "_extracted",
		QualifiedName: src.QualifiedName + "_extracted",
		Kind:          src.Kind,
		File:          targetFile,
		Exported:      src.Exported,
	}
	g.AddNode(extracted)

	for _, target := range g.OutNeighbors(id) {
		e := g.Edge(id, target)
		kind, weight := e.Kind, e.Weight
		g.RemoveEdge(id, target)
		if target != extracted.ID {
			g.AddEdge(extracted.ID, target, kind)
			g.Edge(extracted.ID, target).Weight = weight
		}
	}
	g.AddEdge(id, extracted.ID, "calls")
	return extracted.ID
}

// MetricDelta classifies a single metric movement. lowerBetter flips the
// improved/degraded direction for metrics like modularity where higher is
// healthier.
func MetricDelta(name string, before, after float64, lowerBetter bool) MetricChange {
	delta := after - before
	direction := "unchanged"
	switch {
	case delta == 0:
	case (delta < 0) == lowerBetter:
		direction = "improved"
	default:
		direction = "degraded"
	}
	return MetricChange{
		Metric:    name,
		Before:    before,
		After:     after,
		Delta:     delta,
		Direction: direction,
	}
}

func metricChanges(before, after Metrics) []MetricChange {
	changes := []MetricChange{
		MetricDelta("cycle_count", float64(before.CycleCount), float64(after.CycleCount), true),
		MetricDelta("layer_violations", float64(before.LayerViolations), float64(after.LayerViolations), true),
		MetricDelta("modularity", before.Modularity, after.Modularity, false),
		MetricDelta("centrality_spread", before.CentralitySpread, after.CentralitySpread, true),
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Metric < changes[j].Metric })
	return changes
}
