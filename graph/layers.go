package graph

import (
	"sort"
)

// DetectLayers assigns each node a non-negative architectural layer.
// Layer 0 holds nodes with no outgoing dependencies (foundational code);
// layer(n) = 1 + max(layer of n's out-neighbors), computed on the
// condensation of the graph so cycles collapse to one unit and every node
// gets a well-defined finite layer. Members of one cycle share a layer.
func DetectLayers(g *DiGraph) map[NodeID]int {
	layers := make(map[NodeID]int, g.NodeCount())
	if g.NodeCount() == 0 {
		return layers
	}

	components, membership := StronglyConnected(g)

	// Condensation adjacency between component indices
	succ := make([]map[int]struct{}, len(components))
	pred := make([]map[int]struct{}, len(components))
	for i := range components {
		succ[i] = make(map[int]struct{})
		pred[i] = make(map[int]struct{})
	}
	for _, e := range g.Edges() {
		from, to := membership[e.From], membership[e.To]
		if from != to {
			succ[from][to] = struct{}{}
			pred[to][from] = struct{}{}
		}
	}

	// Longest path to sink by processing the condensation DAG from its
	// sinks upward (Kahn on remaining out-degree)
	compLayer := make([]int, len(components))
	outDegree := make([]int, len(components))
	var queue []int
	for i := range components {
		outDegree[i] = len(succ[i])
		if outDegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		var ready []int
		for p := range pred[c] {
			if compLayer[c]+1 > compLayer[p] {
				compLayer[p] = compLayer[c] + 1
			}
			outDegree[p]--
			if outDegree[p] == 0 {
				ready = append(ready, p)
			}
		}
		sort.Ints(ready)
		queue = append(queue, ready...)
	}

	for idx, comp := range components {
		for _, id := range comp {
			layers[id] = compLayer[idx]
		}
	}
	return layers
}

// Violation is an inverted dependency: a more-foundational node depending
// on a less-foundational one.
type Violation struct {
	From      NodeID `json:"from"`
	To        NodeID `json:"to"`
	FromLayer int    `json:"from_layer"`
	ToLayer   int    `json:"to_layer"`
	// Distance between the endpoint layers, a severity proxy:
	// distance > 1 marks the edge move-sensitive
	Distance      int    `json:"distance"`
	Kind          string `json:"kind"`
	MoveSensitive bool   `json:"move_sensitive"`
}

// FindViolations scans all edges and reports every (u -> v) pair with
// layer(u) < layer(v), sorted by (From, To).
func FindViolations(g *DiGraph, layers map[NodeID]int) []Violation {
	violations := make([]Violation, 0)
	for _, e := range g.Edges() {
		fromLayer, toLayer := layers[e.From], layers[e.To]
		if fromLayer >= toLayer {
			continue
		}
		distance := toLayer - fromLayer
		violations = append(violations, Violation{
			From:          e.From,
			To:            e.To,
			FromLayer:     fromLayer,
			ToLayer:       toLayer,
			Distance:      distance,
			Kind:          e.Kind,
			MoveSensitive: distance > 1,
		})
	}
	return violations
}

// FileLayers aggregates a symbol-level layer map per file: each file gets
// the majority layer of its symbols, ties resolved toward the lower
// (more foundational) layer.
func FileLayers(g *DiGraph, layers map[NodeID]int) map[string]int {
	counts := make(map[string]map[int]int)
	for _, id := range g.NodeIDs() {
		file := g.Node(id).File
		if file == "" {
			continue
		}
		if counts[file] == nil {
			counts[file] = make(map[int]int)
		}
		counts[file][layers[id]]++
	}

	result := make(map[string]int, len(counts))
	for file, layerCounts := range counts {
		best := -1
		bestCount := 0
		layerKeys := make([]int, 0, len(layerCounts))
		for layer := range layerCounts {
			layerKeys = append(layerKeys, layer)
		}
		sort.Ints(layerKeys)
		for _, layer := range layerKeys {
			if layerCounts[layer] > bestCount {
				best = layer
				bestCount = layerCounts[layer]
			}
		}
		result[file] = best
	}
	return result
}
