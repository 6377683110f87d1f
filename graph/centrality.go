package graph

import (
	"math"
	"sort"
)

// PageRank defaults. Determinism for a fixed graph is a hard requirement:
// downstream truncation relies on stable score ordering, so iteration runs
// in ascending node-id order and never depends on map iteration.
const (
	DefaultDamping       = 0.85
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
)

// PageRankOptions tunes the damped random walk. Zero values fall back to
// the package defaults.
type PageRankOptions struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
}

// PageRank computes damped random-walk centrality with default options.
// Scores are non-negative and sum to ~1.0; isolated nodes receive the
// base uniform score.
func PageRank(g *DiGraph) map[NodeID]float64 {
	return PageRankWithOptions(g, PageRankOptions{})
}

// PageRankWithOptions computes PageRank with explicit parameters.
// Dangling-node mass is redistributed uniformly, conserving total
// probability mass.
func PageRankWithOptions(g *DiGraph, opts PageRankOptions) map[NodeID]float64 {
	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = DefaultDamping
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	ids := g.NodeIDs()
	n := len(ids)
	ranks := make(map[NodeID]float64, n)
	if n == 0 {
		return ranks
	}

	uniform := 1.0 / float64(n)
	for _, id := range ids {
		ranks[id] = uniform
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		// Mass parked on dangling nodes (no outgoing edges) is spread
		// uniformly so the distribution keeps summing to 1
		danglingMass := 0.0
		for _, id := range ids {
			if g.OutDegree(id) == 0 {
				danglingMass += ranks[id]
			}
		}

		next := make(map[NodeID]float64, n)
		base := (1-opts.Damping)/float64(n) + opts.Damping*danglingMass/float64(n)
		for _, id := range ids {
			sum := 0.0
			for _, src := range g.InNeighbors(id) {
				sum += ranks[src] / float64(g.OutDegree(src))
			}
			next[id] = base + opts.Damping*sum
		}

		delta := 0.0
		for _, id := range ids {
			delta += math.Abs(next[id] - ranks[id])
		}
		ranks = next
		if delta < opts.Tolerance {
			break
		}
	}

	return ranks
}

// RankedNode pairs a node with its centrality score for ordered output.
type RankedNode struct {
	ID    NodeID  `json:"id"`
	Name  string  `json:"name"`
	File  string  `json:"file"`
	Score float64 `json:"score"`
}

// TopRanked returns the limit highest-scoring nodes, ties broken by
// ascending id so identical inputs always truncate identically.
func TopRanked(g *DiGraph, scores map[NodeID]float64, limit int) []RankedNode {
	ranked := make([]RankedNode, 0, len(scores))
	for _, id := range g.NodeIDs() {
		score, ok := scores[id]
		if !ok {
			continue
		}
		node := g.Node(id)
		ranked = append(ranked, RankedNode{ID: id, Name: node.Name, File: node.File, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Betweenness computes node betweenness centrality with Brandes' algorithm
// over the undirected view of g (direction is irrelevant for finding the
// nodes whose removal disconnects a cluster). Deterministic: sources and
// neighbors are visited in ascending id order.
func Betweenness(g *DiGraph) map[NodeID]float64 {
	ids := g.NodeIDs()
	scores := make(map[NodeID]float64, len(ids))
	for _, id := range ids {
		scores[id] = 0
	}

	for _, source := range ids {
		// BFS from source computing shortest-path counts
		sigma := map[NodeID]float64{source: 1}
		dist := map[NodeID]int{source: 0}
		preds := make(map[NodeID][]NodeID)
		var order []NodeID

		queue := []NodeID{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)
			for _, w := range undirectedNeighbors(g, v) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		// Dependency accumulation in reverse BFS order
		delta := make(map[NodeID]float64)
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != source {
				scores[w] += delta[w]
			}
		}
	}

	return scores
}

// undirectedNeighbors returns the union of in- and out-neighbors, ascending.
func undirectedNeighbors(g *DiGraph, id NodeID) []NodeID {
	out := g.OutNeighbors(id)
	in := g.InNeighbors(id)
	if len(in) == 0 {
		return out
	}
	if len(out) == 0 {
		return in
	}
	seen := make(map[NodeID]struct{}, len(out)+len(in))
	merged := make([]NodeID, 0, len(out)+len(in))
	for _, id := range out {
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range in {
		if _, ok := seen[id]; !ok {
			merged = append(merged, id)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}
