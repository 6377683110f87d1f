package graph

import (
	"path/filepath"
	"sort"
)

// ClusterID identifies one detected community. Ids are renumbered by
// smallest member so identical graphs always yield identical assignments.
type ClusterID int

// DetectClusters partitions the graph into communities by modularity
// optimization: a deterministic Louvain-style local-moving pass over the
// undirected weighted projection, repeated until no move improves
// modularity. A graph with no edges yields a single cluster holding every
// node, never an error.
func DetectClusters(g *DiGraph) map[NodeID]ClusterID {
	ids := g.NodeIDs()
	result := make(map[NodeID]ClusterID, len(ids))
	if len(ids) == 0 {
		return result
	}

	weights, degree, total2m := undirectedWeights(g)
	if total2m == 0 {
		// Too few edges to form meaningful communities: one cluster
		for _, id := range ids {
			result[id] = 0
		}
		return result
	}

	// Start with each node in its own community
	comm := make(map[NodeID]int, len(ids))
	tot := make(map[int]float64, len(ids))
	for i, id := range ids {
		comm[id] = i
		tot[i] = degree[id]
	}

	for moved := true; moved; {
		moved = false
		for _, u := range ids {
			current := comm[u]

			// Weight from u into each neighboring community
			links := make(map[int]float64)
			for v, w := range weights[u] {
				links[comm[v]] += w
			}

			// Remove u from its community before evaluating candidates
			tot[current] -= degree[u]

			// Candidate communities in ascending label order for
			// deterministic tie-breaking
			candidates := make([]int, 0, len(links)+1)
			seen := map[int]bool{current: true}
			candidates = append(candidates, current)
			for c := range links {
				if !seen[c] {
					seen[c] = true
					candidates = append(candidates, c)
				}
			}
			sort.Ints(candidates)

			best := current
			bestGain := links[current] - tot[current]*degree[u]/total2m
			for _, c := range candidates {
				gain := links[c] - tot[c]*degree[u]/total2m
				if gain > bestGain {
					best = c
					bestGain = gain
				}
			}

			tot[best] += degree[u]
			if best != current {
				comm[u] = best
				moved = true
			}
		}
	}

	// Renumber communities by smallest member id
	firstMember := make(map[int]NodeID)
	for _, id := range ids {
		c := comm[id]
		if existing, ok := firstMember[c]; !ok || id < existing {
			firstMember[c] = id
		}
	}
	labels := make([]int, 0, len(firstMember))
	for c := range firstMember {
		labels = append(labels, c)
	}
	sort.Slice(labels, func(i, j int) bool { return firstMember[labels[i]] < firstMember[labels[j]] })
	renumbered := make(map[int]ClusterID, len(labels))
	for newID, c := range labels {
		renumbered[c] = ClusterID(newID)
	}

	for _, id := range ids {
		result[id] = renumbered[comm[id]]
	}
	return result
}

// Modularity scores a cluster assignment on the undirected weighted
// projection of g. Returns 0 for a graph with no edges.
func Modularity(g *DiGraph, clusters map[NodeID]ClusterID) float64 {
	weights, degree, total2m := undirectedWeights(g)
	if total2m == 0 {
		return 0
	}

	internal := make(map[ClusterID]float64)
	totals := make(map[ClusterID]float64)
	for id, c := range clusters {
		totals[c] += degree[id]
		for v, w := range weights[id] {
			if clusters[v] == c {
				internal[c] += w
			}
		}
	}

	q := 0.0
	for c, t := range totals {
		q += internal[c]/total2m - (t/total2m)*(t/total2m)
	}
	return q
}

// LabelClusters derives one display label per cluster: the majority
// directory of its members' files, falling back to the name of its
// highest-centrality member when no informative directory exists.
func LabelClusters(g *DiGraph, clusters map[NodeID]ClusterID) map[ClusterID]string {
	members := make(map[ClusterID][]NodeID)
	for _, id := range g.NodeIDs() {
		c, ok := clusters[id]
		if !ok {
			continue
		}
		members[c] = append(members[c], id)
	}

	var ranks map[NodeID]float64 // computed lazily, most clusters label by directory

	labels := make(map[ClusterID]string, len(members))
	for c, ids := range members {
		dirCounts := make(map[string]int)
		for _, id := range ids {
			if file := g.Node(id).File; file != "" {
				if dir := filepath.Dir(file); dir != "" && dir != "." {
					dirCounts[dir]++
				}
			}
		}

		if len(dirCounts) > 0 {
			dirs := make([]string, 0, len(dirCounts))
			for dir := range dirCounts {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			best := dirs[0]
			for _, dir := range dirs[1:] {
				if dirCounts[dir] > dirCounts[best] {
					best = dir
				}
			}
			labels[c] = best
			continue
		}

		if ranks == nil {
			ranks = PageRank(g)
		}
		best := ids[0]
		for _, id := range ids[1:] {
			if ranks[id] > ranks[best] {
				best = id
			}
		}
		labels[c] = g.Node(best).Name
	}
	return labels
}

// undirectedWeights folds directed edge weights into a symmetric adjacency
// map, per-node degree sums, and the total degree (2m). Self-loops are
// ignored.
func undirectedWeights(g *DiGraph) (map[NodeID]map[NodeID]float64, map[NodeID]float64, float64) {
	weights := make(map[NodeID]map[NodeID]float64)
	degree := make(map[NodeID]float64)
	total2m := 0.0

	add := func(u, v NodeID, w float64) {
		if weights[u] == nil {
			weights[u] = make(map[NodeID]float64)
		}
		weights[u][v] += w
	}

	for _, e := range g.Edges() {
		if e.From == e.To {
			continue
		}
		w := float64(e.Weight)
		add(e.From, e.To, w)
		add(e.To, e.From, w)
		degree[e.From] += w
		degree[e.To] += w
		total2m += 2 * w
	}
	return weights, degree, total2m
}
