package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/codegraph/errors"
)

// DefaultSharedInterfaceLimit caps the shared-interface ranking.
const DefaultSharedInterfaceLimit = 15

// Contract is a boundary constraint imposed on an agent: another agent
// depends on this symbol, so its signature must not change.
type Contract struct {
	SymbolID NodeID `json:"symbol_id"`
	Name     string `json:"name"`
	File     string `json:"file"`
	Kind     string `json:"kind"`
}

// Agent is one partition of the workload: an exclusive set of writable
// files, a read-only neighborhood, and the contracts it must honor.
type Agent struct {
	ID           int        `json:"id"`
	ClusterLabel string     `json:"cluster_label"`
	WriteFiles   []string   `json:"write_files"`
	ReadFiles    []string   `json:"read_files"`
	Contracts    []Contract `json:"contracts"`
	SymbolCount  int        `json:"symbol_count"`
}

// SharedInterface is a node ranked by how many edges cross partition
// boundaries through it.
type SharedInterface struct {
	ID         NodeID `json:"id"`
	Name       string `json:"name"`
	File       string `json:"file"`
	CrossEdges int    `json:"cross_edges"`
}

// PartitionResult is the full output of PartitionForAgents.
type PartitionResult struct {
	Agents []Agent `json:"agents"`
	// MergeOrder lists agent ids in safe integration order: partitions
	// with no outgoing dependency on other partitions come first
	MergeOrder          []int             `json:"merge_order"`
	ConflictProbability float64           `json:"conflict_probability"`
	SharedInterfaces    []SharedInterface `json:"shared_interfaces"`
	// WriteConflicts counts files claimed by more than one agent; the
	// majority-vote ownership rule guarantees 0
	WriteConflicts int `json:"write_conflicts"`
}

// PartitionForAgents divides the graph into nAgents disjoint work zones.
// Partitions are seeded from community detection, reconciled to exactly
// nAgents by merging the smallest or splitting the largest, and file
// ownership is decided by majority vote so no two agents ever claim write
// access to the same file. targetFiles optionally restricts the graph to
// matching file paths (exact match, falling back to path-prefix match).
// An empty graph after scoping yields an all-empty result, never an error.
func PartitionForAgents(g *DiGraph, nAgents int, targetFiles []string) (*PartitionResult, error) {
	if nAgents <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "agent count must be positive, got %d", nAgents)
	}

	sub := scopeToFiles(g, targetFiles)
	if sub.NodeCount() == 0 {
		return emptyResult(nAgents), nil
	}

	groups := seedFromClusters(sub)
	groups = reconcileGroupCount(sub, groups, nAgents)

	groupOf := make(map[NodeID]int, sub.NodeCount())
	for i, group := range groups {
		for _, id := range group {
			groupOf[id] = i
		}
	}

	owners := assignFileOwnership(sub, groups)

	agents := make([]Agent, nAgents)
	labels := groupLabels(sub, groups)
	for i := range agents {
		agents[i] = Agent{
			ID:           i,
			ClusterLabel: labels[i],
			WriteFiles:   sortedOwnedFiles(owners, i),
			ReadFiles:    readFiles(sub, groups[i], groupOf, owners, i),
			Contracts:    boundaryContracts(sub, groups[i], groupOf, i),
			SymbolCount:  len(groups[i]),
		}
	}

	crossEdges, totalEdges := countCrossEdges(sub, groupOf)
	conflictProbability := 0.0
	if totalEdges > 0 {
		conflictProbability = float64(crossEdges) / float64(totalEdges)
	}

	return &PartitionResult{
		Agents:              agents,
		MergeOrder:          mergeOrder(sub, groupOf, nAgents),
		ConflictProbability: conflictProbability,
		SharedInterfaces:    sharedInterfaces(sub, groupOf, DefaultSharedInterfaceLimit),
		WriteConflicts:      countWriteConflicts(agents),
	}, nil
}

// scopeToFiles returns the subgraph induced by nodes whose file matches
// targetFiles, or the graph itself when no scoping is requested. Exact
// path match is tried first, then prefix match; a scope matching nothing
// produces an empty subgraph.
func scopeToFiles(g *DiGraph, targetFiles []string) *DiGraph {
	if len(targetFiles) == 0 {
		return g
	}

	exact := make(map[string]bool, len(targetFiles))
	for _, f := range targetFiles {
		exact[f] = true
	}

	keep := make(map[NodeID]bool)
	for _, id := range g.NodeIDs() {
		if exact[g.Node(id).File] {
			keep[id] = true
		}
	}

	if len(keep) == 0 {
		for _, id := range g.NodeIDs() {
			file := g.Node(id).File
			for _, prefix := range targetFiles {
				if strings.HasPrefix(file, prefix) {
					keep[id] = true
					break
				}
			}
		}
	}

	return g.Subgraph(keep)
}

// seedFromClusters converts the community assignment into ordered member
// groups. Cluster ids are already renumbered by smallest member, so group
// order is deterministic.
func seedFromClusters(g *DiGraph) [][]NodeID {
	clusters := DetectClusters(g)

	byCluster := make(map[ClusterID][]NodeID)
	for _, id := range g.NodeIDs() {
		byCluster[clusters[id]] = append(byCluster[clusters[id]], id)
	}

	clusterIDs := make([]ClusterID, 0, len(byCluster))
	for c := range byCluster {
		clusterIDs = append(clusterIDs, c)
	}
	sort.Slice(clusterIDs, func(i, j int) bool { return clusterIDs[i] < clusterIDs[j] })

	groups := make([][]NodeID, 0, len(clusterIDs))
	for _, c := range clusterIDs {
		members := byCluster[c]
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		groups = append(groups, members)
	}
	return groups
}

// reconcileGroupCount merges or splits groups until exactly nAgents remain.
// Merging combines the two smallest groups; splitting removes the
// highest-betweenness node from the largest group and separates the
// resulting connected components, falling back to index-order bisection.
// Splitting an unsplittable singleton yields an empty group rather than
// failing.
func reconcileGroupCount(g *DiGraph, groups [][]NodeID, nAgents int) [][]NodeID {
	for len(groups) > nAgents {
		groups = mergeTwoSmallest(groups)
	}
	for len(groups) < nAgents {
		groups = splitLargest(g, groups)
	}
	return groups
}

func mergeTwoSmallest(groups [][]NodeID) [][]NodeID {
	a, b := smallestPair(groups)
	merged := append(append([]NodeID{}, groups[a]...), groups[b]...)
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })

	next := make([][]NodeID, 0, len(groups)-1)
	for i, group := range groups {
		if i == a || i == b {
			continue
		}
		next = append(next, group)
	}
	next = append(next, merged)
	sortGroups(next)
	return next
}

// smallestPair returns the indices of the two smallest groups, ties broken
// by smaller first member.
func smallestPair(groups [][]NodeID) (int, int) {
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		gi, gj := groups[order[i]], groups[order[j]]
		if len(gi) != len(gj) {
			return len(gi) < len(gj)
		}
		return firstMember(gi) < firstMember(gj)
	})
	a, b := order[0], order[1]
	if a > b {
		a, b = b, a
	}
	return a, b
}

func splitLargest(g *DiGraph, groups [][]NodeID) [][]NodeID {
	largest := 0
	for i, group := range groups {
		if len(group) > len(groups[largest]) ||
			(len(group) == len(groups[largest]) && firstMember(group) < firstMember(groups[largest])) {
			largest = i
		}
	}

	left, right := splitGroup(g, groups[largest])

	next := make([][]NodeID, 0, len(groups)+1)
	for i, group := range groups {
		if i == largest {
			continue
		}
		next = append(next, group)
	}
	next = append(next, left, right)
	sortGroups(next)
	return next
}

// splitGroup divides one group in two. The preferred strategy removes the
// member with the highest betweenness centrality in the induced subgraph
// and takes the resulting connected components; when that yields fewer
// than two components (or the group is a singleton) it bisects by index
// order, which may produce an empty half.
func splitGroup(g *DiGraph, group []NodeID) ([]NodeID, []NodeID) {
	if len(group) < 2 {
		return group, []NodeID{}
	}

	keep := make(map[NodeID]bool, len(group))
	for _, id := range group {
		keep[id] = true
	}
	sub := g.Subgraph(keep)

	cut := topBetweennessNode(sub)
	comps := connectedComponentsWithout(sub, cut)
	if len(comps) >= 2 {
		// The cut node joins the largest component (ties: first by
		// smallest member); the rest merge into the second half
		sort.Slice(comps, func(i, j int) bool {
			if len(comps[i]) != len(comps[j]) {
				return len(comps[i]) > len(comps[j])
			}
			return firstMember(comps[i]) < firstMember(comps[j])
		})
		left := append(comps[0], cut)
		sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
		var right []NodeID
		for _, comp := range comps[1:] {
			right = append(right, comp...)
		}
		sort.Slice(right, func(i, j int) bool { return right[i] < right[j] })
		return left, right
	}

	// Index-order bisection fallback
	mid := len(group) / 2
	left := append([]NodeID{}, group[:mid]...)
	right := append([]NodeID{}, group[mid:]...)
	return left, right
}

func topBetweennessNode(g *DiGraph) NodeID {
	scores := Betweenness(g)
	ids := g.NodeIDs()
	best := ids[0]
	for _, id := range ids[1:] {
		if scores[id] > scores[best] {
			best = id
		}
	}
	return best
}

// connectedComponentsWithout computes weakly connected components of g
// with one node excluded.
func connectedComponentsWithout(g *DiGraph, excluded NodeID) [][]NodeID {
	visited := map[NodeID]bool{excluded: true}
	var comps [][]NodeID

	for _, start := range g.NodeIDs() {
		if visited[start] {
			continue
		}
		var comp []NodeID
		queue := []NodeID{start}
		visited[start] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			comp = append(comp, v)
			for _, w := range undirectedNeighbors(g, v) {
				if !visited[w] {
					visited[w] = true
					queue = append(queue, w)
				}
			}
		}
		sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
		comps = append(comps, comp)
	}
	return comps
}

// assignFileOwnership gives each file exclusively to the group holding the
// most of its symbols (ties: lower group index). This is what guarantees
// the no-double-write invariant even though cluster boundaries do not
// align with file boundaries.
func assignFileOwnership(g *DiGraph, groups [][]NodeID) map[string]int {
	counts := make(map[string][]int)
	for i, group := range groups {
		for _, id := range group {
			file := g.Node(id).File
			if file == "" {
				continue
			}
			if counts[file] == nil {
				counts[file] = make([]int, len(groups))
			}
			counts[file][i]++
		}
	}

	owners := make(map[string]int, len(counts))
	for file, perGroup := range counts {
		owner := 0
		for i, c := range perGroup {
			if c > perGroup[owner] {
				owner = i
			}
		}
		owners[file] = owner
	}
	return owners
}

func sortedOwnedFiles(owners map[string]int, group int) []string {
	files := make([]string, 0)
	for file, owner := range owners {
		if owner == group {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files
}

// readFiles collects files owned by other groups that are reachable via an
// edge touching this group, in either direction.
func readFiles(g *DiGraph, group []NodeID, groupOf map[NodeID]int, owners map[string]int, self int) []string {
	seen := make(map[string]bool)
	for _, id := range group {
		neighbors := append(g.OutNeighbors(id), g.InNeighbors(id)...)
		for _, other := range neighbors {
			if groupOf[other] == self {
				continue
			}
			file := g.Node(other).File
			if file == "" || owners[file] == self {
				continue
			}
			seen[file] = true
		}
	}

	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// boundaryContracts lists the symbols in neighboring groups that this
// group depends on: their signatures must not change under it.
func boundaryContracts(g *DiGraph, group []NodeID, groupOf map[NodeID]int, self int) []Contract {
	seen := make(map[NodeID]bool)
	contracts := make([]Contract, 0)
	for _, id := range group {
		for _, target := range g.OutNeighbors(id) {
			if groupOf[target] == self || seen[target] {
				continue
			}
			seen[target] = true
			node := g.Node(target)
			contracts = append(contracts, Contract{
				SymbolID: target,
				Name:     node.Name,
				File:     node.File,
				Kind:     node.Kind,
			})
		}
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].SymbolID < contracts[j].SymbolID })
	return contracts
}

func countCrossEdges(g *DiGraph, groupOf map[NodeID]int) (cross, total int) {
	for _, e := range g.Edges() {
		total++
		if groupOf[e.From] != groupOf[e.To] {
			cross++
		}
	}
	return cross, total
}

// sharedInterfaces ranks nodes by the number of edges crossing a partition
// boundary through them, descending (ties: ascending id).
func sharedInterfaces(g *DiGraph, groupOf map[NodeID]int, limit int) []SharedInterface {
	crossCount := make(map[NodeID]int)
	for _, e := range g.Edges() {
		if groupOf[e.From] != groupOf[e.To] {
			crossCount[e.From]++
			crossCount[e.To]++
		}
	}

	ranked := make([]SharedInterface, 0, len(crossCount))
	for _, id := range g.NodeIDs() {
		count, ok := crossCount[id]
		if !ok {
			continue
		}
		node := g.Node(id)
		ranked = append(ranked, SharedInterface{
			ID:         id,
			Name:       node.Name,
			File:       node.File,
			CrossEdges: count,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CrossEdges != ranked[j].CrossEdges {
			return ranked[i].CrossEdges > ranked[j].CrossEdges
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// mergeOrder computes a safe integration order: build the partition-level
// dependency graph from cross-partition edges, collapse its cycles, and
// order by condensation depth so partitions with no outgoing dependency
// come first. Mutually dependent partitions share a depth and end up
// adjacent.
func mergeOrder(g *DiGraph, groupOf map[NodeID]int, nAgents int) []int {
	pg := NewDiGraph(LevelFile)
	for i := 0; i < nAgents; i++ {
		pg.AddNode(&Node{ID: NodeID(i), Name: fmt.Sprintf("partition-%d", i)})
	}
	for _, e := range g.Edges() {
		from, to := groupOf[e.From], groupOf[e.To]
		if from != to {
			pg.AddEdge(NodeID(from), NodeID(to), e.Kind)
		}
	}

	depths := DetectLayers(pg)
	order := make([]int, 0, nAgents)
	for i := 0; i < nAgents; i++ {
		order = append(order, i)
	}
	sort.Slice(order, func(i, j int) bool {
		di, dj := depths[NodeID(order[i])], depths[NodeID(order[j])]
		if di != dj {
			return di < dj
		}
		return order[i] < order[j]
	})
	return order
}

func countWriteConflicts(agents []Agent) int {
	claims := make(map[string]int)
	for _, agent := range agents {
		for _, file := range agent.WriteFiles {
			claims[file]++
		}
	}
	conflicts := 0
	for _, c := range claims {
		if c > 1 {
			conflicts++
		}
	}
	return conflicts
}

// groupLabels labels each group via LabelClusters over the final
// assignment.
func groupLabels(g *DiGraph, groups [][]NodeID) []string {
	assignment := make(map[NodeID]ClusterID)
	for i, group := range groups {
		for _, id := range group {
			assignment[id] = ClusterID(i)
		}
	}
	byCluster := LabelClusters(g, assignment)

	labels := make([]string, len(groups))
	for i := range groups {
		if label, ok := byCluster[ClusterID(i)]; ok {
			labels[i] = label
		}
	}
	return labels
}

func emptyResult(nAgents int) *PartitionResult {
	agents := make([]Agent, nAgents)
	order := make([]int, nAgents)
	for i := range agents {
		agents[i] = Agent{
			ID:         i,
			WriteFiles: []string{},
			ReadFiles:  []string{},
			Contracts:  []Contract{},
		}
		order[i] = i
	}
	return &PartitionResult{
		Agents:           agents,
		MergeOrder:       order,
		SharedInterfaces: []SharedInterface{},
	}
}

func firstMember(group []NodeID) NodeID {
	if len(group) == 0 {
		return NodeID(1<<63 - 1)
	}
	return group[0]
}

// sortGroups orders groups by smallest member, empty groups last.
func sortGroups(groups [][]NodeID) {
	sort.Slice(groups, func(i, j int) bool { return firstMember(groups[i]) < firstMember(groups[j]) })
}
