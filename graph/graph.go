// Package graph is the codegraph dependency graph engine. It builds directed
// symbol-level and file-level graphs from the persisted index and provides
// the analysis passes on top of them: cycle detection, centrality ranking,
// community detection, layer analysis, multi-agent partitioning, and
// hypothetical-edit simulation.
//
// All algorithm outputs are deterministic for a fixed graph: every map
// iteration that feeds a result passes through an explicit sort by node id.
package graph

import (
	"sort"
)

// NodeID identifies a node: a symbol id in the symbol-level view, a file id
// in the file-level view.
type NodeID int64

// Level marks which view a graph represents.
type Level string

const (
	LevelSymbol Level = "symbol"
	LevelFile   Level = "file"
)

// Node carries the immutable attributes of one graph node. The graph engine
// only reads indexed attributes; Extra holds transient metadata attached by
// the simulator and is nil for ordinary nodes.
type Node struct {
	ID            NodeID `json:"id"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name,omitempty"`
	Kind          string `json:"kind"`
	File          string `json:"file"`
	StartLine     int    `json:"start_line,omitempty"`
	EndLine       int    `json:"end_line,omitempty"`
	Exported      bool   `json:"exported,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// Edge is one directed relation: From depends on / references To.
// The graph holds at most one edge per ordered node pair; when the index
// contains multiple relationship kinds for the same pair, Kind is the
// highest-precedence representative and Weight counts the merged rows.
type Edge struct {
	From   NodeID `json:"from"`
	To     NodeID `json:"to"`
	Kind   string `json:"kind"`
	Weight int    `json:"weight"`
}

// kindRank orders relationship kinds for representative selection when
// multiple kinds connect the same ordered pair. Lower rank wins.
// This is a documented limitation: the representative is deterministic,
// not an aggregation.
func kindRank(kind string) int {
	switch kind {
	case "calls":
		return 0
	case "imports":
		return 1
	case "implements":
		return 2
	case "references":
		return 3
	case "uses":
		return 4
	default:
		return 5
	}
}

type edgeKey struct {
	from, to NodeID
}

// DiGraph is a directed graph over int64-identified nodes with adjacency
// kept both ways for O(degree) neighbor queries. It is built once per
// request by the Builder and never mutated by the read-only analysis
// passes; only the simulator mutates graphs, and only private clones.
type DiGraph struct {
	level Level
	nodes map[NodeID]*Node
	edges map[edgeKey]*Edge
	out   map[NodeID]map[NodeID]struct{}
	in    map[NodeID]map[NodeID]struct{}
}

// NewDiGraph creates an empty graph for the given view level.
func NewDiGraph(level Level) *DiGraph {
	return &DiGraph{
		level: level,
		nodes: make(map[NodeID]*Node),
		edges: make(map[edgeKey]*Edge),
		out:   make(map[NodeID]map[NodeID]struct{}),
		in:    make(map[NodeID]map[NodeID]struct{}),
	}
}

// Level reports which view this graph represents.
func (g *DiGraph) Level() Level {
	return g.level
}

// AddNode inserts or replaces a node.
func (g *DiGraph) AddNode(n *Node) {
	g.nodes[n.ID] = n
}

// Node returns the node with the given id, or nil.
func (g *DiGraph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// HasNode reports whether id is present.
func (g *DiGraph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge inserts a directed edge. Edges referencing missing endpoints are
// ignored. A duplicate ordered pair accumulates weight and keeps the
// highest-precedence kind. Returns true if the edge was added or merged.
func (g *DiGraph) AddEdge(from, to NodeID, kind string) bool {
	if !g.HasNode(from) || !g.HasNode(to) {
		return false
	}

	key := edgeKey{from, to}
	if existing, ok := g.edges[key]; ok {
		existing.Weight++
		if kindRank(kind) < kindRank(existing.Kind) {
			existing.Kind = kind
		}
		return true
	}

	g.edges[key] = &Edge{From: from, To: to, Kind: kind, Weight: 1}
	if g.out[from] == nil {
		g.out[from] = make(map[NodeID]struct{})
	}
	g.out[from][to] = struct{}{}
	if g.in[to] == nil {
		g.in[to] = make(map[NodeID]struct{})
	}
	g.in[to][from] = struct{}{}
	return true
}

// Edge returns the edge from->to, or nil.
func (g *DiGraph) Edge(from, to NodeID) *Edge {
	return g.edges[edgeKey{from, to}]
}

// RemoveEdge deletes the edge from->to if present.
func (g *DiGraph) RemoveEdge(from, to NodeID) {
	key := edgeKey{from, to}
	if _, ok := g.edges[key]; !ok {
		return
	}
	delete(g.edges, key)
	delete(g.out[from], to)
	delete(g.in[to], from)
}

// NodeCount returns the number of nodes.
func (g *DiGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct ordered-pair edges.
func (g *DiGraph) EdgeCount() int {
	return len(g.edges)
}

// NodeIDs returns all node ids in ascending order.
func (g *DiGraph) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Edges returns all edges sorted by (From, To).
func (g *DiGraph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, *e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// OutNeighbors returns the targets of edges leaving id, ascending.
func (g *DiGraph) OutNeighbors(id NodeID) []NodeID {
	return sortedKeys(g.out[id])
}

// InNeighbors returns the sources of edges entering id, ascending.
func (g *DiGraph) InNeighbors(id NodeID) []NodeID {
	return sortedKeys(g.in[id])
}

// OutDegree returns the number of edges leaving id.
func (g *DiGraph) OutDegree(id NodeID) int {
	return len(g.out[id])
}

// InDegree returns the number of edges entering id.
func (g *DiGraph) InDegree(id NodeID) int {
	return len(g.in[id])
}

// MaxID returns the highest node id, or 0 for an empty graph.
func (g *DiGraph) MaxID() NodeID {
	var max NodeID
	for id := range g.nodes {
		if id > max {
			max = id
		}
	}
	return max
}

// Clone returns a deep copy sharing no mutable state with the original.
// The simulator applies hypothetical edits to clones only.
func (g *DiGraph) Clone() *DiGraph {
	clone := NewDiGraph(g.level)
	for id, n := range g.nodes {
		copied := *n
		if n.Extra != nil {
			copied.Extra = make(map[string]string, len(n.Extra))
			for k, v := range n.Extra {
				copied.Extra[k] = v
			}
		}
		clone.nodes[id] = &copied
	}
	for key, e := range g.edges {
		copied := *e
		clone.edges[key] = &copied
		if clone.out[key.from] == nil {
			clone.out[key.from] = make(map[NodeID]struct{})
		}
		clone.out[key.from][key.to] = struct{}{}
		if clone.in[key.to] == nil {
			clone.in[key.to] = make(map[NodeID]struct{})
		}
		clone.in[key.to][key.from] = struct{}{}
	}
	return clone
}

// Subgraph returns the subgraph induced by keep: the kept nodes and every
// edge whose both endpoints are kept. Nodes are copied.
func (g *DiGraph) Subgraph(keep map[NodeID]bool) *DiGraph {
	sub := NewDiGraph(g.level)
	for id, n := range g.nodes {
		if keep[id] {
			copied := *n
			sub.AddNode(&copied)
		}
	}
	for key, e := range g.edges {
		if keep[key.from] && keep[key.to] {
			sub.edges[key] = &Edge{From: e.From, To: e.To, Kind: e.Kind, Weight: e.Weight}
			if sub.out[key.from] == nil {
				sub.out[key.from] = make(map[NodeID]struct{})
			}
			sub.out[key.from][key.to] = struct{}{}
			if sub.in[key.to] == nil {
				sub.in[key.to] = make(map[NodeID]struct{})
			}
			sub.in[key.to][key.from] = struct{}{}
		}
	}
	return sub
}

func sortedKeys(set map[NodeID]struct{}) []NodeID {
	ids := make([]NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
