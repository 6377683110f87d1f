package graph

import (
	"sort"

	"github.com/teranos/codegraph/errors"
)

// ImpactEntry is one node affected by a change to the root: it depends,
// directly or transitively, on the changed node.
type ImpactEntry struct {
	ID    NodeID `json:"id"`
	Name  string `json:"name"`
	File  string `json:"file"`
	Depth int    `json:"depth"`
}

// Impact walks the reverse dependency closure of id: everything that
// reaches it, up to maxDepth hops (0 means unlimited). The root itself is
// excluded. Entries are ordered by depth, then id.
func Impact(g *DiGraph, id NodeID, maxDepth int) ([]ImpactEntry, error) {
	if !g.HasNode(id) {
		return nil, errors.Wrapf(errors.ErrNotFound, "symbol %d not in graph", id)
	}

	depth := map[NodeID]int{id: 0}
	queue := []NodeID{id}
	var entries []ImpactEntry

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && depth[v] >= maxDepth {
			continue
		}
		for _, dependent := range g.InNeighbors(v) {
			if _, seen := depth[dependent]; seen {
				continue
			}
			depth[dependent] = depth[v] + 1
			queue = append(queue, dependent)
			node := g.Node(dependent)
			entries = append(entries, ImpactEntry{
				ID:    dependent,
				Name:  node.Name,
				File:  node.File,
				Depth: depth[dependent],
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Depth != entries[j].Depth {
			return entries[i].Depth < entries[j].Depth
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
