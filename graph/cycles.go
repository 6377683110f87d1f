package graph

import (
	"sort"
)

// DefaultMinCycleSize excludes size-1 components: a symbol referencing
// itself is not a dependency cycle worth reporting.
const DefaultMinCycleSize = 2

// FindCycles computes strongly connected components and returns those with
// at least minSize members (default 2 when minSize <= 0). With minSize 1,
// singleton components are included only when they carry a self-loop.
// Components are sorted by smallest member id, members ascending.
func FindCycles(g *DiGraph, minSize int) [][]NodeID {
	if minSize <= 0 {
		minSize = DefaultMinCycleSize
	}

	components, _ := StronglyConnected(g)

	cycles := make([][]NodeID, 0)
	for _, comp := range components {
		if len(comp) >= minSize && len(comp) >= 2 {
			cycles = append(cycles, comp)
			continue
		}
		if minSize == 1 && len(comp) == 1 {
			id := comp[0]
			if g.Edge(id, id) != nil {
				cycles = append(cycles, comp)
			}
		}
	}
	return cycles
}

// StronglyConnected computes all SCCs of g with an iterative Tarjan walk
// (explicit stack, so deep graphs cannot overflow the goroutine stack).
// It returns the components sorted by smallest member id with members
// ascending, plus a node -> component-index map aligned with that order.
// The component list is the condensation's node set: collapsing each
// component to one unit yields a DAG.
func StronglyConnected(g *DiGraph) ([][]NodeID, map[NodeID]int) {
	index := make(map[NodeID]int, g.NodeCount())
	lowlink := make(map[NodeID]int, g.NodeCount())
	onStack := make(map[NodeID]bool, g.NodeCount())
	var stack []NodeID
	var components [][]NodeID
	counter := 0

	// frame tracks one node's DFS progress through its sorted successors
	type frame struct {
		id        NodeID
		neighbors []NodeID
		next      int
	}

	for _, root := range g.NodeIDs() {
		if _, visited := index[root]; visited {
			continue
		}

		frames := []frame{{id: root, neighbors: g.OutNeighbors(root)}}
		index[root] = counter
		lowlink[root] = counter
		counter++
		stack = append(stack, root)
		onStack[root] = true

		for len(frames) > 0 {
			f := &frames[len(frames)-1]

			advanced := false
			for f.next < len(f.neighbors) {
				next := f.neighbors[f.next]
				f.next++
				if _, visited := index[next]; !visited {
					index[next] = counter
					lowlink[next] = counter
					counter++
					stack = append(stack, next)
					onStack[next] = true
					frames = append(frames, frame{id: next, neighbors: g.OutNeighbors(next)})
					advanced = true
					break
				}
				if onStack[next] && index[next] < lowlink[f.id] {
					lowlink[f.id] = index[next]
				}
			}
			if advanced {
				continue
			}

			// f is exhausted: pop a component if f is a root, then fold
			// its lowlink into the parent
			if lowlink[f.id] == index[f.id] {
				var comp []NodeID
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[top] = false
					comp = append(comp, top)
					if top == f.id {
						break
					}
				}
				sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
				components = append(components, comp)
			}

			finished := f.id
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if lowlink[finished] < lowlink[parent.id] {
					lowlink[parent.id] = lowlink[finished]
				}
			}
		}
	}

	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	membership := make(map[NodeID]int, g.NodeCount())
	for idx, comp := range components {
		for _, id := range comp {
			membership[id] = idx
		}
	}
	return components, membership
}
