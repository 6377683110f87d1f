package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCycles(t *testing.T) {
	// 1->2->3->1 is a cycle, 4->5 is not
	g := buildGraph(t, 5, [][2]int64{{1, 2}, {2, 3}, {3, 1}, {4, 5}}, nil)

	cycles := FindCycles(g, 0)
	require.Len(t, cycles, 1)
	assert.Equal(t, []NodeID{1, 2, 3}, cycles[0])
}

func TestFindCyclesMinSize(t *testing.T) {
	g := buildGraph(t, 6, [][2]int64{
		{1, 2}, {2, 1}, // size 2
		{3, 4}, {4, 5}, {5, 3}, // size 3
	}, nil)

	assert.Len(t, FindCycles(g, 2), 2)

	cycles := FindCycles(g, 3)
	require.Len(t, cycles, 1)
	assert.Equal(t, []NodeID{3, 4, 5}, cycles[0])
}

func TestFindCyclesSelfLoop(t *testing.T) {
	g := buildGraph(t, 2, nil, nil)
	g.AddEdge(1, 1, "calls")

	// Self-loops only surface when explicitly asked for size-1 components
	assert.Empty(t, FindCycles(g, 0))

	cycles := FindCycles(g, 1)
	require.Len(t, cycles, 1)
	assert.Equal(t, []NodeID{1}, cycles[0])
}

func TestFindCyclesEmptyGraph(t *testing.T) {
	g := NewDiGraph(LevelSymbol)
	assert.Empty(t, FindCycles(g, 0))
}

func TestStronglyConnected(t *testing.T) {
	// Two overlapping cycles collapse into one component
	g := buildGraph(t, 5, [][2]int64{{1, 2}, {2, 3}, {3, 1}, {2, 4}, {4, 2}, {4, 5}}, nil)

	components, membership := StronglyConnected(g)
	require.Len(t, components, 2)
	assert.Equal(t, []NodeID{1, 2, 3, 4}, components[0])
	assert.Equal(t, []NodeID{5}, components[1])
	assert.Equal(t, membership[NodeID(1)], membership[NodeID(4)])
	assert.NotEqual(t, membership[NodeID(1)], membership[NodeID(5)])
}

func TestStronglyConnectedDeepChain(t *testing.T) {
	// A long chain must not overflow: the walk is iterative
	g := NewDiGraph(LevelSymbol)
	const n = 100_000
	for i := int64(1); i <= n; i++ {
		g.AddNode(&Node{ID: NodeID(i)})
	}
	for i := int64(1); i < n; i++ {
		g.AddEdge(NodeID(i), NodeID(i+1), "calls")
	}

	components, _ := StronglyConnected(g)
	assert.Len(t, components, n)
}

func TestStronglyConnectedDeterministic(t *testing.T) {
	g := buildGraph(t, 6, [][2]int64{{6, 5}, {5, 6}, {1, 3}, {3, 1}, {2, 4}}, nil)

	first, _ := StronglyConnected(g)
	for i := 0; i < 5; i++ {
		again, _ := StronglyConnected(g)
		assert.Equal(t, first, again)
	}
}
