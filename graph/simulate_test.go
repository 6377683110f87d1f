package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/codegraph/errors"
)

func TestComputeMetrics(t *testing.T) {
	g := buildGraph(t, 4, [][2]int64{{1, 2}, {2, 3}, {3, 1}, {4, 1}}, nil)

	m := ComputeMetrics(g)
	assert.Equal(t, 1, m.CycleCount)
	assert.Equal(t, 0, m.LayerViolations)
	assert.Greater(t, m.CentralitySpread, 0.0)
}

func TestComputeMetricsEmptyGraph(t *testing.T) {
	assert.Equal(t, Metrics{}, ComputeMetrics(NewDiGraph(LevelSymbol)))
}

func TestSimulateLeavesOriginalUntouched(t *testing.T) {
	g := buildGraph(t, 3, [][2]int64{{1, 2}, {2, 3}}, nil)
	nodesBefore, edgesBefore := g.NodeCount(), g.EdgeCount()
	fileBefore := g.Node(1).File

	_, err := Simulate(g, OpExtract, 1, "new.go")
	require.NoError(t, err)

	assert.Equal(t, nodesBefore, g.NodeCount())
	assert.Equal(t, edgesBefore, g.EdgeCount())
	assert.Equal(t, fileBefore, g.Node(1).File)

	_, err = Simulate(g, OpMove, 1, "new.go")
	require.NoError(t, err)
	assert.Equal(t, fileBefore, g.Node(1).File)
}

func TestSimulateUnknownSymbol(t *testing.T) {
	g := buildGraph(t, 2, [][2]int64{{1, 2}}, nil)

	_, err := Simulate(g, OpMove, 99, "new.go")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSimulateUnknownOp(t *testing.T) {
	g := buildGraph(t, 2, [][2]int64{{1, 2}}, nil)

	_, err := Simulate(g, Op("rename"), 1, "new.go")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestSimulateReportsAllMetrics(t *testing.T) {
	g := buildGraph(t, 3, [][2]int64{{1, 2}, {2, 3}, {3, 1}}, nil)

	result, err := Simulate(g, OpMove, 1, "elsewhere.go")
	require.NoError(t, err)
	require.Len(t, result.Changes, 4)

	names := make([]string, 0, 4)
	for _, c := range result.Changes {
		names = append(names, c.Metric)
		assert.InDelta(t, c.After-c.Before, c.Delta, 1e-9)
	}
	assert.Equal(t, []string{"centrality_spread", "cycle_count", "layer_violations", "modularity"}, names)

	// A pure move changes no topology, so every metric is unchanged
	assert.Equal(t, 1, result.Before.CycleCount)
	assert.Equal(t, result.Before, result.After)
	for _, c := range result.Changes {
		assert.Equal(t, "unchanged", c.Direction)
	}
}

func TestApplyExtract(t *testing.T) {
	g := buildGraph(t, 3, [][2]int64{{1, 2}, {1, 3}}, nil)

	newID := ApplyExtract(g, 1, "extracted.go")
	assert.Equal(t, NodeID(4), newID)

	extracted := g.Node(newID)
	require.NotNil(t, extracted)
	assert.Equal(t, "extracted.go", extracted.File)

	// Outgoing edges moved to the extraction, original delegates to it
	assert.Nil(t, g.Edge(1, 2))
	assert.Nil(t, g.Edge(1, 3))
	assert.NotNil(t, g.Edge(newID, 2))
	assert.NotNil(t, g.Edge(newID, 3))
	require.NotNil(t, g.Edge(1, newID))
	assert.Equal(t, "calls", g.Edge(1, newID).Kind)
}

func TestApplyExtractPreservesWeights(t *testing.T) {
	g := buildGraph(t, 2, nil, nil)
	g.AddEdge(1, 2, "calls")
	g.AddEdge(1, 2, "references")
	require.Equal(t, 2, g.Edge(1, 2).Weight)

	newID := ApplyExtract(g, 1, "x.go")
	assert.Equal(t, 2, g.Edge(newID, 2).Weight)
}

func TestSimulateExtractBreaksCycle(t *testing.T) {
	// Extracting 1's dependencies reroutes 1 -> 2 through a new node,
	// lengthening but not breaking the cycle; the metrics still move
	// deterministically
	g := buildGraph(t, 3, [][2]int64{{1, 2}, {2, 3}, {3, 1}}, nil)

	result, err := Simulate(g, OpExtract, 1, "split.go")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Before.CycleCount)
	assert.Equal(t, 1, result.After.CycleCount)
}

func TestMetricDelta(t *testing.T) {
	assert.Equal(t, "improved", MetricDelta("cycles", 3, 1, true).Direction)
	assert.Equal(t, "degraded", MetricDelta("cycles", 1, 3, true).Direction)
	assert.Equal(t, "unchanged", MetricDelta("cycles", 2, 2, true).Direction)
	assert.Equal(t, "improved", MetricDelta("modularity", 0.1, 0.3, false).Direction)
	assert.Equal(t, "degraded", MetricDelta("modularity", 0.3, 0.1, false).Direction)
}
