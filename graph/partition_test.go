package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/codegraph/errors"
)

// partitionFixture builds two connected clusters spread over four files.
func partitionFixture(t *testing.T) *DiGraph {
	t.Helper()
	files := map[int64]string{
		1: "auth/login.go", 2: "auth/login.go", 3: "auth/token.go",
		4: "store/db.go", 5: "store/db.go", 6: "store/cache.go",
	}
	return buildGraph(t, 6, [][2]int64{
		{1, 2}, {2, 3}, {3, 1},
		{4, 5}, {5, 6}, {6, 4},
		{3, 4},
	}, files)
}

func TestPartitionForAgentsExclusiveOwnership(t *testing.T) {
	g := partitionFixture(t)

	result, err := PartitionForAgents(g, 2, nil)
	require.NoError(t, err)
	require.Len(t, result.Agents, 2)
	assert.Equal(t, 0, result.WriteConflicts)

	owned := make(map[string]int)
	totalSymbols := 0
	for _, agent := range result.Agents {
		for _, file := range agent.WriteFiles {
			owned[file]++
		}
		totalSymbols += agent.SymbolCount
	}
	// Every file owned exactly once, every symbol assigned
	assert.Len(t, owned, 4)
	for file, count := range owned {
		assert.Equal(t, 1, count, "file %s", file)
	}
	assert.Equal(t, 6, totalSymbols)
}

func TestPartitionForAgentsClustersStayTogether(t *testing.T) {
	g := partitionFixture(t)

	result, err := PartitionForAgents(g, 2, nil)
	require.NoError(t, err)

	var authAgent, storeAgent *Agent
	for i := range result.Agents {
		for _, file := range result.Agents[i].WriteFiles {
			switch file {
			case "auth/login.go":
				authAgent = &result.Agents[i]
			case "store/db.go":
				storeAgent = &result.Agents[i]
			}
		}
	}
	require.NotNil(t, authAgent)
	require.NotNil(t, storeAgent)
	assert.NotEqual(t, authAgent.ID, storeAgent.ID)
	assert.Contains(t, authAgent.WriteFiles, "auth/token.go")
	assert.Contains(t, storeAgent.WriteFiles, "store/cache.go")
	assert.Equal(t, "auth", authAgent.ClusterLabel)
	assert.Equal(t, "store", storeAgent.ClusterLabel)
}

func TestPartitionForAgentsContractsAndReads(t *testing.T) {
	g := partitionFixture(t)

	result, err := PartitionForAgents(g, 2, nil)
	require.NoError(t, err)

	// The auth cluster depends on store through edge 3 -> 4: its agent
	// must carry a contract on symbol 4 and read access to store/db.go
	var auth Agent
	for _, agent := range result.Agents {
		if agent.ClusterLabel == "auth" {
			auth = agent
		}
	}
	require.Len(t, auth.Contracts, 1)
	assert.Equal(t, NodeID(4), auth.Contracts[0].SymbolID)
	assert.Contains(t, auth.ReadFiles, "store/db.go")
	assert.NotContains(t, auth.WriteFiles, "store/db.go")
}

func TestPartitionForAgentsConflictProbability(t *testing.T) {
	g := partitionFixture(t)

	result, err := PartitionForAgents(g, 2, nil)
	require.NoError(t, err)

	// One cross edge out of seven total
	assert.InDelta(t, 1.0/7.0, result.ConflictProbability, 1e-9)

	require.NotEmpty(t, result.SharedInterfaces)
	assert.Equal(t, 1, result.SharedInterfaces[0].CrossEdges)
}

func TestPartitionForAgentsMergeOrder(t *testing.T) {
	g := partitionFixture(t)

	result, err := PartitionForAgents(g, 2, nil)
	require.NoError(t, err)
	require.Len(t, result.MergeOrder, 2)

	// auth depends on store, so the store partition integrates first
	var storeID int
	for _, agent := range result.Agents {
		if agent.ClusterLabel == "store" {
			storeID = agent.ID
		}
	}
	assert.Equal(t, storeID, result.MergeOrder[0])
}

func TestPartitionForAgentsSplitsWhenFewerClusters(t *testing.T) {
	// One connected blob, three agents requested: reconcile by splitting
	files := map[int64]string{
		1: "a.go", 2: "b.go", 3: "c.go", 4: "d.go", 5: "e.go", 6: "f.go",
	}
	g := buildGraph(t, 6, [][2]int64{
		{1, 2}, {2, 3}, {3, 1},
		{4, 5}, {5, 6}, {6, 4},
		{3, 4}, {4, 3},
	}, files)

	result, err := PartitionForAgents(g, 3, nil)
	require.NoError(t, err)
	require.Len(t, result.Agents, 3)
	assert.Equal(t, 0, result.WriteConflicts)

	total := 0
	for _, agent := range result.Agents {
		total += agent.SymbolCount
	}
	assert.Equal(t, 6, total)
}

func TestPartitionForAgentsMoreAgentsThanNodes(t *testing.T) {
	g := buildGraph(t, 2, [][2]int64{{1, 2}}, map[int64]string{1: "a.go", 2: "b.go"})

	result, err := PartitionForAgents(g, 4, nil)
	require.NoError(t, err)
	require.Len(t, result.Agents, 4)
	assert.Equal(t, 0, result.WriteConflicts)
	assert.Len(t, result.MergeOrder, 4)

	total := 0
	for _, agent := range result.Agents {
		total += agent.SymbolCount
	}
	assert.Equal(t, 2, total)
}

func TestPartitionForAgentsEmptyGraph(t *testing.T) {
	g := NewDiGraph(LevelSymbol)

	result, err := PartitionForAgents(g, 3, nil)
	require.NoError(t, err)
	require.Len(t, result.Agents, 3)
	assert.Equal(t, 0.0, result.ConflictProbability)
	assert.Equal(t, []int{0, 1, 2}, result.MergeOrder)
	for _, agent := range result.Agents {
		assert.Empty(t, agent.WriteFiles)
		assert.Zero(t, agent.SymbolCount)
	}
}

func TestPartitionForAgentsFileScoping(t *testing.T) {
	g := partitionFixture(t)

	result, err := PartitionForAgents(g, 2, []string{"auth/login.go", "auth/token.go"})
	require.NoError(t, err)

	for _, agent := range result.Agents {
		for _, file := range agent.WriteFiles {
			assert.Contains(t, []string{"auth/login.go", "auth/token.go"}, file)
		}
	}
}

func TestPartitionForAgentsPrefixScoping(t *testing.T) {
	g := partitionFixture(t)

	// No exact path matches "store", so prefix matching kicks in
	result, err := PartitionForAgents(g, 1, []string{"store"})
	require.NoError(t, err)
	require.Len(t, result.Agents, 1)
	assert.ElementsMatch(t, []string{"store/cache.go", "store/db.go"}, result.Agents[0].WriteFiles)
	assert.Equal(t, 3, result.Agents[0].SymbolCount)
}

func TestPartitionForAgentsScopeMatchingNothing(t *testing.T) {
	g := partitionFixture(t)

	result, err := PartitionForAgents(g, 2, []string{"nonexistent/"})
	require.NoError(t, err)
	require.Len(t, result.Agents, 2)
	for _, agent := range result.Agents {
		assert.Empty(t, agent.WriteFiles)
	}
}

func TestPartitionForAgentsInvalidCount(t *testing.T) {
	g := partitionFixture(t)

	_, err := PartitionForAgents(g, 0, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestPartitionForAgentsDeterministic(t *testing.T) {
	g := partitionFixture(t)

	first, err := PartitionForAgents(g, 2, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := PartitionForAgents(g, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
