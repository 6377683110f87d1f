package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qtesting "github.com/teranos/codegraph/internal/testing"
	"github.com/teranos/codegraph/storage"
)

// seedIndex populates the classic four-file fixture: a, b and c call each
// other in a ring, util stands alone.
func seedIndex(t *testing.T, store *storage.Store) (fileIDs map[string]int64, symIDs map[string]int64) {
	t.Helper()
	ctx := context.Background()

	fileIDs = make(map[string]int64)
	for _, path := range []string{"a.py", "b.py", "c.py", "util.py"} {
		id, err := store.InsertFile(ctx, path, "python")
		require.NoError(t, err)
		fileIDs[path] = id
	}

	symIDs = make(map[string]int64)
	for name, file := range map[string]string{
		"fa": "a.py", "fb": "b.py", "fc": "c.py", "helper": "util.py",
	} {
		id, err := store.InsertSymbol(ctx, storage.SymbolRow{
			FileID:    fileIDs[file],
			Name:      name,
			Kind:      "function",
			StartLine: 1,
			EndLine:   5,
			Exported:  true,
		})
		require.NoError(t, err)
		symIDs[name] = id
	}

	for _, pair := range [][2]string{{"fa", "fb"}, {"fb", "fc"}, {"fc", "fa"}} {
		err := store.InsertEdge(ctx, storage.EdgeRow{
			SourceID: symIDs[pair[0]],
			TargetID: symIDs[pair[1]],
			Kind:     storage.KindCalls,
		})
		require.NoError(t, err)
	}
	return fileIDs, symIDs
}

func TestBuildSymbolGraph(t *testing.T) {
	store := storage.NewStore(qtesting.CreateTestDB(t), nil)
	_, symIDs := seedIndex(t, store)

	g, err := NewBuilder(store, nil).BuildSymbolGraph(context.Background())
	require.NoError(t, err)

	assert.Equal(t, LevelSymbol, g.Level())
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())

	fa := g.Node(NodeID(symIDs["fa"]))
	require.NotNil(t, fa)
	assert.Equal(t, "fa", fa.Name)
	assert.Equal(t, "a.py", fa.File)
	assert.True(t, fa.Exported)

	helper := g.Node(NodeID(symIDs["helper"]))
	require.NotNil(t, helper)
	assert.Equal(t, 0, g.OutDegree(helper.ID)+g.InDegree(helper.ID))
}

func TestBuildFileGraph(t *testing.T) {
	store := storage.NewStore(qtesting.CreateTestDB(t), nil)
	fileIDs, _ := seedIndex(t, store)

	g, err := NewBuilder(store, nil).BuildFileGraph(context.Background())
	require.NoError(t, err)

	assert.Equal(t, LevelFile, g.Level())
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.NotNil(t, g.Edge(NodeID(fileIDs["a.py"]), NodeID(fileIDs["b.py"])))

	node := g.Node(NodeID(fileIDs["util.py"]))
	require.NotNil(t, node)
	assert.Equal(t, "util.py", node.Name)
	assert.Equal(t, "file", node.Kind)
}

func TestBuildFileGraphSkipsIntraFileEdges(t *testing.T) {
	store := storage.NewStore(qtesting.CreateTestDB(t), nil)
	ctx := context.Background()

	fileID, err := store.InsertFile(ctx, "single.go", "go")
	require.NoError(t, err)
	s1, err := store.InsertSymbol(ctx, storage.SymbolRow{FileID: fileID, Name: "a", Kind: "function"})
	require.NoError(t, err)
	s2, err := store.InsertSymbol(ctx, storage.SymbolRow{FileID: fileID, Name: "b", Kind: "function"})
	require.NoError(t, err)
	require.NoError(t, store.InsertEdge(ctx, storage.EdgeRow{SourceID: s1, TargetID: s2, Kind: storage.KindCalls}))

	g, err := NewBuilder(store, nil).BuildFileGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
}

func TestBuildSymbolGraphEmptyIndex(t *testing.T) {
	store := storage.NewStore(qtesting.CreateTestDB(t), nil)

	g, err := NewBuilder(store, nil).BuildSymbolGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
}

// The ring-plus-util fixture exercised end to end through every analysis
// pass, at file granularity.
func TestAnalysisEndToEnd(t *testing.T) {
	store := storage.NewStore(qtesting.CreateTestDB(t), nil)
	fileIDs, _ := seedIndex(t, store)

	g, err := NewBuilder(store, nil).BuildFileGraph(context.Background())
	require.NoError(t, err)

	cycles := FindCycles(g, 2)
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], 3)
	assert.NotContains(t, cycles[0], NodeID(fileIDs["util.py"]))

	layers := DetectLayers(g)
	assert.Equal(t, 0, layers[NodeID(fileIDs["util.py"])])
	assert.Equal(t, layers[NodeID(fileIDs["a.py"])], layers[NodeID(fileIDs["b.py"])])

	scores := PageRank(g)
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	result, err := PartitionForAgents(g, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.WriteConflicts)

	owned := make(map[string]bool)
	ring := -1
	for _, agent := range result.Agents {
		for _, file := range agent.WriteFiles {
			owned[file] = true
			if file != "util.py" {
				if ring == -1 {
					ring = agent.ID
				}
				// The cycle is inseparable: a, b and c stay together
				assert.Equal(t, ring, agent.ID)
			}
		}
	}
	// Every file, util included, is owned by exactly one agent
	assert.Len(t, owned, 4)
}
