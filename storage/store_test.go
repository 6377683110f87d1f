package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qtesting "github.com/teranos/codegraph/internal/testing"
)

// seedIndex populates a small index: two files, four symbols, three edges.
func seedIndex(t *testing.T, store *Store) (fileA, fileB int64, symIDs []int64) {
	t.Helper()
	ctx := context.Background()

	fileA, err := store.InsertFile(ctx, "internal/server/server.go", "go")
	require.NoError(t, err)
	fileB, err = store.InsertFile(ctx, "internal/util/strings.go", "go")
	require.NoError(t, err)

	symbols := []SymbolRow{
		{FileID: fileA, Name: "Start", QualifiedName: "server.Start", Kind: "function", StartLine: 10, EndLine: 40, Exported: true},
		{FileID: fileA, Name: "handle", QualifiedName: "server.handle", Kind: "function", StartLine: 42, EndLine: 60},
		{FileID: fileB, Name: "Trim", QualifiedName: "util.Trim", Kind: "function", StartLine: 5, EndLine: 12, Exported: true},
		{FileID: fileB, Name: "pad", QualifiedName: "util.pad", Kind: "function", StartLine: 14, EndLine: 20},
	}
	for _, sym := range symbols {
		id, err := store.InsertSymbol(ctx, sym)
		require.NoError(t, err)
		symIDs = append(symIDs, id)
	}

	edges := []EdgeRow{
		{SourceID: symIDs[0], TargetID: symIDs[1], Kind: KindCalls},
		{SourceID: symIDs[1], TargetID: symIDs[2], Kind: KindCalls},
		{SourceID: symIDs[1], TargetID: symIDs[3], Kind: KindUses},
	}
	require.NoError(t, store.BulkInsertEdges(ctx, edges))

	return fileA, fileB, symIDs
}

func TestListFiles(t *testing.T) {
	store := NewStore(qtesting.CreateTestDB(t), nil)
	fileA, fileB, _ := seedIndex(t, store)

	files, err := store.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, fileA, files[0].ID)
	assert.Equal(t, "internal/server/server.go", files[0].Path)
	assert.Equal(t, fileB, files[1].ID)
}

func TestListSymbols(t *testing.T) {
	store := NewStore(qtesting.CreateTestDB(t), nil)
	fileA, _, symIDs := seedIndex(t, store)
	ctx := context.Background()

	symbols, err := store.ListSymbols(ctx, fileA)
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.Equal(t, "Start", symbols[0].Name)
	assert.True(t, symbols[0].Exported)
	assert.Equal(t, "handle", symbols[1].Name)
	assert.False(t, symbols[1].Exported)

	all, err := store.ListAllSymbols(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(symIDs))
}

func TestListEdges(t *testing.T) {
	store := NewStore(qtesting.CreateTestDB(t), nil)
	_, _, symIDs := seedIndex(t, store)
	ctx := context.Background()

	t.Run("no filter returns all", func(t *testing.T) {
		edges, err := store.ListEdges(ctx, EdgeFilter{})
		require.NoError(t, err)
		assert.Len(t, edges, 3)
	})

	t.Run("filter by kind", func(t *testing.T) {
		edges, err := store.ListEdges(ctx, EdgeFilter{Kinds: []string{KindCalls}})
		require.NoError(t, err)
		assert.Len(t, edges, 2)
	})

	t.Run("filter by source", func(t *testing.T) {
		edges, err := store.ListEdges(ctx, EdgeFilter{SourceIDs: []int64{symIDs[1]}})
		require.NoError(t, err)
		assert.Len(t, edges, 2)
	})

	t.Run("duplicate edge rows are ignored", func(t *testing.T) {
		err := store.InsertEdge(ctx, EdgeRow{SourceID: symIDs[0], TargetID: symIDs[1], Kind: KindCalls})
		require.NoError(t, err)

		edges, err := store.ListEdges(ctx, EdgeFilter{})
		require.NoError(t, err)
		assert.Len(t, edges, 3)
	})
}

func TestCounts(t *testing.T) {
	store := NewStore(qtesting.CreateTestDB(t), nil)
	seedIndex(t, store)

	files, symbols, edges, err := store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Equal(t, 4, symbols)
	assert.Equal(t, 3, edges)
}

func TestListFilesQueryError(t *testing.T) {
	// Query failures must propagate, not produce partial results
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT id, path, language FROM files").
		WillReturnError(assert.AnError)

	store := NewStore(mockDB, nil)
	files, listErr := store.ListFiles(context.Background())
	assert.Error(t, listErr)
	assert.Nil(t, files)
	assert.NoError(t, mock.ExpectationsWereMet())
}
