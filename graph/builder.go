package graph

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/codegraph/errors"
	"github.com/teranos/codegraph/storage"
)

// Builder constructs graphs from the persisted index. Construction is
// O(V+E) in index rows; callers build once per request and reuse the
// result rather than rebuilding per sub-query.
type Builder struct {
	store  *storage.Store
	logger *zap.SugaredLogger
}

// NewBuilder creates a graph builder over an index store.
func NewBuilder(store *storage.Store, logger *zap.SugaredLogger) *Builder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Builder{
		store:  store,
		logger: logger.Named("graph.builder"),
	}
}

// BuildSymbolGraph returns the symbol-level view: one node per indexed
// symbol, one edge per related ordered pair. Fails without partial results
// if the index cannot be read.
func (b *Builder) BuildSymbolGraph(ctx context.Context) (*DiGraph, error) {
	start := time.Now()

	symbols, err := b.store.ListAllSymbols(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read symbols from index")
	}

	pathByFile, err := b.filePaths(ctx, symbols)
	if err != nil {
		return nil, err
	}

	g := NewDiGraph(LevelSymbol)
	for _, sym := range symbols {
		g.AddNode(&Node{
			ID:            NodeID(sym.ID),
			Name:          sym.Name,
			QualifiedName: sym.QualifiedName,
			Kind:          sym.Kind,
			File:          pathByFile[sym.FileID],
			StartLine:     sym.StartLine,
			EndLine:       sym.EndLine,
			Exported:      sym.Exported,
		})
	}

	edges, err := b.store.ListEdges(ctx, storage.EdgeFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read edges from index")
	}
	dangling := 0
	for _, e := range edges {
		if !g.AddEdge(NodeID(e.SourceID), NodeID(e.TargetID), e.Kind) {
			dangling++
		}
	}

	b.logger.Debugw("Built symbol graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"dangling_edges", dangling,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return g, nil
}

// BuildFileGraph returns the file-level view: one node per indexed file,
// an edge between two files when any of their symbols are connected,
// weighted by the count of underlying symbol edges. Intra-file edges are
// not represented.
func (b *Builder) BuildFileGraph(ctx context.Context) (*DiGraph, error) {
	start := time.Now()

	files, err := b.store.ListFiles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read files from index")
	}

	g := NewDiGraph(LevelFile)
	for _, f := range files {
		g.AddNode(&Node{
			ID:   NodeID(f.ID),
			Name: filepath.Base(f.Path),
			Kind: "file",
			File: f.Path,
		})
	}

	symbols, err := b.store.ListAllSymbols(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read symbols from index")
	}
	fileOfSymbol := make(map[int64]int64, len(symbols))
	for _, sym := range symbols {
		fileOfSymbol[sym.ID] = sym.FileID
	}

	edges, err := b.store.ListEdges(ctx, storage.EdgeFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read edges from index")
	}
	for _, e := range edges {
		srcFile, okSrc := fileOfSymbol[e.SourceID]
		dstFile, okDst := fileOfSymbol[e.TargetID]
		if !okSrc || !okDst || srcFile == dstFile {
			continue
		}
		g.AddEdge(NodeID(srcFile), NodeID(dstFile), e.Kind)
	}

	b.logger.Debugw("Built file graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return g, nil
}

// filePaths resolves the distinct file ids referenced by symbols through
// the store's batched lookup.
func (b *Builder) filePaths(ctx context.Context, symbols []storage.SymbolRow) (map[int64]string, error) {
	seen := make(map[int64]bool)
	var fileIDs []int64
	for _, sym := range symbols {
		if !seen[sym.FileID] {
			seen[sym.FileID] = true
			fileIDs = append(fileIDs, sym.FileID)
		}
	}

	files, err := b.store.FilesByIDs(ctx, fileIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve file paths")
	}

	paths := make(map[int64]string, len(files))
	for _, f := range files {
		paths[f.ID] = f.Path
	}
	return paths, nil
}
