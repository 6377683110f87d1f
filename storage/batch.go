package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/teranos/codegraph/errors"
)

// BatchSize is the maximum number of ids placed into one IN clause.
// SQLite caps query parameters at 999; 500 leaves headroom for the
// other parameters a query may carry.
const BatchSize = 500

// SymbolsByIDs fetches symbol rows for an arbitrarily large id set.
// The set is split into chunks of at most BatchSize ids; chunks are
// queried concurrently and the merged result is sorted by id.
func (s *Store) SymbolsByIDs(ctx context.Context, ids []int64) ([]SymbolRow, error) {
	rows, err := fetchChunked(ctx, ids, func(ctx context.Context, chunk []int64) ([]SymbolRow, error) {
		query := `SELECT ` + symbolSelectColumns + ` FROM symbols WHERE id IN (` +
			placeholders(len(chunk)) + `)`
		sqlRows, err := s.db.QueryContext(ctx, query, int64Args(chunk)...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to query symbols batch")
		}
		defer sqlRows.Close()
		return scanSymbols(sqlRows)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// FilesByIDs fetches file rows for an arbitrarily large id set, chunked
// and merged the same way as SymbolsByIDs.
func (s *Store) FilesByIDs(ctx context.Context, ids []int64) ([]FileRow, error) {
	rows, err := fetchChunked(ctx, ids, func(ctx context.Context, chunk []int64) ([]FileRow, error) {
		query := `SELECT ` + fileSelectColumns + ` FROM files WHERE id IN (` +
			placeholders(len(chunk)) + `)`
		sqlRows, err := s.db.QueryContext(ctx, query, int64Args(chunk)...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to query files batch")
		}
		defer sqlRows.Close()
		return scanFiles(sqlRows)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

// fetchChunked splits ids into BatchSize chunks and runs fetch for each
// chunk in its own goroutine. Results are merged through a channel owned
// by this call; the first error wins and remaining results are drained.
func fetchChunked[T any](ctx context.Context, ids []int64, fetch func(context.Context, []int64) ([]T, error)) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	chunks := chunkIDs(ids, BatchSize)
	if len(chunks) == 1 {
		return fetch(ctx, chunks[0])
	}

	type result struct {
		rows []T
		err  error
	}

	results := make(chan result, len(chunks))
	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []int64) {
			defer wg.Done()
			rows, err := fetch(ctx, chunk)
			results <- result{rows: rows, err: err}
		}(chunk)
	}
	wg.Wait()
	close(results)

	var merged []T
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		merged = append(merged, r.rows...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return merged, nil
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
