package storage

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/codegraph/errors"
)

// Store provides typed access to the index tables over *sql.DB.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewStore creates a new index store. logger may be nil for silent operation.
func NewStore(db *sql.DB, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		db:     db,
		logger: logger.Named("storage"),
	}
}

// DB exposes the underlying connection for callers that need raw queries
// (db stats command, tests).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query constants
const (
	fileSelectColumns   = "id, path, language"
	symbolSelectColumns = "id, file_id, name, qualified_name, kind, start_line, end_line, exported"

	listFilesQuery = `
		SELECT id, path, language FROM files ORDER BY id`

	listSymbolsByFileQuery = `
		SELECT id, file_id, name, qualified_name, kind, start_line, end_line, exported
		FROM symbols WHERE file_id = ? ORDER BY id`

	listAllSymbolsQuery = `
		SELECT id, file_id, name, qualified_name, kind, start_line, end_line, exported
		FROM symbols ORDER BY id`

	insertFileQuery = `
		INSERT INTO files (path, language) VALUES (?, ?)`

	insertSymbolQuery = `
		INSERT INTO symbols (file_id, name, qualified_name, kind, start_line, end_line, exported)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertEdgeQuery = `
		INSERT OR IGNORE INTO edges (source_id, target_id, kind) VALUES (?, ?, ?)`
)

// ListFiles returns all indexed files ordered by id.
func (s *Store) ListFiles(ctx context.Context) ([]FileRow, error) {
	rows, err := s.db.QueryContext(ctx, listFilesQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list files")
	}
	defer rows.Close()

	return scanFiles(rows)
}

// ListSymbols returns all symbols belonging to one file, ordered by id.
func (s *Store) ListSymbols(ctx context.Context, fileID int64) ([]SymbolRow, error) {
	rows, err := s.db.QueryContext(ctx, listSymbolsByFileQuery, fileID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list symbols for file %d", fileID)
	}
	defer rows.Close()

	return scanSymbols(rows)
}

// ListAllSymbols returns every indexed symbol ordered by id.
func (s *Store) ListAllSymbols(ctx context.Context) ([]SymbolRow, error) {
	rows, err := s.db.QueryContext(ctx, listAllSymbolsQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list symbols")
	}
	defer rows.Close()

	return scanSymbols(rows)
}

// ListEdges returns edges matching the filter, ordered by (source_id, target_id, kind).
// Large id sets in the filter should go through the batched helpers instead;
// this method places every filter id into a single query.
func (s *Store) ListEdges(ctx context.Context, filter EdgeFilter) ([]EdgeRow, error) {
	query := "SELECT source_id, target_id, kind FROM edges"
	var clauses []string
	var args []interface{}

	if len(filter.Kinds) > 0 {
		clauses = append(clauses, "kind IN ("+placeholders(len(filter.Kinds))+")")
		for _, k := range filter.Kinds {
			args = append(args, k)
		}
	}
	if len(filter.SourceIDs) > 0 {
		clauses = append(clauses, "source_id IN ("+placeholders(len(filter.SourceIDs))+")")
		for _, id := range filter.SourceIDs {
			args = append(args, id)
		}
	}
	if len(filter.TargetIDs) > 0 {
		clauses = append(clauses, "target_id IN ("+placeholders(len(filter.TargetIDs))+")")
		for _, id := range filter.TargetIDs {
			args = append(args, id)
		}
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY source_id, target_id, kind"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list edges")
	}
	defer rows.Close()

	var edges []EdgeRow
	for rows.Next() {
		var e EdgeRow
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Kind); err != nil {
			return nil, errors.Wrap(err, "failed to scan edge row")
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// InsertFile inserts one file and returns its id.
func (s *Store) InsertFile(ctx context.Context, path, language string) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertFileQuery, path, language)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to insert file %s", path)
	}
	return res.LastInsertId()
}

// InsertSymbol inserts one symbol and returns its id.
func (s *Store) InsertSymbol(ctx context.Context, sym SymbolRow) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertSymbolQuery,
		sym.FileID, sym.Name, sym.QualifiedName, sym.Kind,
		sym.StartLine, sym.EndLine, sym.Exported)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to insert symbol %s", sym.Name)
	}
	return res.LastInsertId()
}

// InsertEdge inserts one edge. Duplicate (source, target, kind) rows are ignored.
func (s *Store) InsertEdge(ctx context.Context, edge EdgeRow) error {
	_, err := s.db.ExecContext(ctx, insertEdgeQuery, edge.SourceID, edge.TargetID, edge.Kind)
	if err != nil {
		return errors.Wrapf(err, "failed to insert edge %d->%d", edge.SourceID, edge.TargetID)
	}
	return nil
}

// BulkInsertEdges inserts edges inside a single transaction.
func (s *Store) BulkInsertEdges(ctx context.Context, edges []EdgeRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	stmt, err := tx.PrepareContext(ctx, insertEdgeQuery)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to prepare edge insert")
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, e.SourceID, e.TargetID, e.Kind); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to insert edge %d->%d", e.SourceID, e.TargetID)
		}
	}

	return tx.Commit()
}

// Counts returns the number of files, symbols, and edges in the index.
func (s *Store) Counts(ctx context.Context) (files, symbols, edges int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM files),
			(SELECT COUNT(*) FROM symbols),
			(SELECT COUNT(*) FROM edges)`).Scan(&files, &symbols, &edges)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "failed to count index rows")
	}
	return files, symbols, edges, nil
}

func scanFiles(rows *sql.Rows) ([]FileRow, error) {
	var files []FileRow
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.ID, &f.Path, &f.Language); err != nil {
			return nil, errors.Wrap(err, "failed to scan file row")
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanSymbols(rows *sql.Rows) ([]SymbolRow, error) {
	var symbols []SymbolRow
	for rows.Next() {
		var sym SymbolRow
		if err := rows.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName,
			&sym.Kind, &sym.StartLine, &sym.EndLine, &sym.Exported); err != nil {
			return nil, errors.Wrap(err, "failed to scan symbol row")
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// placeholders returns n comma-separated "?" marks for an IN clause.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
