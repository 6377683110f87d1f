// Package storage provides read and write access to the persisted codegraph
// index: files, symbols, and the directed relationships between symbols.
// The graph engine consumes it read-only; write operations exist for the
// indexer and for tests.
package storage

// FileRow is one indexed source file.
type FileRow struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	Language string `json:"language"`
}

// SymbolRow is an immutable snapshot of one indexed symbol.
type SymbolRow struct {
	ID            int64  `json:"id"`
	FileID        int64  `json:"file_id"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Kind          string `json:"kind"` // function, method, class, struct, interface, ...
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
	Exported      bool   `json:"exported"`
}

// EdgeRow is one directed relationship: source depends on / references target.
type EdgeRow struct {
	SourceID int64  `json:"source_id"`
	TargetID int64  `json:"target_id"`
	Kind     string `json:"kind"` // calls, imports, implements, references, uses, ...
}

// Relationship kinds produced by the indexer.
const (
	KindCalls      = "calls"
	KindImports    = "imports"
	KindImplements = "implements"
	KindReferences = "references"
	KindUses       = "uses"
)

// EdgeFilter narrows ListEdges results. Zero value matches everything.
type EdgeFilter struct {
	Kinds     []string // match any of these kinds; empty = all kinds
	SourceIDs []int64  // restrict to these source symbols; empty = all
	TargetIDs []int64  // restrict to these target symbols; empty = all
}
