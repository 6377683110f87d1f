package logger

// Standard field names for consistent structured logging across codegraph.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldQuery     = "query"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount     = "count"
	FieldBatchSize = "batch_size"
	FieldNodes     = "nodes"
	FieldEdges     = "edges"
	FieldFiles     = "files"

	// Graph entities
	FieldSymbolID  = "symbol_id"
	FieldFilePath  = "file_path"
	FieldCluster   = "cluster"
	FieldPartition = "partition"
)
