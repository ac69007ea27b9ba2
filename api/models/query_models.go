// api/models/query_models.go
package models

// --- Query Request/Response Structs ---

// QueryRequest carries the caller's natural-language sentence.
type QueryRequest struct {
	Sentence string `json:"sentence" binding:"required"`
}

// QueryResponse is the success shape: the executed SQL, the result's
// column headers and the row records.
type QueryResponse struct {
	SQL     string           `json:"sql"`
	Headers []string         `json:"headers"`
	Result  []map[string]any `json:"result"`
}

// SuggestionResponse is the degraded shape returned when SQL generation,
// validation or execution failed but the suggestion fallback succeeded.
type SuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// --- Schema/Admin Structs ---

// SchemaTable is one catalog entry in the schema response.
type SchemaTable struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// ReconnectRequest re-targets the query engine. Empty fields fall back to
// the startup configuration. With Reflect set, the schema catalog is read
// from the live connection and the artifact rewritten instead of loaded
// from disk.
type ReconnectRequest struct {
	Driver     string `json:"driver"`
	DSN        string `json:"dsn"`
	SchemaPath string `json:"schema_path"`
	Reflect    bool   `json:"reflect"`
}
