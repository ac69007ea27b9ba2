// internal/storage/executor.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor runs approved read-only statements against the target
// database and scans the result into column headers plus row records.
// It is safe for concurrent use; the underlying pool handles sharing.
type SQLExecutor struct {
	DB *sql.DB
}

// NewSQLExecutor wraps a connected target database.
func NewSQLExecutor(db *sql.DB) *SQLExecutor {
	return &SQLExecutor{DB: db}
}

// Query executes sqlText and returns the column names and one map per row.
// The statement arrives here only after the safety filter and permission
// scoper both accepted it.
func (e *SQLExecutor) Query(ctx context.Context, sqlText string) ([]string, []map[string]any, error) {
	rows, err := e.DB.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	records := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			val := values[i]
			// Drivers hand back []byte for text columns; make it JSON-friendly.
			if b, ok := val.([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = val
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read result rows: %w", err)
	}

	return columns, records, nil
}
