// internal/schema/reflect.go
package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/smartquery/text2sql-backend/internal/core"
	"github.com/smartquery/text2sql-backend/internal/logger"
)

var customLog = logger.NewLogger()

// Reflect reads table and column names from a live connection and builds a
// fresh catalog. This is the out-of-band producer of the schema artifact;
// the query path itself only ever reads the loaded catalog.
func Reflect(ctx context.Context, db *sql.DB, driver string) (*Catalog, error) {
	switch driver {
	case "sqlite3":
		return reflectSQLite(ctx, db)
	case "mysql":
		return reflectMySQL(ctx, db)
	default:
		return nil, fmt.Errorf("schema reflection not supported for driver %q", driver)
	}
}

func reflectSQLite(ctx context.Context, db *sql.DB) (*Catalog, error) {
	query := `SELECT name FROM sqlite_master WHERE type IN ('table','view') AND name NOT LIKE 'sqlite_%' ORDER BY name;`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table list: %w", err)
	}

	var tables []Table
	for _, name := range names {
		if !core.IsValidIdentifier(name) {
			customLog.Warnf("Reflect: skipping table with unusable name %q", name)
			continue
		}
		cols, err := sqliteColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Table: name, Columns: cols})
	}
	return NewCatalog(tables), nil
}

func sqliteColumns(ctx context.Context, db *sql.DB, tableName string) ([]string, error) {
	// tableName was validated by the caller before interpolation.
	pragmaSQL := fmt.Sprintf("PRAGMA table_info(%s);", tableName)
	rows, err := db.QueryContext(ctx, pragmaSQL)
	if err != nil {
		return nil, fmt.Errorf("failed PRAGMA for table '%s': %w", tableName, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name string
		var sqlType string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &sqlType, &notnull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed scanning PRAGMA for table '%s': %w", tableName, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading PRAGMA for table '%s': %w", tableName, err)
	}
	return columns, nil
}

func reflectMySQL(ctx context.Context, db *sql.DB) (*Catalog, error) {
	query := `SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		ORDER BY table_name, ordinal_position;`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read information_schema: %w", err)
	}
	defer rows.Close()

	var tables []Table
	byName := make(map[string]int)
	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		idx, ok := byName[tableName]
		if !ok {
			if !core.IsValidIdentifier(tableName) {
				customLog.Warnf("Reflect: skipping table with unusable name %q", tableName)
				byName[tableName] = -1
				continue
			}
			idx = len(tables)
			byName[tableName] = idx
			tables = append(tables, Table{Table: tableName})
		}
		if idx < 0 {
			continue
		}
		tables[idx].Columns = append(tables[idx].Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading information_schema: %w", err)
	}
	return NewCatalog(tables), nil
}
