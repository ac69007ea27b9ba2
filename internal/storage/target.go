// internal/storage/target.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // Driver registration
)

// ConnectTargetDB opens and pings the business database the generated SQL
// runs against. Only the two drivers the service ships with are accepted.
func ConnectTargetDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "sqlite3", "mysql":
	default:
		return nil, fmt.Errorf("unsupported target database driver %q", driver)
	}

	customLog.Printf("Storage: Opening target database (%s)", driver)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open target database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	return db, nil
}
