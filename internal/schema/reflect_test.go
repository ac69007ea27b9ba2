package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestReflectSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "target.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE 商品信息表 (商品名 TEXT, 单位价格 REAL, 商品种类 TEXT);`,
		`CREATE TABLE 顾客信息表 (姓名 TEXT, 电话 TEXT);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
	}

	catalog, err := Reflect(context.Background(), db, "sqlite3")
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}

	want := "商品信息表(商品名, 单位价格, 商品种类); 顾客信息表(姓名, 电话)"
	if got := catalog.Describe(); got != want {
		t.Errorf("Describe() = %q; want %q", got, want)
	}
}

func TestReflectUnsupportedDriver(t *testing.T) {
	if _, err := Reflect(context.Background(), nil, "postgres"); err == nil {
		t.Error("Reflect with unsupported driver must fail")
	}
}
