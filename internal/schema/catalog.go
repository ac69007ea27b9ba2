// internal/schema/catalog.go
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrArtifactMissing marks a missing or unreadable schema artifact. This is
// a configuration failure: the artifact is written out-of-band and the
// service cannot ground prompts without it.
var ErrArtifactMissing = errors.New("schema artifact missing or unreadable")

// Table is one catalog entry: a table name and its ordered column names.
type Table struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// Catalog is the table -> columns mapping used to ground prompts in the
// connected database. It is immutable after load; reconnecting replaces the
// whole catalog, never mutates one in place.
type Catalog struct {
	tables []Table
	byName map[string]int
}

// NewCatalog builds a catalog from entries, preserving their order.
func NewCatalog(tables []Table) *Catalog {
	c := &Catalog{
		tables: tables,
		byName: make(map[string]int, len(tables)),
	}
	for i, t := range tables {
		c.byName[t.Table] = i
	}
	return c
}

// LoadCatalog reads the persisted JSON artifact. The artifact is an ordered
// list, not a map, so the prompt serialization is deterministic.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}
	var tables []Table
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: %s: artifact lists no tables", ErrArtifactMissing, path)
	}
	return NewCatalog(tables), nil
}

// WriteArtifact persists the catalog as the JSON artifact LoadCatalog reads.
func WriteArtifact(path string, c *Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(c.tables, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema artifact: %w", err)
	}
	return nil
}

// Tables returns the catalog entries in order.
func (c *Catalog) Tables() []Table {
	return c.tables
}

// TableNames returns the table names in order.
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Table
	}
	return names
}

// HasTable reports whether name is a known table.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Describe serializes the catalog for prompts:
// "table(col1, col2); table2(colA)".
func (c *Catalog) Describe() string {
	var b strings.Builder
	for i, t := range c.tables {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(t.Table)
		b.WriteString("(")
		b.WriteString(strings.Join(t.Columns, ", "))
		b.WriteString(")")
	}
	return b.String()
}
