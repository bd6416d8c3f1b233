package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nlquery/mysql-ai/internal/pipeline"
)

// Catalog reads table and column metadata for the connected database from
// information_schema. DATABASE() scopes both queries to the schema named in
// the DSN, so system schemas never show up.
type Catalog struct {
	db *sql.DB
}

// NewCatalog wraps an open pool.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

const listTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = DATABASE()
	  AND table_type = 'BASE TABLE'
	ORDER BY table_name`

// ListTables returns the base table names in a stable order. The result is
// fetched once per session and treated as read-only afterwards.
func (c *Catalog) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

const listColumnsQuery = `
	SELECT column_name, column_type
	FROM information_schema.columns
	WHERE table_schema = DATABASE()
	  AND table_name = ?
	ORDER BY ordinal_position`

// GetColumns returns the columns of one table in definition order, with the
// full column type ("varchar(255)", "int unsigned", ...).
func (c *Catalog) GetColumns(ctx context.Context, table string) ([]pipeline.ColumnDescriptor, error) {
	rows, err := c.db.QueryContext(ctx, listColumnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []pipeline.ColumnDescriptor
	for rows.Next() {
		var col pipeline.ColumnDescriptor
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("scanning column of %s: %w", table, err)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}
