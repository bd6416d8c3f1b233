package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nlquery/mysql-ai/internal/pipeline"
)

// Executor runs extracted statements against the live database. Each call
// takes a dedicated connection from the pool and returns it on every exit
// path, so a failed statement never pins a connection across questions.
// Statements are executed exactly as extracted: no validation, no rewriting,
// no retry.
type Executor struct {
	db *sql.DB
}

// NewExecutor wraps an open pool.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Execute runs one statement and materializes the full result set as display
// strings. Failures come back as ExecutionError carrying the driver message
// and, for well-known MySQL error numbers, a short hint.
func (e *Executor) Execute(ctx context.Context, query string) (*pipeline.QueryResult, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, execErr(query, fmt.Errorf("acquiring connection: %w", err))
	}
	defer conn.Close()

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, execErr(query, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, execErr(query, err)
	}

	result := &pipeline.QueryResult{Columns: columns}
	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, execErr(query, err)
		}
		row := make([]string, len(columns))
		for i, val := range values {
			row[i] = formatValue(val)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, execErr(query, err)
	}

	result.RowCount = len(result.Rows)
	result.Elapsed = time.Since(start)
	return result, nil
}

func execErr(query string, err error) *pipeline.ExecutionError {
	return &pipeline.ExecutionError{SQL: query, Hint: classify(err), Err: err}
}

// formatValue renders a scanned value for display.
func formatValue(val interface{}) string {
	if val == nil {
		return "NULL"
	}

	switch v := val.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}
