package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// ColumnDescriptor is one column as reported by the catalog, in catalog order.
type ColumnDescriptor struct {
	Name string
	Type string
}

// TableSchema is one selected table with its columns. Err records a failed
// column lookup; the table still serializes with a placeholder line so the
// rest of the subset is usable.
type TableSchema struct {
	Name    string
	Columns []ColumnDescriptor
	Err     error
}

// Catalog is the schema introspection surface the pipeline consumes.
type Catalog interface {
	ListTables(ctx context.Context) ([]string, error)
	GetColumns(ctx context.Context, table string) ([]ColumnDescriptor, error)
}

// BuildSubset fetches columns for each selected table. A failed lookup is
// recorded on that table's entry as a CatalogError rather than aborting the
// subset; one bad table never blocks questions about the others.
func BuildSubset(ctx context.Context, catalog Catalog, tables []string) []TableSchema {
	subset := make([]TableSchema, 0, len(tables))
	for _, name := range tables {
		cols, err := catalog.GetColumns(ctx, name)
		if err != nil {
			subset = append(subset, TableSchema{Name: name, Err: &CatalogError{Table: name, Err: err}})
			continue
		}
		subset = append(subset, TableSchema{Name: name, Columns: cols})
	}
	return subset
}

// Serialize renders a subset as the schema block embedded in prompts: a
// header per table, one "  - name (type)" line per column, and a blank
// separator line, with trailing whitespace trimmed. A table whose column
// lookup failed renders the placeholder line instead of columns. An empty
// subset renders as an empty string.
func Serialize(subset []TableSchema) string {
	var b strings.Builder
	for _, t := range subset {
		fmt.Fprintf(&b, "Table: %s\n", t.Name)
		if t.Err != nil {
			b.WriteString("  - [Error retrieving columns]\n")
		} else {
			for _, c := range t.Columns {
				fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.Type)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), " \t\n")
}
