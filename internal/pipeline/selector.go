package pipeline

import "strings"

// fallbackTableCount bounds the schema exposed when no table name matches.
const fallbackTableCount = 3

// SelectTables narrows the catalog to the tables worth exposing to the
// generator for one question. A table is relevant when its name occurs,
// case-insensitively, as a substring of the question; relevant tables are
// returned in catalog order, unranked. Matching is substring-only: a table
// named like a common English word matches questions that never meant it,
// and there is no semantic matching. When nothing matches, the first three
// tables in catalog order are returned so the generator always sees some
// schema. There is no cap on the matched set.
func SelectTables(question string, allTables []string) []string {
	folded := strings.ToLower(question)

	var relevant []string
	for _, name := range allTables {
		if strings.Contains(folded, strings.ToLower(name)) {
			relevant = append(relevant, name)
		}
	}

	if len(relevant) == 0 {
		n := len(allTables)
		if n > fallbackTableCount {
			n = fallbackTableCount
		}
		relevant = append(relevant, allTables[:n]...)
	}

	return relevant
}
