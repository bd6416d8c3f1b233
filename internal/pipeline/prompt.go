package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// Shipped prompt template ids, selectable in configuration.
const (
	TemplateStandard = "standard"
	TemplateExpert   = "expert"
)

// templateStandard asks for a bare statement with a row-limit hint. It binds
// {schema}, {question} and {top_k}.
const templateStandard = `You are a SQL query generator for a MySQL database.

Rules:
- Respond with a single MySQL statement and nothing else.
- Only use tables and columns that appear in the schema below.
- Unless the question asks otherwise, limit results to {top_k} rows.

Schema:
{schema}

Question: {question}
SQL:`

// templateExpert is the long-form variant. It binds {table_info}, {input}
// and {top_k}.
const templateExpert = `You are a MySQL expert. Given an input question, create a syntactically correct MySQL query to run.
Unless the user specifies in the question a specific number of examples to obtain, query for at most {top_k} results using the LIMIT clause.
Never query for all columns from a table; query only the columns needed to answer the question.
Pay attention to use only the column names you can see in the tables below.

Only use the following tables:
{table_info}

Question: {input}`

var templates = map[string]string{
	TemplateStandard: templateStandard,
	TemplateExpert:   templateExpert,
}

// Template returns the prompt template registered under id.
func Template(id string) (string, error) {
	t, ok := templates[id]
	if !ok {
		return "", &ConfigurationError{Reason: fmt.Sprintf("unknown prompt template %q", id)}
	}
	return t, nil
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// BuildPrompt substitutes params into template. Substitution is pure string
// replacement and does not bound the prompt's length. A placeholder with no
// bound parameter fails with ConfigurationError so a half-filled prompt never
// reaches the generator. Unused parameters are permitted.
func BuildPrompt(template string, params map[string]string) (string, error) {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := params[m[1]]; !ok {
			return "", &ConfigurationError{Reason: fmt.Sprintf("template references unbound placeholder {%s}", m[1])}
		}
	}

	prompt := placeholderPattern.ReplaceAllStringFunc(template, func(tok string) string {
		return params[strings.Trim(tok, "{}")]
	})
	return prompt, nil
}
