package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Generator produces raw model output for a prompt. Invocations are
// synchronous and may take seconds; the pipeline never runs more than one at
// a time.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Executor runs one extracted statement against the live database and
// materializes the full result set.
type Executor interface {
	Execute(ctx context.Context, sql string) (*QueryResult, error)
}

// QueryResult is a fully materialized result set with values rendered for
// display.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	Elapsed  time.Duration
}

// Options configures a Pipeline.
type Options struct {
	// TemplateID selects the prompt template; TemplateStandard when empty.
	TemplateID string
	// TopK is the advisory row-limit hint substituted for {top_k}. It is a
	// fixed string agreed at session configuration, never an executor-side
	// limit. Defaults to "5".
	TopK string
	// Logger receives step transitions and failures; discarded when nil.
	Logger *slog.Logger
}

// Pipeline runs the question cycle: select tables, serialize their schema,
// build the prompt, invoke the generator, extract the statement, execute it.
// The full table list is fetched once at construction and is read-only for
// the session's lifetime; everything else is recomputed per question.
type Pipeline struct {
	catalog   Catalog
	generator Generator
	executor  Executor
	tables    []string
	template  string
	topK      string
	logger    *slog.Logger
}

// New fetches the session table list and resolves the prompt template.
func New(ctx context.Context, catalog Catalog, generator Generator, executor Executor, opts Options) (*Pipeline, error) {
	if opts.TemplateID == "" {
		opts.TemplateID = TemplateStandard
	}
	if opts.TopK == "" {
		opts.TopK = "5"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	template, err := Template(opts.TemplateID)
	if err != nil {
		return nil, err
	}

	tables, err := catalog.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	return &Pipeline{
		catalog:   catalog,
		generator: generator,
		executor:  executor,
		tables:    tables,
		template:  template,
		topK:      opts.TopK,
		logger:    opts.Logger,
	}, nil
}

// Tables returns the table list fetched at session start.
func (p *Pipeline) Tables() []string {
	return append([]string(nil), p.tables...)
}

// Outcome carries everything one question produced, including the partial
// artifacts present when a step failed, so callers can report the generated
// SQL or the raw model output alongside the error.
type Outcome struct {
	Question   string
	Tables     []string
	SchemaText string
	Prompt     string
	RawOutput  string
	SQL        string
	Result     *QueryResult
}

// Run executes one full question cycle. A step failure returns the Outcome
// built so far together with a StepError tagging the originating step; the
// remaining steps are skipped. Failures are terminal for the question only,
// never for the session, and nothing is retried.
func (p *Pipeline) Run(ctx context.Context, question string) (*Outcome, error) {
	out := &Outcome{Question: question}

	out.Tables = SelectTables(question, p.tables)
	p.logger.Debug("tables selected", "count", len(out.Tables), "tables", out.Tables)

	subset := BuildSubset(ctx, p.catalog, out.Tables)
	for _, t := range subset {
		if t.Err != nil {
			p.logger.Warn("column lookup failed", "table", t.Name, "error", t.Err)
		}
	}
	out.SchemaText = Serialize(subset)

	prompt, err := BuildPrompt(p.template, p.params(out.SchemaText, question))
	if err != nil {
		return out, &StepError{Step: StepBuildPrompt, Err: err}
	}
	out.Prompt = prompt

	start := time.Now()
	raw, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return out, &StepError{Step: StepGenerate, Err: err}
	}
	out.RawOutput = raw
	p.logger.Debug("generator returned", "elapsed", time.Since(start), "chars", len(raw))

	sql, err := Extract(raw)
	if err != nil {
		return out, &StepError{Step: StepExtract, Err: err}
	}
	out.SQL = sql
	p.logger.Debug("sql extracted", "sql", sql)

	result, err := p.executor.Execute(ctx, sql)
	if err != nil {
		return out, &StepError{Step: StepExecute, Err: err}
	}
	out.Result = result
	p.logger.Info("query executed", "rows", result.RowCount, "elapsed", result.Elapsed)

	return out, nil
}

// params binds every placeholder the shipped templates use. Both naming
// conventions for the schema block and the question are bound so template
// choice stays a pure configuration concern.
func (p *Pipeline) params(schemaText, question string) map[string]string {
	return map[string]string{
		"schema":     schemaText,
		"table_info": schemaText,
		"question":   question,
		"input":      question,
		"top_k":      p.topK,
	}
}
