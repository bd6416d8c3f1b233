package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCatalog struct {
	tables     []string
	columns    map[string][]ColumnDescriptor
	errs       map[string]error
	listErr    error
	listCalled int
}

func (s *stubCatalog) ListTables(ctx context.Context) ([]string, error) {
	s.listCalled++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tables, nil
}

func (s *stubCatalog) GetColumns(ctx context.Context, table string) ([]ColumnDescriptor, error) {
	if err, ok := s.errs[table]; ok {
		return nil, err
	}
	return s.columns[table], nil
}

type stubGenerator struct {
	output  string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}

type stubExecutor struct {
	result   *QueryResult
	err      error
	executed []string
}

func (e *stubExecutor) Execute(ctx context.Context, sql string) (*QueryResult, error) {
	e.executed = append(e.executed, sql)
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func newTestCatalog() *stubCatalog {
	return &stubCatalog{
		tables: []string{"orders", "customers", "products"},
		columns: map[string][]ColumnDescriptor{
			"orders":    {{Name: "id", Type: "int"}, {Name: "customer_id", Type: "int"}},
			"customers": {{Name: "id", Type: "int"}, {Name: "name", Type: "varchar(255)"}},
			"products":  {{Name: "id", Type: "int"}, {Name: "price", Type: "decimal(10,2)"}},
		},
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	catalog := newTestCatalog()
	generator := &stubGenerator{output: "SELECT COUNT(*) FROM orders;"}
	executor := &stubExecutor{result: &QueryResult{
		Columns:  []string{"COUNT(*)"},
		Rows:     [][]string{{"42"}},
		RowCount: 1,
	}}

	p, err := New(context.Background(), catalog, generator, executor, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := p.Run(context.Background(), "how many orders exist")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(out.Tables) != 1 || out.Tables[0] != "orders" {
		t.Errorf("expected ['orders'], got %v", out.Tables)
	}

	// Only the selected table's schema reaches the prompt.
	if !strings.Contains(out.SchemaText, "Table: orders") {
		t.Errorf("expected orders schema, got:\n%s", out.SchemaText)
	}
	if strings.Contains(out.SchemaText, "customers") || strings.Contains(out.SchemaText, "products") {
		t.Errorf("unselected tables leaked into schema:\n%s", out.SchemaText)
	}

	if out.SQL != "SELECT COUNT(*) FROM orders;" {
		t.Errorf("generator output should pass through extraction unchanged, got '%s'", out.SQL)
	}

	if len(executor.executed) != 1 || executor.executed[0] != out.SQL {
		t.Errorf("executor received %v", executor.executed)
	}

	if out.Result.RowCount != 1 || out.Result.Rows[0][0] != "42" {
		t.Errorf("expected one row [42], got %+v", out.Result)
	}
}

func TestPipelinePromptContents(t *testing.T) {
	catalog := newTestCatalog()
	generator := &stubGenerator{output: "SELECT 1;"}
	executor := &stubExecutor{result: &QueryResult{RowCount: 0}}

	p, err := New(context.Background(), catalog, generator, executor, Options{
		TemplateID: TemplateExpert,
		TopK:       "10",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := p.Run(context.Background(), "list customers"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(generator.prompts) != 1 {
		t.Fatalf("expected one generator call, got %d", len(generator.prompts))
	}
	prompt := generator.prompts[0]

	if !strings.Contains(prompt, "list customers") {
		t.Error("prompt should contain the question")
	}
	if !strings.Contains(prompt, "Table: customers") {
		t.Error("prompt should contain the serialized schema")
	}
	if !strings.Contains(prompt, "at most 10 results") {
		t.Error("prompt should contain the substituted top_k hint")
	}
	if placeholderPattern.MatchString(prompt) {
		t.Errorf("prompt contains unsubstituted placeholders:\n%s", prompt)
	}
}

func TestPipelineExtractionFailureTagged(t *testing.T) {
	catalog := newTestCatalog()
	generator := &stubGenerator{output: "I cannot help with that."}
	executor := &stubExecutor{}

	p, err := New(context.Background(), catalog, generator, executor, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := p.Run(context.Background(), "how many orders exist")
	if err == nil {
		t.Fatal("expected extraction failure")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %T", err)
	}
	if stepErr.Step != StepExtract {
		t.Errorf("expected step '%s', got '%s'", StepExtract, stepErr.Step)
	}

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected wrapped ExtractionError, got %v", err)
	}
	if extErr.RawOutput != "I cannot help with that." {
		t.Errorf("raw output not preserved: %q", extErr.RawOutput)
	}

	// The executor must never see a question whose extraction failed.
	if len(executor.executed) != 0 {
		t.Errorf("executor was called with %v", executor.executed)
	}

	// Partial artifacts survive for reporting.
	if out.RawOutput != "I cannot help with that." {
		t.Errorf("outcome should carry raw output, got %q", out.RawOutput)
	}
}

func TestPipelineGeneratorFailureTagged(t *testing.T) {
	catalog := newTestCatalog()
	generator := &stubGenerator{err: errors.New("connection refused")}
	executor := &stubExecutor{}

	p, err := New(context.Background(), catalog, generator, executor, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = p.Run(context.Background(), "anything")
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepGenerate {
		t.Errorf("generator failure should be tagged with '%s', got %v", StepGenerate, err)
	}
}

func TestPipelineExecutionFailureThenNextQuestion(t *testing.T) {
	catalog := newTestCatalog()
	generator := &stubGenerator{output: "SELECT * FROM orders;"}
	executor := &stubExecutor{err: errors.New("table locked")}

	p, err := New(context.Background(), catalog, generator, executor, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = p.Run(context.Background(), "show orders")
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepExecute {
		t.Fatalf("expected execution failure tagged with '%s', got %v", StepExecute, err)
	}

	// A failed execution is terminal for that question only; the next one
	// runs a full fresh pass.
	executor.err = nil
	executor.result = &QueryResult{Columns: []string{"id"}, Rows: [][]string{{"1"}}, RowCount: 1}

	out, err := p.Run(context.Background(), "show orders")
	if err != nil {
		t.Fatalf("next question failed: %v", err)
	}
	if out.Result.RowCount != 1 {
		t.Errorf("expected a usable result after a failed question, got %+v", out.Result)
	}
	if len(executor.executed) != 2 {
		t.Errorf("expected two executions, got %d", len(executor.executed))
	}
}

func TestPipelineCatalogErrorContained(t *testing.T) {
	catalog := newTestCatalog()
	catalog.errs = map[string]error{"orders": errors.New("permission denied")}

	generator := &stubGenerator{output: "SELECT 1;"}
	executor := &stubExecutor{result: &QueryResult{RowCount: 0}}

	p, err := New(context.Background(), catalog, generator, executor, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := p.Run(context.Background(), "count orders and customers rows")
	if err != nil {
		t.Fatalf("a per-table catalog failure must not fail the question: %v", err)
	}

	if !strings.Contains(out.SchemaText, "  - [Error retrieving columns]") {
		t.Errorf("expected placeholder for orders, got:\n%s", out.SchemaText)
	}
	if !strings.Contains(out.SchemaText, "  - name (varchar(255))") {
		t.Errorf("expected customers columns to survive, got:\n%s", out.SchemaText)
	}
}

func TestPipelineTableListFetchedOnce(t *testing.T) {
	catalog := newTestCatalog()
	generator := &stubGenerator{output: "SELECT 1;"}
	executor := &stubExecutor{result: &QueryResult{}}

	p, err := New(context.Background(), catalog, generator, executor, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := p.Run(context.Background(), "how many orders exist"); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	}

	if catalog.listCalled != 1 {
		t.Errorf("table list should be fetched once per session, got %d calls", catalog.listCalled)
	}

	// Callers get a copy, never the session list itself.
	tables := p.Tables()
	tables[0] = "mutated"
	if p.tables[0] != "orders" {
		t.Error("session table list must stay immutable")
	}
}

func TestPipelineListTablesFailure(t *testing.T) {
	catalog := &stubCatalog{listErr: errors.New("access denied")}

	_, err := New(context.Background(), catalog, &stubGenerator{}, &stubExecutor{}, Options{})
	if err == nil {
		t.Fatal("expected New to fail when the table list is unavailable")
	}
}

func TestPipelineUnknownTemplate(t *testing.T) {
	catalog := newTestCatalog()

	_, err := New(context.Background(), catalog, &stubGenerator{}, &stubExecutor{}, Options{TemplateID: "bogus"})
	if err == nil {
		t.Fatal("expected New to fail for unknown template")
	}
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}
