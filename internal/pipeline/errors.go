package pipeline

import "fmt"

// Step identifies one stage of the question cycle.
type Step string

const (
	StepSelectTables    Step = "select_tables"
	StepSerializeSchema Step = "serialize_schema"
	StepBuildPrompt     Step = "build_prompt"
	StepGenerate        Step = "generate"
	StepExtract         Step = "extract"
	StepExecute         Step = "execute"
)

// StepError tags a failure with the step that produced it. The remaining
// steps are skipped and control returns to the caller for the next question.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CatalogError records a failed column lookup for a single table. It is
// contained during serialization and never fails the question.
type CatalogError struct {
	Table string
	Err   error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("retrieving columns for %s: %v", e.Table, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a misconfigured prompt setup, most commonly a
// template placeholder with no bound parameter.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "prompt configuration: " + e.Reason
}

// ExtractionError means the generator output contained no recognizable SQL
// statement start. RawOutput keeps the full model output for diagnosis.
type ExtractionError struct {
	RawOutput string
}

func (e *ExtractionError) Error() string {
	return "no SQL statement found in generator output"
}

// ExecutionError wraps a database failure for one statement. Hint carries a
// short classification for well-known MySQL error numbers, empty otherwise.
type ExecutionError struct {
	SQL  string
	Hint string
	Err  error
}

func (e *ExecutionError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("executing query: %v (%s)", e.Err, e.Hint)
	}
	return fmt.Sprintf("executing query: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
