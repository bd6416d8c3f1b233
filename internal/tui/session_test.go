package tui

import (
	"testing"
	"time"

	"github.com/nlquery/mysql-ai/internal/pipeline"
)

func TestIsExitCommand(t *testing.T) {
	exits := []string{"exit", "quit", "EXIT", "Quit", "  exit  ", "\tQUIT\n"}
	for _, line := range exits {
		if !IsExitCommand(line) {
			t.Errorf("expected %q to end the session", line)
		}
	}

	questions := []string{
		"",
		"how many exits does the building have",
		"quit smoking statistics by region",
		"exit velocity of the fastest pitch",
	}
	for _, line := range questions {
		if IsExitCommand(line) {
			t.Errorf("expected %q to be treated as a question", line)
		}
	}
}

func TestHistoryEntrySuccess(t *testing.T) {
	out := &pipeline.Outcome{
		Question: "how many users",
		SQL:      "SELECT COUNT(*) FROM users",
		Result: &pipeline.QueryResult{
			Columns:  []string{"count"},
			Rows:     [][]string{{"42"}},
			RowCount: 1,
			Elapsed:  1500 * time.Microsecond,
		},
	}

	entry := HistoryEntry(out, nil)

	if !entry.Success {
		t.Error("expected success entry")
	}
	if entry.Question != "how many users" {
		t.Errorf("unexpected question: %q", entry.Question)
	}
	if entry.SQL != "SELECT COUNT(*) FROM users" {
		t.Errorf("unexpected SQL: %q", entry.SQL)
	}
	if entry.RowCount != 1 {
		t.Errorf("expected 1 row, got %d", entry.RowCount)
	}
	if entry.ExecutionTime != 1.5 {
		t.Errorf("expected 1.5ms, got %v", entry.ExecutionTime)
	}
	if entry.Error != "" {
		t.Errorf("unexpected error text: %q", entry.Error)
	}
}

func TestHistoryEntryFailure(t *testing.T) {
	out := &pipeline.Outcome{
		Question:  "gibberish",
		RawOutput: "I cannot answer that.",
	}
	err := &pipeline.StepError{
		Step: pipeline.StepExtract,
		Err:  &pipeline.ExtractionError{RawOutput: out.RawOutput},
	}

	entry := HistoryEntry(out, err)

	if entry.Success {
		t.Error("expected failure entry")
	}
	if entry.SQL != "" {
		t.Errorf("expected no SQL, got %q", entry.SQL)
	}
	if entry.Error == "" {
		t.Error("expected error text to be recorded")
	}
	if entry.RowCount != 0 {
		t.Errorf("expected 0 rows, got %d", entry.RowCount)
	}
}
