package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildPromptSubstitution(t *testing.T) {
	template := "Tables:\n{table_info}\n\nQuestion: {input}"
	params := map[string]string{
		"table_info": "Table: t\n  - id (INT)",
		"input":      "how many rows?",
	}

	prompt, err := BuildPrompt(template, params)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	if !strings.Contains(prompt, "Table: t\n  - id (INT)") {
		t.Error("expected table_info value verbatim in prompt")
	}
	if !strings.Contains(prompt, "how many rows?") {
		t.Error("expected input value verbatim in prompt")
	}
	if strings.Contains(prompt, "{table_info}") || strings.Contains(prompt, "{input}") {
		t.Errorf("placeholder tokens remained in prompt: %s", prompt)
	}
}

func TestBuildPromptRepeatedPlaceholder(t *testing.T) {
	prompt, err := BuildPrompt("{question} -- again: {question}", map[string]string{"question": "why"})
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	if prompt != "why -- again: why" {
		t.Errorf("expected both occurrences substituted, got '%s'", prompt)
	}
}

func TestBuildPromptUnboundPlaceholder(t *testing.T) {
	_, err := BuildPrompt("Schema: {schema}\nQ: {question}", map[string]string{"schema": "x"})
	if err == nil {
		t.Fatal("expected error for unbound placeholder")
	}

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if !strings.Contains(confErr.Reason, "{question}") {
		t.Errorf("expected placeholder name in reason, got '%s'", confErr.Reason)
	}
}

func TestBuildPromptUnusedParams(t *testing.T) {
	prompt, err := BuildPrompt("Q: {question}", map[string]string{
		"question": "count rows",
		"schema":   "unused",
		"top_k":    "5",
	})
	if err != nil {
		t.Fatalf("unused params should be permitted: %v", err)
	}
	if prompt != "Q: count rows" {
		t.Errorf("unexpected prompt '%s'", prompt)
	}
}

func TestTemplateLookup(t *testing.T) {
	for _, id := range []string{TemplateStandard, TemplateExpert} {
		tmpl, err := Template(id)
		if err != nil {
			t.Errorf("template '%s' should exist: %v", id, err)
		}
		if tmpl == "" {
			t.Errorf("template '%s' is empty", id)
		}
	}

	_, err := Template("no-such-template")
	if err == nil {
		t.Fatal("expected error for unknown template id")
	}
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestShippedTemplatesBindSessionParams(t *testing.T) {
	// Every shipped template must build with the parameter set the pipeline
	// binds for each question.
	params := map[string]string{
		"schema":     "Table: t\n  - id (int)",
		"table_info": "Table: t\n  - id (int)",
		"question":   "how many rows?",
		"input":      "how many rows?",
		"top_k":      "5",
	}

	for _, id := range []string{TemplateStandard, TemplateExpert} {
		tmpl, err := Template(id)
		if err != nil {
			t.Fatalf("template '%s': %v", id, err)
		}

		prompt, err := BuildPrompt(tmpl, params)
		if err != nil {
			t.Errorf("template '%s' failed to build: %v", id, err)
			continue
		}
		if strings.Contains(prompt, "{") && placeholderPattern.MatchString(prompt) {
			t.Errorf("template '%s' left placeholders unsubstituted:\n%s", id, prompt)
		}
		if !strings.Contains(prompt, "how many rows?") {
			t.Errorf("template '%s' dropped the question", id)
		}
		if !strings.Contains(prompt, "Table: t") {
			t.Errorf("template '%s' dropped the schema block", id)
		}
	}
}
