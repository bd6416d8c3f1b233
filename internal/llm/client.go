package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config points the client at an OpenAI-compatible chat completions server,
// typically a locally hosted model (llama.cpp, Ollama and friends).
type Config struct {
	// Endpoint is the server base URL, e.g. http://127.0.0.1:8080.
	Endpoint string
	// APIKey is sent as a bearer token when set. Local servers usually
	// accept unauthenticated requests.
	APIKey string
	// Model names the served model. Defaults to "sqlcoder".
	Model string
	// Temperature for sampling. SQL generation wants 0.
	Temperature float64
	// Timeout bounds one completion round-trip. Defaults to 60s; local
	// inference on CPU can take a while.
	Timeout time.Duration
}

// Client invokes the model over HTTP. It returns the model's output verbatim;
// recovering an executable statement from it is the caller's concern.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// NewClient validates cfg and applies defaults.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("generator endpoint is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "sqlcoder"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:    strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Generate sends the prompt as a single user message and returns the first
// choice's content untouched.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("chat completion failed status=%d body=%s", resp.StatusCode, truncate(string(raw), 512))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// Ping checks that the server answers at all. OpenAI-compatible servers
// expose the model list unauthenticated or with the same bearer token.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("build models request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request models: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("models request failed status=%d", resp.StatusCode)
	}
	return nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
