// Package llm holds the chat completion client used to phrase companion
// replies. The orchestration pipeline never depends on it: every decision is
// made before a model is consulted, and a failed completion falls back to
// canned phrasing.
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

	"github.com/ritmolabs/ritmo/internal/schema"
)

const anthropicVersion = "2023-06-01"

// Client makes direct HTTP calls to a chat completion endpoint. It handles
// the Anthropic Messages API and OpenAI-compatible endpoints.
type Client struct {
	apiKey      string
	apiBase     string
	model       string
	maxTokens   int
	isAnthropic bool
	httpClient  *http.Client
}

// NewClient constructs a client from raw config values. An empty apiBase
// selects the Anthropic API.
func NewClient(apiKey, apiBase, model string) *Client {
	base := strings.TrimRight(apiBase, "/")
	if base == "" {
		base = "https://api.anthropic.com/v1"
	}
	isAnthropic := strings.Contains(strings.ToLower(base), "anthropic.com")

	return &Client{
		apiKey:      apiKey,
		apiBase:     base,
		model:       model,
		maxTokens:   1024,
		isAnthropic: isAnthropic,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete sends the system prompt plus conversation history and returns the
// assistant's reply text.
func (c *Client) Complete(ctx context.Context, system string, history []schema.ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}
	if c.isAnthropic {
		return c.completeAnthropic(ctx, system, history)
	}
	return c.completeOpenAI(ctx, system, history)
}

// ---------------------------------------------------------------------------
// Anthropic Messages API path
// ---------------------------------------------------------------------------

func (c *Client) completeAnthropic(ctx context.Context, system string, history []schema.ChatMessage) (string, error) {
	msgs := make([]map[string]any, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, map[string]any{"role": m.Role, "content": m.Content})
	}

	body := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages":   msgs,
	}
	if system != "" {
		body["system"] = system
	}

	raw, err := c.post(ctx, c.apiBase+"/messages", body, func(req *http.Request) {
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parse anthropic response: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return sb.String(), nil
}

// ---------------------------------------------------------------------------
// OpenAI-compatible path
// ---------------------------------------------------------------------------

func (c *Client) completeOpenAI(ctx context.Context, system string, history []schema.ChatMessage) (string, error) {
	msgs := make([]map[string]any, 0, len(history)+1)
	if system != "" {
		msgs = append(msgs, map[string]any{"role": "system", "content": system})
	}
	for _, m := range history {
		msgs = append(msgs, map[string]any{"role": m.Role, "content": m.Content})
	}

	body := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages":   msgs,
	}

	raw, err := c.post(ctx, c.apiBase+"/chat/completions", body, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any, auth func(*http.Request)) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}
	return raw, nil
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
