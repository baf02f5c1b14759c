package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const defaultDeepseekURL = "https://api.deepseek.com/v1/chat/completions"

// DeepseekClient talks to an OpenAI-compatible chat completions endpoint in
// JSON mode. JSON mode only allows a top-level object, so batches are
// requested as {"puzzles": [...]} and unwrapped before returning.
type DeepseekClient struct {
	apiKey string
	model  string
	url    string
	http   *http.Client
}

// NewDeepseekClient creates a client for model (e.g. deepseek-chat).
func NewDeepseekClient(apiKey, model string) *DeepseekClient {
	return &DeepseekClient{apiKey: apiKey, model: model, url: defaultDeepseekURL, http: &http.Client{}}
}

// WithURL overrides the completions endpoint.
func (c *DeepseekClient) WithURL(u string) *DeepseekClient {
	c.url = u
	return c
}

type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepseekRequest struct {
	Model          string            `json:"model"`
	Messages       []deepseekMessage `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type deepseekResponse struct {
	Choices []struct {
		Message deepseekMessage `json:"message"`
	} `json:"choices"`
}

const (
	deepseekSingleFormat = `Reply with a single JSON object {"word": string, "hints": [string, string, string, string]} and nothing else.`
	deepseekBatchFormat  = `Reply with a single JSON object {"puzzles": [{"word": string, "hints": [string, string, string, string]}, ...]} and nothing else.`
)

// Generate implements Client.
func (c *DeepseekClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("deepseek: missing API key")
	}
	format := deepseekSingleFormat
	if req.Count > 0 {
		format = deepseekBatchFormat
	}
	body := deepseekRequest{
		Model: c.model,
		Messages: []deepseekMessage{
			{Role: "system", Content: format},
			{Role: "user", Content: req.Prompt},
		},
		Temperature:    req.Temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var resp deepseekResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, c.http, c.url, headers, body, &resp); err != nil {
		return "", fmt.Errorf("deepseek: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("deepseek: no choices in response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if req.Count == 0 {
		return content, nil
	}

	var wrapped struct {
		Puzzles json.RawMessage `json:"puzzles"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil || len(wrapped.Puzzles) == 0 {
		// Let the adapter judge whatever came back.
		return content, nil
	}
	return string(wrapped.Puzzles), nil
}
