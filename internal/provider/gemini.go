package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient calls the Gemini generateContent REST endpoint with a
// structured-output schema.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewGeminiClient creates a client for model (e.g. gemini-2.5-flash).
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		http:    &http.Client{},
	}
}

// WithBaseURL points the client at another host (tests, proxies).
func (c *GeminiClient) WithBaseURL(u string) *GeminiClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// schema is the subset of the Gemini OpenAPI schema the game needs.
type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

func puzzleSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"word": {
				Type:        "STRING",
				Description: "The hangman word or phrase, in uppercase. Only letters and spaces.",
			},
			"hints": {
				Type:        "ARRAY",
				Description: "Exactly 4 short, clever hints, ordered from most cryptic to most obvious.",
				Items:       &schema{Type: "STRING"},
			},
		},
		Required: []string{"word", "hints"},
	}
}

// responseSchema is one puzzle object, or an array of them for batches.
func responseSchema(count int) *schema {
	if count > 0 {
		return &schema{Type: "ARRAY", Items: puzzleSchema()}
	}
	return puzzleSchema()
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
	Temperature      float64 `json:"temperature"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Generate implements Client.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("gemini: missing API key")
	}
	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(req.Count),
			Temperature:      req.Temperature,
		},
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	var resp geminiResponse
	if err := postJSON(ctx, c.http, url, map[string]string{"x-goog-api-key": c.apiKey}, body, &resp); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: empty candidate (finish reason %q)", resp.Candidates[0].FinishReason)
	}
	return b.String(), nil
}
