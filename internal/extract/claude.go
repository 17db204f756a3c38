// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/citeharvest/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	defaultClaudeModel = "claude-3-haiku-20240307"
	claudeMaxTokens    = 2000
)

// ClaudeBackend calls the Claude Messages API with the species
// extraction prompt.
type ClaudeBackend struct {
	APIKey   string
	Model    string
	MaxChars int
	Timeout  time.Duration
	Client   *http.Client
}

// NewClaudeBackend creates a Claude extraction backend from config.
func NewClaudeBackend(cfg types.ExtractionConfig, client *http.Client) *ClaudeBackend {
	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}
	return &ClaudeBackend{
		APIKey:   cfg.APIKey,
		Model:    model,
		MaxChars: cfg.MaxChars,
		Timeout:  cfg.Timeout,
		Client:   client,
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []claudeMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Extract sends the document text to the Claude API and parses the
// returned fact payloads.
func (c *ClaudeBackend) Extract(ctx context.Context, text string) ([]map[string]string, error) {
	prompt, err := renderPrompt(text, c.MaxChars)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: claudeMaxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return nil, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return ParseFacts(block.Text)
	}

	return nil, fmt.Errorf("no text content in Claude API response")
}
