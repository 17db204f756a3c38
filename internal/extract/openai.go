// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/citeharvest/pkg/types"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIBackend extracts facts through the OpenAI chat completions API.
type OpenAIBackend struct {
	client   *openai.Client
	model    string
	maxChars int
	timeout  time.Duration
}

// OpenAIOption configures an OpenAIBackend.
type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	baseURL string
}

// WithOpenAIBaseURL overrides the API base URL. Used to point the
// backend at a local test server or a compatible proxy.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) { o.baseURL = url }
}

// NewOpenAIBackend creates an OpenAI extraction backend from config.
func NewOpenAIBackend(cfg types.ExtractionConfig, opts ...OpenAIOption) *OpenAIBackend {
	var o openAIOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if o.baseURL != "" {
		clientCfg.BaseURL = o.baseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIBackend{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		maxChars: cfg.MaxChars,
		timeout:  cfg.Timeout,
	}
}

// Extract sends the document text to the OpenAI API and parses the
// returned fact payloads.
func (b *OpenAIBackend) Extract(ctx context.Context, text string) ([]map[string]string, error) {
	prompt, err := renderPrompt(text, b.maxChars)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	timeout := b.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenAI API response")
	}

	return ParseFacts(resp.Choices[0].Message.Content)
}
