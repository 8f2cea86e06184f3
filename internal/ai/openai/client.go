// Package openai implements the scoring completer on top of the OpenAI
// Chat Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/confscout/speaker-scout/internal/ai"
)

const (
	providerName = "openai"

	defaultModel = "gpt-4.1"
	// Scoring wants consistency over creativity.
	defaultTemperature = 0.1
	defaultMaxTokens   = 1024
)

// Client wraps the OpenAI API behind the ai.Completer interface. Model,
// temperature and token limit are fixed at construction.
type Client struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// Options configure the OpenAI completer. Zero values fall back to defaults.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

// New creates an OpenAI completer for the given API key.
func New(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	if opts.Model = strings.TrimSpace(opts.Model); opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Client{
		client:      &client,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}, nil
}

// Complete sends the prompt as a single user message and returns the first
// choice's text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &ai.ProviderError{Provider: providerName, Err: fmt.Errorf("chat completion: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", &ai.ProviderError{Provider: providerName, Err: errors.New("no choices returned")}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ai.ProviderError{Provider: providerName, Err: errors.New("empty completion")}
	}

	return text, nil
}

func (c *Client) Provider() string { return providerName }

func (c *Client) Model() string { return c.model }
