// Package anthropic implements the scoring completer on top of the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/confscout/speaker-scout/internal/ai"
)

const (
	providerName = "anthropic"

	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 4096
)

// Client wraps the Anthropic API behind the ai.Completer interface.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// Options configure the Anthropic completer. Zero values fall back to defaults.
type Options struct {
	Model     string
	MaxTokens int64
}

// New creates an Anthropic completer for the given API key.
func New(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic api key is required")
	}

	if opts.Model = strings.TrimSpace(opts.Model); opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Client{
		client:    &client,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}, nil
}

// Complete sends the prompt as a single user message and concatenates the
// text blocks of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", &ai.ProviderError{Provider: providerName, Err: fmt.Errorf("messages: %w", err)}
	}

	var builder strings.Builder
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		text := strings.TrimSpace(block.AsText().Text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", &ai.ProviderError{Provider: providerName, Err: errors.New("empty completion")}
	}

	return output, nil
}

func (c *Client) Provider() string { return providerName }

func (c *Client) Model() string { return c.model }
