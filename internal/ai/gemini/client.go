// Package gemini implements the scoring completer on top of the Google
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/confscout/speaker-scout/internal/ai"
)

const (
	providerName = "gemini"

	defaultModel = "gemini-2.5-pro"
)

// Client wraps the Google GenAI client behind the ai.Completer interface.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini completer configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey = strings.TrimSpace(apiKey); apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Client{client: client, model: model}, nil
}

// Complete sends the prompt to Gemini and concatenates the textual parts of
// the first candidates.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &ai.ProviderError{Provider: providerName, Err: fmt.Errorf("generate content: %w", err)}
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", &ai.ProviderError{Provider: providerName, Err: errors.New("empty completion")}
	}

	return output, nil
}

func (c *Client) Provider() string { return providerName }

func (c *Client) Model() string { return c.model }
