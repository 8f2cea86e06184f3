package ai

import (
	"context"
	"fmt"
)

// Completer is the single capability the scoring pipeline needs from an LLM
// backend: turn a prompt into free-form text. Implementations must be safe
// for concurrent use and must not retry on their own; retries, if any, are
// the caller's concern.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// ProviderError wraps a failure returned by an LLM backend: network errors,
// auth failures and provider-side rejections all surface through it.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
