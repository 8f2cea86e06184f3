package matcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/catalog"
)

type stubCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubCompleter) Provider() string { return "stub" }

func (s *stubCompleter) Model() string { return "stub-model" }

func TestScorerScore(t *testing.T) {
	stub := &stubCompleter{response: `{"score": 8.5, "reasoning": "Controls procurement for a relevant program."}`}
	scorer := NewScorer(stub, 0, 0, zap.NewNop())

	speaker := &catalog.Speaker{
		Name:         "Dana Reyes",
		Title:        "VP of Procurement",
		Organization: "Skyward Systems",
		Bio:          "Leads vendor selection for airborne platforms.",
	}

	match := scorer.Score(context.Background(), Query{Context: "We sell counter-drone radar systems.", Threshold: 6}, speaker)

	if match.Score != 8.5 {
		t.Fatalf("expected score 8.5, got %v", match.Score)
	}

	if match.Reasoning == "" {
		t.Fatal("expected reasoning to be populated")
	}

	if match.Name != speaker.Name || match.Organization != speaker.Organization {
		t.Fatalf("speaker fields not carried over: %+v", match)
	}

	if !strings.Contains(stub.lastPrompt, "Name: Dana Reyes") {
		t.Fatalf("expected speaker name in prompt, got: %s", stub.lastPrompt)
	}

	if !strings.Contains(stub.lastPrompt, "We sell counter-drone radar systems.") {
		t.Fatal("expected user context in prompt")
	}

	if !strings.Contains(stub.lastPrompt, "DIRECT RELEVANCE (40% weight)") {
		t.Fatal("expected rubric criteria in prompt")
	}
}

func TestScorerTruncatesBio(t *testing.T) {
	stub := &stubCompleter{response: `{"score": 5, "reasoning": "ok"}`}
	scorer := NewScorer(stub, 0, 0, zap.NewNop())

	speaker := &catalog.Speaker{
		Name: "Long Bio",
		Bio:  strings.Repeat("x", bioPromptLimit+200),
	}

	scorer.Score(context.Background(), Query{Context: "A business context."}, speaker)

	if strings.Contains(stub.lastPrompt, strings.Repeat("x", bioPromptLimit+1)) {
		t.Fatalf("expected bio truncated to %d characters", bioPromptLimit)
	}

	if !strings.Contains(stub.lastPrompt, strings.Repeat("x", bioPromptLimit)) {
		t.Fatal("expected truncated bio in prompt")
	}
}

func TestScorerFillsMissingFields(t *testing.T) {
	stub := &stubCompleter{response: `{"score": 1, "reasoning": "no info"}`}
	scorer := NewScorer(stub, 0, 0, zap.NewNop())

	scorer.Score(context.Background(), Query{Context: "A business context."}, &catalog.Speaker{Name: "Only Name"})

	if !strings.Contains(stub.lastPrompt, "Title: N/A") || !strings.Contains(stub.lastPrompt, "Bio: N/A") {
		t.Fatalf("expected N/A placeholders, got: %s", stub.lastPrompt)
	}
}

func TestScorerContainsProviderFailure(t *testing.T) {
	stub := &stubCompleter{err: errors.New("rate limited")}
	scorer := NewScorer(stub, 0, 0, zap.NewNop())

	match := scorer.Score(context.Background(), Query{Context: "A business context."}, &catalog.Speaker{Name: "Unlucky"})

	if match.Score != 0 {
		t.Fatalf("expected score 0, got %v", match.Score)
	}

	if !strings.Contains(match.Reasoning, "rate limited") {
		t.Fatalf("expected failure reason in rationale, got %q", match.Reasoning)
	}
}

func TestScorerContainsUnparsableReply(t *testing.T) {
	stub := &stubCompleter{response: "I would rather not answer with JSON."}
	scorer := NewScorer(stub, 0, 0, zap.NewNop())

	match := scorer.Score(context.Background(), Query{Context: "A business context."}, &catalog.Speaker{Name: "Chatty"})

	if match.Score != 0 {
		t.Fatalf("expected score 0, got %v", match.Score)
	}

	if match.Reasoning == "" {
		t.Fatal("expected failure rationale")
	}
}

func TestScorerDefaultsMissingKeys(t *testing.T) {
	stub := &stubCompleter{response: `{"note": "keys absent"}`}
	scorer := NewScorer(stub, 0, 0, zap.NewNop())

	match := scorer.Score(context.Background(), Query{Context: "A business context."}, &catalog.Speaker{Name: "Sparse"})

	if match.Score != 0 || match.Reasoning != "" {
		t.Fatalf("expected zero-value defaults, got %+v", match)
	}
}
