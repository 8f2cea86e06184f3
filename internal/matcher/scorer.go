package matcher

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/ai"
	"github.com/confscout/speaker-scout/internal/catalog"
	"github.com/confscout/speaker-scout/internal/util"
)

//go:embed prompt.md
var promptTemplate string

const (
	// bioPromptLimit caps the biography characters included in the prompt.
	bioPromptLimit = 800

	defaultMaxLogLength = 200
)

// Scorer evaluates a single speaker against a query through the completer.
type Scorer struct {
	completer   ai.Completer
	logger      *zap.Logger
	itemTimeout time.Duration
	maxLogLen   int
}

// NewScorer creates a scorer. itemTimeout bounds each completion call; zero
// disables the per-item deadline. maxLogLength caps prompt/response previews
// in debug logs.
func NewScorer(completer ai.Completer, itemTimeout time.Duration, maxLogLength int, logger *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		completer:   completer,
		logger:      logger,
		itemTimeout: itemTimeout,
		maxLogLen:   maxLogLength,
	}
}

// Score evaluates one speaker and always returns a match. Provider failures,
// timeouts and unparsable replies are contained here: they degrade to a
// zero-score match carrying the failure reason, so a single bad item cannot
// abort the batch.
func (s *Scorer) Score(ctx context.Context, query Query, speaker *catalog.Speaker) *ScoredMatch {
	prompt := buildPrompt(query.Context, speaker)

	s.logger.Debug("scoring request",
		zap.String("speaker", speaker.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
	)

	if s.itemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.itemTimeout)
		defer cancel()
	}

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("speaker scoring failed",
			zap.String("speaker", speaker.Name),
			zap.Error(err),
		)
		return failedMatch(speaker, err)
	}

	s.logger.Debug("scoring response",
		zap.String("speaker", speaker.Name),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
	)

	score, reasoning, err := parseAssessment(raw)
	if err != nil {
		s.logger.Warn("unparsable scoring response",
			zap.String("speaker", speaker.Name),
			zap.Error(err),
		)
		return failedMatch(speaker, err)
	}

	return &ScoredMatch{
		Speaker:   *speaker,
		Score:     score,
		Reasoning: reasoning,
	}
}

// failedMatch converts a per-item failure into data: a zero-score match
// whose rationale explains what went wrong.
func failedMatch(speaker *catalog.Speaker, err error) *ScoredMatch {
	return &ScoredMatch{
		Speaker:   *speaker,
		Score:     0,
		Reasoning: fmt.Sprintf("Error: %v", err),
	}
}

func buildPrompt(userContext string, speaker *catalog.Speaker) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{USER_CONTEXT}}", userContext)
	prompt = strings.ReplaceAll(prompt, "{{SPEAKER_NAME}}", orNA(speaker.Name))
	prompt = strings.ReplaceAll(prompt, "{{SPEAKER_TITLE}}", orNA(speaker.Title))
	prompt = strings.ReplaceAll(prompt, "{{SPEAKER_ORG}}", orNA(speaker.Organization))
	prompt = strings.ReplaceAll(prompt, "{{SPEAKER_BIO}}", orNA(truncateRunes(speaker.Bio, bioPromptLimit)))
	return prompt
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
