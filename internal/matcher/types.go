package matcher

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/confscout/speaker-scout/internal/catalog"
)

// minQueryLength is the minimum number of characters of business context
// required to produce a meaningful evaluation.
const minQueryLength = 10

// ErrCatalogEmpty is returned when there are no speakers to score. It is the
// only catalog-level failure; per-speaker failures never fail a request.
var ErrCatalogEmpty = errors.New("speaker catalog is empty")

// ValidationError reports malformed caller input. It is raised before any
// scoring work begins.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + e.Reason
}

// Query carries the caller's business context and the minimum acceptable
// score for a speaker to appear in the result.
type Query struct {
	Context   string
	Threshold float64
}

func (q Query) Validate() error {
	if len(strings.TrimSpace(q.Context)) < minQueryLength {
		return &ValidationError{Reason: "business context must be at least 10 characters"}
	}
	if q.Threshold < 0 || q.Threshold > 10 {
		return &ValidationError{Reason: "threshold must be between 0 and 10"}
	}
	return nil
}

// ScoredMatch is one speaker with its relevance score (0-10 expected, not
// enforced) and the model's rationale. Created once per (query, speaker)
// pair and immutable afterwards.
type ScoredMatch struct {
	catalog.Speaker
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// MatchSet is the ranked result of one recommendation request: all matches
// at or above the threshold, sorted descending by score, ties in original
// catalog order.
type MatchSet struct {
	Matches      []*ScoredMatch `json:"matches"`
	TotalCount   int            `json:"total_speakers"`
	MatchedCount int            `json:"matches_found"`
}

// DumpToTmpFile writes the match set to a temporary JSON file and returns
// its name.
func (s *MatchSet) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return file.Name(), nil
}
