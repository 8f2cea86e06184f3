// Package matcher implements the concurrent scoring-and-ranking engine: it
// fans a single query out across one LLM scoring call per catalog speaker,
// tolerates partial failure per item, and produces a deterministic, ranked,
// threshold-filtered result set.
package matcher

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/ai"
	"github.com/confscout/speaker-scout/internal/catalog"
)

const defaultConcurrency = 8

// Options configure the matcher. Zero values fall back to defaults.
type Options struct {
	// Concurrency caps the number of in-flight scoring calls, respecting
	// provider rate limits.
	Concurrency int
	// ItemTimeout bounds each scoring call. An expired item degrades to a
	// zero-score match, same as a provider error.
	ItemTimeout time.Duration
	// RequestDeadline bounds the whole batch. Outstanding calls are
	// cancelled and degrade to zero-score matches.
	RequestDeadline time.Duration
	// MaxLogLength caps prompt/response previews in debug logs.
	MaxLogLength int
}

// Matcher scores every catalog speaker against a query and ranks the result.
type Matcher struct {
	scorer          *Scorer
	pool            *ants.Pool
	logger          *zap.Logger
	requestDeadline time.Duration
}

// New creates a matcher backed by a fixed-size worker pool.
func New(completer ai.Completer, opts Options, logger *zap.Logger) (*Matcher, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := ants.NewPool(opts.Concurrency)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		scorer:          NewScorer(completer, opts.ItemTimeout, opts.MaxLogLength, logger),
		pool:            pool,
		logger:          logger,
		requestDeadline: opts.RequestDeadline,
	}, nil
}

// Close releases the worker pool.
func (m *Matcher) Close() {
	m.pool.Release()
}

// Recommend scores all catalog speakers concurrently and returns the ranked,
// threshold-filtered result. It waits for every scoring call to resolve and
// always produces exactly one scored item per speaker before filtering; a
// per-item failure degrades that item to score 0 and never fails the
// request. Only invalid input or an empty catalog is request-fatal.
func (m *Matcher) Recommend(ctx context.Context, query Query, cat *catalog.Catalog) (*MatchSet, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		return nil, ErrCatalogEmpty
	}

	if m.requestDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.requestDeadline)
		defer cancel()
	}

	m.logger.Info("scoring speakers",
		zap.Int("count", cat.Len()),
		zap.Float64("threshold", query.Threshold),
	)

	// Results are written to their catalog index so the final ordering
	// depends only on scores and catalog order, never on completion order.
	results := make([]*ScoredMatch, cat.Len())
	var wg sync.WaitGroup

	for i, speaker := range cat.Speakers {
		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()
			results[i] = m.scorer.Score(ctx, query, speaker)
		})
		if err != nil {
			// A rejected submission degrades like any per-item failure.
			results[i] = failedMatch(speaker, err)
			wg.Done()
		}
	}

	wg.Wait()

	set := Rank(results, query.Threshold)

	m.logger.Info("scoring completed",
		zap.Int("total_speakers", set.TotalCount),
		zap.Int("matches_found", set.MatchedCount),
		zap.Float64("threshold", query.Threshold),
	)

	return set, nil
}
