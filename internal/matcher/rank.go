package matcher

import "sort"

// Rank drops scored matches below the threshold (inclusive comparison) and
// stable-sorts the remainder by score, descending; ties keep their original
// catalog order. Rank is pure: the same scored batch can be re-ranked with a
// different threshold without rescoring.
func Rank(scored []*ScoredMatch, threshold float64) *MatchSet {
	matches := make([]*ScoredMatch, 0, len(scored))
	for _, match := range scored {
		if match == nil {
			continue
		}
		if match.Score >= threshold {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return &MatchSet{
		Matches:      matches,
		TotalCount:   len(scored),
		MatchedCount: len(matches),
	}
}
