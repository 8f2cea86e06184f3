package matcher

import (
	"testing"

	"github.com/confscout/speaker-scout/internal/catalog"
)

func scored(name string, score float64) *ScoredMatch {
	return &ScoredMatch{Speaker: catalog.Speaker{Name: name}, Score: score}
}

func TestRankSortsDescending(t *testing.T) {
	set := Rank([]*ScoredMatch{scored("a", 3), scored("b", 9), scored("c", 6)}, 0)

	if len(set.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(set.Matches))
	}

	for i := 1; i < len(set.Matches); i++ {
		if set.Matches[i].Score > set.Matches[i-1].Score {
			t.Fatalf("scores not non-increasing: %+v", set.Matches)
		}
	}

	if set.Matches[0].Name != "b" {
		t.Fatalf("expected b first, got %s", set.Matches[0].Name)
	}
}

func TestRankInclusiveThreshold(t *testing.T) {
	set := Rank([]*ScoredMatch{scored("a", 6), scored("b", 5.99)}, 6)

	if set.MatchedCount != 1 || set.Matches[0].Name != "a" {
		t.Fatalf("expected only the boundary item to pass, got %+v", set.Matches)
	}
}

func TestRankStableOnTies(t *testing.T) {
	set := Rank([]*ScoredMatch{scored("first", 7), scored("second", 7), scored("third", 7)}, 0)

	got := []string{set.Matches[0].Name, set.Matches[1].Name, set.Matches[2].Name}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected stable order %v, got %v", want, got)
		}
	}
}

func TestRankThresholdMonotonicity(t *testing.T) {
	batch := []*ScoredMatch{scored("a", 2), scored("b", 5), scored("c", 8), scored("d", 9)}

	low := Rank(batch, 3)
	high := Rank(batch, 7)

	if high.MatchedCount > low.MatchedCount {
		t.Fatalf("higher threshold produced more matches: %d > %d", high.MatchedCount, low.MatchedCount)
	}

	lowNames := make(map[string]bool, len(low.Matches))
	for _, m := range low.Matches {
		lowNames[m.Name] = true
	}
	for _, m := range high.Matches {
		if !lowNames[m.Name] {
			t.Fatalf("match %s at threshold 7 missing at threshold 3", m.Name)
		}
	}
}

func TestRankCountsIncludeFiltered(t *testing.T) {
	set := Rank([]*ScoredMatch{scored("a", 9), scored("b", 1)}, 6)

	if set.TotalCount != 2 {
		t.Fatalf("expected total of 2, got %d", set.TotalCount)
	}
	if set.MatchedCount != 1 {
		t.Fatalf("expected 1 match, got %d", set.MatchedCount)
	}
}

func TestRankEmptyInput(t *testing.T) {
	set := Rank(nil, 6)

	if set.TotalCount != 0 || set.MatchedCount != 0 || len(set.Matches) != 0 {
		t.Fatalf("expected empty set, got %+v", set)
	}
}
