package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/catalog"
	"github.com/confscout/speaker-scout/internal/matcher"
)

type stubRecommender struct {
	set       *matcher.MatchSet
	err       error
	lastQuery matcher.Query
}

func (s *stubRecommender) Recommend(_ context.Context, query matcher.Query, cat *catalog.Catalog) (*matcher.MatchSet, error) {
	s.lastQuery = query
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

func testServer(t *testing.T, cat *catalog.Catalog, rec Recommender) *Server {
	t.Helper()
	return New(Config{Address: ":0", CORSOrigin: "http://localhost:3000"}, cat, rec, zap.NewNop())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func twoSpeakers() *catalog.Catalog {
	return &catalog.Catalog{Speakers: []*catalog.Speaker{
		{Name: "Ada", Title: "CTO"},
		{Name: "Grace", Title: "Admiral"},
	}}
}

func TestRootReportsSpeakerCount(t *testing.T) {
	s := testServer(t, twoSpeakers(), &stubRecommender{})

	rr := do(t, s, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp["speakers_loaded"] != float64(2) {
		t.Fatalf("expected 2 speakers loaded, got %v", resp["speakers_loaded"])
	}
}

func TestSpeakersEndpoint(t *testing.T) {
	s := testServer(t, twoSpeakers(), &stubRecommender{})

	rr := do(t, s, http.MethodGet, "/speakers", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var resp struct {
		Speakers []*catalog.Speaker `json:"speakers"`
		Count    int                `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp.Count != 2 || resp.Speakers[0].Name != "Ada" {
		t.Fatalf("unexpected speakers payload: %+v", resp)
	}
}

func TestMatchReturnsRankedSet(t *testing.T) {
	rec := &stubRecommender{set: &matcher.MatchSet{
		Matches: []*matcher.ScoredMatch{
			{Speaker: catalog.Speaker{Name: "Ada"}, Score: 9, Reasoning: "direct fit"},
		},
		TotalCount:   2,
		MatchedCount: 1,
	}}
	s := testServer(t, twoSpeakers(), rec)

	rr := do(t, s, http.MethodPost, "/match", `{"user_bio": "We build compilers for analytical engines.", "threshold": 7}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body: %s", rr.Code, rr.Body.String())
	}

	if rec.lastQuery.Threshold != 7 {
		t.Fatalf("expected threshold 7 passed through, got %v", rec.lastQuery.Threshold)
	}

	var resp struct {
		Matches      []map[string]any `json:"matches"`
		TotalCount   int              `json:"total_speakers"`
		MatchedCount int              `json:"matches_found"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp.TotalCount != 2 || resp.MatchedCount != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}

	if resp.Matches[0]["name"] != "Ada" || resp.Matches[0]["score"] != float64(9) {
		t.Fatalf("unexpected match payload: %+v", resp.Matches[0])
	}
}

func TestMatchDefaultsThreshold(t *testing.T) {
	rec := &stubRecommender{set: &matcher.MatchSet{}}
	s := testServer(t, twoSpeakers(), rec)

	rr := do(t, s, http.MethodPost, "/match", `{"user_bio": "We build compilers for analytical engines."}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	if rec.lastQuery.Threshold != 6 {
		t.Fatalf("expected default threshold 6, got %v", rec.lastQuery.Threshold)
	}
}

func TestMatchValidation(t *testing.T) {
	s := testServer(t, twoSpeakers(), &stubRecommender{set: &matcher.MatchSet{}})

	cases := []struct {
		name string
		body string
	}{
		{name: "short bio", body: `{"user_bio": "short"}`},
		{name: "threshold out of range", body: `{"user_bio": "We build compilers for analytical engines.", "threshold": 11}`},
		{name: "malformed body", body: `{"user_bio": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, s, http.MethodPost, "/match", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	s := testServer(t, &catalog.Catalog{}, &stubRecommender{set: &matcher.MatchSet{}})

	rr := do(t, s, http.MethodPost, "/match", `{"user_bio": "We build compilers for analytical engines."}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	s := testServer(t, twoSpeakers(), &stubRecommender{})

	rr := do(t, s, http.MethodOptions, "/match", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}
}
