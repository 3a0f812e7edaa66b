// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

var fixedNow = time.Date(2025, 3, 31, 15, 4, 5, 0, time.UTC)

// fakeFeed serves canned responses keyed by page size and records request paths.
type fakeFeed struct {
	mu     sync.Mutex
	paths  []string
	bySize map[string]func(w http.ResponseWriter)
}

func (f *fakeFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	parts := strings.Split(r.URL.Path, "/")
	size := parts[len(parts)-1]
	if h, ok := f.bySize[size]; ok {
		h(w)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (f *fakeFeed) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func collection(papers ...types.CandidatePaper) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{"collection": papers})
	}
}

func newTestClient(t *testing.T, f *fakeFeed, keywords ...string) *Client {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	cfg := types.DefaultConfig().Feed
	cfg.BaseURL = ts.URL
	cfg.RequestsPerSecond = 0
	if len(keywords) > 0 {
		cfg.Keywords = keywords
	}
	c := New(cfg, zerolog.Nop())
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestWindowFor(t *testing.T) {
	w := WindowFor(fixedNow, 30)
	assert.Equal(t, "2025-03-01", w.StartDate())
	assert.Equal(t, "2025-03-31", w.EndDate())

	w = WindowFor(fixedNow, 0)
	assert.Equal(t, w.StartDate(), w.EndDate())

	w = WindowFor(fixedNow, -3)
	assert.Equal(t, "2025-03-31", w.StartDate())
}

func TestFetchRecent_FiltersByKeyword(t *testing.T) {
	f := &fakeFeed{bySize: map[string]func(http.ResponseWriter){
		"50": collection(
			types.CandidatePaper{Title: "Nutrigenomics of the gut", Abstract: "diet", DOI: "10.1/a"},
			types.CandidatePaper{Title: "Soil bacteria", Abstract: "nothing relevant", DOI: "10.1/b"},
			types.CandidatePaper{Title: "Photoaging", Abstract: "An EPIGENETIC CLOCK for dermis", DOI: "10.1/c"},
		),
	}}
	c := newTestClient(t, f)

	got := c.FetchRecent(context.Background(), 30)

	require.Len(t, got, 2)
	assert.Equal(t, "10.1/a", got[0].DOI)
	assert.Equal(t, "10.1/c", got[1].DOI)
	assert.Equal(t, []string{"/details/biorxiv/2025-03-01/2025-03-31/0/50"}, f.requests())
}

func TestFetchRecent_NoRelevantPapers(t *testing.T) {
	f := &fakeFeed{bySize: map[string]func(http.ResponseWriter){
		"50": collection(types.CandidatePaper{Title: "Soil bacteria", DOI: "10.1/b"}),
	}}
	c := newTestClient(t, f)

	assert.Empty(t, c.FetchRecent(context.Background(), 30))
	// A non-empty window never triggers the fallback.
	assert.Len(t, f.requests(), 1)
}

func TestFetchRecent_CleansMarkup(t *testing.T) {
	f := &fakeFeed{bySize: map[string]func(http.ResponseWriter){
		"50": collection(types.CandidatePaper{
			Title:    "<i>In vivo</i> CRISPR skin editing &amp; repair",
			Abstract: "We edit <sup>2</sup> loci.",
			DOI:      " 10.1/x ",
		}),
	}}
	c := newTestClient(t, f)

	got := c.FetchRecent(context.Background(), 30)
	require.Len(t, got, 1)
	assert.Equal(t, "In vivo CRISPR skin editing & repair", got[0].Title)
	assert.Equal(t, "We edit 2 loci.", got[0].Abstract)
	assert.Equal(t, "10.1/x", got[0].DOI)
}

func TestFetchRecent_FeedFailureYieldsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter)
	}{
		{"server error", func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", func(w http.ResponseWriter) { w.Write([]byte("{not json")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFeed{bySize: map[string]func(http.ResponseWriter){"50": tt.handler}}
			c := newTestClient(t, f)

			assert.Empty(t, c.FetchRecent(context.Background(), 30))
			assert.Len(t, f.requests(), 1)
		})
	}
}

func TestFetchRecent_EmptyWindowFallsBackToKeywords(t *testing.T) {
	f := &fakeFeed{bySize: map[string]func(http.ResponseWriter){
		"50": collection(),
		"10": collection(
			types.CandidatePaper{Title: "Telomere therapy in mice", DOI: "10.1/t"},
			types.CandidatePaper{Title: "Nutrigenomics and telomere therapy", DOI: "10.1/n"},
		),
	}}
	c := newTestClient(t, f, "nutrigenomics", "telomere therapy", "dermatogenomics")

	got := c.FetchRecent(context.Background(), 30)

	// nutrigenomics matches 10.1/n; telomere therapy matches both, 10.1/n deduplicated.
	require.Len(t, got, 2)
	assert.Equal(t, "10.1/n", got[0].DOI)
	assert.Equal(t, "10.1/t", got[1].DOI)

	reqs := f.requests()
	require.Len(t, reqs, 4)
	for _, p := range reqs[1:] {
		assert.Equal(t, "/details/biorxiv/2025-03-01/2025-03-31/0/10", p)
	}
}

func TestSearchByKeywords_BoundedAndTolerant(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	f := &fakeFeed{bySize: map[string]func(http.ResponseWriter){
		"50": collection(),
		"10": func(w http.ResponseWriter) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			collection(types.CandidatePaper{Title: "Biological age estimates", DOI: "10.1/age"})(w)
		},
	}}
	c := newTestClient(t, f)

	got := c.FetchRecent(context.Background(), 30)

	// Only the first five keywords are tried; "biological age" is the seventh.
	assert.Empty(t, got)
	assert.Len(t, f.requests(), 1+5)
}

func TestFilterRelevant(t *testing.T) {
	papers := []types.CandidatePaper{
		{Title: "Melanocyte stem cell niche"},
		{Title: "Unrelated", Abstract: "dermatogenomics appears here"},
		{Title: "Nothing"},
	}
	got := FilterRelevant(papers, []string{"MELANOCYTE STEM", "dermatogenomics", " "})
	require.Len(t, got, 2)
	assert.Equal(t, "Melanocyte stem cell niche", got[0].Title)
	assert.Equal(t, "Unrelated", got[1].Title)

	assert.Empty(t, FilterRelevant(papers, nil))
}

func TestDedupByDOI(t *testing.T) {
	papers := []types.CandidatePaper{
		{Title: "first", DOI: "10.1/a"},
		{Title: "no doi 1"},
		{Title: "second", DOI: "10.1/a"},
		{Title: "no doi 2"},
		{Title: "third", DOI: "10.1/b"},
	}
	got := dedupByDOI(papers)

	var titles []string
	for _, p := range got {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"first", "no doi 1", "no doi 2", "third"}, titles)
}
