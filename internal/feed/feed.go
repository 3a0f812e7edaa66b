// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed fetches candidate papers from the bioRxiv details API for a
// lookback window and filters them by keyword relevance. When the window
// returns nothing it falls back to per-keyword queries.
package feed

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

const dateLayout = "2006-01-02"

// Window is an inclusive date range ending at the time of the fetch.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the window covering the lookbackDays days before now.
func WindowFor(now time.Time, lookbackDays int) Window {
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	now = now.UTC()
	return Window{
		Start: now.Add(-time.Duration(lookbackDays) * 24 * time.Hour),
		End:   now,
	}
}

// StartDate returns the window start as YYYY-MM-DD.
func (w Window) StartDate() string { return w.Start.Format(dateLayout) }

// EndDate returns the window end as YYYY-MM-DD.
func (w Window) EndDate() string { return w.End.Format(dateLayout) }

// detailsResponse is the body of the bioRxiv details endpoint.
type detailsResponse struct {
	Collection []types.CandidatePaper `json:"collection"`
}

// Client queries the preprint feed.
type Client struct {
	cfg        types.FeedConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// New creates a feed client. Zero-valued settings fall back to the defaults
// of types.DefaultConfig.
func New(cfg types.FeedConfig, logger zerolog.Logger) *Client {
	defaults := types.DefaultConfig().Feed
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Server == "" {
		cfg.Server = defaults.Server
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.FallbackPageSize <= 0 {
		cfg.FallbackPageSize = defaults.FallbackPageSize
	}
	if cfg.FallbackKeywords <= 0 {
		cfg.FallbackKeywords = defaults.FallbackKeywords
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = defaults.Keywords
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger,
		now:        time.Now,
	}
}

// FetchRecent returns the relevant candidates published in the last
// lookbackDays days. A failed or undecodable fetch is logged and yields no
// candidates; it is never reported as an error. An empty window triggers
// the keyword fallback search.
func (c *Client) FetchRecent(ctx context.Context, lookbackDays int) []types.CandidatePaper {
	window := WindowFor(c.now(), lookbackDays)
	log := c.logger.With().Str("from", window.StartDate()).Str("to", window.EndDate()).Logger()
	log.Info().Msg("fetching papers")

	papers, err := c.fetchPage(ctx, window, c.cfg.PageSize)
	if err != nil {
		log.Error().Err(err).Msg("feed fetch failed")
		return nil
	}

	if len(papers) == 0 {
		log.Info().Msg("no papers found in date range, trying keyword search")
		return c.searchByKeywords(ctx, window)
	}

	relevant := FilterRelevant(papers, c.cfg.Keywords)
	log.Info().Int("total", len(papers)).Int("relevant", len(relevant)).Msg("feed fetched")
	return relevant
}

// searchByKeywords queries the window once per keyword (bounded by
// FallbackKeywords) and keeps the matches for that keyword, in
// keyword-then-discovery order. A failing keyword contributes nothing.
func (c *Client) searchByKeywords(ctx context.Context, window Window) []types.CandidatePaper {
	keywords := c.cfg.Keywords
	if len(keywords) > c.cfg.FallbackKeywords {
		keywords = keywords[:c.cfg.FallbackKeywords]
	}

	var results []types.CandidatePaper
	for _, kw := range keywords {
		papers, err := c.fetchPage(ctx, window, c.cfg.FallbackPageSize)
		if err != nil {
			c.logger.Debug().Err(err).Str("keyword", kw).Msg("keyword search failed")
			continue
		}
		for _, p := range papers {
			if matchesKeyword(p, kw) {
				results = append(results, p)
			}
		}
	}

	deduped := dedupByDOI(results)
	c.logger.Info().Int("matches", len(results)).Int("unique", len(deduped)).Msg("keyword search finished")
	return deduped
}

// fetchPage requests the first page of the window with the given page size.
func (c *Client) fetchPage(ctx context.Context, window Window, pageSize int) ([]types.CandidatePaper, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/details/%s/%s/%s/0/%d",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Server,
		window.StartDate(), window.EndDate(), pageSize)

	var resp detailsResponse
	if err := httputil.GetJSON(ctx, c.httpClient, url, c.cfg.UserAgent, &resp); err != nil {
		return nil, err
	}

	papers := make([]types.CandidatePaper, 0, len(resp.Collection))
	for _, p := range resp.Collection {
		p.Title = c.clean(p.Title)
		p.Abstract = c.clean(p.Abstract)
		p.Authors = strings.TrimSpace(p.Authors)
		p.DOI = strings.TrimSpace(p.DOI)
		if p.Title == "" {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// clean strips markup the feed embeds in titles and abstracts (<i>, <sup>, ...).
func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(s)))
}

// FilterRelevant keeps the papers whose title or abstract contains at least
// one keyword, case-insensitively, preserving feed order.
func FilterRelevant(papers []types.CandidatePaper, keywords []string) []types.CandidatePaper {
	var relevant []types.CandidatePaper
	for _, p := range papers {
		for _, kw := range keywords {
			if matchesKeyword(p, kw) {
				relevant = append(relevant, p)
				break
			}
		}
	}
	return relevant
}

func matchesKeyword(p types.CandidatePaper, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Text()), kw)
}

// dedupByDOI removes papers whose DOI was already seen; the first occurrence
// wins. Papers without a DOI are always kept.
func dedupByDOI(papers []types.CandidatePaper) []types.CandidatePaper {
	seen := make(map[string]bool)
	var deduped []types.CandidatePaper
	for _, p := range papers {
		if p.DOI != "" {
			if seen[p.DOI] {
				continue
			}
			seen[p.DOI] = true
		}
		deduped = append(deduped, p)
	}
	return deduped
}
