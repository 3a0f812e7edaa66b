// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the ingestion batch: fetch candidates, summarize each
// one, persist it, and optionally write a blog draft. Items are processed
// strictly one at a time in feed order with a pause between them.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/draft"
	"github.com/pdiddy/content-engine/internal/observability"
	"github.com/pdiddy/content-engine/internal/store"
	"github.com/pdiddy/content-engine/pkg/types"
)

// ManualJournal is recorded for manually ingested papers that name no journal.
const ManualJournal = "Manual"

// Trigger values recorded in logs and metrics.
const (
	TriggerCLI    = "cli"
	TriggerAdmin  = "admin"
	TriggerManual = "manual"
)

// Source yields candidate papers for a lookback window.
type Source interface {
	FetchRecent(ctx context.Context, lookbackDays int) []types.CandidatePaper
}

// Summarizer enriches one paper. A nil analysis means the paper is skipped.
type Summarizer interface {
	Summarize(ctx context.Context, paper types.CandidatePaper) (*types.Analysis, error)
}

// DraftWriter writes the markdown body of a blog post.
type DraftWriter interface {
	Generate(ctx context.Context, paper types.CandidatePaper, analysis types.Analysis) (string, error)
}

// Sink persists papers and drafts.
type Sink interface {
	InsertPaper(ctx context.Context, paper types.CandidatePaper, analysis types.Analysis) store.InsertResult
	InsertDraft(ctx context.Context, title, body string, paperID *int64) store.InsertResult
}

// Deps are the stages a Pipeline drives. Drafts may be nil when blog
// generation is never requested.
type Deps struct {
	Source     Source
	Summarizer Summarizer
	Drafts     DraftWriter
	Sink       Sink
}

// RunOptions parameterize one run. Zero values take the PipelineConfig defaults.
type RunOptions struct {
	RunID          string
	LookbackDays   int
	MaxItems       int
	GenerateDrafts bool
	Trigger        string
}

// RunSummary reports the counters of one run. Processed counts papers that
// were summarized successfully, whatever their persistence outcome.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Candidates int    `json:"candidates"`
	Processed  int    `json:"processed"`
	BlogDrafts int    `json:"blog_drafts"`
	Skipped    int    `json:"skipped"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
}

// ManualPaper is a caller-supplied record for IngestManual.
type ManualPaper struct {
	Title    string
	Abstract string
	Journal  string
	Date     string
	URL      string
	DOI      string
}

// Pipeline orchestrates the stages.
type Pipeline struct {
	deps    Deps
	cfg     types.PipelineConfig
	metrics *observability.Metrics
	logger  zerolog.Logger

	// pause waits between items; replaced in tests.
	pause func(ctx context.Context, d time.Duration)
}

// New creates a Pipeline. metrics may be nil.
func New(deps Deps, cfg types.PipelineConfig, metrics *observability.Metrics, logger zerolog.Logger) *Pipeline {
	defaults := types.DefaultConfig().Pipeline
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaults.LookbackDays
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaults.MaxItems
	}
	if cfg.ItemDelay < 0 {
		cfg.ItemDelay = 0
	}
	return &Pipeline{
		deps:    deps,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		pause:   sleep,
	}
}

// Run executes one batch and returns its counters. It never returns an
// error: every per-item failure is logged, counted, and skipped.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) RunSummary {
	started := time.Now()
	opts = p.withDefaults(opts)
	log := p.logger.With().Str("run_id", opts.RunID).Str("trigger", opts.Trigger).Logger()
	summary := RunSummary{RunID: opts.RunID}
	defer p.metrics.ObserveRun(opts.Trigger, started)

	log.Info().Int("lookback_days", opts.LookbackDays).Bool("blogs", opts.GenerateDrafts).Msg("research engine starting")

	papers := p.deps.Source.FetchRecent(ctx, opts.LookbackDays)
	if len(papers) == 0 {
		log.Info().Msg("no new papers found")
		return summary
	}

	if len(papers) > opts.MaxItems {
		papers = papers[:opts.MaxItems]
	}
	summary.Candidates = len(papers)
	p.metrics.ObserveCandidates(len(papers))
	log.Info().Int("candidates", len(papers)).Msg("processing papers")

	for i, paper := range papers {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Int("remaining", len(papers)-i).Msg("run cancelled")
			break
		}

		p.processItem(ctx, log, paper, opts.GenerateDrafts, &summary)

		if i < len(papers)-1 {
			p.pause(ctx, p.cfg.ItemDelay)
		}
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("blog_drafts", summary.BlogDrafts).
		Int("skipped", summary.Skipped).
		Int("duplicates", summary.Duplicates).
		Int("failed", summary.Failed).
		Dur("elapsed", time.Since(started)).
		Msg("research engine complete")
	return summary
}

func (p *Pipeline) processItem(ctx context.Context, log zerolog.Logger, paper types.CandidatePaper, drafts bool, summary *RunSummary) {
	log = log.With().Str("title", observability.Truncate(paper.Title, 60)).Logger()
	log.Info().Msg("processing")

	analysis, err := p.deps.Summarizer.Summarize(ctx, paper)
	if analysis == nil {
		log.Warn().Err(err).Msg("skipped")
		summary.Skipped++
		p.metrics.ObserveLLMFailure("summarize")
		p.metrics.ObservePaper(observability.OutcomeSkipped)
		return
	}

	res := p.deps.Sink.InsertPaper(ctx, paper, *analysis)
	summary.Processed++
	switch res.Outcome {
	case store.Inserted:
		p.metrics.ObservePaper(observability.OutcomeStored)
	case store.SkippedDuplicate:
		summary.Duplicates++
		p.metrics.ObservePaper(observability.OutcomeDuplicate)
	default:
		summary.Failed++
		p.metrics.ObservePaper(observability.OutcomeFailed)
	}

	if !drafts || p.deps.Drafts == nil {
		return
	}

	body, err := p.deps.Drafts.Generate(ctx, paper, *analysis)
	if err != nil || body == "" {
		p.metrics.ObserveLLMFailure("draft")
		return
	}

	var paperID *int64
	if res.Outcome == store.Inserted {
		id := res.ID
		paperID = &id
	}
	p.deps.Sink.InsertDraft(ctx, draft.Title(paper, *analysis), body, paperID)
	summary.BlogDrafts++
	p.metrics.ObserveDraft()
}

// IngestManual summarizes and persists one caller-supplied paper. It never
// writes a blog draft. The analysis is returned even when persistence fails
// or is a duplicate; nil means summarization failed.
func (p *Pipeline) IngestManual(ctx context.Context, m ManualPaper) *types.Analysis {
	started := time.Now()
	defer p.metrics.ObserveRun(TriggerManual, started)

	journal := strings.TrimSpace(m.Journal)
	if journal == "" {
		journal = ManualJournal
	}
	paper := types.CandidatePaper{
		Title:     strings.TrimSpace(m.Title),
		Abstract:  strings.TrimSpace(m.Abstract),
		DOI:       strings.TrimSpace(m.DOI),
		Date:      strings.TrimSpace(m.Date),
		Server:    journal,
		SourceURL: strings.TrimSpace(m.URL),
	}
	log := p.logger.With().Str("trigger", TriggerManual).Str("title", observability.Truncate(paper.Title, 60)).Logger()
	log.Info().Msg("manual ingest")

	analysis, err := p.deps.Summarizer.Summarize(ctx, paper)
	if analysis == nil {
		log.Warn().Err(err).Msg("skipped")
		p.metrics.ObserveLLMFailure("summarize")
		p.metrics.ObservePaper(observability.OutcomeSkipped)
		return nil
	}

	res := p.deps.Sink.InsertPaper(ctx, paper, *analysis)
	switch res.Outcome {
	case store.Inserted:
		p.metrics.ObservePaper(observability.OutcomeStored)
	case store.SkippedDuplicate:
		p.metrics.ObservePaper(observability.OutcomeDuplicate)
	default:
		p.metrics.ObservePaper(observability.OutcomeFailed)
	}
	return analysis
}

func (p *Pipeline) withDefaults(opts RunOptions) RunOptions {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = p.cfg.LookbackDays
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = p.cfg.MaxItems
	}
	if opts.Trigger == "" {
		opts.Trigger = TriggerCLI
	}
	if p.cfg.GenerateDrafts {
		opts.GenerateDrafts = true
	}
	return opts
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
