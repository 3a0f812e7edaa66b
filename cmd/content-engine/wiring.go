// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/content-engine/internal/draft"
	"github.com/pdiddy/content-engine/internal/feed"
	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/observability"
	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/internal/store"
	"github.com/pdiddy/content-engine/internal/summarize"
	"github.com/pdiddy/content-engine/pkg/types"
)

// engine bundles a wired pipeline with the store it owns.
type engine struct {
	pipeline *pipeline.Pipeline
	store    *store.Store
}

func (e *engine) Close() error {
	return e.store.Close()
}

// openStore opens the configured SQLite store.
func openStore(cfg types.Config) (*store.Store, error) {
	return store.Open(cfg.Store, observability.Component(logger, "store"))
}

// newEngine wires every stage from configuration. reg receives the run
// metrics; nil disables them.
func newEngine(cfg types.Config, reg prometheus.Registerer) (*engine, error) {
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = secrets.Lookup(loadedSecrets, secrets.OpenAIAPIKey)
	}
	completer, err := llm.NewOpenAIClient(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.api_key, OPENAI_API_KEY, or .secrets/%s)", err, secrets.OpenAIAPIKey)
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	var metrics *observability.Metrics
	if reg != nil {
		metrics = observability.NewMetrics(reg)
	}

	p := pipeline.New(pipeline.Deps{
		Source:     feed.New(cfg.Feed, observability.Component(logger, "feed")),
		Summarizer: summarize.New(completer, cfg.Summary, observability.Component(logger, "summarize")),
		Drafts:     draft.New(completer, cfg.Draft, observability.Component(logger, "draft")),
		Sink:       st,
	}, cfg.Pipeline, metrics, observability.Component(logger, "pipeline"))

	return &engine{pipeline: p, store: st}, nil
}
