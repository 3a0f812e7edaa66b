// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft writes long-form blog posts about summarized papers.
package draft

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/observability"
	"github.com/pdiddy/content-engine/pkg/types"
)

// titlePrefix opens the fallback title of a draft whose analysis has no hook.
const titlePrefix = "New Research: "

var blogPromptTmpl = template.Must(template.New("blog").Parse(`You are a science writer for Deoxy.ai. Write a blog post (600-800 words) about this research finding.

The audience is health-conscious consumers interested in DNA, beauty, and longevity, not scientists. Be informative, not sensational. Link the science to practical implications.

Title: {{.Paper.Title}}
Summary: {{.Analysis.Summary}}
Consumer Relevance: {{.Analysis.ConsumerRelevance}}
Category: {{.Analysis.Category}}

Write in markdown format with:
- A compelling headline (not the paper title)
- An engaging opening hook
- The key finding explained simply
- Why it matters for the reader
- What to watch for next
- A brief "The Science" section for those who want more detail

Do NOT include any call-to-action or promotional content.`))

// RenderPrompt builds the blog prompt for a paper and its analysis.
func RenderPrompt(paper types.CandidatePaper, analysis types.Analysis) (string, error) {
	var buf bytes.Buffer
	err := blogPromptTmpl.Execute(&buf, struct {
		Paper    types.CandidatePaper
		Analysis types.Analysis
	}{paper, analysis})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Title returns the draft title: the analysis hook, or a templated title
// built from the paper title when the hook is empty.
func Title(paper types.CandidatePaper, analysis types.Analysis) string {
	if hook := strings.TrimSpace(analysis.BlogHook); hook != "" {
		return hook
	}
	return titlePrefix + paper.Title
}

// Generator requests free-form markdown posts.
type Generator struct {
	llm    llm.Completer
	cfg    types.CompletionConfig
	logger zerolog.Logger
}

// New creates a Generator.
func New(completer llm.Completer, cfg types.CompletionConfig, logger zerolog.Logger) *Generator {
	return &Generator{llm: completer, cfg: cfg, logger: logger}
}

// Generate returns the markdown body of a post about paper. Failures are
// logged and returned; the caller skips the draft.
func (g *Generator) Generate(ctx context.Context, paper types.CandidatePaper, analysis types.Analysis) (string, error) {
	log := g.logger.With().Str("title", observability.Truncate(paper.Title, 60)).Logger()

	prompt, err := RenderPrompt(paper, analysis)
	if err != nil {
		log.Error().Err(err).Msg("rendering blog prompt")
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	body, err := g.llm.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		log.Error().Err(err).Msg("blog generation failed")
		return "", fmt.Errorf("generating blog draft: %w", err)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		log.Error().Msg("blog generation returned an empty body")
		return "", llm.ErrEmptyResponse
	}
	return body, nil
}
