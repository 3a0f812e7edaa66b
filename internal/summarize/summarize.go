// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns a candidate paper into a structured analysis: a
// consumer-facing summary, a relevance note, a category, tags, and a blog
// hook. The response is requested in JSON mode and validated before use.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/observability"
	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrInvalidAnalysis wraps every parse or validation failure of a response.
var ErrInvalidAnalysis = errors.New("invalid analysis")

var summaryPromptTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"default": orDefault,
}).Parse(`You are a science writer for Deoxy.ai, a directory at the intersection of DNA, beauty, health, and longevity.

Summarize this research paper for a consumer audience. Be specific about findings but make it accessible.

Title: {{.Title}}
Authors: {{default .Authors "N/A"}}
Abstract: {{default .Abstract "N/A"}}

Respond in JSON format:
{
  "summary": "2-3 sentence plain-English summary of the key finding",
  "consumer_relevance": "1-2 sentences on why this matters for someone interested in DNA-based beauty, health, or longevity",
  "category": "one of: {{.Categories}}",
  "tags": ["3-5 relevant tags"],
  "blog_hook": "A compelling 1-sentence hook that could open a blog post about this research"
}`))

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

type promptData struct {
	types.CandidatePaper
	Categories string
}

// RenderPrompt builds the summarization prompt for one paper.
func RenderPrompt(paper types.CandidatePaper) (string, error) {
	names := make([]string, len(types.Categories))
	for i, c := range types.Categories {
		names[i] = string(c)
	}

	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, promptData{
		CandidatePaper: paper,
		Categories:     strings.Join(names, ", "),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Summarizer requests and validates analyses.
type Summarizer struct {
	llm      llm.Completer
	cfg      types.CompletionConfig
	validate *validator.Validate
	logger   zerolog.Logger
}

// New creates a Summarizer that sends requests through completer.
func New(completer llm.Completer, cfg types.CompletionConfig, logger zerolog.Logger) *Summarizer {
	return &Summarizer{
		llm:      completer,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Summarize returns the validated analysis for paper. On any failure
// (transport, empty response, bad JSON, failed validation) it logs the reason
// and returns a nil analysis with the error; callers skip the paper.
func (s *Summarizer) Summarize(ctx context.Context, paper types.CandidatePaper) (*types.Analysis, error) {
	log := s.logger.With().Str("title", observability.Truncate(paper.Title, 60)).Logger()

	prompt, err := RenderPrompt(paper)
	if err != nil {
		log.Error().Err(err).Msg("rendering summary prompt")
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := s.llm.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		log.Error().Err(err).Msg("summarization failed")
		return nil, fmt.Errorf("summarizing: %w", err)
	}

	analysis, err := s.Parse(raw)
	if err != nil {
		log.Error().Err(err).Msg("summarization returned an unusable analysis")
		return nil, err
	}

	log.Debug().Str("category", string(analysis.Category)).Strs("tags", analysis.Tags).Msg("paper summarized")
	return analysis, nil
}

// Parse decodes a JSON response and validates it. Every failure wraps
// ErrInvalidAnalysis.
func (s *Summarizer) Parse(raw string) (*types.Analysis, error) {
	var a types.Analysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &a); err != nil {
		return nil, fmt.Errorf("%w: decoding JSON: %v", ErrInvalidAnalysis, err)
	}
	normalize(&a)
	if err := s.Validate(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the required fields and the category enum.
func (s *Summarizer) Validate(a *types.Analysis) error {
	if err := s.validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidAnalysis, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	// The oneof tag and types.Categories must agree.
	if !a.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidAnalysis, a.Category)
	}
	return nil
}

// normalize trims whitespace so blank strings fail the required checks.
func normalize(a *types.Analysis) {
	a.Summary = strings.TrimSpace(a.Summary)
	a.ConsumerRelevance = strings.TrimSpace(a.ConsumerRelevance)
	a.Category = types.Category(strings.TrimSpace(string(a.Category)))
	a.BlogHook = strings.TrimSpace(a.BlogHook)
	for i, t := range a.Tags {
		a.Tags[i] = strings.TrimSpace(t)
	}
}
