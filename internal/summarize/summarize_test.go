// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/pkg/types"
)

// mockCompleter records requests and replays a fixed response.
type mockCompleter struct {
	response string
	err      error
	requests []llm.Request
}

func (m *mockCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

const validResponse = `{
  "summary": "Researchers found a gene variant linked to slower skin aging.",
  "consumer_relevance": "It may explain why some people wrinkle later.",
  "category": "skin",
  "tags": ["skin aging", "genetics", "collagen"],
  "blog_hook": "Your genes may be keeping your skin young."
}`

var samplePaper = types.CandidatePaper{
	Title:    "A COL1A1 variant and dermal aging",
	Authors:  "Smith, J.; Doe, A.",
	Abstract: "We report a variant associated with collagen retention.",
	DOI:      "10.1101/2025.01.01.000001",
}

func newSummarizer(m *mockCompleter) *Summarizer {
	return New(m, types.CompletionConfig{Temperature: 0.7, MaxTokens: 800}, zerolog.Nop())
}

func TestSummarize_Valid(t *testing.T) {
	m := &mockCompleter{response: validResponse}
	s := newSummarizer(m)

	a, err := s.Summarize(context.Background(), samplePaper)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, types.CategorySkin, a.Category)
	assert.Equal(t, []string{"skin aging", "genetics", "collagen"}, a.Tags)
	assert.Equal(t, "Your genes may be keeping your skin young.", a.BlogHook)

	require.Len(t, m.requests, 1)
	req := m.requests[0]
	assert.True(t, req.JSON)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 800, req.MaxTokens)
	assert.Contains(t, req.Prompt, "Title: A COL1A1 variant and dermal aging")
	assert.Contains(t, req.Prompt, "Authors: Smith, J.; Doe, A.")
	assert.Contains(t, req.Prompt, `"consumer_relevance"`)
}

func TestSummarize_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		wantIs   error
	}{
		{name: "transport error", err: errors.New("connection reset")},
		{name: "empty response", err: llm.ErrEmptyResponse, wantIs: llm.ErrEmptyResponse},
		{name: "not json", response: "Sure! Here is the summary.", wantIs: ErrInvalidAnalysis},
		{name: "json array", response: `[{"summary":"x"}]`, wantIs: ErrInvalidAnalysis},
		{
			name:     "category outside enum",
			response: `{"summary":"s","consumer_relevance":"c","category":"haircare","tags":["a"]}`,
			wantIs:   ErrInvalidAnalysis,
		},
		{
			name:     "category in wrong case",
			response: `{"summary":"s","consumer_relevance":"c","category":"Skin","tags":["a"]}`,
			wantIs:   ErrInvalidAnalysis,
		},
		{
			name:     "missing summary",
			response: `{"consumer_relevance":"c","category":"skin","tags":["a"]}`,
			wantIs:   ErrInvalidAnalysis,
		},
		{
			name:     "blank consumer relevance",
			response: `{"summary":"s","consumer_relevance":"   ","category":"skin","tags":["a"]}`,
			wantIs:   ErrInvalidAnalysis,
		},
		{
			name:     "missing tags",
			response: `{"summary":"s","consumer_relevance":"c","category":"skin"}`,
			wantIs:   ErrInvalidAnalysis,
		},
		{
			name:     "empty tag",
			response: `{"summary":"s","consumer_relevance":"c","category":"skin","tags":["a",""]}`,
			wantIs:   ErrInvalidAnalysis,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSummarizer(&mockCompleter{response: tt.response, err: tt.err})

			a, err := s.Summarize(context.Background(), samplePaper)
			assert.Nil(t, a)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestParse_TrimsFields(t *testing.T) {
	s := newSummarizer(&mockCompleter{})

	a, err := s.Parse(`{"summary":" s ","consumer_relevance":"c","category":" precision-wellness ","tags":[" dna "]}`)
	require.NoError(t, err)
	assert.Equal(t, types.CategoryPrecisionWellness, a.Category)
	assert.Equal(t, "s", a.Summary)
	assert.Equal(t, []string{"dna"}, a.Tags)
	assert.Empty(t, a.BlogHook)
}

func TestParse_EveryCategoryAccepted(t *testing.T) {
	s := newSummarizer(&mockCompleter{})
	for _, c := range types.Categories {
		_, err := s.Parse(`{"summary":"s","consumer_relevance":"c","category":"` + string(c) + `","tags":["t"]}`)
		assert.NoError(t, err, c)
	}
}

func TestRenderPrompt_MissingFields(t *testing.T) {
	prompt, err := RenderPrompt(types.CandidatePaper{Title: "Only a title"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Authors: N/A")
	assert.Contains(t, prompt, "Abstract: N/A")
	assert.Contains(t, prompt, "one of: skin, beauty, nutrition, longevity, precision-wellness")
}
