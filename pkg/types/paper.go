// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the content-engine pipeline:
// feed candidates, LLM analyses, stored research papers, blog drafts, and the
// configuration of every stage.
package types

import "strings"

// DefaultJournal is the journal recorded for feed papers that carry no server name.
const DefaultJournal = "bioRxiv"

// CandidatePaper is a preprint returned by the paper feed that has not been
// enriched yet. The JSON tags follow the bioRxiv details API so feed records
// decode straight into this struct.
type CandidatePaper struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the free-text author list as returned by the feed
	// (e.g. "Smith, J.; Doe, A.").
	Authors string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// DOI is the natural identifier used for de-duplication.
	DOI string `json:"doi" yaml:"doi"`

	// Date is the publication date in YYYY-MM-DD format.
	Date string `json:"date" yaml:"date"`

	// Server is the originating preprint server or journal name.
	Server string `json:"server" yaml:"server"`

	// SourceURL is used as the stored source URL when DOI is empty.
	// Feed records never set it.
	SourceURL string `json:"-" yaml:"source_url,omitempty"`
}

// Text returns the title and abstract joined for relevance matching.
func (p CandidatePaper) Text() string {
	return p.Title + " " + p.Abstract
}

// ResearchPaper is a processed paper as stored in the research_papers table.
type ResearchPaper struct {
	ID                int64    `json:"id" yaml:"id"`
	Title             string   `json:"title" yaml:"title"`
	Slug              string   `json:"slug" yaml:"slug"`
	Journal           string   `json:"journal" yaml:"journal"`
	PubDate           string   `json:"pub_date" yaml:"pub_date"`
	Summary           string   `json:"summary" yaml:"summary"`
	ConsumerRelevance string   `json:"consumer_relevance" yaml:"consumer_relevance"`
	Tags              []string `json:"tags" yaml:"tags"`
	Category          Category `json:"category" yaml:"category"`
	SourceURL         string   `json:"source_url" yaml:"source_url"`
	DOI               string   `json:"doi" yaml:"doi"`
	Featured          bool     `json:"featured" yaml:"featured"`
	CreatedAt         string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// DOIURL returns the resolver URL for a DOI, or "" when doi is blank.
func DOIURL(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	return "https://doi.org/" + doi
}
