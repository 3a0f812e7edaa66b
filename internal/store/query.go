// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	sq "github.com/Masterminds/squirrel"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// ListOptions filters ListPapers. Zero values mean no filter.
type ListOptions struct {
	Category types.Category
	Limit    uint64
}

// ListPapers returns stored papers, newest first.
func (s *Store) ListPapers(ctx context.Context, opts ListOptions) ([]types.ResearchPaper, error) {
	q := sq.Select("id", "title", "slug",
		"COALESCE(journal, '')", "COALESCE(pub_date, '')", "COALESCE(summary, '')",
		"COALESCE(consumer_relevance, '')", "COALESCE(tags, '[]')", "COALESCE(category, '')",
		"COALESCE(source_url, '')", "COALESCE(doi, '')", "featured", "created_at").
		From(papersTable).
		OrderBy("id DESC")
	if opts.Category != "" {
		q = q.Where(sq.Eq{"category": string(opts.Category)})
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.ResearchPaper
	for rows.Next() {
		var (
			p        types.ResearchPaper
			tags     string
			category string
			featured int
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Journal, &p.PubDate, &p.Summary,
			&p.ConsumerRelevance, &tags, &category, &p.SourceURL, &p.DOI, &featured, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of paper %d: %w", p.ID, err)
		}
		p.Category = types.Category(category)
		p.Featured = featured != 0
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// ListDrafts returns stored blog drafts, newest first.
func (s *Store) ListDrafts(ctx context.Context) ([]types.BlogDraft, error) {
	query, args, err := sq.Select("id", "title", "slug", "COALESCE(body, '')", "status",
		"generated_by", "related_paper_id").
		From(draftsTable).
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}
	defer rows.Close()

	var drafts []types.BlogDraft
	for rows.Next() {
		var (
			d       types.BlogDraft
			status  string
			related sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Slug, &d.Body, &status, &d.GeneratedBy, &related); err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		d.Status = types.DraftStatus(status)
		if related.Valid {
			id := related.Int64
			d.RelatedPaperID = &id
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// Stats holds row counts of the store.
type Stats struct {
	Papers     int            `json:"papers" yaml:"papers"`
	Drafts     int            `json:"drafts" yaml:"drafts"`
	ByCategory map[string]int `json:"by_category" yaml:"by_category"`
}

// Stats counts stored papers (overall and per category) and drafts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByCategory: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+papersTable).Scan(&st.Papers); err != nil {
		return Stats{}, fmt.Errorf("counting papers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+draftsTable).Scan(&st.Drafts); err != nil {
		return Stats{}, fmt.Errorf("counting drafts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(category, ''), count(*) FROM `+papersTable+` GROUP BY category`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning category count: %w", err)
		}
		st.ByCategory[cat] = n
	}
	return st, rows.Err()
}

// export is the document written by ExportYAML.
type export struct {
	Papers []types.ResearchPaper `yaml:"papers"`
	Drafts []types.BlogDraft     `yaml:"drafts"`
}

// ExportYAML writes every stored paper and draft to w as one YAML document.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	papers, err := s.ListPapers(ctx, ListOptions{})
	if err != nil {
		return err
	}
	drafts, err := s.ListDrafts(ctx)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(export{Papers: papers, Drafts: drafts}); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
