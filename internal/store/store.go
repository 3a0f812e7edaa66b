// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists enriched research papers and blog drafts in SQLite.
// Uniqueness constraints on slug and DOI are the de-duplication mechanism:
// every insert is a plain INSERT whose constraint failure is reported as a
// skipped duplicate.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/observability"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	papersTable = "research_papers"
	draftsTable = "blog_drafts"
)

// ErrNoTitle is returned for records whose title yields no usable slug.
var ErrNoTitle = errors.New("title is empty")

// Outcome classifies the result of an insert.
type Outcome int

const (
	Inserted Outcome = iota
	SkippedDuplicate
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case SkippedDuplicate:
		return "duplicate"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// InsertResult reports what happened to one insert. ID is set only when
// Outcome is Inserted; Err only when it is Failed.
type InsertResult struct {
	Outcome Outcome
	ID      int64
	Err     error
}

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig, logger zerolog.Logger) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultConfig().Store.Path
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS research_papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			journal TEXT,
			pub_date TEXT,
			summary TEXT,
			consumer_relevance TEXT,
			tags TEXT,
			category TEXT,
			source_url TEXT,
			doi TEXT,
			featured INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_research_doi ON research_papers(doi) WHERE doi IS NOT NULL AND doi <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_research_category ON research_papers(category)`,
		`CREATE INDEX IF NOT EXISTS idx_research_featured ON research_papers(featured)`,
		`CREATE TABLE IF NOT EXISTS blog_drafts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			body TEXT,
			status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'review', 'published')),
			generated_by TEXT NOT NULL DEFAULT 'ai',
			related_paper_id INTEGER REFERENCES research_papers(id),
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blog_status ON blog_drafts(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewPaper builds the row stored for a candidate and its analysis. The
// journal defaults to bioRxiv, the publication date to today, and the source
// URL to the DOI resolver URL (or the candidate's own URL when it has no DOI).
func (s *Store) NewPaper(paper types.CandidatePaper, analysis types.Analysis) types.ResearchPaper {
	journal := strings.TrimSpace(paper.Server)
	if journal == "" {
		journal = types.DefaultJournal
	}
	date := strings.TrimSpace(paper.Date)
	if date == "" {
		date = s.now().UTC().Format("2006-01-02")
	}
	doi := strings.TrimSpace(paper.DOI)
	sourceURL := types.DOIURL(doi)
	if sourceURL == "" {
		sourceURL = strings.TrimSpace(paper.SourceURL)
	}

	return types.ResearchPaper{
		Title:             paper.Title,
		Slug:              types.Slugify(paper.Title),
		Journal:           journal,
		PubDate:           date,
		Summary:           analysis.Summary,
		ConsumerRelevance: analysis.ConsumerRelevance,
		Tags:              analysis.Tags,
		Category:          analysis.Category,
		SourceURL:         sourceURL,
		DOI:               doi,
	}
}

// InsertPaper stores one processed paper. A slug or DOI collision yields
// SkippedDuplicate; nothing is ever overwritten.
func (s *Store) InsertPaper(ctx context.Context, paper types.CandidatePaper, analysis types.Analysis) InsertResult {
	row := s.NewPaper(paper, analysis)
	log := s.logger.With().Str("title", observability.Truncate(row.Title, 60)).Logger()

	res := s.insertPaper(ctx, row)
	switch res.Outcome {
	case Inserted:
		log.Info().Int64("id", res.ID).Msg("stored")
	case SkippedDuplicate:
		log.Info().Msg("skipped (duplicate)")
	default:
		log.Error().Err(res.Err).Msg("error storing paper")
	}
	return res
}

func (s *Store) insertPaper(ctx context.Context, row types.ResearchPaper) InsertResult {
	if row.Slug == "" {
		return InsertResult{Outcome: Failed, Err: ErrNoTitle}
	}

	tags, err := json.Marshal(row.Tags)
	if err != nil {
		return InsertResult{Outcome: Failed, Err: fmt.Errorf("encoding tags: %w", err)}
	}

	query, args, err := sq.Insert(papersTable).
		Columns("title", "slug", "journal", "pub_date", "summary", "consumer_relevance",
			"tags", "category", "source_url", "doi", "featured").
		Values(row.Title, row.Slug, row.Journal, row.PubDate, row.Summary, row.ConsumerRelevance,
			string(tags), string(row.Category), row.SourceURL, row.DOI, 0).
		ToSql()
	if err != nil {
		return InsertResult{Outcome: Failed, Err: fmt.Errorf("building insert: %w", err)}
	}
	return s.insert(ctx, query, args...)
}

// InsertDraft stores one blog draft with status draft and generated_by ai.
// A nil paperID leaves related_paper_id NULL.
func (s *Store) InsertDraft(ctx context.Context, title, body string, paperID *int64) InsertResult {
	log := s.logger.With().Str("title", observability.Truncate(title, 60)).Logger()

	res := s.insertDraft(ctx, title, body, paperID)
	switch res.Outcome {
	case Inserted:
		log.Info().Int64("id", res.ID).Msg("blog draft stored")
	case SkippedDuplicate:
		log.Info().Msg("blog draft skipped (duplicate)")
	default:
		log.Error().Err(res.Err).Msg("error storing blog draft")
	}
	return res
}

func (s *Store) insertDraft(ctx context.Context, title, body string, paperID *int64) InsertResult {
	slug := types.Slugify(title)
	if slug == "" {
		return InsertResult{Outcome: Failed, Err: ErrNoTitle}
	}

	var related any
	if paperID != nil {
		related = *paperID
	}

	query, args, err := sq.Insert(draftsTable).
		Columns("title", "slug", "body", "status", "generated_by", "related_paper_id").
		Values(title, slug, body, string(types.DraftStatusDraft), types.GeneratedByAI, related).
		ToSql()
	if err != nil {
		return InsertResult{Outcome: Failed, Err: fmt.Errorf("building insert: %w", err)}
	}
	return s.insert(ctx, query, args...)
}

// insert runs one statement on a connection held for this call only.
func (s *Store) insert(ctx context.Context, query string, args ...any) InsertResult {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return InsertResult{Outcome: Failed, Err: fmt.Errorf("acquiring connection: %w", err)}
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isConflict(err) {
			return InsertResult{Outcome: SkippedDuplicate}
		}
		return InsertResult{Outcome: Failed, Err: fmt.Errorf("inserting: %w", err)}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return InsertResult{Outcome: Failed, Err: fmt.Errorf("reading row id: %w", err)}
	}
	return InsertResult{Outcome: Inserted, ID: id}
}

// isConflict reports whether err is a UNIQUE or PRIMARY KEY violation.
// Other constraint failures (CHECK, FOREIGN KEY, NOT NULL) are real errors.
func isConflict(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) || serr.Code != sqlite3.ErrConstraint {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
