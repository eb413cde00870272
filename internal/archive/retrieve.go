// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/pkg/types"
)

// QueryOptions holds parameters for archive queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over titles and quotes.
	Query string

	// Section filters by report section.
	Section string

	// Source filters by evidence source kind.
	Source string

	// Tag filters items carrying the tag.
	Tag string

	// Question filters items supporting the exact question string.
	Question string

	// RunID filters by pipeline run.
	RunID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Section == "" && q.Source == "" &&
		q.Tag == "" && q.Question == "" && q.RunID == ""
}

// QueryResult is an archived evidence item with its run id.
type QueryResult struct {
	types.EvidenceItem
	RunID string `json:"run_id" yaml:"run_id"`
}

// Retrieve queries the archive with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries sort by section then id.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT i.id, i.run_id, i.source, i.title, i.url, i.quote, i.year,
				i.tags, i.questions, i.section
			FROM items_fts
			JOIN items i ON i.rowid = items_fts.rowid
			WHERE items_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT i.id, i.run_id, i.source, i.title, i.url, i.quote, i.year,
				i.tags, i.questions, i.section
			FROM items i
			WHERE 1=1`)
	}

	if opts.Section != "" {
		qb.WriteString(` AND i.section = ?`)
		args = append(args, opts.Section)
	}
	if opts.Source != "" {
		qb.WriteString(` AND i.source = ?`)
		args = append(args, opts.Source)
	}
	if opts.RunID != "" {
		qb.WriteString(` AND i.run_id = ?`)
		args = append(args, opts.RunID)
	}
	if opts.Tag != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(i.tags) WHERE value = ?)`)
		args = append(args, opts.Tag)
	}
	if opts.Question != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(i.questions) WHERE value = ?)`)
		args = append(args, opts.Question)
	}

	if useFTS {
		qb.WriteString(` ORDER BY items_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY i.section, i.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr        QueryResult
			source    string
			tagsJSON  sql.NullString
			questJSON sql.NullString
		)
		if err := rows.Scan(&qr.ID, &qr.RunID, &source, &qr.Title, &qr.URL, &qr.Quote,
			&qr.Year, &tagsJSON, &questJSON, &qr.Section); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		qr.Source = types.EvidenceSource(source)
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &qr.Tags); err != nil {
				return nil, fmt.Errorf("decoding tags for %s: %w", qr.ID, err)
			}
		}
		if questJSON.Valid && questJSON.String != "" {
			if err := json.Unmarshal([]byte(questJSON.String), &qr.SupportedQuestions); err != nil {
				return nil, fmt.Errorf("decoding questions for %s: %w", qr.ID, err)
			}
		}
		results = append(results, qr)
	}
	return results, rows.Err()
}

// CoverageRow is one archived (section, question) coverage entry.
type CoverageRow struct {
	Section     string   `json:"section" yaml:"section"`
	Question    string   `json:"question" yaml:"question"`
	EvidenceIDs []string `json:"evidence_ids" yaml:"evidence_ids"`
}

// Coverage returns the archived coverage rows for a run, in insertion
// order (plan order).
func (s *Store) Coverage(ctx context.Context, runID string) ([]CoverageRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT section, question, evidence_ids FROM question_coverage WHERE run_id = ? ORDER BY rowid`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("querying coverage: %w", err)
	}
	defer rows.Close()

	var out []CoverageRow
	for rows.Next() {
		var (
			row     CoverageRow
			idsJSON sql.NullString
		)
		if err := rows.Scan(&row.Section, &row.Question, &idsJSON); err != nil {
			return nil, fmt.Errorf("scanning coverage row: %w", err)
		}
		if idsJSON.Valid && idsJSON.String != "" && idsJSON.String != "null" {
			if err := json.Unmarshal([]byte(idsJSON.String), &row.EvidenceIDs); err != nil {
				return nil, fmt.Errorf("decoding coverage ids: %w", err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
