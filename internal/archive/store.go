// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists finished pipeline runs — evidence items,
// per-question coverage, and run metadata — in a SQLite database with
// an FTS5 index over titles and quotes for later retrieval.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deep-research/internal/coverage"
	"github.com/pdiddy/deep-research/internal/evidence"
	"github.com/pdiddy/deep-research/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "research.db"
)

// Store manages the archive SQLite database.
type Store struct {
	db         *sql.DB
	archiveDir string
	maxResults int
}

// RunRecord is the archived metadata for one pipeline run.
type RunRecord struct {
	ID        string `json:"id" yaml:"id"`
	Disease   string `json:"disease" yaml:"disease"`
	State     string `json:"state" yaml:"state"`
	Rounds    int    `json:"rounds" yaml:"rounds"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// Open opens or creates the archive database at
// archiveDir/index/research.db, creating the schema if needed.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ArchiveDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, archiveDir: cfg.ArchiveDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			disease TEXT,
			state TEXT,
			rounds INTEGER,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source TEXT,
			title TEXT,
			url TEXT,
			quote TEXT,
			year INTEGER,
			tags TEXT,
			questions TEXT,
			section TEXT,
			UNIQUE(run_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_run_id ON items(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_section ON items(section)`,
		`CREATE TABLE IF NOT EXISTS question_coverage (
			run_id TEXT NOT NULL REFERENCES runs(id),
			section TEXT NOT NULL,
			question TEXT NOT NULL,
			evidence_ids TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_coverage_run_id ON question_coverage(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='items_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE items_fts USING fts5(title, quote, content=items, content_rowid=rowid)`,
			`CREATE TRIGGER items_ai AFTER INSERT ON items BEGIN
				INSERT INTO items_fts(rowid, title, quote) VALUES (new.rowid, new.title, new.quote);
			END`,
			`CREATE TRIGGER items_ad AFTER DELETE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, title, quote) VALUES('delete', old.rowid, old.title, old.quote);
			END`,
			`CREATE TRIGGER items_au AFTER UPDATE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, title, quote) VALUES('delete', old.rowid, old.title, old.quote);
				INSERT INTO items_fts(rowid, title, quote) VALUES (new.rowid, new.title, new.quote);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun archives a finished run: metadata, every store item, and the
// full coverage map, in one transaction.
func (s *Store) SaveRun(ctx context.Context, run RunRecord, store *evidence.Store, cov coverage.Coverage) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, disease, state, rounds, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Disease, run.State, run.Rounds, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	for _, item := range store.Items {
		tags, err := json.Marshal(item.Tags)
		if err != nil {
			return fmt.Errorf("marshaling tags for %s: %w", item.ID, err)
		}
		questions, err := json.Marshal(item.SupportedQuestions)
		if err != nil {
			return fmt.Errorf("marshaling questions for %s: %w", item.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, run_id, source, title, url, quote, year, tags, questions, section)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, run.ID, string(item.Source), item.Title, item.URL, item.Quote,
			item.Year, string(tags), string(questions), item.Section,
		); err != nil {
			return fmt.Errorf("inserting item %s: %w", item.ID, err)
		}
	}

	for _, section := range cov.Sections {
		sc := cov.BySection[section]
		for _, question := range sc.Questions {
			ids, err := json.Marshal(sc.Supporting[question])
			if err != nil {
				return fmt.Errorf("marshaling coverage ids: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO question_coverage (run_id, section, question, evidence_ids) VALUES (?, ?, ?, ?)`,
				run.ID, section, question, string(ids),
			); err != nil {
				return fmt.Errorf("inserting coverage row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, disease, state, rounds, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Disease, &r.State, &r.Rounds, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
