// Package store persists aggregated terms, inferred relationships and
// relationship-sync state in a single SQLite database, so interrupted
// syncs resume after a restart.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

const dbFileName = "termbase.db"

// Store wraps the SQLite database. One file holds terms and relationships
// together; relationship queries join on the term key, so splitting files
// would only complicate backup and restore.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the term database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	dbPath := filepath.Join(dir, dbFileName)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one writer; readers scale, writers do not.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS terms (
	term          TEXT NOT NULL,
	language      TEXT NOT NULL,
	class         TEXT NOT NULL,
	display_text  TEXT NOT NULL,
	frequency     INTEGER NOT NULL,
	pages         TEXT NOT NULL,
	excerpts      TEXT NOT NULL,
	definitions   TEXT NOT NULL,
	confidence    REAL NOT NULL,
	sync_state    TEXT NOT NULL,
	sync_attempts INTEGER NOT NULL DEFAULT 0,
	sync_error    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL,
	PRIMARY KEY (term, language, class)
);

CREATE TABLE IF NOT EXISTS relationships (
	from_term  TEXT NOT NULL,
	from_lang  TEXT NOT NULL,
	from_class TEXT NOT NULL,
	to_term    TEXT NOT NULL,
	to_lang    TEXT NOT NULL,
	to_class   TEXT NOT NULL,
	kind       TEXT NOT NULL,
	strength   REAL NOT NULL,
	method     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (from_term, from_lang, from_class, to_term, to_lang, to_class, kind)
);

CREATE INDEX IF NOT EXISTS idx_terms_sync_state ON terms (sync_state);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveTerm inserts or replaces one aggregated term row.
func (s *Store) SaveTerm(ctx context.Context, t model.AggregatedTerm) error {
	pages, err := json.Marshal(t.Pages)
	if err != nil {
		return fmt.Errorf("marshal pages: %w", err)
	}
	excerpts, err := json.Marshal(t.Excerpts)
	if err != nil {
		return fmt.Errorf("marshal excerpts: %w", err)
	}
	defs, err := json.Marshal(t.Definitions)
	if err != nil {
		return fmt.Errorf("marshal definitions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO terms (term, language, class, display_text, frequency, pages,
	excerpts, definitions, confidence, sync_state, sync_attempts, sync_error,
	created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (term, language, class) DO UPDATE SET
	display_text  = excluded.display_text,
	frequency     = excluded.frequency,
	pages         = excluded.pages,
	excerpts      = excluded.excerpts,
	definitions   = excluded.definitions,
	confidence    = excluded.confidence,
	sync_state    = excluded.sync_state,
	sync_attempts = excluded.sync_attempts,
	sync_error    = excluded.sync_error,
	updated_at    = excluded.updated_at`,
		t.Key.Text, t.Key.Language, string(t.Key.Class), t.DisplayText,
		t.Frequency, string(pages), string(excerpts), string(defs),
		t.Confidence, string(t.SyncState), t.SyncAttempts, t.SyncError,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save term %q: %w", t.DisplayText, err)
	}
	return nil
}

// SaveTerms persists a batch of terms in one transaction.
func (s *Store) SaveTerms(ctx context.Context, terms []model.AggregatedTerm) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, t := range terms {
		if err := s.saveTermTx(ctx, tx, t); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) saveTermTx(ctx context.Context, tx *sql.Tx, t model.AggregatedTerm) error {
	pages, _ := json.Marshal(t.Pages)
	excerpts, _ := json.Marshal(t.Excerpts)
	defs, _ := json.Marshal(t.Definitions)
	_, err := tx.ExecContext(ctx, `
INSERT INTO terms (term, language, class, display_text, frequency, pages,
	excerpts, definitions, confidence, sync_state, sync_attempts, sync_error,
	created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (term, language, class) DO UPDATE SET
	display_text  = excluded.display_text,
	frequency     = excluded.frequency,
	pages         = excluded.pages,
	excerpts      = excluded.excerpts,
	definitions   = excluded.definitions,
	confidence    = excluded.confidence,
	sync_state    = excluded.sync_state,
	sync_attempts = excluded.sync_attempts,
	sync_error    = excluded.sync_error,
	updated_at    = excluded.updated_at`,
		t.Key.Text, t.Key.Language, string(t.Key.Class), t.DisplayText,
		t.Frequency, string(pages), string(excerpts), string(defs),
		t.Confidence, string(t.SyncState), t.SyncAttempts, t.SyncError,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save term %q: %w", t.DisplayText, err)
	}
	return nil
}

// LoadTerms returns all persisted terms ordered by frequency.
func (s *Store) LoadTerms(ctx context.Context) ([]model.AggregatedTerm, error) {
	return s.queryTerms(ctx, `SELECT term, language, class, display_text,
	frequency, pages, excerpts, definitions, confidence, sync_state,
	sync_attempts, sync_error, created_at, updated_at
FROM terms ORDER BY frequency DESC, term ASC`)
}

// TermsBySyncState returns terms in any of the given sync states.
func (s *Store) TermsBySyncState(ctx context.Context, states ...model.SyncState) ([]model.AggregatedTerm, error) {
	if len(states) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(states)), ",")
	args := make([]any, len(states))
	for i, st := range states {
		args[i] = string(st)
	}
	return s.queryTerms(ctx, `SELECT term, language, class, display_text,
	frequency, pages, excerpts, definitions, confidence, sync_state,
	sync_attempts, sync_error, created_at, updated_at
FROM terms WHERE sync_state IN (`+placeholders+`) ORDER BY updated_at ASC`, args...)
}

func (s *Store) queryTerms(ctx context.Context, query string, args ...any) ([]model.AggregatedTerm, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.AggregatedTerm
	for rows.Next() {
		var t model.AggregatedTerm
		var class, syncState string
		var pages, excerpts, defs string
		if err := rows.Scan(&t.Key.Text, &t.Key.Language, &class, &t.DisplayText,
			&t.Frequency, &pages, &excerpts, &defs, &t.Confidence, &syncState,
			&t.SyncAttempts, &t.SyncError, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		t.Key.Class = model.ProvenanceClass(class)
		t.SyncState = model.SyncState(syncState)
		if err := json.Unmarshal([]byte(pages), &t.Pages); err != nil {
			return nil, fmt.Errorf("decode pages for %q: %w", t.DisplayText, err)
		}
		if err := json.Unmarshal([]byte(excerpts), &t.Excerpts); err != nil {
			return nil, fmt.Errorf("decode excerpts for %q: %w", t.DisplayText, err)
		}
		if err := json.Unmarshal([]byte(defs), &t.Definitions); err != nil {
			return nil, fmt.Errorf("decode definitions for %q: %w", t.DisplayText, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateSyncState records sync progress for one term.
func (s *Store) UpdateSyncState(ctx context.Context, key model.TermKey, state model.SyncState, attempts int, syncErr string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE terms SET sync_state = ?, sync_attempts = ?, sync_error = ?, updated_at = ?
WHERE term = ? AND language = ? AND class = ?`,
		string(state), attempts, syncErr, time.Now().UTC(),
		key.Text, key.Language, string(key.Class))
	if err != nil {
		return fmt.Errorf("update sync state for %q: %w", key.Text, err)
	}
	return nil
}

// SaveRelationship inserts one edge; it reports false when the edge
// already existed, which makes repeated synthesis runs idempotent.
func (s *Store) SaveRelationship(ctx context.Context, r model.Relationship) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO relationships (from_term, from_lang, from_class,
	to_term, to_lang, to_class, kind, strength, method, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.From.Text, r.From.Language, string(r.From.Class),
		r.To.Text, r.To.Language, string(r.To.Class),
		string(r.Kind), r.Strength, string(r.Method), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("save relationship %s -> %s: %w", r.From.Text, r.To.Text, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// LoadRelationships returns all persisted edges.
func (s *Store) LoadRelationships(ctx context.Context) ([]model.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_term, from_lang, from_class,
	to_term, to_lang, to_class, kind, strength, method
FROM relationships ORDER BY from_term, to_term, kind`)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Relationship
	for rows.Next() {
		var r model.Relationship
		var fromClass, toClass, kind, method string
		if err := rows.Scan(&r.From.Text, &r.From.Language, &fromClass,
			&r.To.Text, &r.To.Language, &toClass, &kind, &r.Strength, &method); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		r.From.Class = model.ProvenanceClass(fromClass)
		r.To.Class = model.ProvenanceClass(toClass)
		r.Kind = model.RelationshipKind(kind)
		r.Method = model.DetectionMethod(method)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PurgeTerm is the explicit administrative deletion path: it removes the
// term row and every edge touching it.
func (s *Store) PurgeTerm(ctx context.Context, key model.TermKey) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM terms WHERE term = ? AND language = ? AND class = ?`,
		key.Text, key.Language, string(key.Class)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("purge term %q: %w", key.Text, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships
WHERE (from_term = ? AND from_lang = ? AND from_class = ?)
   OR (to_term = ? AND to_lang = ? AND to_class = ?)`,
		key.Text, key.Language, string(key.Class),
		key.Text, key.Language, string(key.Class)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("purge relationships for %q: %w", key.Text, err)
	}
	return tx.Commit()
}
