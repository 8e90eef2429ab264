// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists extracted image records in a SQLite index under
// the resource cache and serves queries over them.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/slide-engine/pkg/types"
)

const dbFile = "catalog.db"

// Store manages the image catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Record is one persisted catalog row.
type Record struct {
	ID string `json:"id" yaml:"id"`
	types.CatalogEntry
}

// NewStore opens or creates the catalog database at indexDir/catalog.db,
// creating the schema (including the FTS index over page context) when absent.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS images (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL,
			page INTEGER NOT NULL,
			width INTEGER,
			height INTEGER,
			context TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_images_page ON images(page)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='images_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE images_fts USING fts5(context, content=images, content_rowid=rowid)`,
			`CREATE TRIGGER images_ai AFTER INSERT ON images BEGIN
				INSERT INTO images_fts(rowid, context) VALUES (new.rowid, new.context);
			END`,
			`CREATE TRIGGER images_ad AFTER DELETE ON images BEGIN
				INSERT INTO images_fts(images_fts, rowid, context) VALUES('delete', old.rowid, old.context);
			END`,
			`CREATE TRIGGER images_au AFTER UPDATE ON images BEGIN
				INSERT INTO images_fts(images_fts, rowid, context) VALUES('delete', old.rowid, old.context);
				INSERT INTO images_fts(rowid, context) VALUES (new.rowid, new.context);
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

// Replace clears the index and inserts the current run's entries in id order,
// inside a single transaction.
func (s *Store) Replace(ctx context.Context, entries map[string]types.CatalogEntry) error {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM images`); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO images (id, path, page, width, height, context) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		e := entries[id]
		if _, err := stmt.ExecContext(ctx, id, e.Path, e.Page, e.Width, e.Height, e.Context); err != nil {
			return fmt.Errorf("inserting %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// List returns all records ordered by id, which equals extraction order.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, page, width, height, context FROM images ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Search runs an FTS query over the page-context excerpts and returns
// matching records ordered by relevance.
func (s *Store) Search(ctx context.Context, query string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.path, i.page, i.width, i.height, i.context
		 FROM images_fts
		 JOIN images i ON i.rowid = images_fts.rowid
		 WHERE images_fts MATCH ?
		 ORDER BY rank`, query)
	if err != nil {
		return nil, fmt.Errorf("searching images: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Path, &r.Page, &r.Width, &r.Height, &r.Context); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
