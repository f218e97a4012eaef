package writer

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/factory"
	"Go2NetPrint/internal/model"

	_ "modernc.org/sqlite"
)

func init() {
	factory.RegisterWriter("sqlite", func(def config.WriterDef) (model.Writer, error) {
		w, err := NewSQLiteWriter(def.SQLite)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

// SQLiteSchema creates the tables shared by the SQLite writer and querier.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS fingerprints (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fingerprints_name ON fingerprints (name, created_at);
CREATE TABLE IF NOT EXISTS fingerprint_markers (
    fingerprint_id TEXT    NOT NULL REFERENCES fingerprints (id),
    position       INTEGER NOT NULL,
    marker         TEXT    NOT NULL,
    value          TEXT    NOT NULL,
    PRIMARY KEY (fingerprint_id, position)
);
CREATE TABLE IF NOT EXISTS fingerprint_summary (
    fingerprint_id TEXT    NOT NULL REFERENCES fingerprints (id),
    position       INTEGER NOT NULL,
    marker         TEXT    NOT NULL,
    value          TEXT    NOT NULL,
    PRIMARY KEY (fingerprint_id, position)
);
`

// sqliteTimeLayout keeps created_at lexically sortable.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteWriter stores fingerprints in a local SQLite database.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens (or creates) the database and ensures the schema exists.
func NewSQLiteWriter(cfg config.SQLiteConfig) (*SQLiteWriter, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite writer requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	log.Printf("Opened SQLite fingerprint store at %s", cfg.Path)
	return &SQLiteWriter{db: db}, nil
}

// Type returns the writer type.
func (w *SQLiteWriter) Type() string {
	return "sqlite"
}

// Write stores the fingerprint, its markers and its Summary Table in one transaction.
func (w *SQLiteWriter) Write(fp *model.Fingerprint) error {
	ctx := context.Background()
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := fp.ID.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fingerprints (id, name, created_at) VALUES (?, ?, ?)`,
		id, fp.Name, fp.CreatedAt.UTC().Format(sqliteTimeLayout)); err != nil {
		return fmt.Errorf("failed to insert fingerprint: %w", err)
	}

	markerStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fingerprint_markers (fingerprint_id, position, marker, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare marker insert: %w", err)
	}
	defer markerStmt.Close()
	for i, m := range fp.Markers {
		if _, err := markerStmt.ExecContext(ctx, id, i, m.Kind.String(), m.Text()); err != nil {
			return fmt.Errorf("failed to insert marker %d: %w", i, err)
		}
	}

	summaryStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fingerprint_summary (fingerprint_id, position, marker, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare summary insert: %w", err)
	}
	defer summaryStmt.Close()
	for i, row := range fp.Summary {
		if _, err := summaryStmt.ExecContext(ctx, id, i, row.Kind.String(), row.Value); err != nil {
			return fmt.Errorf("failed to insert summary row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fingerprint: %w", err)
	}
	log.Printf("Stored fingerprint '%s' (%s) in SQLite", fp.Name, id)
	return nil
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
