package query

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Go2NetPrint/internal/config"

	_ "modernc.org/sqlite"
)

// sqliteQuerier implements the Querier interface for the SQLite store.
type sqliteQuerier struct {
	db *sql.DB
}

// NewSQLiteQuerier opens the database written by the sqlite writer.
func NewSQLiteQuerier(cfg config.SQLiteConfig) (Querier, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &sqliteQuerier{db: db}, nil
}

func (q *sqliteQuerier) Names(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT DISTINCT name FROM fingerprints ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (q *sqliteQuerier) Summary(ctx context.Context, name string) (*Summary, error) {
	summary := &Summary{Name: name}
	var created string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM fingerprints WHERE name = ? ORDER BY created_at DESC LIMIT 1`,
		name).Scan(&summary.ID, &created)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up fingerprint: %w", err)
	}
	if summary.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT marker, value FROM fingerprint_summary WHERE fingerprint_id = ? ORDER BY position`,
		summary.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, value string
		if err := rows.Scan(&code, &value); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		row, err := parseRow(code, value)
		if err != nil {
			return nil, err
		}
		summary.Rows = append(summary.Rows, row)
	}
	return summary, rows.Err()
}

func (q *sqliteQuerier) Close() error {
	return q.db.Close()
}
