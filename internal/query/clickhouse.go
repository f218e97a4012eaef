package query

import (
	"context"
	"fmt"

	"Go2NetPrint/internal/config"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (clickhouse.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

func (q *clickhouseQuerier) Names(ctx context.Context) ([]string, error) {
	rows, err := q.conn.Query(ctx, `SELECT DISTINCT Name FROM fingerprint_summary ORDER BY Name`)
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

// Summary picks the fingerprint with the latest timestamp for name and
// returns its rows in table order.
func (q *clickhouseQuerier) Summary(ctx context.Context, name string) (*Summary, error) {
	const stmt = `
		SELECT FingerprintID, Timestamp, Marker, Value
		FROM fingerprint_summary
		WHERE FingerprintID = (
			SELECT argMax(FingerprintID, Timestamp)
			FROM fingerprint_summary
			WHERE Name = ?
		)
		ORDER BY Position
	`
	rows, err := q.conn.Query(ctx, stmt, name)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	summary := &Summary{Name: name}
	for rows.Next() {
		var code, value string
		if err := rows.Scan(&summary.ID, &summary.CreatedAt, &code, &value); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		row, err := parseRow(code, value)
		if err != nil {
			return nil, err
		}
		summary.Rows = append(summary.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summary.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return summary, nil
}

func (q *clickhouseQuerier) Close() error {
	return q.conn.Close()
}
