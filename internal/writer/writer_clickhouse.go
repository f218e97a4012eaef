package writer

import (
	"context"
	"fmt"
	"log"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/factory"
	"Go2NetPrint/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		w, err := NewClickHouseWriter(def.ClickHouse)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

const createMarkersTableStatement = `
CREATE TABLE IF NOT EXISTS fingerprint_markers (
    Timestamp     DateTime64(3),
    FingerprintID String,
    Name          String,
    Position      UInt32,
    Marker        LowCardinality(String),
    Value         String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Name, Timestamp, Position);
`

const createSummaryTableStatement = `
CREATE TABLE IF NOT EXISTS fingerprint_summary (
    Timestamp     DateTime64(3),
    FingerprintID String,
    Name          String,
    Position      UInt8,
    Marker        LowCardinality(String),
    Value         String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Name, Timestamp, Position);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the fingerprint tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createMarkersTableStatement, createSummaryTableStatement} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create fingerprint tables: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured fingerprint tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
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

// Type returns the writer type.
func (w *ClickHouseWriter) Type() string {
	return "clickhouse"
}

// Write sends the markers and the Summary Table of a fingerprint as two batches.
func (w *ClickHouseWriter) Write(fp *model.Fingerprint) error {
	ctx := context.Background()
	id := fp.ID.String()

	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO fingerprint_markers")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for i, m := range fp.Markers {
		if err := batch.Append(fp.CreatedAt, id, fp.Name, uint32(i), m.Kind.String(), m.Text()); err != nil {
			return fmt.Errorf("failed to append marker to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	batch, err = w.conn.PrepareBatch(ctx, "INSERT INTO fingerprint_summary")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for i, row := range fp.Summary {
		if err := batch.Append(fp.CreatedAt, id, fp.Name, uint8(i), row.Kind.String(), row.Value); err != nil {
			return fmt.Errorf("failed to append summary row to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote fingerprint '%s' (%d markers) to ClickHouse", fp.Name, len(fp.Markers))
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
