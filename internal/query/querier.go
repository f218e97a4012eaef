// Package query reads stored fingerprints back from the databases the
// writers fill.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/model"
)

// ErrNotFound is returned when no fingerprint is stored under a name.
var ErrNotFound = errors.New("fingerprint not found")

// Summary is the stored Summary Table of the latest fingerprint of a trace.
type Summary struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Rows      []model.SummaryRow
}

// Querier defines the interface for querying stored fingerprints.
type Querier interface {
	// Names lists every distinct trace name, sorted.
	Names(ctx context.Context) ([]string, error)
	// Summary returns the Summary Table of the most recent fingerprint of name.
	Summary(ctx context.Context, name string) (*Summary, error)
	Close() error
}

// New opens a querier on the store of the first enabled database writer,
// preferring ClickHouse over SQLite.
func New(cfg *config.Config) (Querier, error) {
	if def, ok := cfg.EnabledWriter("clickhouse"); ok {
		return NewClickHouseQuerier(def.ClickHouse)
	}
	if def, ok := cfg.EnabledWriter("sqlite"); ok {
		return NewSQLiteQuerier(def.SQLite)
	}
	return nil, fmt.Errorf("no clickhouse or sqlite writer enabled")
}

func parseRow(code, value string) (model.SummaryRow, error) {
	kind, err := model.ParseMarkerKind(code)
	if err != nil {
		return model.SummaryRow{}, err
	}
	return model.SummaryRow{Kind: kind, Value: value}, nil
}
