package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for a fingerprint name that is not a single
// path element.
var ErrInvalidName = errors.New("invalid fingerprint name")

// ValidateName checks that name can be used as an output directory and file
// prefix without leaving the output root.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`+"\x00") || name != filepath.Base(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Labels of the flattened fingerprint view.
const (
	LabelSizeAndDirection = "Size and Direction"
	LabelNumberMarker     = "Number Marker"
	LabelSizeMarker       = "Size Marker"
)

// SummaryRow is one whole-trace feature of the Summary Table.
type SummaryRow struct {
	Kind  MarkerKind
	Value string
}

// LabeledValue is one entry of the flattened view of a fingerprint.
type LabeledValue struct {
	Index int
	Label string
	Value int
}

// Fingerprint is the fully decorated marker sequence of one trace together
// with the values derived from it.
type Fingerprint struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Markers   []Marker
	Summary   []SummaryRow
	Labeled   []LabeledValue
}

// SizeAndDirection returns every packet size in order, incoming negative.
func (f *Fingerprint) SizeAndDirection() []int {
	return f.valuesOf(KindOutgoing, KindIncoming)
}

// SizeMarkers returns the burst size markers in order.
func (f *Fingerprint) SizeMarkers() []int {
	return f.valuesOf(KindSizeBurst)
}

// NumberMarkers returns the run count markers in order.
func (f *Fingerprint) NumberMarkers() []int {
	return f.valuesOf(KindRunCount)
}

// Raw returns every marker as a (code, value) pair.
func (f *Fingerprint) Raw() [][2]string {
	rows := make([][2]string, len(f.Markers))
	for i, m := range f.Markers {
		rows[i] = [2]string{m.Kind.String(), m.Text()}
	}
	return rows
}

// SummaryValue looks up a row of the Summary Table.
func (f *Fingerprint) SummaryValue(kind MarkerKind) (string, bool) {
	for _, row := range f.Summary {
		if row.Kind == kind {
			return row.Value, true
		}
	}
	return "", false
}

func (f *Fingerprint) valuesOf(kinds ...MarkerKind) []int {
	var values []int
	for _, m := range f.Markers {
		for _, k := range kinds {
			if m.Kind == k {
				values = append(values, m.Signed())
				break
			}
		}
	}
	return values
}
