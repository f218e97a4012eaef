// Package fingerprint derives a quantized marker sequence from a packet trace.
//
// The pipeline filters acknowledgement-sized packets and then runs a fixed
// list of passes over the sequence. Each pass inserts one class of marker and
// leaves the packets themselves in place.
package fingerprint

import (
	"fmt"
	"time"

	"Go2NetPrint/internal/model"

	"github.com/google/uuid"
)

// DefaultExcludedPacketSize is the size of a bare TCP acknowledgement with
// timestamps on Ethernet.
const DefaultExcludedPacketSize = 66

// NoExclusion disables the size filter.
const NoExclusion = -1

// Options configures a Pipeline. A zero ExcludedPacketSize selects
// DefaultExcludedPacketSize and a negative one disables the filter.
type Options struct {
	ExcludedPacketSize int
}

// Stage is one decorating pass. Apply returns the extended sequence and any
// whole-trace markers destined for the Summary Table.
type Stage struct {
	Name  string
	Apply func(seq []model.Marker) ([]model.Marker, []model.Marker)
}

// Pipeline turns observations into fingerprints. It holds no per-trace state
// and may be shared between goroutines.
type Pipeline struct {
	excluded int
	stages   []Stage
}

// New creates a pipeline with the standard passes.
func New(opts Options) *Pipeline {
	excluded := opts.ExcludedPacketSize
	switch {
	case excluded == 0:
		excluded = DefaultExcludedPacketSize
	case excluded < 0:
		excluded = NoExclusion
	}
	return &Pipeline{
		excluded: excluded,
		stages: []Stage{
			{Name: "size-markers", Apply: func(seq []model.Marker) ([]model.Marker, []model.Marker) {
				return InsertSizeMarkers(seq), nil
			}},
			{Name: "byte-totals", Apply: func(seq []model.Marker) ([]model.Marker, []model.Marker) {
				out := AppendByteTotals(seq)
				return out, out[len(out)-2:]
			}},
			{Name: "document", Apply: func(seq []model.Marker) ([]model.Marker, []model.Marker) {
				out, doc := InsertDocumentMarker(seq)
				return out, []model.Marker{doc}
			}},
			{Name: "run-counts", Apply: func(seq []model.Marker) ([]model.Marker, []model.Marker) {
				return InsertRunCounts(seq), nil
			}},
		},
	}
}

// ExcludedPacketSize returns the packet size dropped before any pass runs, or
// NoExclusion when nothing is dropped.
func (p *Pipeline) ExcludedPacketSize() int {
	return p.excluded
}

// Stages returns the decorating passes in the order they run.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// Decorate filters the observations and runs every decorating pass. It
// returns the decorated sequence and the whole-trace markers collected so far.
func (p *Pipeline) Decorate(obs []model.Observation) ([]model.Marker, []model.Marker) {
	return p.decorate(FilterSize(obs, p.excluded))
}

func (p *Pipeline) decorate(filtered []model.Observation) ([]model.Marker, []model.Marker) {
	seq := Packets(filtered)
	var whole []model.Marker
	for _, stage := range p.stages {
		var extra []model.Marker
		seq, extra = stage.Apply(seq)
		whole = append(whole, extra...)
	}
	return seq, whole
}

// Run builds the fingerprint of a single trace.
func (p *Pipeline) Run(name string, obs []model.Observation) (*model.Fingerprint, error) {
	filtered := FilterSize(obs, p.excluded)
	seq, whole := p.decorate(filtered)
	seq, tail, err := Summarize(seq)
	if err != nil {
		if len(filtered) == 0 {
			return nil, fmt.Errorf("fingerprint %s: %w: %w", name, ErrEmptyTrace, err)
		}
		return nil, fmt.Errorf("fingerprint %s: %w", name, err)
	}
	return &model.Fingerprint{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Markers:   seq,
		Summary:   Table(append(whole, tail...)),
		Labeled:   Label(seq),
	}, nil
}
