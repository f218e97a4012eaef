package fingerprint

import "Go2NetPrint/internal/model"

// handshakePackets is the number of directional packets that precede the
// document response. It matches a TCP handshake followed by the request and
// does not hold for captures that start mid-connection.
const handshakePackets = 3

// FilterSize drops every observation whose size equals excluded. Sizes are
// never negative, so a negative excluded keeps every observation.
func FilterSize(obs []model.Observation, excluded int) []model.Observation {
	out := make([]model.Observation, 0, len(obs))
	for _, o := range obs {
		if o.Size != excluded {
			out = append(out, o)
		}
	}
	return out
}

// Packets converts observations into directional markers.
func Packets(obs []model.Observation) []model.Marker {
	seq := make([]model.Marker, len(obs))
	for i, o := range obs {
		seq[i] = model.Packet(o)
	}
	return seq
}

// InsertSizeMarkers emits a burst size marker before every direction change
// and one more after the last packet, summing the sizes of each burst.
func InsertSizeMarkers(seq []model.Marker) []model.Marker {
	out := make([]model.Marker, 0, len(seq)*2+1)
	current := model.Outgoing
	running := 0
	for _, m := range seq {
		d, ok := m.Direction()
		if !ok {
			out = append(out, m)
			continue
		}
		if d == current {
			running += m.Value
		} else {
			out = append(out, sizeBurst(running))
			running = m.Value
			current = d
		}
		out = append(out, m)
	}
	return append(out, sizeBurst(running))
}

func sizeBurst(n int) model.Marker {
	return model.Marker{Kind: model.KindSizeBurst, Value: Quantize(n, burstUnit, burstBucket)}
}

// AppendByteTotals appends the quantized outgoing and incoming byte totals.
func AppendByteTotals(seq []model.Marker) []model.Marker {
	var totalOut, totalIn int
	for _, m := range seq {
		switch m.Kind {
		case model.KindOutgoing:
			totalOut += m.Value
		case model.KindIncoming:
			totalIn += m.Value
		}
	}
	out := make([]model.Marker, len(seq), len(seq)+2)
	copy(out, seq)
	return append(out,
		model.Marker{Kind: model.KindTotalBytesOut, Value: Quantize(totalOut, totalUnit, totalBucket)},
		model.Marker{Kind: model.KindTotalBytesIn, Value: Quantize(totalIn, totalUnit, totalBucket)},
	)
}

// documentDetector locates the end of the first incoming burst after the
// handshake window.
type documentDetector struct {
	startup int
	size    int
	ended   bool
	last    model.Direction
}

func (d *documentDetector) marker() model.Marker {
	return model.Marker{Kind: model.KindHtmlDocument, Value: Quantize(d.size, burstUnit, burstBucket)}
}

func (d *documentDetector) scan(seq []model.Marker) []model.Marker {
	out := make([]model.Marker, 0, len(seq)+1)
	for _, m := range seq {
		dir, ok := m.Direction()
		if ok {
			switch {
			case d.startup < handshakePackets:
				d.startup++
			case d.ended:
			case dir == model.Incoming:
				d.size += m.Value
				d.last = model.Incoming
			case d.last == model.Incoming:
				out = append(out, d.marker())
				d.ended = true
			}
		}
		out = append(out, m)
	}
	return out
}

// InsertDocumentMarker inserts the document marker before the first outgoing
// packet that follows the document response. It also returns the marker value
// computed from whatever was accumulated, which the Summary Table reports even
// when no marker was inserted.
func InsertDocumentMarker(seq []model.Marker) ([]model.Marker, model.Marker) {
	var d documentDetector
	out := d.scan(seq)
	return out, d.marker()
}

// InsertRunCounts emits the number of consecutive same-direction packets
// before every direction change. The final run is not counted.
func InsertRunCounts(seq []model.Marker) []model.Marker {
	out := make([]model.Marker, 0, len(seq)*2)
	current := model.Outgoing
	count := 0
	for _, m := range seq {
		if d, ok := m.Direction(); ok {
			if d != current {
				out = append(out, model.Marker{Kind: model.KindRunCount, Value: count})
				count = 0
				current = d
			}
			count++
		}
		out = append(out, m)
	}
	return out
}
