package model

import (
	"fmt"
	"strconv"
)

// MarkerKind tags a Marker.
type MarkerKind uint8

const (
	KindOutgoing MarkerKind = iota
	KindIncoming
	KindSizeBurst
	KindTotalBytesOut
	KindTotalBytesIn
	KindHtmlDocument
	KindRunCount
	KindUniqueSizesOut
	KindUniqueSizesIn
	KindInOutRatio
	KindPacketCountOut
	KindPacketCountIn
)

var kindCodes = [...]string{
	KindOutgoing:       "+",
	KindIncoming:       "-",
	KindSizeBurst:      "S",
	KindTotalBytesOut:  "TS+",
	KindTotalBytesIn:   "TS-",
	KindHtmlDocument:   "H",
	KindRunCount:       "N",
	KindUniqueSizesOut: "OP+",
	KindUniqueSizesIn:  "OP-",
	KindInOutRatio:     "PP-",
	KindPacketCountOut: "NP+",
	KindPacketCountIn:  "NP-",
}

// String returns the short marker code, e.g. "S" or "TS+".
func (k MarkerKind) String() string {
	if int(k) < len(kindCodes) {
		return kindCodes[k]
	}
	return fmt.Sprintf("MarkerKind(%d)", k)
}

// ParseMarkerKind maps a marker code back to its kind.
func ParseMarkerKind(code string) (MarkerKind, error) {
	for k, c := range kindCodes {
		if c == code {
			return MarkerKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown marker code %q", code)
}

// IsDirectional reports whether the kind carries a packet observation.
func (k MarkerKind) IsDirectional() bool {
	return k == KindOutgoing || k == KindIncoming
}

// Marker is one element of a fingerprint sequence. Ratio is only set for
// KindInOutRatio, every other kind carries Value.
type Marker struct {
	Kind  MarkerKind
	Value int
	Ratio string
}

// Packet wraps an observation as a directional marker.
func Packet(o Observation) Marker {
	return Marker{Kind: o.Direction.Kind(), Value: o.Size}
}

// Direction returns the direction of a directional marker. ok is false for
// synthetic markers.
func (m Marker) Direction() (d Direction, ok bool) {
	switch m.Kind {
	case KindOutgoing:
		return Outgoing, true
	case KindIncoming:
		return Incoming, true
	}
	return 0, false
}

// Signed returns the value with the incoming sign convention applied.
func (m Marker) Signed() int {
	if m.Kind == KindIncoming {
		return -m.Value
	}
	return m.Value
}

// Text renders the value as it appears in exports.
func (m Marker) Text() string {
	if m.Kind == KindInOutRatio {
		return m.Ratio
	}
	return strconv.Itoa(m.Signed())
}

func (m Marker) String() string {
	return fmt.Sprintf("(%s, %s)", m.Kind, m.Text())
}
