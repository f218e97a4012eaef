package model

import (
	"net"
	"time"
)

// Direction is the direction of a packet relative to the client.
type Direction uint8

const (
	Outgoing Direction = iota
	Incoming
)

// Sign returns +1 for outgoing and -1 for incoming packets.
func (d Direction) Sign() int {
	if d == Incoming {
		return -1
	}
	return 1
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Incoming {
		return Outgoing
	}
	return Incoming
}

// Kind returns the marker kind that carries an observation of this direction.
func (d Direction) Kind() MarkerKind {
	if d == Incoming {
		return KindIncoming
	}
	return KindOutgoing
}

func (d Direction) String() string {
	return d.Kind().String()
}

// Observation is a single packet of a trace: its size and its direction.
type Observation struct {
	Direction Direction
	Size      int
}

// FiveTuple represents the 5-tuple of a network packet.
type FiveTuple struct {
	SrcIP    net.IP
	DstIP    net.IP
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// PacketInfo holds the metadata extracted from a single captured packet.
type PacketInfo struct {
	Timestamp time.Time
	FiveTuple FiveTuple
	Length    int
}

// DirectionFor classifies the packet against the client address. Packets
// addressed to the client are incoming, everything else is outgoing.
func (p *PacketInfo) DirectionFor(client net.IP) Direction {
	if p.FiveTuple.DstIP.Equal(client) {
		return Incoming
	}
	return Outgoing
}
