package pcap

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"Go2NetPrint/internal/engine/protocol"
	"Go2NetPrint/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapngMagic is the block type of a pcapng section header.
var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

type packetSource interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Reader reads packets from a pcap or pcapng file.
type Reader struct {
	file    *os.File
	source  packetSource
	skipped int
}

// NewReader opens a capture file. The file format is detected from its magic number.
func NewReader(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	source, err := newSource(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read capture header of '%s': %w", filePath, err)
	}
	return &Reader{file: f, source: source}, nil
}

func newSource(br *bufio.Reader) (packetSource, error) {
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if bytes.Equal(magic, pcapngMagic) {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

// Skipped returns how many frames were dropped because they carried no IP layer.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadPackets reads all packets from the capture and sends the parsed
// PacketInfo to the provided channel. It closes the channel when done. Any
// read error other than the end of the file, such as a truncated record, is
// returned after the packets read so far.
func (r *Reader) ReadPackets(out chan<- *model.PacketInfo) error {
	defer close(out)

	linkType := r.source.LinkType()
	read := 0
	for {
		data, ci, err := r.source.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read packet %d of '%s': %w", read+1, r.file.Name(), err)
		}
		read++

		packet := gopacket.NewPacket(data, linkType, gopacket.Default)
		meta := packet.Metadata()
		meta.CaptureInfo = ci
		meta.Truncated = meta.Truncated || ci.CaptureLength < ci.Length

		info, err := protocol.ParsePacket(packet)
		if err != nil {
			// Frames such as ARP carry no address to classify and are not part of the trace.
			r.skipped++
			continue
		}
		out <- info
	}
	if r.skipped > 0 {
		log.Printf("Skipped %d non-IP frames in %s", r.skipped, r.file.Name())
	}
	return nil
}
