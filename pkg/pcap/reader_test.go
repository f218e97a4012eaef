package pcap

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Go2NetPrint/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	src, dst net.IP
	payload  int
}

func ethernet(t layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: t,
	}
}

func serialize(t *testing.T, f frame) []byte {
	t.Helper()
	ip := &layers.IPv4{SrcIP: f.src, DstIP: f.dst, Version: 4, TTL: 64, Protocol: layers.IPProtocolTCP}
	tcp := &layers.TCP{SrcPort: 50000, DstPort: 443, ACK: true, Window: 14600}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ethernet(layers.EthernetTypeIPv4), ip, tcp, gopacket.Payload(make([]byte, f.payload))))
	return buf.Bytes()
}

func writeCapture(t *testing.T, frames []frame, withARP bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.pcap")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := pcapgo.NewWriter(file)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	write := func(data []byte) {
		ci := gopacket.CaptureInfo{Timestamp: ts, CaptureLength: len(data), Length: len(data)}
		require.NoError(t, w.WritePacket(ci, data))
		ts = ts.Add(time.Millisecond)
	}
	for _, f := range frames {
		write(serialize(t, f))
	}
	if withARP {
		buf := gopacket.NewSerializeBuffer()
		arp := &layers.ARP{
			AddrType: layers.LinkTypeEthernet, Protocol: layers.EthernetTypeIPv4,
			HwAddressSize: 6, ProtAddressSize: 4, Operation: layers.ARPRequest,
			SourceHwAddress: []byte{0, 0x11, 0x22, 0x33, 0x44, 0x55}, SourceProtAddress: []byte{192, 168, 3, 1},
			DstHwAddress: []byte{0, 0, 0, 0, 0, 0}, DstProtAddress: []byte{192, 168, 3, 100},
		}
		require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, ethernet(layers.EthernetTypeARP), arp))
		write(buf.Bytes())
	}
	return path
}

func readAll(reader *Reader) ([]*model.PacketInfo, error) {
	out := make(chan *model.PacketInfo)
	errc := make(chan error, 1)
	go func() { errc <- reader.ReadPackets(out) }()

	var packets []*model.PacketInfo
	for info := range out {
		packets = append(packets, info)
	}
	return packets, <-errc
}

func TestReader_ReadPackets(t *testing.T) {
	client := net.IP{192, 168, 3, 100}
	server := net.IP{93, 184, 216, 34}
	path := writeCapture(t, []frame{
		{src: client, dst: server, payload: 300},
		{src: server, dst: client, payload: 1400},
		{src: server, dst: client, payload: 20},
	}, true)

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	packets, err := readAll(reader)
	require.NoError(t, err)

	require.Len(t, packets, 3)
	assert.Equal(t, 1, reader.Skipped())
	assert.Equal(t, 14+20+20+300, packets[0].Length)
	assert.Equal(t, 14+20+20+1400, packets[1].Length)
	assert.Equal(t, 74, packets[2].Length)
	assert.Equal(t, model.Outgoing, packets[0].DirectionFor(client))
	assert.Equal(t, model.Incoming, packets[1].DirectionFor(client))
}

func TestReader_TruncatedCapture(t *testing.T) {
	client := net.IP{192, 168, 3, 100}
	server := net.IP{93, 184, 216, 34}
	frames := make([]frame, 10)
	for i := range frames {
		frames[i] = frame{src: server, dst: client, payload: 1000}
	}
	path := writeCapture(t, frames, false)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-500))

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	packets, err := readAll(reader)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorContains(t, err, "packet 10")
	assert.Len(t, packets, 9)
}

func TestNewReader_Errors(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.pcap"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.pcap")
	require.NoError(t, os.WriteFile(bad, []byte("size,src,dst\n"), 0644))
	_, err = NewReader(bad)
	assert.Error(t, err)
}
