package protocol

import (
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPacket(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func ethernet(t layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: t,
	}
}

func TestParsePacket_TCP(t *testing.T) {
	ip := &layers.IPv4{
		SrcIP:    net.IP{93, 184, 216, 34},
		DstIP:    net.IP{192, 168, 3, 100},
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
	}
	tcp := &layers.TCP{SrcPort: 443, DstPort: 50123, ACK: true, Window: 14600}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	data := buildPacket(t, ethernet(layers.EthernetTypeIPv4), ip, tcp, gopacket.Payload(make([]byte, 100)))

	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	packet.Metadata().Timestamp = ts
	packet.Metadata().Length = len(data)

	info, err := ParsePacket(packet)
	require.NoError(t, err)
	assert.True(t, info.FiveTuple.SrcIP.Equal(net.IP{93, 184, 216, 34}))
	assert.True(t, info.FiveTuple.DstIP.Equal(net.IP{192, 168, 3, 100}))
	assert.Equal(t, uint16(443), info.FiveTuple.SrcPort)
	assert.Equal(t, uint16(50123), info.FiveTuple.DstPort)
	assert.Equal(t, uint8(layers.IPProtocolTCP), info.FiveTuple.Protocol)
	assert.Equal(t, len(data), info.Length)
	assert.Equal(t, ts, info.Timestamp)
}

func TestParsePacket_IPv6(t *testing.T) {
	ip := &layers.IPv6{
		Version:    6,
		SrcIP:      net.ParseIP("2001:db8::1"),
		DstIP:      net.ParseIP("2001:db8::2"),
		NextHeader: layers.IPProtocolUDP,
		HopLimit:   64,
	}
	udp := &layers.UDP{SrcPort: 53, DstPort: 40000}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	data := buildPacket(t, ethernet(layers.EthernetTypeIPv6), ip, udp, gopacket.Payload([]byte("abc")))

	info, err := ParsePacket(gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default))
	require.NoError(t, err)
	assert.True(t, info.FiveTuple.DstIP.Equal(net.ParseIP("2001:db8::2")))
	assert.Equal(t, uint16(53), info.FiveTuple.SrcPort)
	assert.Equal(t, len(data), info.Length)
}

func TestParsePacket_NotIP(t *testing.T) {
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		SourceProtAddress: []byte{192, 168, 3, 1},
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte{192, 168, 3, 100},
	}
	data := buildPacket(t, ethernet(layers.EthernetTypeARP), arp)

	_, err := ParsePacket(gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default))
	assert.Error(t, err)
}
