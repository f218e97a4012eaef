package trace

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var client = net.ParseIP("192.168.3.100")

func defaultOptions() Options {
	return Options{ClientIP: client, Format: FormatAuto, SizeColumn: 0, AddressColumn: 2}
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"100,192.168.3.100,93.184.216.34",
		"200,192.168.3.100,93.184.216.34",
		"50,93.184.216.34,192.168.3.100",
		"66,93.184.216.34,192.168.3.100",
		" 80 ,192.168.3.100,93.184.216.34",
	}, "\n")

	got, err := ReadCSV(strings.NewReader(input), "trace.csv", defaultOptions())
	require.NoError(t, err)

	want := []model.Observation{
		{Direction: model.Outgoing, Size: 100},
		{Direction: model.Outgoing, Size: 200},
		{Direction: model.Incoming, Size: 50},
		{Direction: model.Incoming, Size: 66},
		{Direction: model.Outgoing, Size: 80},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVHeaderAndColumns(t *testing.T) {
	input := "ip.dst,frame.len\n192.168.3.100,1514\n10.0.0.1,74\n"
	opts := Options{ClientIP: client, SizeColumn: 1, AddressColumn: 0, HasHeader: true}

	got, err := ReadCSV(strings.NewReader(input), "trace.csv", opts)
	require.NoError(t, err)
	assert.Equal(t, []model.Observation{
		{Direction: model.Incoming, Size: 1514},
		{Direction: model.Outgoing, Size: 74},
	}, got)
}

func TestReadCSVMalformed(t *testing.T) {
	cases := map[string]string{
		"missing address": "100,192.168.3.100\n",
		"empty address":   "100,192.168.3.100,\n",
		"non numeric":     "big,192.168.3.100,10.0.0.1\n",
		"negative":        "-5,192.168.3.100,10.0.0.1\n",
		"bad quoting":     "100,\"192.168.3.100,10.0.0.1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			obs, err := ReadCSV(strings.NewReader("10,a,b\n"+input), "trace.csv", defaultOptions())
			assert.Nil(t, obs)
			require.ErrorIs(t, err, ErrMalformedRecord)
			assert.Contains(t, err.Error(), "trace.csv:2")
		})
	}
}

func TestFromRecords(t *testing.T) {
	obs, err := FromRecords([]Record{
		{Size: 583, Address: "93.184.216.34"},
		{Size: 1514, Address: "192.168.3.100"},
	}, client)
	require.NoError(t, err)
	assert.Equal(t, []model.Observation{
		{Direction: model.Outgoing, Size: 583},
		{Direction: model.Incoming, Size: 1514},
	}, obs)

	_, err = FromRecords([]Record{{Size: 10}}, client)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.com.csv")
	require.NoError(t, os.WriteFile(path, []byte("583,10.0.0.1,192.168.3.100\n"), 0644))

	obs, err := Load(path, defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []model.Observation{{Direction: model.Incoming, Size: 583}}, obs)
	assert.Equal(t, "example.com", NameOf(path))

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), defaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(path, Options{ClientIP: client, Format: "json"})
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Trace.CSV.HasHeader = true
	opts := OptionsFromConfig(cfg)
	assert.True(t, opts.ClientIP.Equal(client))
	assert.Equal(t, FormatAuto, opts.Format)
	assert.Equal(t, 2, opts.AddressColumn)
	assert.True(t, opts.HasHeader)
	assert.Equal(t, FormatPcap, detect("x.PCAPNG"))
	assert.Equal(t, FormatCSV, detect("x.txt"))
}

func writeCapture(t *testing.T, server net.IP, payloads ...int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, payload := range payloads {
		src, dst := client.To4(), server.To4()
		if i%2 == 1 {
			src, dst = dst, src
		}
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{SrcIP: src, DstIP: dst, Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP}
		udp := &layers.UDP{SrcPort: 50000, DstPort: 443}
		require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(make([]byte, payload))))
		ci := gopacket.CaptureInfo{Timestamp: ts, CaptureLength: len(buf.Bytes()), Length: len(buf.Bytes())}
		require.NoError(t, w.WritePacket(ci, buf.Bytes()))
		ts = ts.Add(time.Millisecond)
	}
	return path
}

func TestLoadCapture(t *testing.T) {
	path := writeCapture(t, net.ParseIP("93.184.216.34"), 200, 1000)

	obs, err := Load(path, defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []model.Observation{
		{Direction: model.Outgoing, Size: 14 + 20 + 8 + 200},
		{Direction: model.Incoming, Size: 14 + 20 + 8 + 1000},
	}, obs)
}

func TestLoadTruncatedCapture(t *testing.T) {
	path := writeCapture(t, net.ParseIP("93.184.216.34"), 200, 1000)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-500))

	obs, err := Load(path, defaultOptions())
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Nil(t, obs)
}
