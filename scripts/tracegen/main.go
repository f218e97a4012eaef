package main

import (
	"encoding/csv"
	"flag"
	"log"
	"math/rand"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// headerLen is the Ethernet, IPv4 and TCP header size without options.
const headerLen = 54

type frame struct {
	incoming bool
	size     int
}

func main() {
	outputFile := flag.String("o", "page.pcap", "Output file path")
	format := flag.String("format", "pcap", "Output format: 'pcap' or 'csv' (size, source, destination)")
	clientAddr := flag.String("ip", "192.168.3.100", "Client address")
	serverAddr := flag.String("server", "93.184.216.34", "Server address")
	resources := flag.Int("resources", 8, "Number of sub-resources fetched after the document")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	client := net.ParseIP(*clientAddr).To4()
	server := net.ParseIP(*serverAddr).To4()
	if client == nil || server == nil {
		log.Fatalf("Both -ip and -server must be IPv4 addresses")
	}

	rng := rand.New(rand.NewSource(*seed))
	frames := pageLoad(rng, *resources)
	log.Printf("Generating %d packets into %s...", len(frames), *outputFile)

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	switch *format {
	case "pcap":
		err = writePcap(f, frames, client, server, rng)
	case "csv":
		err = writeCSV(f, frames, client, server)
	default:
		log.Fatalf("Unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("Failed to write trace: %v", err)
	}

	log.Printf("Successfully generated %d packets into %s.", len(frames), *outputFile)
}

// pageLoad simulates a handshake, a document download and a series of
// request/response exchanges, with bare acknowledgements in between.
func pageLoad(rng *rand.Rand, resources int) []frame {
	frames := []frame{
		{false, 74}, {true, 74}, {false, 66},
		{false, 400 + rng.Intn(300)},
		{true, 66},
	}
	frames = append(frames, response(rng, 4+rng.Intn(12))...)
	for i := 0; i < resources; i++ {
		frames = append(frames, frame{false, 300 + rng.Intn(500)})
		frames = append(frames, response(rng, 1+rng.Intn(6))...)
	}
	return frames
}

func response(rng *rand.Rand, segments int) []frame {
	var out []frame
	for i := 0; i < segments; i++ {
		size := 1514
		if i == segments-1 {
			size = headerLen + 1 + rng.Intn(1460)
		}
		out = append(out, frame{true, size})
		if i%2 == 1 {
			out = append(out, frame{false, 66})
		}
	}
	return out
}

func writePcap(f *os.File, frames []frame, client, server net.IP, rng *rand.Rand) error {
	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return err
	}

	clientPort := layers.TCPPort(rng.Intn(65535-1024) + 1024)
	ts := time.Now()
	for _, fr := range frames {
		src, dst := client, server
		srcPort, dstPort := clientPort, layers.TCPPort(443)
		if fr.incoming {
			src, dst = server, client
			srcPort, dstPort = dstPort, srcPort
		}

		ethLayer := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ipLayer := &layers.IPv4{
			SrcIP:    src,
			DstIP:    dst,
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
		}
		tcpLayer := &layers.TCP{
			SrcPort: srcPort,
			DstPort: dstPort,
			Seq:     rng.Uint32(),
			Ack:     rng.Uint32(),
			ACK:     true,
			Window:  14600,
		}
		tcpLayer.SetNetworkLayerForChecksum(ipLayer)

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{
			ComputeChecksums: true,
			FixLengths:       true,
		}
		payload := make([]byte, fr.size-headerLen)
		if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer, gopacket.Payload(payload)); err != nil {
			return err
		}

		ts = ts.Add(time.Duration(rng.Intn(5000)) * time.Microsecond)
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := pcapWriter.WritePacket(ci, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(f *os.File, frames []frame, client, server net.IP) error {
	w := csv.NewWriter(f)
	for _, fr := range frames {
		src, dst := client.String(), server.String()
		if fr.incoming {
			src, dst = dst, src
		}
		if err := w.Write([]string{strconv.Itoa(fr.size), src, dst}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
