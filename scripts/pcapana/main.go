package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"Go2NetPrint/internal/model"
	"Go2NetPrint/pkg/pcap"
)

func main() {
	clientAddr := flag.String("ip", "192.168.3.100", "Client address; packets sent to it are incoming.")
	limit := flag.Int("n", 20, "Number of packets to print, 0 for all.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <path_to_pcap_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	client := net.ParseIP(*clientAddr)
	if client == nil {
		log.Fatalf("Invalid -ip %q", *clientAddr)
	}

	reader, err := pcap.NewReader(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer reader.Close()

	packets := make(chan *model.PacketInfo, 1024)
	errc := make(chan error, 1)
	go func() { errc <- reader.ReadPackets(packets) }()

	i := 0
	for info := range packets {
		i++
		if *limit > 0 && i > *limit {
			continue
		}
		fmt.Printf("[%s] %s:%d -> %s:%d proto=%d len=%d %s\n",
			info.Timestamp.Format("15:04:05.000"),
			info.FiveTuple.SrcIP, info.FiveTuple.SrcPort,
			info.FiveTuple.DstIP, info.FiveTuple.DstPort,
			info.FiveTuple.Protocol, info.Length,
			info.DirectionFor(client),
		)
	}
	log.Printf("%d IP packets, %d frames skipped", i, reader.Skipped())
	if err := <-errc; err != nil {
		log.Fatalf("Capture is incomplete: %v", err)
	}
}
