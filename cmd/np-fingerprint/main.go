package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/engine/manager"
	"Go2NetPrint/internal/factory"
	"Go2NetPrint/internal/fingerprint"
	_ "Go2NetPrint/internal/writer" // Registers the output writers
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file.")
	clientIP := flag.String("ip", "", "Client address; packets sent to it are incoming. Overrides fingerprint.client_ip.")
	exclude := flag.Int("exclude", fingerprint.DefaultExcludedPacketSize, "Packet size dropped before fingerprinting, -1 keeps every packet. Overrides fingerprint.excluded_packet_size.")
	outDir := flag.String("out", "", "Root directory of the file, plot and html writers.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <trace> [trace...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *clientIP != "" {
		if net.ParseIP(*clientIP) == nil {
			log.Fatalf("Invalid -ip %q", *clientIP)
		}
		cfg.Fingerprint.ClientIP = *clientIP
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "exclude" {
			cfg.Fingerprint.ExcludedPacketSize = *exclude
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}
	if *outDir != "" {
		for i := range cfg.Writers {
			cfg.Writers[i].File.RootPath = *outDir
			cfg.Writers[i].Plot.RootPath = *outDir
			cfg.Writers[i].HTML.RootPath = *outDir
		}
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize writers and the manager
	writers, err := factory.Create(cfg)
	if err != nil {
		log.Fatalf("Failed to create writers: %v", err)
	}
	m := manager.NewManager(cfg, writers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Fingerprint every trace
	results, runErr := m.Run(ctx, flag.Args())
	done := 0
	for _, fp := range results {
		if fp != nil {
			done++
		}
	}
	log.Printf("Fingerprinted %d of %d traces.", done, len(results))

	if err := factory.Close(writers); err != nil {
		log.Printf("Failed to close writers: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Some traces failed:\n%v", runErr)
	}
}
