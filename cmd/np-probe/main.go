package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/engine/manager"
	"Go2NetPrint/internal/model"
	"Go2NetPrint/internal/probe"
	"Go2NetPrint/internal/writer"
)

func main() {
	// --- Command-Line Flag Parsing ---
	mode := flag.String("mode", "sub", "Operating mode: 'pub' to fingerprint traces and publish, 'sub' to subscribe and print.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// --- Mode Dispatch ---
	switch *mode {
	case "pub":
		runPublisher(cfg, flag.Args())
	case "sub":
		runSubscriber(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runPublisher fingerprints the given traces and publishes each result to NATS.
func runPublisher(cfg *config.Config, paths []string) {
	if len(paths) == 0 {
		log.Println("Error: pub mode needs at least one trace file.")
		flag.Usage()
		os.Exit(1)
	}
	log.Printf("Starting np-probe in PUB mode for %d traces", len(paths))

	pub, err := writer.NewNATSWriter(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := manager.NewManager(cfg, []model.Writer{pub}).Run(ctx, paths); err != nil {
		log.Printf("Some traces were not published:\n%v", err)
	}
}

// runSubscriber contains the logic for subscribing to NATS and printing fingerprints.
func runSubscriber(cfg *config.Config) {
	log.Println("Starting np-probe in SUBSCRIBER mode...")

	// Create a new subscriber
	sub, err := probe.NewSubscriber(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	// Define the handler function for received fingerprints
	handler := func(fp *model.Fingerprint) {
		log.Printf("Received fingerprint '%s' (%s) with %d markers", fp.Name, fp.ID, len(fp.Markers))
		for _, row := range fp.Summary {
			log.Printf("  %-4s %s", row.Kind, row.Value)
		}
	}

	// Start listening for messages
	if err := sub.Start(handler); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	// Set up a channel to handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for a shutdown signal
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
