package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/query"
)

func main() {
	// Define command-line flags
	mode := flag.String("mode", "api", "Query mode: 'api' to query via HTTP API, 'direct' to query the configured store directly.")
	name := flag.String("name", "", "Trace name to look up. Lists stored names when empty.")
	apiBase := flag.String("api", "http://localhost:8080", "Base URL of np-api.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file (direct mode).")
	flag.Parse()

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiBase, *name)
	case "direct":
		queryDirect(*configPath, *name)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

// --- API Query Logic ---
func queryViaAPI(base, name string) {
	apiURL := base + "/api/v1/fingerprints"
	if name != "" {
		apiURL += "/" + url.PathEscape(name) + "/summary"
	}
	log.Printf("Sending request to %s", apiURL)

	resp, err := http.Get(apiURL)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var prettyJSON bytes.Buffer
	err = json.Indent(&prettyJSON, respBody, "", "  ")
	if err != nil {
		log.Printf("Could not prettify JSON, printing raw response:")
		fmt.Println(string(respBody))
		return
	}

	log.Println("---")
	fmt.Println(prettyJSON.String())
}

// --- Direct Store Query Logic ---
func queryDirect(configPath, name string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	q, err := query.New(cfg)
	if err != nil {
		log.Fatalf("Error opening fingerprint store: %v", err)
	}
	defer q.Close()

	ctx := context.Background()
	if name == "" {
		names, err := q.Names(ctx)
		if err != nil {
			log.Fatalf("Error listing fingerprints: %v", err)
		}
		if len(names) == 0 {
			log.Println("No fingerprints stored.")
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	summary, err := q.Summary(ctx, name)
	if err != nil {
		log.Fatalf("Error executing query: %v", err)
	}

	log.Println("--- Summary Table (Direct) ---")
	fmt.Printf("Name: %s\n", summary.Name)
	fmt.Printf("  ID: %s\n", summary.ID)
	fmt.Printf("  Created: %s\n", summary.CreatedAt.Format("2006-01-02 15:04:05"))
	for _, row := range summary.Rows {
		fmt.Printf("  %-4s %s\n", row.Kind, row.Value)
	}
}
