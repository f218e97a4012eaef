package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// FingerprintConfig holds the parameters of the marker pipeline.
type FingerprintConfig struct {
	ClientIP           string `yaml:"client_ip"`
	ExcludedPacketSize int    `yaml:"excluded_packet_size"` // -1 disables the filter
}

// CSVConfig describes the column layout of a CSV trace export.
type CSVConfig struct {
	SizeColumn    int  `yaml:"size_column"`
	AddressColumn int  `yaml:"address_column"`
	HasHeader     bool `yaml:"has_header"`
}

// TraceConfig selects how trace files are decoded.
type TraceConfig struct {
	Format string    `yaml:"format"` // auto, csv, pcap
	CSV    CSVConfig `yaml:"csv"`
}

// EngineConfig holds the settings of the batch manager.
type EngineConfig struct {
	NumWorkers int `yaml:"num_workers"`
}

// FileConfig holds the settings for the CSV/JSON file writer.
type FileConfig struct {
	RootPath string `yaml:"root_path"`
}

// PlotConfig holds the settings for the PNG/PDF plot writer.
type PlotConfig struct {
	RootPath string  `yaml:"root_path"`
	Width    float64 `yaml:"width_inches"`
	Height   float64 `yaml:"height_inches"`
}

// HTMLConfig holds the settings for the HTML chart writer.
type HTMLConfig struct {
	RootPath string `yaml:"root_path"`
}

// SQLiteConfig holds the settings for the SQLite writer.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the connection details for NATS.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines a single output writer from the config file.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	File       FileConfig       `yaml:"file"`
	Plot       PlotConfig       `yaml:"plot"`
	HTML       HTMLConfig       `yaml:"html"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// APIConfig holds the listen addresses of the API server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	GRPCAddr   string `yaml:"grpc_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Trace       TraceConfig       `yaml:"trace"`
	Engine      EngineConfig      `yaml:"engine"`
	Writers     []WriterDef       `yaml:"writers"`
	API         APIConfig         `yaml:"api"`
	Probe       NATSConfig        `yaml:"probe"`
}

// Default returns a configuration with every default filled in. Values read
// from a file override these.
func Default() *Config {
	return &Config{
		Fingerprint: FingerprintConfig{
			ClientIP:           "192.168.3.100",
			ExcludedPacketSize: 66,
		},
		Trace: TraceConfig{
			Format: "auto",
			CSV:    CSVConfig{SizeColumn: 0, AddressColumn: 2},
		},
		Engine: EngineConfig{NumWorkers: 1},
		Writers: []WriterDef{
			{Type: "file", Enabled: true, File: FileConfig{RootPath: "output"}},
		},
		API: APIConfig{ListenAddr: ":8080", GRPCAddr: ":9090"},
		Probe: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "gonp.fingerprints",
		},
	}
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if net.ParseIP(c.Fingerprint.ClientIP) == nil {
		return fmt.Errorf("invalid fingerprint.client_ip %q", c.Fingerprint.ClientIP)
	}
	if c.Fingerprint.ExcludedPacketSize < -1 {
		return fmt.Errorf("fingerprint.excluded_packet_size must be -1 or a packet size, got %d", c.Fingerprint.ExcludedPacketSize)
	}
	switch c.Trace.Format {
	case "auto", "csv", "pcap":
	default:
		return fmt.Errorf("unknown trace.format %q", c.Trace.Format)
	}
	if c.Trace.CSV.SizeColumn < 0 || c.Trace.CSV.AddressColumn < 0 {
		return fmt.Errorf("csv column indexes must not be negative")
	}
	if c.Engine.NumWorkers <= 0 {
		c.Engine.NumWorkers = 1
	}
	return nil
}

// ClientIP returns the parsed client address.
func (c *Config) ClientIP() net.IP {
	return net.ParseIP(c.Fingerprint.ClientIP)
}

// EnabledWriter returns the first enabled writer of the given type.
func (c *Config) EnabledWriter(writerType string) (*WriterDef, bool) {
	for i := range c.Writers {
		if c.Writers[i].Enabled && c.Writers[i].Type == writerType {
			return &c.Writers[i], true
		}
	}
	return nil, false
}
