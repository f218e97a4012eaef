// Package trace loads packet traces into ordered observations.
package trace

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/model"
	"Go2NetPrint/pkg/pcap"
)

// ErrMalformedRecord is returned for a record without a usable size or address.
var ErrMalformedRecord = errors.New("malformed trace record")

// Format identifies the encoding of a trace file.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatPcap Format = "pcap"
)

// Options controls how a trace is decoded and classified.
type Options struct {
	ClientIP      net.IP
	Format        Format
	SizeColumn    int
	AddressColumn int
	HasHeader     bool
}

// OptionsFromConfig builds loader options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ClientIP:      cfg.ClientIP(),
		Format:        Format(cfg.Trace.Format),
		SizeColumn:    cfg.Trace.CSV.SizeColumn,
		AddressColumn: cfg.Trace.CSV.AddressColumn,
		HasHeader:     cfg.Trace.CSV.HasHeader,
	}
}

// Record is a single trace row before classification.
type Record struct {
	Size    int    `json:"size"`
	Address string `json:"address"`
}

// NameOf returns the trace name used for outputs: the file name without extension.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads the trace at path.
func Load(path string, opts Options) ([]model.Observation, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		format = detect(path)
	}
	switch format {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f, path, opts)
	case FormatPcap:
		return loadCapture(path, opts.ClientIP)
	default:
		return nil, fmt.Errorf("unsupported trace format %q", format)
	}
}

func detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcap", ".pcapng", ".cap":
		return FormatPcap
	default:
		return FormatCSV
	}
}

func loadCapture(path string, client net.IP) ([]model.Observation, error) {
	reader, err := pcap.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	packets := make(chan *model.PacketInfo, 1024)
	errc := make(chan error, 1)
	go func() { errc <- reader.ReadPackets(packets) }()

	var obs []model.Observation
	for info := range packets {
		obs = append(obs, model.Observation{Direction: info.DirectionFor(client), Size: info.Length})
	}
	if err := <-errc; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return obs, nil
}

// FromRecords classifies records against the client address.
func FromRecords(records []Record, client net.IP) ([]model.Observation, error) {
	obs := make([]model.Observation, len(records))
	for i, r := range records {
		if r.Size < 0 || r.Address == "" {
			return nil, fmt.Errorf("record %d: %w", i+1, ErrMalformedRecord)
		}
		obs[i] = model.Observation{Direction: classify(r.Address, client), Size: r.Size}
	}
	return obs, nil
}

// classify marks a record incoming when its address is the client. Addresses
// that do not parse as IPs are compared textually.
func classify(address string, client net.IP) model.Direction {
	address = strings.TrimSpace(address)
	if ip := net.ParseIP(address); ip != nil {
		if ip.Equal(client) {
			return model.Incoming
		}
		return model.Outgoing
	}
	if address == client.String() {
		return model.Incoming
	}
	return model.Outgoing
}
