package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"Go2NetPrint/internal/model"
)

// ReadCSV reads a tshark CSV export. name is only used in error messages.
func ReadCSV(r io.Reader, name string, opts Options) ([]model.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var obs []model.Observation
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w: %v", name, line, ErrMalformedRecord, err)
		}
		if line == 1 && opts.HasHeader {
			continue
		}
		o, err := parseRow(row, opts)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		obs = append(obs, o)
	}
	return obs, nil
}

func parseRow(row []string, opts Options) (model.Observation, error) {
	if len(row) <= opts.SizeColumn || len(row) <= opts.AddressColumn {
		return model.Observation{}, fmt.Errorf("%w: expected at least %d fields, got %d",
			ErrMalformedRecord, max(opts.SizeColumn, opts.AddressColumn)+1, len(row))
	}
	size, err := strconv.Atoi(strings.TrimSpace(row[opts.SizeColumn]))
	if err != nil || size < 0 {
		return model.Observation{}, fmt.Errorf("%w: invalid size %q", ErrMalformedRecord, row[opts.SizeColumn])
	}
	address := strings.TrimSpace(row[opts.AddressColumn])
	if address == "" {
		return model.Observation{}, fmt.Errorf("%w: empty address", ErrMalformedRecord)
	}
	return model.Observation{Direction: classify(address, opts.ClientIP), Size: size}, nil
}
