package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/factory"
	"Go2NetPrint/internal/model"
)

func init() {
	factory.RegisterWriter("file", func(def config.WriterDef) (model.Writer, error) {
		return NewFileWriter(def.File.RootPath), nil
	})
}

// SummaryRow is one row of the Summary Table as stored in summary.json.
type SummaryRow struct {
	Marker string `json:"marker"`
	Value  string `json:"value"`
}

// SummaryData holds the metadata of a fingerprint, internal to the writer.
type SummaryData struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Packets   int          `json:"packets"`
	Markers   int          `json:"markers"`
	Table     []SummaryRow `json:"table"`
	Timestamp string       `json:"timestamp"`
}

// FileWriter writes a fingerprint as a set of CSV files plus a JSON summary.
type FileWriter struct {
	rootPath string
}

// NewFileWriter creates a new writer rooted at rootPath.
func NewFileWriter(rootPath string) model.Writer {
	return &FileWriter{rootPath: rootPath}
}

// Type returns the writer type.
func (w *FileWriter) Type() string {
	return "file"
}

// Write creates <root>/<name>/ and writes every export of the fingerprint into it.
func (w *FileWriter) Write(fp *model.Fingerprint) error {
	dir, prefix, err := outputDir(w.rootPath, fp.Name)
	if err != nil {
		return err
	}

	raw := make([][]string, 0, len(fp.Markers))
	for _, pair := range fp.Raw() {
		raw = append(raw, []string{pair[0], pair[1]})
	}
	labeled := make([][]string, len(fp.Labeled))
	for i, v := range fp.Labeled {
		labeled[i] = []string{strconv.Itoa(v.Index), v.Label, strconv.Itoa(v.Value)}
	}
	table := make([][]string, len(fp.Summary))
	for i, row := range fp.Summary {
		table[i] = []string{row.Kind.String(), row.Value}
	}

	files := []struct {
		suffix string
		header []string
		rows   [][]string
	}{
		{"-raw-packets.csv", nil, raw},
		{"-size-and-direction.csv", nil, column(fp.SizeAndDirection())},
		{"-size-markers.csv", nil, column(fp.SizeMarkers())},
		{"-number-markers.csv", nil, column(fp.NumberMarkers())},
		{"-labeled.csv", []string{"Index", "Label", "Value"}, labeled},
		{"-fingerprint-table.csv", []string{"Marker", "Packet Information"}, table},
	}
	for _, f := range files {
		if err := writeCSV(prefix+f.suffix, f.header, f.rows); err != nil {
			return err
		}
	}

	summary := SummaryData{
		ID:        fp.ID.String(),
		Name:      fp.Name,
		Packets:   len(fp.SizeAndDirection()),
		Markers:   len(fp.Markers),
		Timestamp: fp.CreatedAt.Format(time.RFC3339),
	}
	for _, row := range fp.Summary {
		summary.Table = append(summary.Table, SummaryRow{Marker: row.Kind.String(), Value: row.Value})
	}
	summaryFile, err := os.Create(filepath.Join(dir, "summary.json"))
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}

	log.Printf("Wrote fingerprint '%s' (%d markers) to %s", fp.Name, len(fp.Markers), dir)
	return nil
}

// outputDir creates the per-trace directory and returns it together with the
// file name prefix shared by every export.
func outputDir(rootPath, name string) (string, string, error) {
	if err := model.ValidateName(name); err != nil {
		return "", "", err
	}
	dir := filepath.Join(rootPath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, filepath.Join(dir, name), nil
}

func column(values []int) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{strconv.Itoa(v)}
	}
	return rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if header != nil {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header to '%s': %w", path, err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return file.Close()
}
