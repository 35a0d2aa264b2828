// Package export renders a ResultSet as csv, json or an aligned text table.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/valuescreen/internal/contracts"
)

// Exporter writes a ranked result set in one format
type Exporter interface {
	Export(w io.Writer, rs contracts.ResultSet) error
	Extension() string
}

// Supported formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatText = "text"
)

// NewExporter returns the exporter of format (csv, json, text)
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return CSVExporter{}, nil
	case FormatJSON:
		return JSONExporter{}, nil
	case FormatText, "txt":
		return TextExporter{}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q (use: csv, json, text)", format)
	}
}

// FormatFromPath derives the format from the file extension; csv when unknown
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".txt":
		return FormatText
	default:
		return FormatCSV
	}
}

// WriteFile creates path and writes rs into it
func WriteFile(path string, exporter Exporter, rs contracts.ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := exporter.Export(f, rs); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}

	return f.Close()
}

// header is the symbol column followed by the source labels
func header() []string {
	return contracts.RequiredColumns()
}

// row renders a record in header order
func row(r contracts.Record) []string {
	fields := contracts.Fields()
	out := make([]string, 0, len(fields)+1)
	out = append(out, r.Symbol)
	for _, f := range fields {
		out = append(out, r.Value(f).String())
	}
	return out
}

// FileSink persists each run's result set to a file
type FileSink struct {
	Path     string
	Exporter Exporter
}

// NewFileSink creates a sink writing path in the format of its extension
func NewFileSink(path, format string) (*FileSink, error) {
	if format == "" {
		format = FormatFromPath(path)
	}

	exporter, err := NewExporter(format)
	if err != nil {
		return nil, err
	}

	return &FileSink{Path: path, Exporter: exporter}, nil
}

// Name implements contracts.Sink
func (s *FileSink) Name() string {
	return "file:" + s.Path
}

// Save implements contracts.Sink
func (s *FileSink) Save(ctx context.Context, run *contracts.ScreeningRun) error {
	return WriteFile(s.Path, s.Exporter, run.Result)
}
