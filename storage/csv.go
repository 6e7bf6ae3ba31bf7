package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"airbnb-pricer/dataset"
)

// CSVSource reads a raw listings file.
type CSVSource struct {
	Path    string
	Options *dataset.CSVOptions
}

// NewCSVSource creates a CSVSource with default options.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Options: dataset.DefaultCSVOptions()}
}

// Load reads the whole file.
func (s *CSVSource) Load(ctx context.Context) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dataset.LoadCSV(s.Path, s.Options)
}

// CSVWriter writes encoded tables to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	header []string
	rows   int
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically. The header row is
// written with the first table.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// Write appends the rows of t.
func (c *CSVWriter) Write(ctx context.Context, t *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records := t.Records()
	if c.header == nil {
		c.header = records[0]
		if err := c.writer.Write(c.header); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	} else if !slices.Equal(c.header, records[0]) {
		return fmt.Errorf("csv: column layout %v differs from %v", records[0], c.header)
	}

	for _, row := range records[1:] {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.rows += t.Len()

	c.writer.Flush()
	return c.writer.Error()
}

// Rows returns the number of data rows written so far.
func (c *CSVWriter) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}
