package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"pledge-insights/models"
)

var enrichedHeader = []string{
	"key", "age", "cohort", "status", "pledge_current", "pledge_prior",
	"change_dollar", "change_percent", "bin", "zip",
}

// CSVWriter writes enriched household records to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(enrichedHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends the records in order. Undefined change percentages are
// written as "n/a".
func (c *CSVWriter) Write(records []models.EnrichedRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if err := c.writer.Write(enrichedRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func enrichedRow(r models.EnrichedRecord) []string {
	return []string{
		r.Key,
		strconv.Itoa(r.Age),
		r.Cohort().String(),
		r.Status.String(),
		formatAmount(r.PledgeCurrent),
		formatAmount(r.PledgePrior),
		formatAmount(r.ChangeDollar),
		formatPercent(r.ChangePercent),
		r.Bin().String(),
		r.Zip,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatPercent renders a ratio as a percentage with one decimal.
func formatPercent(v *float64) string {
	if v == nil {
		return models.NotAvailable
	}
	return strconv.FormatFloat(*v*100, 'f', 1, 64)
}
