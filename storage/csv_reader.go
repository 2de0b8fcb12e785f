package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pledge-insights/models"
	"pledge-insights/utils"
)

const (
	colAge     = "age"
	colCurrent = "current"
	colPrior   = "prior"
	colZip     = "zip"
)

// headerAliases maps every accepted column name to its canonical field.
var headerAliases = map[string]string{
	"age":            colAge,
	"pledge_current": colCurrent,
	"current_pledge": colCurrent,
	"current":        colCurrent,
	"pledge_prior":   colPrior,
	"prior_pledge":   colPrior,
	"prior":          colPrior,
	"zip":            colZip,
	"zipcode":        colZip,
	"zip_code":       colZip,
	"postal_code":    colZip,
}

var requiredColumns = []string{colAge, colCurrent, colPrior}

// CSVReader reads household rows from a CSV file with a header line.
type CSVReader struct {
	logger *utils.Logger
}

func NewCSVReader(logger *utils.Logger) *CSVReader {
	return &CSVReader{logger: logger}
}

// Read returns one ImportRow per non-blank data line. Lines that the CSV
// parser rejects are skipped with a warning.
func (r *CSVReader) Read(path string) ([]models.ImportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	index, err := mapHeaders(header)
	if err != nil {
		return nil, fmt.Errorf("csv: %q: %w", path, err)
	}

	var rows []models.ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.logger.Warn("[csv] %s skipped: %v", filepath.Base(path), err)
			continue
		}
		line, _ := reader.FieldPos(0)
		if row, ok := toImportRow(record, index, line); ok {
			rows = append(rows, row)
		}
	}

	r.logger.Debug("[csv] Read %d rows from %s", len(rows), path)
	return rows, nil
}

// mapHeaders resolves the canonical field positions from a header row. The
// first column matching a field wins.
func mapHeaders(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeHeader(name)
		field, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, seen := index[field]; !seen {
			index[field] = i
		}
	}

	if missing := missingHeaders(requiredColumns, index); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}
	return index, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

func missingHeaders(required []string, index map[string]int) []string {
	var missing []string
	for _, key := range required {
		if _, ok := index[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// toImportRow picks the mapped cells out of record. Rows with every mapped
// cell empty are reported as not ok.
func toImportRow(record []string, index map[string]int, line int) (models.ImportRow, bool) {
	get := func(field string) string {
		pos, ok := index[field]
		if !ok || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	row := models.ImportRow{
		Line:          line,
		Age:           get(colAge),
		PledgeCurrent: get(colCurrent),
		PledgePrior:   get(colPrior),
		Zip:           get(colZip),
	}
	if row.Age == "" && row.PledgeCurrent == "" && row.PledgePrior == "" && row.Zip == "" {
		return row, false
	}
	return row, true
}

// ReaderFor picks a RecordReader from the file extension.
func ReaderFor(path string, logger *utils.Logger) RecordReader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return NewXLSXReader(logger)
	default:
		return NewCSVReader(logger)
	}
}
