package storage

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pledge-insights/models"
	"pledge-insights/utils"
)

// XLSXReader reads household rows from the first sheet of a workbook.
type XLSXReader struct {
	logger *utils.Logger
}

func NewXLSXReader(logger *utils.Logger) *XLSXReader {
	return &XLSXReader{logger: logger}
}

// Read applies the same header rules as CSVReader. Cell values are taken
// unformatted so numeric cells arrive as plain numbers.
func (r *XLSXReader) Read(path string) ([]models.ImportRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: %q has no sheets", path)
	}
	sheet := sheets[0]

	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("xlsx: %q: %w: %s", path, ErrMissingHeaders, "empty sheet")
	}

	index, err := mapHeaders(cells[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: %q: %w", path, err)
	}

	var rows []models.ImportRow
	for i, record := range cells[1:] {
		if row, ok := toImportRow(record, index, i+2); ok {
			rows = append(rows, row)
		}
	}

	r.logger.Debug("[xlsx] Read %d rows from %s (sheet %q)", len(rows), path, sheet)
	return rows, nil
}
