package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pledge-insights/models"
	"pledge-insights/utils"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "households.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXReader(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Age", "Pledge_Current", "Pledge_Prior", "Zip"},
		{45, 2500, 2000, "94506"},
		{70, "$1,200", 0, nil},
	})

	rows, err := NewXLSXReader(utils.NopLogger()).Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.ImportRow{Line: 2, Age: "45", PledgeCurrent: "2500", PledgePrior: "2000", Zip: "94506"}, rows[0])
	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, "$1,200", rows[1].PledgeCurrent)
}

func TestXLSXReaderMissingHeaders(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"name", "amount"}, {"x", 1}})
	_, err := NewXLSXReader(utils.NopLogger()).Read(path)
	assert.True(t, errors.Is(err, ErrMissingHeaders))
}

func TestXLSXExporter(t *testing.T) {
	delta := 0.25
	distance := 12.5
	records := []models.EnrichedRecord{
		{RawRecord: models.RawRecord{Age: 45, PledgeCurrent: 2500, PledgePrior: 2000, Zip: "94506"},
			Key: "hh-1", Status: models.StatusRenewed, ChangeDollar: 500, ChangePercent: &delta},
		{RawRecord: models.RawRecord{Age: 30, PledgeCurrent: 100},
			Key: "hh-2", Status: models.StatusCurrentOnly, ChangeDollar: 100},
	}
	report := &models.InsightReport{
		Cohorts:    []models.CohortMetric{{Cohort: models.CohortUnder40, Households: 1, TotalCurrent: 100}},
		Bins:       []models.BinMetric{{Bin: models.Bin1To1799, Count: 1, Total: 100, Average: 100}},
		ZeroPledge: models.ZeroPledgeMetric{Count: 0},
		HasZipData: true,
		Zips: []models.ZipAggregate{
			{Zip: "94506", Households: 1, TotalCurrent: 2500, DistanceMiles: &distance},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	require.NoError(t, NewXLSXExporter(path).Export(records, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetHouseholds, SheetCohorts, SheetBins, SheetZips}, f.GetSheetList())

	households, err := f.GetRows(SheetHouseholds)
	require.NoError(t, err)
	require.Len(t, households, 3)
	assert.Equal(t, "key", households[0][0])
	assert.Equal(t, "25.0", households[1][7])
	assert.Equal(t, models.NotAvailable, households[2][7])

	zips, err := f.GetRows(SheetZips)
	require.NoError(t, err)
	require.Len(t, zips, 2)
	assert.Equal(t, "94506", zips[1][0])
	assert.Equal(t, models.NotAvailable, zips[1][6])

	bins, err := f.GetRows(SheetBins)
	require.NoError(t, err)
	assert.Len(t, bins, 3)
	assert.Equal(t, "No pledge", bins[2][0])
}
