package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pledge-insights/models"
)

const (
	SheetHouseholds = "Households"
	SheetCohorts    = "Cohorts"
	SheetBins       = "Bins"
	SheetZips       = "ZIP Codes"
)

// XLSXExporter writes an enriched dataset and its breakdowns to a workbook.
type XLSXExporter struct {
	path string
}

func NewXLSXExporter(path string) *XLSXExporter {
	return &XLSXExporter{path: path}
}

// Export writes one sheet per view. The ZIP sheet carries only its header
// row when the dataset has no ZIP data.
func (e *XLSXExporter) Export(records []models.EnrichedRecord, report *models.InsightReport) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetHouseholds); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	for _, name := range []string{SheetCohorts, SheetBins, SheetZips} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: add sheet %q: %w", name, err)
		}
	}

	households := [][]any{toAny(enrichedHeader)}
	for _, r := range records {
		households = append(households, []any{
			r.Key, r.Age, r.Cohort().String(), r.Status.String(),
			r.PledgeCurrent, r.PledgePrior, r.ChangeDollar,
			formatPercent(r.ChangePercent), r.Bin().String(), r.Zip,
		})
	}

	cohorts := [][]any{{"cohort", "households", "total_current", "average_current",
		"median_current", "renewal_rate", "increased", "decreased", "no_change"}}
	for _, c := range report.Cohorts {
		cohorts = append(cohorts, []any{
			c.Cohort.String(), c.Households, c.TotalCurrent, c.AverageCurrent,
			c.MedianCurrent, c.RenewalRate, c.Increased, c.Decreased, c.NoChange,
		})
	}

	bins := [][]any{{"bin", "count", "total", "average"}}
	for _, b := range report.Bins {
		bins = append(bins, []any{b.Bin.String(), b.Count, b.Total, b.Average})
	}
	bins = append(bins, []any{models.BinNone.String(), report.ZeroPledge.Count, report.ZeroPledge.Total, 0})

	zips := [][]any{{"zip", "households", "total_current", "total_prior", "average",
		"delta_dollar", "delta_percent", "distance_miles"}}
	for _, z := range report.Zips {
		var distance any = ""
		if z.DistanceMiles != nil {
			distance = *z.DistanceMiles
		}
		zips = append(zips, []any{
			z.Zip, z.Households, z.TotalCurrent, z.TotalPrior, z.Average,
			z.DeltaDollar, z.DeltaPercentLabel(), distance,
		})
	}

	for sheet, rows := range map[string][][]any{
		SheetHouseholds: households,
		SheetCohorts:    cohorts,
		SheetBins:       bins,
		SheetZips:       zips,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", e.path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
