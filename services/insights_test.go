package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"pledge-insights/models"
)

func sampleReportRecords() []models.EnrichedRecord {
	return enriched(
		rawZip(35, 2000, 1500, "94526"),
		rawZip(40, 1800, 0, "94526"),
		rawZip(50, 0, 2000, "94506-4410"),
		raw(60, 0, 0),
		rawZip(68, 5400, 5000, "94506"),
	)
}

func generate(t *testing.T, records []models.EnrichedRecord) *models.InsightReport {
	t.Helper()
	r, err := NewInsightService(newTestLogger()).Generate(context.Background(), records)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return r
}

func TestInsightCounts(t *testing.T) {
	r := generate(t, sampleReportRecords())
	if r.Totals.Households != 5 {
		t.Errorf("Households: got %d, want 5", r.Totals.Households)
	}
	if r.Totals.Renewed != 2 {
		t.Errorf("Renewed: got %d, want 2", r.Totals.Renewed)
	}
	if r.ZeroPledge.Count != 2 {
		t.Errorf("ZeroPledge: got %d, want 2", r.ZeroPledge.Count)
	}
}

func TestInsightMatchesStandaloneFunctions(t *testing.T) {
	records := sampleReportRecords()
	r := generate(t, records)

	if r.RetentionRate != RetentionRate(records) {
		t.Errorf("RetentionRate: got %v, want %v", r.RetentionRate, RetentionRate(records))
	}
	if r.Regression != LinearRegression(records) {
		t.Errorf("Regression: got %+v", r.Regression)
	}
	if len(r.Cohorts) != 4 || len(r.Bins) != 5 || len(r.Statuses) != 4 || len(r.Generations) != 6 {
		t.Errorf("unexpected section sizes: %d cohorts, %d bins, %d statuses, %d generations",
			len(r.Cohorts), len(r.Bins), len(r.Statuses), len(r.Generations))
	}
	if len(r.Concentration) != len(ConcentrationShares) {
		t.Errorf("Concentration tiers: got %d", len(r.Concentration))
	}
}

func TestInsightZipSection(t *testing.T) {
	r := generate(t, sampleReportRecords())
	if !r.HasZipData {
		t.Fatal("HasZipData should be true")
	}
	if len(r.Zips) != 2 {
		t.Fatalf("Zips: got %d, want 2", len(r.Zips))
	}
	if r.Zips[0].Zip != "94506" || r.Zips[0].Households != 2 {
		t.Errorf("first zip: got %+v", r.Zips[0])
	}

	noZip := generate(t, enriched(raw(40, 100, 0)))
	if noZip.HasZipData || len(noZip.Zips) != 0 {
		t.Errorf("expected no zip section, got %+v", noZip.Zips)
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, generate(t, sampleReportRecords()))

	out := buf.String()
	for _, want := range []string{"PLEDGE INSIGHTS", "Under 40", "$5,400+", "Top ZIP Codes", "94526", "$9,200"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := generate(t, nil)
	if r.Totals.Households != 0 {
		t.Errorf("expected 0 households for empty input")
	}
	var buf bytes.Buffer
	svc.Print(&buf, r)
	if !strings.Contains(buf.String(), "n/a") {
		t.Error("empty report should show n/a change")
	}
}

func TestInsightCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewInsightService(newTestLogger()).Generate(ctx, sampleReportRecords())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r != nil {
		t.Errorf("expected no report on cancel, got %+v", r)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{1800, "$1,800"},
		{1234567.4, "$1,234,567"},
		{-2500, "-$2,500"},
		{-0.2, "$0"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
