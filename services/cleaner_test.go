package services

import (
	"encoding/json"
	"testing"

	"pledge-insights/models"
	"pledge-insights/utils"
)

func newTestLogger() *utils.Logger { return utils.NopLogger() }

func TestCleanerParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1800", 1800},
		{"$1,800.00", 1800},
		{" $2,499.995 ", 2500},
		{"USD 99", 99},
		{"", 0},
		{"-", 0},
		{"0.1", 0.1},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.raw)
		if err != nil {
			t.Errorf("parseAmount(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAmount(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}

	for _, bad := range []string{"pending", "1e400", "-1e400", "10000000000", "NaN", "Inf"} {
		if got, err := parseAmount(bad); err == nil {
			t.Errorf("parseAmount(%q) = %v; want error", bad, got)
		}
	}

	if got, err := parseAmount("9,999,999,999.99"); err != nil || got != 9999999999.99 {
		t.Errorf("parseAmount(max) = %v, %v; want 9999999999.99", got, err)
	}
}

func TestCleanerParseAge(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" 65 ", 65, false},
		{"40.0", 40, false},
		{"40.5", 0, true},
		{"", 0, true},
		{"forty", 0, true},
		{"18446744073709551661", 0, true},
		{"-18446744073709551661", 0, true},
		{"1e30", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAge(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAge(%q) error = %v; wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAge(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerDropsInvalidRows(t *testing.T) {
	c := NewCleaner(newTestLogger())
	rows := []models.ImportRow{
		{Line: 2, Age: "35", PledgeCurrent: "$2,000", PledgePrior: "1500", Zip: "94526"},
		{Line: 3, Age: "-1", PledgeCurrent: "100", PledgePrior: "0"},
		{Line: 4, Age: "50", PledgeCurrent: "-5", PledgePrior: "0"},
		{Line: 5, Age: "50", PledgeCurrent: "100", PledgePrior: "0", Zip: "9452"},
		{Line: 6, Age: "200", PledgeCurrent: "100", PledgePrior: "0"},
		{Line: 7, Age: "61", PledgeCurrent: "", PledgePrior: "300", Zip: "94526-1234"},
	}

	records, issues := c.Clean(rows)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d (%v)", len(records), issues)
	}
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d", len(issues))
	}

	want := []int{3, 4, 5, 6}
	for i, issue := range issues {
		if issue.Line != want[i] {
			t.Errorf("issue %d line: got %d, want %d", i, issue.Line, want[i])
		}
		if issue.Reason == "" {
			t.Errorf("issue %d has no reason", i)
		}
	}

	if records[0].PledgeCurrent != 2000 || records[0].PledgePrior != 1500 {
		t.Errorf("first record amounts: got %.2f/%.2f", records[0].PledgeCurrent, records[0].PledgePrior)
	}
	if records[1].PledgeCurrent != 0 || records[1].Zip != "94526-1234" {
		t.Errorf("second record: got %+v", records[1])
	}
}

func TestCleanerRejectsOversizedValues(t *testing.T) {
	c := NewCleaner(newTestLogger())
	rows := []models.ImportRow{
		{Line: 2, Age: "18446744073709551661", PledgeCurrent: "100", PledgePrior: "0"},
		{Line: 3, Age: "40", PledgeCurrent: "1e400", PledgePrior: "1e400"},
		{Line: 4, Age: "50", PledgeCurrent: "100", PledgePrior: "50"},
	}

	records, issues := c.Clean(rows)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d (%v)", len(records), records)
	}
	if len(issues) != 2 || issues[0].Line != 2 || issues[1].Line != 3 {
		t.Fatalf("expected issues on lines 2 and 3, got %v", issues)
	}

	totals := Totals(Enrich("oversized", records))
	if totals.TotalCurrent != 100 || totals.TotalPrior != 50 {
		t.Errorf("totals: got %.2f/%.2f, want 100/50", totals.TotalCurrent, totals.TotalPrior)
	}
	if _, err := json.Marshal(totals); err != nil {
		t.Errorf("totals should marshal: %v", err)
	}
}
