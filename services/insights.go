package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pledge-insights/models"
	"pledge-insights/utils"
)

// InsightService builds the full report over an enriched record set.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes every view over records. Each section is a pure function
// of the same read-only slice, so sections run concurrently. A cancelled ctx
// stops sections that have not started and its error is returned.
func (s *InsightService) Generate(ctx context.Context, records []models.EnrichedRecord) (*models.InsightReport, error) {
	defer s.logger.Elapsed("insights.generate", time.Now())

	report := &models.InsightReport{}
	g, ctx := errgroup.WithContext(ctx)
	section := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	section(func() { report.Totals = Totals(records) })
	section(func() { report.Cohorts = CohortMetrics(records) })
	section(func() { report.Bins = BinMetrics(records) })
	section(func() { report.Statuses = StatusMetrics(records) })
	section(func() { report.ZeroPledge = ZeroPledgeMetrics(records) })
	section(func() { report.RetentionRate = RetentionRate(records) })
	section(func() { report.UpgradeDowngrade = UpgradeDowngradeRates(records) })
	section(func() { report.Concentration = PledgeConcentration(records) })
	section(func() { report.AgeStats = AgeStatistics(records) })
	section(func() { report.NewVsRenewed = NewVsRenewedAverage(records) })
	section(func() { report.Generations = GenerationalGiving(records) })
	section(func() { report.ChangeBehavior = PledgeChangeBehavior(records) })
	section(func() { report.AgeAverages = AveragePledgeByAge(records) })
	section(func() {
		report.Regression = LinearRegression(records)
		report.Forecast = Forecast(report.Regression, records)
	})
	section(func() {
		report.HasZipData = HasZipData(records)
		if report.HasZipData {
			report.Zips = AggregateByZip(records)
		}
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}

	s.logger.Debug("[insights] Report built for %d households (%d ZIP codes)",
		report.Totals.Households, len(report.Zips))
	return report, nil
}

// Print writes a terminal summary of the report to w.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)
	section := func(title string) {
		fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
		fmt.Fprintf(w, "  %s\n", thin)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  PLEDGE INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	t := r.Totals
	section("Overview")
	fmt.Fprintf(w, "  Households       : \033[1m%d\033[0m\n", t.Households)
	fmt.Fprintf(w, "  Current pledged  : \033[1;32m%s\033[0m\n", FormatCurrency(t.TotalCurrent))
	fmt.Fprintf(w, "  Prior pledged    : %s\n", FormatCurrency(t.TotalPrior))
	fmt.Fprintf(w, "  Change           : %s (%s)\n", FormatCurrency(t.DeltaDollar), formatRatio(t.DeltaPercent))
	fmt.Fprintf(w, "  Renewed %d | Current-only %d | Prior-only %d | No pledge %d\n",
		t.Renewed, t.CurrentOnly, t.PriorOnly, t.NoPledgeBoth)
	fmt.Fprintf(w, "  Retention rate   : %.1f%%\n\n", r.RetentionRate*100)

	section("Age Cohorts")
	for _, c := range r.Cohorts {
		fmt.Fprintf(w, "  %-10s %4d hh  total %-14s avg %-12s median %-12s renew %5.1f%%\n",
			c.Cohort, c.Households, FormatCurrency(c.TotalCurrent), FormatCurrency(c.AverageCurrent),
			FormatCurrency(c.MedianCurrent), c.RenewalRate*100)
	}
	fmt.Fprintln(w)

	section("Giving Levels")
	for _, b := range r.Bins {
		bar := strings.Repeat("█", barWidth(b.Count, t.Households, 30))
		fmt.Fprintf(w, "  %-14s %-30s %4d  %s\n", b.Bin, bar, b.Count, FormatCurrency(b.Total))
	}
	fmt.Fprintf(w, "  %-14s %-30s %4d\n\n", "No pledge", "", r.ZeroPledge.Count)

	section("Concentration")
	for _, c := range r.Concentration {
		fmt.Fprintf(w, "  Top %2.0f%% (%d hh) give %s = %.1f%% of total\n",
			c.Share*100, c.Households, FormatCurrency(c.Amount), c.PercentOfTotal)
	}
	fmt.Fprintln(w)

	u := r.UpgradeDowngrade
	cb := r.ChangeBehavior
	section("Pledge Changes (renewed)")
	fmt.Fprintf(w, "  Upgraded %d (%.1f%%) | Downgraded %d (%.1f%%) | Unchanged %d\n",
		u.Upgraded, u.UpgradeRate*100, u.Downgraded, u.DowngradeRate*100, u.Unchanged)
	fmt.Fprintf(w, "  Stable (±10%%) %.1f%% | Changed > $500 %.1f%%\n", cb.PercentStable, cb.PercentSignificantChange)
	fmt.Fprintf(w, "  Range %s to %s | Q1 %s | Q3 %s\n\n",
		FormatCurrency(cb.RangeMin), FormatCurrency(cb.RangeMax), FormatCurrency(cb.Q1), FormatCurrency(cb.Q3))

	nv := r.NewVsRenewed
	section("New vs Renewed")
	fmt.Fprintf(w, "  New average     : %s (%d hh)\n", FormatCurrency(nv.CurrentOnlyAverage), nv.CurrentOnlyCount)
	fmt.Fprintf(w, "  Renewed average : %s (%d hh)\n", FormatCurrency(nv.RenewedAverage), nv.RenewedCount)
	fmt.Fprintf(w, "  Difference      : %s\n\n", FormatCurrency(nv.Difference))

	section("Generations")
	for _, g := range r.Generations {
		fmt.Fprintf(w, "  %-26s %4d hh  avg %s\n", g.Generation, g.Count, FormatCurrency(g.Average))
	}
	fmt.Fprintf(w, "  Mean age %.1f | Median age %.1f\n\n", r.AgeStats.Mean, r.AgeStats.Median)

	f := r.Forecast
	section("Forecast")
	fmt.Fprintf(w, "  current = %.3f × prior + %s (R² %.3f, %d points)\n",
		f.Model.Slope, FormatCurrency(f.Model.Intercept), f.Model.RSquared, f.Model.Points)
	fmt.Fprintf(w, "  Next period projection: %s from %d pledgers\n\n", FormatCurrency(f.ProjectedTotal), f.Households)

	if r.HasZipData {
		section("Top ZIP Codes")
		top := SortZipAggregates(r.Zips, ZipFieldTotalCurrent, Descending)
		if len(top) > 10 {
			top = top[:10]
		}
		for _, z := range top {
			fmt.Fprintf(w, "  %-6s %4d hh  %-14s change %s\n",
				z.Zip, z.Households, FormatCurrency(z.TotalCurrent), z.DeltaPercentLabel())
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

var currencyPrinter = message.NewPrinter(language.English)

// FormatCurrency renders whole dollars with comma separators: -$1,234.
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	n := int64(amount + 0.5)
	if n == 0 {
		sign = ""
	}
	return sign + "$" + currencyPrinter.Sprintf("%d", n)
}

func formatRatio(v *float64) string {
	if v == nil {
		return models.NotAvailable
	}
	return fmt.Sprintf("%+.1f%%", *v*100)
}

func barWidth(count, total, width int) int {
	if total == 0 {
		return 0
	}
	return count * width / total
}
