package services

import "pledge-insights/models"

// Every function here reads its input without modifying it and returns
// zero-valued metrics for an empty set.

// Totals sums the whole record set and counts households per status.
func Totals(records []models.EnrichedRecord) models.Totals {
	var t models.Totals
	t.Households = len(records)

	for _, r := range records {
		t.TotalCurrent += r.PledgeCurrent
		t.TotalPrior += r.PledgePrior
		switch r.Status {
		case models.StatusRenewed:
			t.Renewed++
		case models.StatusCurrentOnly:
			t.CurrentOnly++
		case models.StatusPriorOnly:
			t.PriorOnly++
		case models.StatusNoPledgeBoth:
			t.NoPledgeBoth++
		}
	}

	t.DeltaDollar = t.TotalCurrent - t.TotalPrior
	t.DeltaPercent = ratioPtr(t.DeltaDollar, t.TotalPrior)
	return t
}

// CohortMetrics returns one row per age cohort, youngest first.
func CohortMetrics(records []models.EnrichedRecord) []models.CohortMetric {
	type acc struct {
		pledges      []float64
		priorDonors  int
		renewed      int
		increased    int
		decreased    int
		noChange     int
		totalCurrent float64
	}
	groups := make(map[models.AgeCohort]*acc, 4)
	for _, c := range models.AllCohorts() {
		groups[c] = &acc{}
	}

	for _, r := range records {
		g := groups[r.Cohort()]
		g.pledges = append(g.pledges, r.PledgeCurrent)
		g.totalCurrent += r.PledgeCurrent
		if r.PledgePrior > 0 {
			g.priorDonors++
		}
		if r.Status != models.StatusRenewed {
			continue
		}
		g.renewed++
		switch {
		case r.ChangeDollar > 0:
			g.increased++
		case r.ChangeDollar < 0:
			g.decreased++
		default:
			g.noChange++
		}
	}

	out := make([]models.CohortMetric, 0, 4)
	for _, c := range models.AllCohorts() {
		g := groups[c]
		n := len(g.pledges)
		out = append(out, models.CohortMetric{
			Cohort:         c,
			Households:     n,
			TotalCurrent:   g.totalCurrent,
			AverageCurrent: ratio(g.totalCurrent, float64(n)),
			MedianCurrent:  median(g.pledges),
			RenewalRate:    ratio(float64(g.renewed), float64(g.priorDonors)),
			Increased:      g.increased,
			Decreased:      g.decreased,
			NoChange:       g.noChange,
		})
	}
	return out
}

// BinMetrics returns one row per pledge bin. Zero pledges are left to
// ZeroPledgeMetrics.
func BinMetrics(records []models.EnrichedRecord) []models.BinMetric {
	bins := models.AllBins()
	index := make(map[models.PledgeBin]int, len(bins))
	out := make([]models.BinMetric, len(bins))
	for i, b := range bins {
		index[b] = i
		out[i].Bin = b
	}

	for _, r := range records {
		i, ok := index[r.Bin()]
		if !ok {
			continue
		}
		out[i].Count++
		out[i].Total += r.PledgeCurrent
	}

	for i := range out {
		out[i].Average = ratio(out[i].Total, float64(out[i].Count))
	}
	return out
}

// StatusMetrics returns one row per status in display order.
func StatusMetrics(records []models.EnrichedRecord) []models.StatusMetric {
	statuses := models.AllStatuses()
	out := make([]models.StatusMetric, len(statuses))
	for i, s := range statuses {
		out[i].Status = s
	}

	for _, r := range records {
		m := &out[r.Status]
		m.Count++
		m.TotalCurrent += r.PledgeCurrent
		m.TotalPrior += r.PledgePrior
	}
	return out
}

// ZeroPledgeMetrics counts households with no current pledge, whatever they
// gave before.
func ZeroPledgeMetrics(records []models.EnrichedRecord) models.ZeroPledgeMetric {
	var m models.ZeroPledgeMetric
	for _, r := range records {
		if r.PledgeCurrent == 0 {
			m.Count++
			m.Total += r.PledgeCurrent
		}
	}
	return m
}
