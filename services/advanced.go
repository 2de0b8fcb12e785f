package services

import (
	"math"
	"sort"

	"pledge-insights/models"
)

// ConcentrationShares are the top-household percentages reported by
// PledgeConcentration.
var ConcentrationShares = []int{10, 25, 50}

const (
	stableChangeFraction   = 0.10
	significantChangeLimit = 500.0
)

// RetentionRate is renewed households over households that pledged in the
// prior period, 0 when nobody did.
func RetentionRate(records []models.EnrichedRecord) float64 {
	var renewed, priorDonors int
	for _, r := range records {
		if r.PledgePrior > 0 {
			priorDonors++
		}
		if r.Status == models.StatusRenewed {
			renewed++
		}
	}
	return ratio(float64(renewed), float64(priorDonors))
}

// UpgradeDowngradeRates splits renewed households by direction of change.
func UpgradeDowngradeRates(records []models.EnrichedRecord) models.UpgradeDowngrade {
	var u models.UpgradeDowngrade
	for _, r := range records {
		if r.Status != models.StatusRenewed {
			continue
		}
		u.Renewed++
		switch {
		case r.ChangeDollar > 0:
			u.Upgraded++
		case r.ChangeDollar < 0:
			u.Downgraded++
		default:
			u.Unchanged++
		}
	}
	u.UpgradeRate = ratio(float64(u.Upgraded), float64(u.Renewed))
	u.DowngradeRate = ratio(float64(u.Downgraded), float64(u.Renewed))
	return u
}

// PledgeConcentration reports how much of the pledged total comes from the
// top 10%, 25% and 50% of pledging households. The household count for a
// share p of n pledgers is ceil(p*n), at least 1 when n > 0 (nearest rank).
func PledgeConcentration(records []models.EnrichedRecord) []models.ConcentrationTier {
	var pledges []float64
	var total float64
	for _, r := range records {
		if r.PledgeCurrent > 0 {
			pledges = append(pledges, r.PledgeCurrent)
			total += r.PledgeCurrent
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(pledges)))
	n := len(pledges)

	out := make([]models.ConcentrationTier, 0, len(ConcentrationShares))
	for _, pct := range ConcentrationShares {
		k := topCount(pct, n)
		var amount float64
		for _, p := range pledges[:k] {
			amount += p
		}
		out = append(out, models.ConcentrationTier{
			Share:          float64(pct) / 100,
			Households:     k,
			Amount:         amount,
			PercentOfTotal: ratio(amount, total) * 100,
		})
	}
	return out
}

// topCount is ceil(pct*n/100) in integer arithmetic, clamped to [1, n].
func topCount(pct, n int) int {
	if n == 0 {
		return 0
	}
	k := (pct*n + 99) / 100
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// AgeStatistics is the mean and median age over every household.
func AgeStatistics(records []models.EnrichedRecord) models.AgeStats {
	ages := make([]float64, len(records))
	for i, r := range records {
		ages[i] = float64(r.Age)
	}
	return models.AgeStats{Mean: mean(ages), Median: median(ages)}
}

// NewVsRenewedAverage compares the average gift of current-only households
// with that of renewed households.
func NewVsRenewedAverage(records []models.EnrichedRecord) models.NewVsRenewed {
	var v models.NewVsRenewed
	var newTotal, renewedTotal float64
	for _, r := range records {
		if r.PledgeCurrent <= 0 {
			continue
		}
		switch r.Status {
		case models.StatusCurrentOnly:
			v.CurrentOnlyCount++
			newTotal += r.PledgeCurrent
		case models.StatusRenewed:
			v.RenewedCount++
			renewedTotal += r.PledgeCurrent
		}
	}
	v.CurrentOnlyAverage = ratio(newTotal, float64(v.CurrentOnlyCount))
	v.RenewedAverage = ratio(renewedTotal, float64(v.RenewedCount))
	v.Difference = v.RenewedAverage - v.CurrentOnlyAverage
	return v
}

// GenerationalGiving returns count, total and average pledge per generation,
// ignoring households without a current pledge.
func GenerationalGiving(records []models.EnrichedRecord) []models.GenerationMetric {
	gens := models.AllGenerations()
	out := make([]models.GenerationMetric, len(gens))
	for i, g := range gens {
		out[i].Generation = g
	}

	for _, r := range records {
		if r.PledgeCurrent <= 0 {
			continue
		}
		m := &out[models.GenerationOf(r.Age)]
		m.Count++
		m.Total += r.PledgeCurrent
	}
	for i := range out {
		out[i].Average = ratio(out[i].Total, float64(out[i].Count))
	}
	return out
}

// PledgeChangeBehavior describes the change distribution of renewed
// households. Percentages are on a 0-100 scale; quartiles use linear
// interpolation between closest ranks.
func PledgeChangeBehavior(records []models.EnrichedRecord) models.ChangeBehavior {
	var b models.ChangeBehavior
	var changes []float64
	var stable, significant int

	for _, r := range records {
		if r.Status != models.StatusRenewed {
			continue
		}
		c := r.ChangeDollar
		changes = append(changes, c)
		if math.Abs(c) <= stableChangeFraction*r.PledgePrior {
			stable++
		}
		if math.Abs(c) > significantChangeLimit {
			significant++
		}
	}

	b.Renewed = len(changes)
	if b.Renewed == 0 {
		return b
	}

	b.PercentStable = float64(stable) / float64(b.Renewed) * 100
	b.PercentSignificantChange = float64(significant) / float64(b.Renewed) * 100
	b.RangeMin, b.RangeMax = changes[0], changes[0]
	for _, c := range changes[1:] {
		b.RangeMin = math.Min(b.RangeMin, c)
		b.RangeMax = math.Max(b.RangeMax, c)
	}
	b.Q1 = quantile(changes, 0.25)
	b.Q3 = quantile(changes, 0.75)
	return b
}

// AveragePledgeByAge is the average non-zero pledge per cohort.
func AveragePledgeByAge(records []models.EnrichedRecord) []models.AgePledgeAverage {
	cohorts := models.AllCohorts()
	out := make([]models.AgePledgeAverage, len(cohorts))
	totals := make([]float64, len(cohorts))
	for i, c := range cohorts {
		out[i].Cohort = c
	}

	for _, r := range records {
		if r.PledgeCurrent <= 0 {
			continue
		}
		c := r.Cohort()
		out[c].Count++
		totals[c] += r.PledgeCurrent
	}
	for i := range out {
		out[i].Average = ratio(totals[i], float64(out[i].Count))
	}
	return out
}

// LinearRegression fits current pledge on prior pledge by ordinary least
// squares over renewed households with both amounts positive.
//
// With no points the identity projection {1, 0, 0} is returned. When every
// prior pledge is equal the slope is 0 and the intercept is the mean current
// pledge. A zero total sum of squares gives R² = 1 for an exact fit, so a
// single point reports a perfect fit.
func LinearRegression(records []models.EnrichedRecord) models.RegressionModel {
	var xs, ys []float64
	for _, r := range records {
		if r.Status == models.StatusRenewed && r.PledgePrior > 0 && r.PledgeCurrent > 0 {
			xs = append(xs, r.PledgePrior)
			ys = append(ys, r.PledgeCurrent)
		}
	}

	n := len(xs)
	if n == 0 {
		return models.RegressionModel{Slope: 1, Intercept: 0, RSquared: 0}
	}

	mx, my := mean(xs), mean(ys)
	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}

	slope := ratio(sxy, sxx)
	intercept := my - slope*mx

	var ssRes, ssTot float64
	for i := range xs {
		pred := slope*xs[i] + intercept
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - my) * (ys[i] - my)
	}

	var r2 float64
	switch {
	case ssTot != 0:
		r2 = 1 - ssRes/ssTot
	case ssRes == 0:
		r2 = 1
	}

	return models.RegressionModel{Slope: slope, Intercept: intercept, RSquared: r2, Points: n}
}

// Forecast projects each current pledger's next gift as
// max(0, slope*current + intercept) and sums the projections.
func Forecast(model models.RegressionModel, records []models.EnrichedRecord) models.Forecast {
	f := models.Forecast{Model: model}
	for _, r := range records {
		if r.PledgeCurrent <= 0 {
			continue
		}
		f.Households++
		f.BaseTotal += r.PledgeCurrent
		f.ProjectedTotal += math.Max(0, model.Slope*r.PledgeCurrent+model.Intercept)
	}
	return f
}
