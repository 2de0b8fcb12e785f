package services

import (
	"math"
	"sort"
	"strings"

	"pledge-insights/models"
)

// ZipField names a sortable ZipAggregate column.
type ZipField string

const (
	ZipFieldZip          ZipField = "zip"
	ZipFieldHouseholds   ZipField = "households"
	ZipFieldTotalCurrent ZipField = "totalCurrent"
	ZipFieldTotalPrior   ZipField = "totalPrior"
	ZipFieldAverage      ZipField = "average"
	ZipFieldDeltaDollar  ZipField = "deltaDollar"
	ZipFieldDeltaPercent ZipField = "deltaPercent"
	ZipFieldDistance     ZipField = "distanceMiles"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// HistogramMetric selects what DistanceHistogram sums per bin.
type HistogramMetric string

const (
	MetricHouseholds   HistogramMetric = "households"
	MetricTotalCurrent HistogramMetric = "totalCurrent"
)

// HasZipData reports whether any household carries a postal code.
func HasZipData(records []models.EnrichedRecord) bool {
	for _, r := range records {
		if strings.TrimSpace(r.Zip) != "" {
			return true
		}
	}
	return false
}

// NormalizeZip trims whitespace and cuts a ZIP+4 code down to its 5-digit
// prefix: "94526-1234" and "945261234" both become "94526".
func NormalizeZip(raw string) string {
	z := strings.TrimSpace(raw)
	if i := strings.IndexAny(z, "- "); i >= 0 {
		z = z[:i]
	}
	if len(z) > 5 {
		z = z[:5]
	}
	return z
}

// AggregateByZip groups households by normalized postal code, ordered by
// code. Households without a code are left out.
func AggregateByZip(records []models.EnrichedRecord) []models.ZipAggregate {
	groups := make(map[string]*models.ZipAggregate)
	for _, r := range records {
		zip := NormalizeZip(r.Zip)
		if zip == "" {
			continue
		}
		g, ok := groups[zip]
		if !ok {
			g = &models.ZipAggregate{Zip: zip}
			groups[zip] = g
		}
		g.Households++
		g.TotalCurrent += r.PledgeCurrent
		g.TotalPrior += r.PledgePrior
	}

	out := make([]models.ZipAggregate, 0, len(groups))
	for _, g := range groups {
		g.Average = ratio(g.TotalCurrent, float64(g.Households))
		g.DeltaDollar = g.TotalCurrent - g.TotalPrior
		g.DeltaPercent = ratioPtr(g.DeltaDollar, g.TotalPrior)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Zip < out[j].Zip })
	return out
}

// DistanceHistogram sums households or current pledges into the first bin
// whose [Min, Max) range holds each aggregate's distance. Aggregates without
// a resolved distance are skipped.
func DistanceHistogram(aggregates []models.ZipAggregate, bins []models.DistanceBin, metric HistogramMetric) []models.HistogramBucket {
	out := make([]models.HistogramBucket, len(bins))
	for i, b := range bins {
		out[i].Label = b.Label
	}

	for _, a := range aggregates {
		if a.DistanceMiles == nil {
			continue
		}
		d := *a.DistanceMiles
		for i, b := range bins {
			if d < b.Min || d >= b.Max {
				continue
			}
			switch metric {
			case MetricTotalCurrent:
				out[i].Value += a.TotalCurrent
			default:
				out[i].Value += float64(a.Households)
			}
			break
		}
	}
	return out
}

// SortZipAggregates returns a stably sorted copy. An "n/a" delta percent
// sorts as -Inf and a missing distance as +Inf. Unknown fields keep the
// input order.
func SortZipAggregates(aggregates []models.ZipAggregate, field ZipField, direction SortDirection) []models.ZipAggregate {
	out := make([]models.ZipAggregate, len(aggregates))
	copy(out, aggregates)

	desc := direction == Descending
	if field == ZipFieldZip {
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return out[i].Zip > out[j].Zip
			}
			return out[i].Zip < out[j].Zip
		})
		return out
	}

	key := numericKey(field)
	if key == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

func numericKey(field ZipField) func(models.ZipAggregate) float64 {
	switch field {
	case ZipFieldHouseholds:
		return func(z models.ZipAggregate) float64 { return float64(z.Households) }
	case ZipFieldTotalCurrent:
		return func(z models.ZipAggregate) float64 { return z.TotalCurrent }
	case ZipFieldTotalPrior:
		return func(z models.ZipAggregate) float64 { return z.TotalPrior }
	case ZipFieldAverage:
		return func(z models.ZipAggregate) float64 { return z.Average }
	case ZipFieldDeltaDollar:
		return func(z models.ZipAggregate) float64 { return z.DeltaDollar }
	case ZipFieldDeltaPercent:
		return func(z models.ZipAggregate) float64 {
			if z.DeltaPercent == nil {
				return math.Inf(-1)
			}
			return *z.DeltaPercent
		}
	case ZipFieldDistance:
		return func(z models.ZipAggregate) float64 {
			if z.DistanceMiles == nil {
				return math.Inf(1)
			}
			return *z.DistanceMiles
		}
	}
	return nil
}
