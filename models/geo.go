package models

import "fmt"

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ZipAggregate holds totals for the households in one postal code.
// Coordinates and DistanceMiles are filled in by a geocoder, never by the
// aggregation itself.
type ZipAggregate struct {
	Zip          string  `json:"zip"`
	Households   int     `json:"households"`
	TotalCurrent float64 `json:"totalCurrent"`
	TotalPrior   float64 `json:"totalPrior"`
	Average      float64 `json:"average"`
	DeltaDollar  float64 `json:"deltaDollar"`
	// DeltaPercent is nil ("n/a") when TotalPrior is zero.
	DeltaPercent  *float64     `json:"deltaPercent"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	DistanceMiles *float64     `json:"distanceMiles,omitempty"`
}

// NotAvailable is the display value for an undefined ratio.
const NotAvailable = "n/a"

// DeltaPercentLabel renders DeltaPercent as a percentage with one decimal,
// or "n/a".
func (z ZipAggregate) DeltaPercentLabel() string {
	if z.DeltaPercent == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", *z.DeltaPercent*100)
}

// DistanceBin is a caller-defined half-open mileage range [Min, Max).
type DistanceBin struct {
	Label string  `json:"label" yaml:"label"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// HistogramBucket is the summed metric for one DistanceBin.
type HistogramBucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
