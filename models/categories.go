package models

import "math"

// Status describes whether a household pledged in each period.
type Status int

const (
	StatusRenewed Status = iota
	StatusCurrentOnly
	StatusPriorOnly
	StatusNoPledgeBoth
)

var statusLabels = [...]string{
	StatusRenewed:      "renewed",
	StatusCurrentOnly:  "current-only",
	StatusPriorOnly:    "prior-only",
	StatusNoPledgeBoth: "no-pledge-both",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusLabels) {
		return "unknown"
	}
	return statusLabels[s]
}

// MarshalText encodes the status as its label.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AllStatuses returns every status in display order.
func AllStatuses() []Status {
	return []Status{StatusRenewed, StatusCurrentOnly, StatusPriorOnly, StatusNoPledgeBoth}
}

// ParseStatus maps a label back to its Status.
func ParseStatus(label string) (Status, bool) {
	for _, s := range AllStatuses() {
		if s.String() == label {
			return s, true
		}
	}
	return 0, false
}

// ClassifyStatus derives the status from the signs of the two pledges.
func ClassifyStatus(current, prior float64) Status {
	switch {
	case current > 0 && prior > 0:
		return StatusRenewed
	case current > 0:
		return StatusCurrentOnly
	case prior > 0:
		return StatusPriorOnly
	default:
		return StatusNoPledgeBoth
	}
}

// AgeCohort is a half-open, lower-inclusive age bucket.
type AgeCohort int

const (
	CohortUnder40 AgeCohort = iota
	Cohort40To49
	Cohort50To64
	Cohort65Plus
)

type ageRange struct {
	label string
	min   int
	max   int // exclusive; math.MaxInt for open-ended
}

var cohortRanges = [...]ageRange{
	CohortUnder40: {"Under 40", 0, 40},
	Cohort40To49:  {"40-49", 40, 50},
	Cohort50To64:  {"50-64", 50, 65},
	Cohort65Plus:  {"65+", 65, math.MaxInt},
}

func (c AgeCohort) String() string {
	if c < 0 || int(c) >= len(cohortRanges) {
		return "unknown"
	}
	return cohortRanges[c].label
}

func (c AgeCohort) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// AllCohorts returns the four cohorts from youngest to oldest.
func AllCohorts() []AgeCohort {
	return []AgeCohort{CohortUnder40, Cohort40To49, Cohort50To64, Cohort65Plus}
}

// ParseCohort maps a label back to its AgeCohort.
func ParseCohort(label string) (AgeCohort, bool) {
	for _, c := range AllCohorts() {
		if c.String() == label {
			return c, true
		}
	}
	return 0, false
}

// CohortOf returns the cohort containing age. Ages below zero are rejected
// upstream; they fall into the youngest cohort here.
func CohortOf(age int) AgeCohort {
	switch {
	case age < 40:
		return CohortUnder40
	case age < 50:
		return Cohort40To49
	case age < 65:
		return Cohort50To64
	default:
		return Cohort65Plus
	}
}

// PledgeBin is a giving-level bucket for positive pledges.
// BinNone is the zero value and holds pledges <= 0.
type PledgeBin int

const (
	BinNone PledgeBin = iota
	Bin1To1799
	Bin1800To2499
	Bin2500To3599
	Bin3600To5399
	Bin5400Plus
)

var binLabels = [...]string{
	BinNone:       "No pledge",
	Bin1To1799:    "$1-$1,799",
	Bin1800To2499: "$1,800-$2,499",
	Bin2500To3599: "$2,500-$3,599",
	Bin3600To5399: "$3,600-$5,399",
	Bin5400Plus:   "$5,400+",
}

func (b PledgeBin) String() string {
	if b < 0 || int(b) >= len(binLabels) {
		return "unknown"
	}
	return binLabels[b]
}

func (b PledgeBin) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// AllBins returns the five pledge bins in ascending order. BinNone is not
// included.
func AllBins() []PledgeBin {
	return []PledgeBin{Bin1To1799, Bin1800To2499, Bin2500To3599, Bin3600To5399, Bin5400Plus}
}

// ParseBin maps a label back to its PledgeBin. "No pledge" parses to
// BinNone.
func ParseBin(label string) (PledgeBin, bool) {
	if label == BinNone.String() {
		return BinNone, true
	}
	for _, b := range AllBins() {
		if b.String() == label {
			return b, true
		}
	}
	return BinNone, false
}

// BinOf returns the bin whose lower bound is <= amount < upper bound, or
// BinNone for amount <= 0. Fractional amounts below 1 go to the lowest bin.
func BinOf(amount float64) PledgeBin {
	switch {
	case amount <= 0:
		return BinNone
	case amount < 1800:
		return Bin1To1799
	case amount < 2500:
		return Bin1800To2499
	case amount < 3600:
		return Bin2500To3599
	case amount < 5400:
		return Bin3600To5399
	default:
		return Bin5400Plus
	}
}

// Generation is a named age range. Its boundaries include every cohort
// boundary, so each generation sits inside exactly one cohort.
type Generation int

const (
	GenZ Generation = iota
	GenMillennial
	GenX
	GenYoungerBoomer
	GenBoomer
	GenSilent
)

var generationRanges = [...]ageRange{
	GenZ:             {"Gen Z (Under 30)", 0, 30},
	GenMillennial:    {"Millennials (30-39)", 30, 40},
	GenX:             {"Gen X (40-49)", 40, 50},
	GenYoungerBoomer: {"Younger Boomers (50-64)", 50, 65},
	GenBoomer:        {"Boomers (65-79)", 65, 80},
	GenSilent:        {"Silent Generation (80+)", 80, math.MaxInt},
}

func (g Generation) String() string {
	if g < 0 || int(g) >= len(generationRanges) {
		return "unknown"
	}
	return generationRanges[g].label
}

func (g Generation) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// AgeBounds returns the inclusive minimum and exclusive maximum age.
func (g Generation) AgeBounds() (int, int) {
	r := generationRanges[g]
	return r.min, r.max
}

// Cohort returns the cohort the generation belongs to.
func (g Generation) Cohort() AgeCohort {
	return CohortOf(generationRanges[g].min)
}

// AllGenerations returns the generations from youngest to oldest.
func AllGenerations() []Generation {
	return []Generation{GenZ, GenMillennial, GenX, GenYoungerBoomer, GenBoomer, GenSilent}
}

// GenerationOf returns the generation containing age.
func GenerationOf(age int) Generation {
	for _, g := range AllGenerations() {
		if age < generationRanges[g].max {
			return g
		}
	}
	return GenSilent
}
