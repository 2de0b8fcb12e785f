package models

// ImportRow holds unprocessed cell values for one household as read from an
// uploaded file. It is validated and converted to a RawRecord before any
// classification runs.
type ImportRow struct {
	Line          int
	Age           string
	PledgeCurrent string
	PledgePrior   string
	Zip           string
}

// ImportIssue records why an ImportRow was rejected.
type ImportIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// RawRecord is a validated household giving record.
// Ages and amounts are guaranteed non-negative by the import layer.
type RawRecord struct {
	Age           int     `json:"age" validate:"gte=0,lte=130"`
	PledgeCurrent float64 `json:"pledgeCurrent" validate:"gte=0,lte=9999999999.99"`
	PledgePrior   float64 `json:"pledgePrior" validate:"gte=0,lte=9999999999.99"`
	Zip           string  `json:"zip,omitempty" validate:"omitempty,zipcode"`
}

// EnrichedRecord is a RawRecord plus its derived classification.
// It is never mutated after enrichment.
type EnrichedRecord struct {
	RawRecord
	Key          string  `json:"key"`
	Status       Status  `json:"status"`
	ChangeDollar float64 `json:"changeDollar"`
	// ChangePercent is nil when PledgePrior is zero.
	ChangePercent *float64 `json:"changePercent"`
}

// Cohort returns the age cohort of the household.
func (r EnrichedRecord) Cohort() AgeCohort {
	return CohortOf(r.Age)
}

// Bin returns the pledge bin of the current pledge, BinNone for zero pledges.
func (r EnrichedRecord) Bin() PledgeBin {
	return BinOf(r.PledgeCurrent)
}
