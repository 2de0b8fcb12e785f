package models

// Totals summarises a whole record set.
type Totals struct {
	Households   int     `json:"households"`
	TotalCurrent float64 `json:"totalCurrent"`
	TotalPrior   float64 `json:"totalPrior"`
	DeltaDollar  float64 `json:"deltaDollar"`
	// DeltaPercent is nil when TotalPrior is zero.
	DeltaPercent *float64 `json:"deltaPercent"`
	Renewed      int      `json:"renewed"`
	CurrentOnly  int      `json:"currentOnly"`
	PriorOnly    int      `json:"priorOnly"`
	NoPledgeBoth int      `json:"noPledgeBoth"`
}

// CohortMetric is one row of the per-cohort breakdown.
type CohortMetric struct {
	Cohort         AgeCohort `json:"cohort"`
	Households     int       `json:"households"`
	TotalCurrent   float64   `json:"totalCurrent"`
	AverageCurrent float64   `json:"averageCurrent"`
	MedianCurrent  float64   `json:"medianCurrent"`
	RenewalRate    float64   `json:"renewalRate"`
	Increased      int       `json:"increased"`
	Decreased      int       `json:"decreased"`
	NoChange       int       `json:"noChange"`
}

// BinMetric is one row of the giving-level breakdown.
type BinMetric struct {
	Bin     PledgeBin `json:"bin"`
	Count   int       `json:"count"`
	Total   float64   `json:"total"`
	Average float64   `json:"average"`
}

// StatusMetric is one row of the per-status breakdown.
type StatusMetric struct {
	Status       Status  `json:"status"`
	Count        int     `json:"count"`
	TotalCurrent float64 `json:"totalCurrent"`
	TotalPrior   float64 `json:"totalPrior"`
}

// ZeroPledgeMetric counts households with no current pledge.
type ZeroPledgeMetric struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// UpgradeDowngrade reports direction of change among renewed households.
type UpgradeDowngrade struct {
	Renewed       int     `json:"renewed"`
	Upgraded      int     `json:"upgraded"`
	Downgraded    int     `json:"downgraded"`
	Unchanged     int     `json:"unchanged"`
	UpgradeRate   float64 `json:"upgradeRate"`
	DowngradeRate float64 `json:"downgradeRate"`
}

// ConcentrationTier is the share of dollars given by the top households.
type ConcentrationTier struct {
	Share          float64 `json:"share"`
	Households     int     `json:"households"`
	Amount         float64 `json:"amount"`
	PercentOfTotal float64 `json:"percentOfTotal"`
}

// AgeStats describes the age distribution of all households.
type AgeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// NewVsRenewed compares average gifts of first-time and returning pledgers.
type NewVsRenewed struct {
	CurrentOnlyCount   int     `json:"currentOnlyCount"`
	CurrentOnlyAverage float64 `json:"currentOnlyAverage"`
	RenewedCount       int     `json:"renewedCount"`
	RenewedAverage     float64 `json:"renewedAverage"`
	Difference         float64 `json:"difference"`
}

// GenerationMetric is one row of the generational giving breakdown.
type GenerationMetric struct {
	Generation Generation `json:"generation"`
	Count      int        `json:"count"`
	Total      float64    `json:"total"`
	Average    float64    `json:"average"`
}

// ChangeBehavior summarises how renewed households changed their pledge.
type ChangeBehavior struct {
	Renewed                  int     `json:"renewed"`
	PercentStable            float64 `json:"percentStable"`
	PercentSignificantChange float64 `json:"percentSignificantChange"`
	RangeMin                 float64 `json:"rangeMin"`
	RangeMax                 float64 `json:"rangeMax"`
	Q1                       float64 `json:"q1"`
	Q3                       float64 `json:"q3"`
}

// AgePledgeAverage is the average non-zero pledge for one cohort.
type AgePledgeAverage struct {
	Cohort  AgeCohort `json:"cohort"`
	Count   int       `json:"count"`
	Average float64   `json:"average"`
}

// RegressionModel is an ordinary least-squares fit of current on prior pledge.
type RegressionModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"rSquared"`
	Points    int     `json:"points"`
}

// Forecast projects next-period giving from the regression model.
type Forecast struct {
	Model          RegressionModel `json:"model"`
	Households     int             `json:"households"`
	BaseTotal      float64         `json:"baseTotal"`
	ProjectedTotal float64         `json:"projectedTotal"`
}

// InsightReport bundles every derived view over one record set.
type InsightReport struct {
	Totals           Totals              `json:"totals"`
	Cohorts          []CohortMetric      `json:"cohorts"`
	Bins             []BinMetric         `json:"bins"`
	Statuses         []StatusMetric      `json:"statuses"`
	ZeroPledge       ZeroPledgeMetric    `json:"zeroPledge"`
	RetentionRate    float64             `json:"retentionRate"`
	UpgradeDowngrade UpgradeDowngrade    `json:"upgradeDowngrade"`
	Concentration    []ConcentrationTier `json:"concentration"`
	AgeStats         AgeStats            `json:"ageStats"`
	NewVsRenewed     NewVsRenewed        `json:"newVsRenewed"`
	Generations      []GenerationMetric  `json:"generations"`
	ChangeBehavior   ChangeBehavior      `json:"changeBehavior"`
	AgeAverages      []AgePledgeAverage  `json:"ageAverages"`
	Regression       RegressionModel     `json:"regression"`
	Forecast         Forecast            `json:"forecast"`
	HasZipData       bool                `json:"hasZipData"`
	Zips             []ZipAggregate      `json:"zips,omitempty"`
}
