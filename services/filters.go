package services

import "pledge-insights/models"

// Filter selects households for a narrowed view. Values within one field
// are OR-combined, fields are AND-combined, and an empty field places no
// restriction. Zips are compared after normalization.
type Filter struct {
	Statuses []models.Status
	Cohorts  []models.AgeCohort
	Bins     []models.PledgeBin
	Zips     []string
	MinAge   *int
	MaxAge   *int // inclusive
}

// IsEmpty reports whether the filter restricts nothing.
func (f Filter) IsEmpty() bool {
	return len(f.Statuses) == 0 && len(f.Cohorts) == 0 && len(f.Bins) == 0 &&
		len(f.Zips) == 0 && f.MinAge == nil && f.MaxAge == nil
}

// FilterRecords returns the households that pass f, in input order. An empty
// filter returns the input slice itself.
func FilterRecords(records []models.EnrichedRecord, f Filter) []models.EnrichedRecord {
	if f.IsEmpty() {
		return records
	}

	statuses := toSet(f.Statuses)
	cohorts := toSet(f.Cohorts)
	bins := toSet(f.Bins)
	zips := make(map[string]bool, len(f.Zips))
	for _, z := range f.Zips {
		zips[NormalizeZip(z)] = true
	}

	out := make([]models.EnrichedRecord, 0, len(records))
	for _, r := range records {
		if len(statuses) > 0 && !statuses[r.Status] {
			continue
		}
		if len(cohorts) > 0 && !cohorts[r.Cohort()] {
			continue
		}
		if len(bins) > 0 && !bins[r.Bin()] {
			continue
		}
		if len(zips) > 0 && !zips[NormalizeZip(r.Zip)] {
			continue
		}
		if f.MinAge != nil && r.Age < *f.MinAge {
			continue
		}
		if f.MaxAge != nil && r.Age > *f.MaxAge {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toSet[T comparable](items []T) map[T]bool {
	set := make(map[T]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
