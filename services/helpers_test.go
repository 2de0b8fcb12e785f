package services

import "pledge-insights/models"

func raw(age int, current, prior float64) models.RawRecord {
	return models.RawRecord{Age: age, PledgeCurrent: current, PledgePrior: prior}
}

func rawZip(age int, current, prior float64, zip string) models.RawRecord {
	return models.RawRecord{Age: age, PledgeCurrent: current, PledgePrior: prior, Zip: zip}
}

func enriched(rs ...models.RawRecord) []models.EnrichedRecord {
	return Enrich("test-dataset", rs)
}

// sampleHouseholds is the four-status example used across the tests.
func sampleHouseholds() []models.EnrichedRecord {
	return enriched(
		raw(35, 2000, 1500),
		raw(40, 1800, 0),
		raw(50, 0, 2000),
		raw(60, 0, 0),
	)
}
