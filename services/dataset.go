package services

import (
	"fmt"

	"pledge-insights/models"
)

// Dataset is one cleaned and enriched input, ready for reporting.
type Dataset struct {
	ID      string
	Raw     []models.RawRecord
	Records []models.EnrichedRecord
	Issues  []models.ImportIssue
}

// BuildDataset cleans rows and enriches what survives under id. It returns
// ErrNoRecords, together with the issues found, when no row is usable.
func (c *Cleaner) BuildDataset(id string, rows []models.ImportRow) (*Dataset, error) {
	raw, issues := c.Clean(rows)
	ds := &Dataset{ID: id, Raw: raw, Issues: issues}
	if len(raw) == 0 {
		return ds, fmt.Errorf("dataset %q: %w", id, ErrNoRecords)
	}
	ds.Records = Enrich(id, raw)
	return ds, nil
}

// FromSnapshot rebuilds a Dataset from stored raw records, keyed by the
// snapshot id. Keys are stable across reloads of the same snapshot; they do
// not match the keys of the file the snapshot was saved from.
func FromSnapshot(s *models.Snapshot) *Dataset {
	return &Dataset{
		ID:      s.ID,
		Raw:     s.Records,
		Records: Enrich(s.ID, s.Records),
	}
}
