package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledge-insights/models"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	change := -0.5
	records := []models.EnrichedRecord{
		{RawRecord: models.RawRecord{Age: 52, PledgeCurrent: 1000, PledgePrior: 2000, Zip: "94526"},
			Key: "hh-a", Status: models.StatusRenewed, ChangeDollar: -1000, ChangePercent: &change},
		{RawRecord: models.RawRecord{Age: 38, PledgeCurrent: 0, PledgePrior: 0},
			Key: "hh-b", Status: models.StatusNoPledgeBoth},
	}

	path := filepath.Join(t.TempDir(), "nested", "enriched.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(records))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, enrichedHeader, rows[0])
	assert.Equal(t, []string{"hh-a", "52", "50-64", "renewed", "1000.00", "2000.00", "-1000.00", "-50.0", "$1-$1,799", "94526"}, rows[1])
	assert.Equal(t, []string{"hh-b", "38", "Under 40", "no-pledge-both", "0.00", "0.00", "0.00", "n/a", "No pledge", ""}, rows[2])
}
