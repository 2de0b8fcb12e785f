package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledge-insights/models"
)

func TestEnrichDerivedFields(t *testing.T) {
	records := sampleHouseholds()
	require.Len(t, records, 4)

	r := records[0]
	assert.Equal(t, models.StatusRenewed, r.Status)
	assert.Equal(t, 500.0, r.ChangeDollar)
	require.NotNil(t, r.ChangePercent)
	assert.InDelta(t, 1.0/3.0, *r.ChangePercent, 1e-12)

	assert.Equal(t, models.StatusCurrentOnly, records[1].Status)
	assert.Nil(t, records[1].ChangePercent, "zero prior has no relative change")

	assert.Equal(t, models.StatusPriorOnly, records[2].Status)
	assert.Equal(t, -2000.0, records[2].ChangeDollar)
	require.NotNil(t, records[2].ChangePercent)
	assert.Equal(t, -1.0, *records[2].ChangePercent)

	assert.Equal(t, models.StatusNoPledgeBoth, records[3].Status)
	assert.Nil(t, records[3].ChangePercent)
}

func TestEnrichIsDeterministic(t *testing.T) {
	input := []models.RawRecord{raw(35, 2000, 1500), rawZip(72, 5400, 5000, "94526")}

	a := Enrich("spring-2026", input)
	b := Enrich("spring-2026", input)
	assert.Equal(t, a, b)

	other := Enrich("fall-2026", input)
	assert.NotEqual(t, a[0].Key, other[0].Key, "dataset id seeds the key")
}

func TestEnrichKeysUniqueForIdenticalRows(t *testing.T) {
	input := make([]models.RawRecord, 500)
	for i := range input {
		input[i] = raw(50, 1000, 1000)
	}

	seen := make(map[string]bool)
	for _, r := range Enrich("dupes", input) {
		assert.False(t, seen[r.Key], "duplicate key %s", r.Key)
		seen[r.Key] = true
		assert.True(t, strings.HasPrefix(r.Key, "hh-"))
		assert.Len(t, r.Key, 19)
	}
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	input := []models.RawRecord{rawZip(44, 100, 0, " 94526 ")}
	_ = Enrich("x", input)
	assert.Equal(t, " 94526 ", input[0].Zip)
}

func TestEnrichEmpty(t *testing.T) {
	assert.Empty(t, Enrich("empty", nil))
}
