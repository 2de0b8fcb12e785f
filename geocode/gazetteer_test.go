package geocode

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledge-insights/models"
	"pledge-insights/services"
)

const sampleGazetteer = `zip,latitude,longitude
94526,37.8216,-121.9999
94506,37.8066,-121.9160
10001,40.7506,-73.9972
99999,not-a-number,0
`

func TestReadGazetteer(t *testing.T) {
	g, err := ReadGazetteer(strings.NewReader(sampleGazetteer))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	c, ok := g.Lookup("94526-1234")
	require.True(t, ok)
	assert.Equal(t, 37.8216, c.Latitude)

	_, ok = g.Lookup("99999")
	assert.False(t, ok)
}

func TestLoadGazetteerBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zips.csv")
	require.NoError(t, os.WriteFile(path, []byte("code,x,y\n94526,1,2\n"), 0644))
	_, err := LoadGazetteer(path)
	assert.Error(t, err)
}

func TestHaversine(t *testing.T) {
	sf := models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	la := models.Coordinates{Latitude: 34.0522, Longitude: -118.2437}

	assert.Equal(t, 0.0, Haversine(sf, sf))
	assert.InDelta(t, 347.4, Haversine(sf, la), 1.0)
	assert.InDelta(t, Haversine(sf, la), Haversine(la, sf), 1e-9)
}

func TestResolve(t *testing.T) {
	g, err := ReadGazetteer(strings.NewReader(sampleGazetteer))
	require.NoError(t, err)

	aggs := []models.ZipAggregate{
		{Zip: "94526", Households: 3},
		{Zip: "94506", Households: 2},
		{Zip: "00000", Households: 1},
	}
	resolved, err := g.Resolve(aggs, "94526")
	require.NoError(t, err)
	require.Len(t, resolved, 3)

	require.NotNil(t, resolved[0].DistanceMiles)
	assert.Equal(t, 0.0, *resolved[0].DistanceMiles)
	require.NotNil(t, resolved[1].DistanceMiles)
	assert.InDelta(t, 4.7, *resolved[1].DistanceMiles, 0.5)
	assert.NotNil(t, resolved[1].Coordinates)
	assert.Nil(t, resolved[2].DistanceMiles)
	assert.Nil(t, resolved[2].Coordinates)

	assert.Nil(t, aggs[0].DistanceMiles, "input untouched")

	_, err = g.Resolve(aggs, "12345")
	assert.True(t, errors.Is(err, ErrUnknownReference))
}

func TestResolveFeedsDistanceHistogram(t *testing.T) {
	g := NewGazetteer(map[string]models.Coordinates{
		"94526": {Latitude: 37.8216, Longitude: -121.9999},
		"10001": {Latitude: 40.7506, Longitude: -73.9972},
	})
	resolved, err := g.Resolve([]models.ZipAggregate{
		{Zip: "94526", Households: 4},
		{Zip: "10001", Households: 1},
	}, "94526")
	require.NoError(t, err)

	bins := []models.DistanceBin{{Label: "near", Min: 0, Max: 50}, {Label: "far", Min: 50, Max: 1e9}}
	hist := services.DistanceHistogram(resolved, bins, services.MetricHouseholds)
	assert.Equal(t, []models.HistogramBucket{{Label: "near", Value: 4}, {Label: "far", Value: 1}}, hist)
}
