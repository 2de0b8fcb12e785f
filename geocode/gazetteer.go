// Package geocode resolves ZIP codes to coordinates from an offline
// gazetteer and measures distances between them.
package geocode

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"pledge-insights/models"
	"pledge-insights/services"
)

// EarthRadiusMiles is the mean Earth radius used by Haversine.
const EarthRadiusMiles = 3958.8

// ErrUnknownReference is returned by Resolve when the reference ZIP is not in
// the gazetteer.
var ErrUnknownReference = errors.New("reference zip not in gazetteer")

// Gazetteer maps 5-digit ZIP codes to coordinates.
type Gazetteer struct {
	coords map[string]models.Coordinates
}

// NewGazetteer builds a Gazetteer from an in-memory table. Keys are
// normalized to 5 digits.
func NewGazetteer(table map[string]models.Coordinates) *Gazetteer {
	g := &Gazetteer{coords: make(map[string]models.Coordinates, len(table))}
	for zip, c := range table {
		if z := services.NormalizeZip(zip); z != "" {
			g.coords[z] = c
		}
	}
	return g
}

// LoadGazetteer reads a CSV with zip, latitude and longitude columns.
// Rows with unparseable coordinates are skipped.
func LoadGazetteer(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geocode: open %q: %w", path, err)
	}
	defer f.Close()
	return ReadGazetteer(f)
}

// ReadGazetteer parses gazetteer CSV from r.
func ReadGazetteer(r io.Reader) (*Gazetteer, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("geocode: read header: %w", err)
	}
	zipCol, latCol, lngCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "zip", "zipcode", "zip_code":
			zipCol = i
		case "latitude", "lat":
			latCol = i
		case "longitude", "lng", "lon":
			lngCol = i
		}
	}
	if zipCol < 0 || latCol < 0 || lngCol < 0 {
		return nil, fmt.Errorf("geocode: header needs zip, latitude and longitude columns, got %v", header)
	}

	g := &Gazetteer{coords: make(map[string]models.Coordinates)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("geocode: %w", err)
		}
		if len(record) <= max(zipCol, latCol, lngCol) {
			continue
		}
		zip := services.NormalizeZip(record[zipCol])
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[latCol]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(record[lngCol]), 64)
		if zip == "" || latErr != nil || lngErr != nil {
			continue
		}
		g.coords[zip] = models.Coordinates{Latitude: lat, Longitude: lng}
	}
	return g, nil
}

// Lookup returns the coordinates of zip, which may be ZIP+4.
func (g *Gazetteer) Lookup(zip string) (models.Coordinates, bool) {
	c, ok := g.coords[services.NormalizeZip(zip)]
	return c, ok
}

func (g *Gazetteer) Len() int {
	return len(g.coords)
}

// Resolve returns copies of aggs with Coordinates and DistanceMiles from the
// reference ZIP filled in. ZIPs missing from the gazetteer keep nil values.
func (g *Gazetteer) Resolve(aggs []models.ZipAggregate, reference string) ([]models.ZipAggregate, error) {
	origin, ok := g.Lookup(reference)
	if !ok {
		return nil, fmt.Errorf("geocode: %q: %w", reference, ErrUnknownReference)
	}

	out := make([]models.ZipAggregate, len(aggs))
	for i, a := range aggs {
		out[i] = a
		c, ok := g.Lookup(a.Zip)
		if !ok {
			out[i].Coordinates = nil
			out[i].DistanceMiles = nil
			continue
		}
		d := Haversine(origin, c)
		out[i].Coordinates = &c
		out[i].DistanceMiles = &d
	}
	return out, nil
}

// Haversine returns the great-circle distance between a and b in miles.
func Haversine(a, b models.Coordinates) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := lat2 - lat1
	dLng := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
