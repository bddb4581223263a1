package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// Amsterdam Centraal to Utrecht Centraal, roughly 35km.
	d := HaversineDistance(52.3791, 4.9003, 52.0894, 5.1100)
	assert.InDelta(t, 35000, d, 1500)

	assert.Zero(t, HaversineDistance(52.37, 4.90, 52.37, 4.90))
}

func TestBearing(t *testing.T) {
	assert.InDelta(t, 0, Bearing(52.0, 4.9, 53.0, 4.9), 0.01)
	assert.InDelta(t, 180, Bearing(53.0, 4.9, 52.0, 4.9), 0.01)
	assert.InDelta(t, 90, Bearing(0, 0, 0, 1), 0.01)
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Point{{Lat: 52.0, Lon: 4.0}, {Lat: 54.0, Lon: 6.0}})
	assert.Equal(t, Point{Lat: 53.0, Lon: 5.0}, c)

	assert.Equal(t, Point{}, Centroid(nil))
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox([]Point{
		{Lat: 52.5, Lon: 4.5},
		{Lat: 52.0, Lon: 5.0},
		{Lat: 53.0, Lon: 4.0},
	})
	assert.Equal(t, 52.0, minLat)
	assert.Equal(t, 4.0, minLon)
	assert.Equal(t, 53.0, maxLat)
	assert.Equal(t, 5.0, maxLon)
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength([]Point{{Lat: 52.0, Lon: 4.0}}))

	points := []Point{
		{Lat: 52.3700, Lon: 4.9000},
		{Lat: 52.3710, Lon: 4.9000},
		{Lat: 52.3720, Lon: 4.9000},
	}
	// Two steps of 0.001 degree latitude, about 111m each.
	assert.InDelta(t, 222, PathLength(points), 5)
}
