package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	istanbul = Point{Lat: 41.0082, Lon: 28.9784}
	tokyo    = Point{Lat: 35.6895, Lon: 139.6917}
)

func TestHaversineZeroDistance(t *testing.T) {
	assert.InDelta(t, 0, Haversine(istanbul, istanbul), 1e-9)
}

func TestHaversineSymmetric(t *testing.T) {
	assert.Equal(t, Haversine(istanbul, tokyo), Haversine(tokyo, istanbul))
}

func TestHaversineKnownDistance(t *testing.T) {
	d := Haversine(istanbul, tokyo)
	assert.InDelta(t, 8950, d, 150, "istanbul-tokyo great circle distance should be roughly 8950km")
}

func TestSpeedKmhFloorsElapsedTime(t *testing.T) {
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 0, Lon: 1}
	speedZero := SpeedKmh(a, b, 0)
	speedOne := SpeedKmh(a, b, 1)
	assert.Equal(t, speedZero, speedOne)
	assert.False(t, math.IsInf(speedZero, 0))
}

func TestImpossibleTravelThreshold(t *testing.T) {
	a := Point{Lat: 41.0082, Lon: 28.9784}
	b := Point{Lat: 40.7128, Lon: -74.0060} // NYC

	assert.True(t, ImpossibleTravel(a, b, 60_000), "8000km in one minute must be impossible")
	assert.False(t, ImpossibleTravel(a, b, 24*3_600_000), "8000km in 24h is well under the speed threshold")
}

func TestCountryRiskTables(t *testing.T) {
	assert.Equal(t, 10, CountryRisk("United States"))
	assert.Equal(t, 95, CountryRisk("North Korea"))
	assert.Equal(t, DefaultCountryRisk, CountryRisk("Atlantis"))
	assert.Equal(t, DefaultCountryRisk, CountryRisk(""))
}

func TestIsHighRiskCountry(t *testing.T) {
	assert.True(t, IsHighRiskCountry("Iran"))
	assert.False(t, IsHighRiskCountry("Canada"))
	assert.False(t, IsHighRiskCountry("Nowhere"))
}
