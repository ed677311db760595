package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

func TestPhysicsFloorRuleExtremeSpeed(t *testing.T) {
	r := PhysicsFloor()
	session := model.Session{
		TimestampMs: 60_000, // 60s after history entry
		Location:    model.Location{Country: "Turkey", Latitude: 41.0082, Longitude: 28.9784},
	}
	history := []model.LoginHistoryItem{
		{TimestampMs: 0, Location: model.Location{Country: "United States", Latitude: 40.7128, Longitude: -74.0060}},
	}
	out := r.Evaluate(Context{Session: session, History: history})
	assert.Equal(t, 95, out.Floor)
}

func TestPhysicsFloorRuleImpossibleButNotExtreme(t *testing.T) {
	r := PhysicsFloor()
	// ~2256km in 2 hours => ~1128km/h: above MaxTravelSpeedKmh (900) but
	// below extremeSpeedKmh (2000).
	session := model.Session{
		TimestampMs: 2 * 3_600_000,
		Location:    model.Location{Country: "France", Latitude: 48.8566, Longitude: 2.3522},
	}
	history := []model.LoginHistoryItem{
		{TimestampMs: 0, Location: model.Location{Country: "Turkey", Latitude: 41.0082, Longitude: 28.9784}},
	}
	out := r.Evaluate(Context{Session: session, History: history})
	assert.Equal(t, 85, out.Floor)
}

func TestPhysicsFloorRuleAboveTwoThousandIsExtreme(t *testing.T) {
	r := PhysicsFloor()
	// Istanbul -> Paris is ~2240km; covering it in 1 hour implies
	// ~2240km/h, above the spec's 2000km/h extreme-speed floor.
	session := model.Session{
		TimestampMs: 3_600_000,
		Location:    model.Location{Country: "France", Latitude: 48.8566, Longitude: 2.3522},
	}
	history := []model.LoginHistoryItem{
		{TimestampMs: 0, Location: model.Location{Country: "Turkey", Latitude: 41.0082, Longitude: 28.9784}},
	}
	out := r.Evaluate(Context{Session: session, History: history})
	assert.Equal(t, 95, out.Floor)
}

func TestPhysicsFloorRuleNoSignalWithoutHistory(t *testing.T) {
	r := PhysicsFloor()
	session := model.Session{Location: model.Location{Country: "France", Latitude: 48.8566, Longitude: 2.3522}}
	assert.Equal(t, Outcome{}, r.Evaluate(Context{Session: session}))
}

func TestCountryChurnRule(t *testing.T) {
	r := CountryChurn()
	now := int64(100_000)
	session := model.Session{Location: model.Location{Country: "Turkey"}}
	history := []model.LoginHistoryItem{
		{TimestampMs: 90_000, Location: model.Location{Country: "France"}},
		{TimestampMs: 91_000, Location: model.Location{Country: "Germany"}},
		{TimestampMs: 92_000, Location: model.Location{Country: "Japan"}},
	}
	out := r.Evaluate(Context{Session: session, History: history, NowMs: now})
	assert.Equal(t, Outcome{Raise: 20}, out)
}

func TestHighRiskCountryRule(t *testing.T) {
	r := HighRiskCountry()
	assert.Equal(t, Outcome{Raise: 15}, r.Evaluate(Context{Session: model.Session{Location: model.Location{Country: "Iran"}}}))
	assert.Equal(t, Outcome{}, r.Evaluate(Context{Session: model.Session{Location: model.Location{Country: "Canada"}}}))
}

func TestGeographyOverlayComposition(t *testing.T) {
	assert.Len(t, GeographyOverlay(), 3)
}
