package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokaycavdar/riskguard/pkg/detector"
	"github.com/gokaycavdar/riskguard/pkg/model"
)

// lowScoreModel stands in for a trained model that has learned normal
// behavior and scores it low; used only where a scenario requires a
// below-neutral base and no rule is expected to fire.
type lowScoreModel struct{}

func (lowScoreModel) Score([]float64) int { return 10 }
func (lowScoreModel) Algorithm() string   { return "stub-low" }

func rulesOnlyEngine(lookup stubGeoLookup) *Engine {
	return New(
		detector.NewNetwork(nil, nil),
		detector.NewTemporal(nil),
		detector.NewAgent(nil),
		detector.NewGeography(nil),
		lookup,
		nil, nil,
		discardLogger(),
	)
}

func trainedEngine() *Engine {
	return New(
		detector.NewNetwork(lowScoreModel{}, nil),
		detector.NewTemporal(lowScoreModel{}),
		detector.NewAgent(lowScoreModel{}),
		detector.NewGeography(lowScoreModel{}),
		nil, nil, nil,
		discardLogger(),
	)
}

// TestScenarioNormalResidentialLogin covers spec.md §8 scenario S1: a
// consistent desktop login with no anomalous signal should score low on
// every factor.
func TestScenarioNormalResidentialLogin(t *testing.T) {
	eng := trainedEngine()
	req := model.Request{
		UserID: "user@example.com",
		CurrentSession: model.Session{
			IPAddress:   "73.45.123.45",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			TimestampMs: 1_700_060_200_000, // 14:56 UTC
		},
	}

	result, err := eng.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Scores.IP, 30)
	assert.LessOrEqual(t, result.Scores.DateTime, 30)
	assert.LessOrEqual(t, result.Scores.UserAgent, 30)
	assert.LessOrEqual(t, result.Scores.Geolocation, 30)
	assert.LessOrEqual(t, result.Scores.Overall, 30)
}

// TestScenarioDatacenterAddress covers S2: a datacenter address with no
// history should raise the network factor well above neutral.
func TestScenarioDatacenterAddress(t *testing.T) {
	eng := rulesOnlyEngine(stubGeoLookup{})
	req := model.Request{
		UserID: "user@example.com",
		CurrentSession: model.Session{
			IPAddress:   "104.16.1.1",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			TimestampMs: 1_700_060_200_000,
		},
	}

	result, err := eng.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Scores.IP, 70)
	assert.GreaterOrEqual(t, result.Scores.Overall, 40)
}

// TestScenarioHeadlessAgent covers S3: a headless-browser marker floors
// the client-agent factor regardless of the base model score.
func TestScenarioHeadlessAgent(t *testing.T) {
	eng := rulesOnlyEngine(stubGeoLookup{})
	req := model.Request{
		UserID: "user@example.com",
		CurrentSession: model.Session{
			IPAddress:   "73.45.123.45",
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 HeadlessChrome/120.0.0.0 Safari/537.36",
			TimestampMs: 1_700_060_200_000,
		},
	}

	result, err := eng.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Scores.UserAgent, 85)
	assert.GreaterOrEqual(t, result.Scores.Overall, 50)
}

// TestScenarioNightLogin covers S4: a 03:01 UTC login raises the
// temporal factor via the unusual-hour rule.
func TestScenarioNightLogin(t *testing.T) {
	eng := rulesOnlyEngine(stubGeoLookup{})
	req := model.Request{
		UserID: "user@example.com",
		CurrentSession: model.Session{
			IPAddress:   "73.45.123.45",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			TimestampMs: 1_700_017_300_000, // 03:01 UTC
		},
	}

	result, err := eng.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Scores.DateTime, 70)
	assert.GreaterOrEqual(t, result.Scores.Overall, 40)
}

// TestScenarioImpossibleTravel covers S5: a login 42 minutes after one
// located across the Atlantic implies a physically impossible speed and
// must floor the geolocation factor at the extreme-speed tier.
func TestScenarioImpossibleTravel(t *testing.T) {
	lastSeenMs := int64(1_700_060_200_000)
	nowMs := lastSeenMs + 42*60_000

	lookup := stubGeoLookup{loc: model.Location{Country: "United Kingdom", City: "London", Latitude: 51.5074, Longitude: -0.1278}}
	eng := rulesOnlyEngine(lookup)

	req := model.Request{
		UserID: "user@example.com",
		CurrentSession: model.Session{
			IPAddress:   "81.2.69.142",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			TimestampMs: nowMs,
		},
		LoginHistory: []model.LoginHistoryItem{
			{
				IPAddress:   "73.45.123.45",
				UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
				TimestampMs: lastSeenMs,
				Location:    model.Location{Country: "United States", City: "New York", Latitude: 40.7128, Longitude: -74.0060},
				Status:      model.StatusSuccess,
			},
		},
	}

	result, err := eng.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Scores.Geolocation, 95)
}

// TestScenarioBruteForceBurst covers S6: a burst of recent attempts with
// a high failure rate raises the temporal factor through both the
// login-burst and failure-rate rules.
func TestScenarioBruteForceBurst(t *testing.T) {
	eng := rulesOnlyEngine(stubGeoLookup{})
	nowMs := int64(1_700_060_200_000)

	history := make([]model.LoginHistoryItem, 0, 10)
	for i := 0; i < 10; i++ {
		status := model.StatusFailure
		if i%5 == 0 {
			status = model.StatusSuccess
		}
		history = append(history, model.LoginHistoryItem{
			IPAddress:   "73.45.123.45",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			TimestampMs: nowMs - int64(i*20_000),
			Status:      status,
		})
	}

	req := model.Request{
		UserID: "user@example.com",
		CurrentSession: model.Session{
			IPAddress:   "73.45.123.45",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			TimestampMs: nowMs,
		},
		LoginHistory: history,
	}

	result, err := eng.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Scores.DateTime, 50)
	assert.GreaterOrEqual(t, result.Scores.Overall, 40)
}
