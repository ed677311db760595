package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

func unixMs(t *testing.T, layout, value string) int64 {
	t.Helper()
	parsed, err := time.Parse(layout, value)
	assert.NoError(t, err)
	return parsed.UnixMilli()
}

func TestTemporalHourAndWeekendFlags(t *testing.T) {
	// 2026-08-01 is a Saturday.
	ts := unixMs(t, "2006-01-02T15:04:05Z", "2026-08-01T14:00:00Z")
	session := model.Session{TimestampMs: ts}
	v := Temporal(session, nil)

	assert.Equal(t, 1.0, v[2], "Saturday must be flagged weekend")
	assert.Equal(t, 1.0, v[3], "14:00 UTC falls in business hours")
	assert.Equal(t, 0.0, v[4])
}

func TestTemporalNightFlag(t *testing.T) {
	ts := unixMs(t, "2006-01-02T15:04:05Z", "2026-08-03T03:00:00Z")
	v := Temporal(model.Session{TimestampMs: ts}, nil)
	assert.Equal(t, 1.0, v[4])
	assert.Equal(t, 0.0, v[3])
}

func TestTemporalEmptyHistoryCapsHoursSinceLast(t *testing.T) {
	ts := unixMs(t, "2006-01-02T15:04:05Z", "2026-08-01T12:00:00Z")
	v := Temporal(model.Session{TimestampMs: ts}, nil)
	assert.Equal(t, 1.0, v[5])
}

func TestTemporalBurstFlag(t *testing.T) {
	now := int64(1_000_000)
	var history []model.LoginHistoryItem
	for i := 0; i < 6; i++ {
		history = append(history, model.LoginHistoryItem{TimestampMs: now - int64(i)*60_000})
	}
	v := Temporal(model.Session{TimestampMs: now}, history)
	assert.Equal(t, 1.0, v[7])
}

func TestTemporalVectorLength(t *testing.T) {
	v := Temporal(model.Session{TimestampMs: 0}, nil)
	assert.Len(t, v, TemporalLen)
}
