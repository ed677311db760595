package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

func tsUTC(t *testing.T, value string) int64 {
	t.Helper()
	return unixMsUTC(t, value)
}

func TestUnusualHourRule(t *testing.T) {
	r := UnusualHour()
	ctx := Context{Session: model.Session{TimestampMs: tsUTC(t, "2026-08-01T03:00:00Z")}}
	assert.Equal(t, Outcome{Raise: 20}, r.Evaluate(ctx))

	ctx2 := Context{Session: model.Session{TimestampMs: tsUTC(t, "2026-08-01T14:00:00Z")}}
	assert.Equal(t, Outcome{}, r.Evaluate(ctx2))
}

func TestLoginBurstRule(t *testing.T) {
	now := int64(1_000_000)
	mkHistory := func(n int) []model.LoginHistoryItem {
		h := make([]model.LoginHistoryItem, n)
		for i := range h {
			h[i] = model.LoginHistoryItem{TimestampMs: now - int64(i)*1000}
		}
		return h
	}
	r := LoginBurst()

	assert.Equal(t, Outcome{Raise: 30}, r.Evaluate(Context{NowMs: now, History: mkHistory(6)}))
	assert.Equal(t, Outcome{Raise: 15}, r.Evaluate(Context{NowMs: now, History: mkHistory(3)}))
	assert.Equal(t, Outcome{}, r.Evaluate(Context{NowMs: now, History: mkHistory(1)}))
}

func TestFailureRateRule(t *testing.T) {
	r := FailureRate()
	var history []model.LoginHistoryItem
	for i := 0; i < 4; i++ {
		history = append(history, model.LoginHistoryItem{TimestampMs: int64(i), Status: model.StatusFailure})
	}
	assert.Equal(t, Outcome{Raise: 20}, r.Evaluate(Context{History: history}))

	history[0].Status = model.StatusSuccess
	history[1].Status = model.StatusSuccess
	assert.Equal(t, Outcome{}, r.Evaluate(Context{History: history}))
}

func TestBotCadenceRuleFiresOnRegularIntervals(t *testing.T) {
	r := BotCadence()
	var history []model.LoginHistoryItem
	for i := 0; i < 5; i++ {
		history = append(history, model.LoginHistoryItem{TimestampMs: int64(i) * 60_000})
	}
	assert.Equal(t, Outcome{Raise: 25}, r.Evaluate(Context{History: history}))
}

func TestBotCadenceRuleSkipsIrregularIntervals(t *testing.T) {
	r := BotCadence()
	history := []model.LoginHistoryItem{
		{TimestampMs: 0},
		{TimestampMs: 30_000},
		{TimestampMs: 400_000},
		{TimestampMs: 410_000},
	}
	assert.Equal(t, Outcome{}, r.Evaluate(Context{History: history}))
}

func TestBotCadenceRuleRequiresMinimumSamples(t *testing.T) {
	r := BotCadence()
	history := []model.LoginHistoryItem{{TimestampMs: 0}, {TimestampMs: 60_000}}
	assert.Equal(t, Outcome{}, r.Evaluate(Context{History: history}))
}

func TestTemporalOverlayComposition(t *testing.T) {
	assert.Len(t, TemporalOverlay(), 4)
}
