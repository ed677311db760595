package features

import (
	"math"
	"sort"
	"time"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

const (
	hoursInWeek          = 24 * 7
	maxHoursSinceLastCap = float64(hoursInWeek) // capped at one week
	maxVelocityPerHour   = 10.0                 // scale ceiling for logins/hour
	maxFrequencyPerWeek  = 50.0                 // scale ceiling for logins/week
	lastNHoursForCircular = 20
)

// Temporal extracts the 10-feature temporal vector for session given the
// user's login history (spec.md §4.1 "Temporal factor"):
//
//	0: hour-of-day/23              5: hours-since-last-login (capped 1wk)
//	1: day-of-week/6               6: login velocity (logins/hr, last 24h)
//	2: is-weekend                  7: is-burst (>5 logins in preceding hour)
//	3: is-business-hours           8: hour deviation from circular mean
//	4: is-night                    9: login frequency (logins/wk, capped)
func Temporal(session model.Session, history []model.LoginHistoryItem) [TemporalLen]float64 {
	var v [TemporalLen]float64

	t := time.UnixMilli(session.TimestampMs).UTC()
	hour := t.Hour()
	// time.Weekday: Sunday=0..Saturday=6. Normalize to Monday=0..Sunday=6
	// so "day-of-week/6" reads naturally across a Mon-Sun week.
	dow := (int(t.Weekday()) + 6) % 7

	v[0] = float64(hour) / 23.0
	v[1] = float64(dow) / 6.0
	v[2] = boolFeature(dow == 5 || dow == 6)
	v[3] = boolFeature(hour >= 9 && hour < 18)
	v[4] = boolFeature(hour <= 5 || hour >= 22)

	sorted := sortedByTime(history)

	v[5] = clamp01(hoursSinceLast(session.TimestampMs, sorted) / maxHoursSinceLastCap)
	v[6] = clamp01(loginVelocity(session.TimestampMs, sorted, 24*time.Hour) / maxVelocityPerHour)
	v[7] = boolFeature(countInWindow(session.TimestampMs, sorted, time.Hour) > 5)
	v[8] = hourDeviation(hour, sorted)
	v[9] = clamp01(loginFrequencyPerWeek(sorted) / maxFrequencyPerWeek)

	return v
}

func sortedByTime(history []model.LoginHistoryItem) []model.LoginHistoryItem {
	out := make([]model.LoginHistoryItem, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })
	return out
}

func hoursSinceLast(nowMs int64, sorted []model.LoginHistoryItem) float64 {
	if len(sorted) == 0 {
		return maxHoursSinceLastCap
	}
	last := sorted[len(sorted)-1].TimestampMs
	deltaMs := nowMs - last
	if deltaMs < 0 {
		deltaMs = 0
	}
	return float64(deltaMs) / 3_600_000.0
}

func countInWindow(nowMs int64, sorted []model.LoginHistoryItem, window time.Duration) int {
	cutoff := nowMs - window.Milliseconds()
	n := 0
	for _, h := range sorted {
		if h.TimestampMs > cutoff && h.TimestampMs <= nowMs {
			n++
		}
	}
	return n
}

// loginVelocity returns logins-per-hour over the trailing window ending
// at nowMs.
func loginVelocity(nowMs int64, sorted []model.LoginHistoryItem, window time.Duration) float64 {
	n := countInWindow(nowMs, sorted, window)
	hours := window.Hours()
	if hours <= 0 {
		return 0
	}
	return float64(n) / hours
}

// loginFrequencyPerWeek returns logins-per-week averaged over the full
// history span, or 0 for an empty or single-entry history.
func loginFrequencyPerWeek(sorted []model.LoginHistoryItem) float64 {
	if len(sorted) < 2 {
		return 0
	}
	spanMs := sorted[len(sorted)-1].TimestampMs - sorted[0].TimestampMs
	spanWeeks := float64(spanMs) / (3_600_000.0 * hoursInWeek)
	if spanWeeks <= 0 {
		return float64(len(sorted))
	}
	return float64(len(sorted)) / spanWeeks
}

// hourDeviation computes the circular distance in hours between the
// current hour and the circular mean of the last lastNHoursForCircular
// historical hours (unit-circle trick, spec.md §4.1), normalized to
// [0,1] by dividing by the maximum possible circular distance (12h).
func hourDeviation(currentHour int, sorted []model.LoginHistoryItem) float64 {
	if len(sorted) == 0 {
		return 0.5
	}
	start := 0
	if len(sorted) > lastNHoursForCircular {
		start = len(sorted) - lastNHoursForCircular
	}
	sample := sorted[start:]

	var sumSin, sumCos float64
	for _, h := range sample {
		hour := float64(time.UnixMilli(h.TimestampMs).UTC().Hour())
		angle := 2 * math.Pi * hour / 24.0
		sumSin += math.Sin(angle)
		sumCos += math.Cos(angle)
	}
	meanAngle := math.Atan2(sumSin/float64(len(sample)), sumCos/float64(len(sample)))
	if meanAngle < 0 {
		meanAngle += 2 * math.Pi
	}
	meanHour := meanAngle * 24.0 / (2 * math.Pi)

	diff := math.Abs(float64(currentHour) - meanHour)
	if diff > 12 {
		diff = 24 - diff
	}
	return clamp01(diff / 12.0)
}
