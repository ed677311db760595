package rules

import (
	"math"
	"sort"
	"time"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

// unusualHourRule flags logins between 02:00 and 05:00 UTC inclusive, a
// weak but cheap-to-check time-of-day signal.
type unusualHourRule struct{}

// UnusualHour builds the 02:00-05:00 UTC rule.
func UnusualHour() Rule { return unusualHourRule{} }

func (unusualHourRule) Name() string { return "UnusualHour" }

func (unusualHourRule) Description() string {
	return "Flags logins between 02:00 and 05:00 UTC."
}

func (unusualHourRule) Evaluate(ctx Context) Outcome {
	hour := time.UnixMilli(ctx.Session.TimestampMs).UTC().Hour()
	if hour >= 2 && hour <= 5 {
		return Outcome{Raise: 20}
	}
	return Outcome{}
}

// loginBurstRule flags a high rate of logins in the preceding 5 minutes,
// grounded on the same windowed-count pattern features.countInWindow uses.
type loginBurstRule struct{}

// LoginBurst builds the 5-minute login-burst rule.
func LoginBurst() Rule { return loginBurstRule{} }

func (loginBurstRule) Name() string { return "LoginBurst" }

func (loginBurstRule) Description() string {
	return "Flags bursts of repeated logins within a 5-minute window."
}

func (loginBurstRule) Evaluate(ctx Context) Outcome {
	n := countInWindow(ctx, 5*time.Minute)
	switch {
	case n > 5:
		return Outcome{Raise: 30}
	case n >= 3:
		return Outcome{Raise: 15}
	}
	return Outcome{}
}

// failureRateRule flags more than three failed attempts in the last ten
// history entries, a brute-force signal.
type failureRateRule struct{}

// FailureRate builds the recent-failure-count rule.
func FailureRate() Rule { return failureRateRule{} }

func (failureRateRule) Name() string { return "RecentFailureRate" }

func (failureRateRule) Description() string {
	return "Flags more than three failed logins among the last ten history entries."
}

func (failureRateRule) Evaluate(ctx Context) Outcome {
	sorted := sortedByTime(ctx.History)
	start := 0
	if len(sorted) > 10 {
		start = len(sorted) - 10
	}
	failures := 0
	for _, h := range sorted[start:] {
		if h.Status == model.StatusFailure {
			failures++
		}
	}
	if failures > 3 {
		return Outcome{Raise: 20}
	}
	return Outcome{}
}

// botCadenceRule flags near-perfectly regular inter-login intervals, the
// signature of a scripted client rather than a human.
type botCadenceRule struct{}

// BotCadence builds the regular-cadence rule.
func BotCadence() Rule { return botCadenceRule{} }

func (botCadenceRule) Name() string { return "BotCadence" }

func (botCadenceRule) Description() string {
	return "Flags suspiciously regular intervals between consecutive logins."
}

const (
	botCadenceMinSamples     = 4
	botCadenceMaxCV          = 0.03 // coefficient of variation threshold
	botCadenceMinIntervalSec = 1.0  // ignore sub-second noise
)

func (botCadenceRule) Evaluate(ctx Context) Outcome {
	sorted := sortedByTime(ctx.History)
	start := 0
	if len(sorted) > 10 {
		start = len(sorted) - 10
	}
	sample := sorted[start:]
	if len(sample) < botCadenceMinSamples {
		return Outcome{}
	}
	intervals := make([]float64, 0, len(sample))
	for i := 1; i < len(sample); i++ {
		intervals = append(intervals, float64(sample[i].TimestampMs-sample[i-1].TimestampMs)/1000.0)
	}
	var sum float64
	for _, iv := range intervals {
		sum += iv
	}
	mean := sum / float64(len(intervals))
	if mean < botCadenceMinIntervalSec {
		return Outcome{}
	}
	var sqDiff float64
	for _, iv := range intervals {
		d := iv - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(intervals)))
	cv := stddev / mean
	if cv <= botCadenceMaxCV {
		return Outcome{Raise: 25}
	}
	return Outcome{}
}

func sortedByTime(history []model.LoginHistoryItem) []model.LoginHistoryItem {
	out := make([]model.LoginHistoryItem, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })
	return out
}

func countInWindow(ctx Context, window time.Duration) int {
	cutoff := ctx.NowMs - window.Milliseconds()
	n := 0
	for _, h := range ctx.History {
		if h.TimestampMs > cutoff && h.TimestampMs <= ctx.NowMs {
			n++
		}
	}
	return n
}

// TemporalOverlay returns the temporal factor's default rule set, per
// spec.md §4.4.
func TemporalOverlay() []Rule {
	return []Rule{
		UnusualHour(),
		LoginBurst(),
		FailureRate(),
		BotCadence(),
	}
}
