package model

import "math"

// FusionWeights are the fixed weights spec.md adopts for fusing the four
// per-factor scores into Overall. A second candidate vector appears in the
// original source but was explicitly rejected in favor of this one
// (see DESIGN.md, "fusion weights").
type FusionWeights struct {
	IP         float64
	DateTime   float64
	UserAgent  float64
	Geolocation float64
}

// DefaultFusionWeights is {ip:0.30, datetime:0.20, userAgent:0.25, geolocation:0.25}.
var DefaultFusionWeights = FusionWeights{
	IP:          0.30,
	DateTime:    0.20,
	UserAgent:   0.25,
	Geolocation: 0.25,
}

// Scores is the five-number verdict returned for a request. Every field is
// an integer clamped to [0,100].
type Scores struct {
	IP          int
	DateTime    int
	UserAgent   int
	Geolocation int
	Overall     int
}

// Clamp restricts x to [0,100]. It is idempotent: Clamp(Clamp(x)) == Clamp(x).
func Clamp(x int) int {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}

// Fuse computes Overall from the four per-factor scores using w, rounding
// half-away-from-zero and clamping to [0,100]. The four inputs are assumed
// already clamped, but Fuse clamps its own output regardless.
func Fuse(ip, dt, ua, geo int, w FusionWeights) int {
	weighted := w.IP*float64(ip) + w.DateTime*float64(dt) + w.UserAgent*float64(ua) + w.Geolocation*float64(geo)
	return Clamp(int(math.Round(weighted)))
}

// NewScores builds a Scores from the four per-factor components, clamping
// each and computing Overall with the default fusion weights.
func NewScores(ip, dt, ua, geo int) Scores {
	ip, dt, ua, geo = Clamp(ip), Clamp(dt), Clamp(ua), Clamp(geo)
	return Scores{
		IP:          ip,
		DateTime:    dt,
		UserAgent:   ua,
		Geolocation: geo,
		Overall:     Fuse(ip, dt, ua, geo, DefaultFusionWeights),
	}
}

// Meta carries response metadata that does not participate in scoring.
type Meta struct {
	RequestID        string
	UserID           string
	TimestampMs      int64
	ProcessingTimeMs int64
	ModelsVersion    string
	CacheHit         bool
}

// Result is the full response: scores plus metadata.
type Result struct {
	Meta   Meta
	Scores Scores
}
