package features

import (
	"math"

	"github.com/gokaycavdar/riskguard/pkg/geo"
	"github.com/gokaycavdar/riskguard/pkg/model"
)

const (
	distanceScaleKm = 5000.0
	maxDistinctCountriesScale = 6.0
)

// Geography extracts the geographic feature vector for session given the
// user's login history (spec.md §4.1 "Geographic factor"):
//
//	0: is-new-country                    5: impossible-travel flag
//	1: is-new-city                       6: location variance (scaled)
//	2: country-risk-score/100            7: distance to nearest cluster
//	3: avg distance from history (scaled)    centroid (always 0; the model
//	4: max distance from history (scaled)    does not write this slot)
//	                                      8: distinct countries in 24h
//
// now is the current session timestamp, used for the 24h window in
// feature 8; it is passed explicitly rather than re-read from session so
// tests can hold it fixed independent of wall clock.
func Geography(session model.Session, history []model.LoginHistoryItem, now int64) [GeoLen]float64 {
	var v [GeoLen]float64

	loc := session.Location
	if !loc.Known() {
		for i := range v {
			v[i] = UnknownPresence
		}
		return v
	}

	seenCountries := map[string]struct{}{}
	seenCities := map[string]struct{}{}
	for _, h := range history {
		if h.Location.Country != "" {
			seenCountries[h.Location.Country] = struct{}{}
		}
		if h.Location.City != "" {
			seenCities[h.Location.City] = struct{}{}
		}
	}
	_, countrySeen := seenCountries[loc.Country]
	_, citySeen := seenCities[loc.City]

	v[0] = boolFeature(!countrySeen)
	v[1] = boolFeature(!citySeen)
	v[2] = float64(geo.CountryRisk(loc.Country)) / 100.0

	distances := distancesFromHistory(loc, history)
	avg, max, stddev := distanceStats(distances)
	v[3] = clamp01(avg / distanceScaleKm)
	v[4] = clamp01(max / distanceScaleKm)

	v[5] = boolFeature(recentImpossibleTravel(session, history))
	v[6] = clamp01(stddev / distanceScaleKm)
	v[7] = 0 // always 0; the DBSCAN model computes its own core-sample distance

	v[8] = clamp01(float64(distinctCountriesInWindow(loc, history, now, 24*3_600_000)) / maxDistinctCountriesScale)

	return v
}

func distancesFromHistory(current model.Location, history []model.LoginHistoryItem) []float64 {
	out := make([]float64, 0, len(history))
	here := geo.Point{Lat: current.Latitude, Lon: current.Longitude}
	for _, h := range history {
		if !h.Location.Known() {
			continue
		}
		there := geo.Point{Lat: h.Location.Latitude, Lon: h.Location.Longitude}
		out = append(out, geo.Haversine(here, there))
	}
	return out
}

func distanceStats(d []float64) (avg, max, stddev float64) {
	if len(d) == 0 {
		return 0, 0, 0
	}
	var sum float64
	for _, x := range d {
		sum += x
		if x > max {
			max = x
		}
	}
	avg = sum / float64(len(d))

	var sqDiff float64
	for _, x := range d {
		diff := x - avg
		sqDiff += diff * diff
	}
	stddev = math.Sqrt(sqDiff / float64(len(d)))
	return avg, max, stddev
}

// mostRecentLocated returns the most recently timestamped history item
// that carries a resolved location, or false if none does.
func mostRecentLocated(history []model.LoginHistoryItem) (model.LoginHistoryItem, bool) {
	var best model.LoginHistoryItem
	found := false
	for _, h := range history {
		if !h.Location.Known() {
			continue
		}
		if !found || h.TimestampMs > best.TimestampMs {
			best = h
			found = true
		}
	}
	return best, found
}

func recentImpossibleTravel(session model.Session, history []model.LoginHistoryItem) bool {
	last, ok := mostRecentLocated(history)
	if !ok || !session.Location.Known() {
		return false
	}
	elapsed := session.TimestampMs - last.TimestampMs
	if elapsed <= 0 {
		return false
	}
	here := geo.Point{Lat: session.Location.Latitude, Lon: session.Location.Longitude}
	there := geo.Point{Lat: last.Location.Latitude, Lon: last.Location.Longitude}
	return geo.ImpossibleTravel(here, there, elapsed)
}

func distinctCountriesInWindow(current model.Location, history []model.LoginHistoryItem, nowMs, windowMs int64) int {
	seen := map[string]struct{}{}
	if current.Country != "" {
		seen[current.Country] = struct{}{}
	}
	cutoff := nowMs - windowMs
	for _, h := range history {
		if h.TimestampMs >= cutoff && h.TimestampMs <= nowMs && h.Location.Country != "" {
			seen[h.Location.Country] = struct{}{}
		}
	}
	return len(seen)
}

// RecentSpeedKmh returns the implied travel speed between session and the
// most recently located history item, or 0 if no such item exists. Used by
// the geographic rule overlay's "500 < speed <= 900" raise.
func RecentSpeedKmh(session model.Session, history []model.LoginHistoryItem) float64 {
	last, ok := mostRecentLocated(history)
	if !ok || !session.Location.Known() {
		return 0
	}
	elapsed := session.TimestampMs - last.TimestampMs
	if elapsed <= 0 {
		return 0
	}
	here := geo.Point{Lat: session.Location.Latitude, Lon: session.Location.Longitude}
	there := geo.Point{Lat: last.Location.Latitude, Lon: last.Location.Longitude}
	return geo.SpeedKmh(here, there, elapsed)
}
