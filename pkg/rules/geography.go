package rules

import (
	"github.com/gokaycavdar/riskguard/pkg/geo"
	"github.com/gokaycavdar/riskguard/pkg/model"
)

// extremeSpeedKmh is spec.md §4.3.4's impossible-travel floor threshold:
// implied speed beyond this is physically impossible for any commercial
// or private aircraft, so the location data itself is implausible
// (spoofed GPS, stale IP geolocation, a data entry error), not merely
// fast travel.
const extremeSpeedKmh = 2000.0

// physicsFloorRule is the authoritative impossible-travel check spec.md
// §4.3.4/§4.4 both describe: unlike the DBSCAN base model's density
// distance, this rule reasons about physical travel speed directly and
// imposes a floor the base score cannot be overlaid below, regardless of
// how "normal" the density-based model considered the new location.
type physicsFloorRule struct{}

// PhysicsFloor builds the impossible-travel floor rule.
func PhysicsFloor() Rule { return physicsFloorRule{} }

func (physicsFloorRule) Name() string { return "ImpossibleTravelFloor" }

func (physicsFloorRule) Description() string {
	return "Imposes a score floor when implied travel speed since the last known location exceeds physical plausibility."
}

func (physicsFloorRule) Evaluate(ctx Context) Outcome {
	last, ok := mostRecentLocated(ctx.History)
	if !ok || !ctx.Session.Location.Known() {
		return Outcome{}
	}
	elapsed := ctx.Session.TimestampMs - last.TimestampMs
	if elapsed <= 0 {
		return Outcome{}
	}
	here := geo.Point{Lat: ctx.Session.Location.Latitude, Lon: ctx.Session.Location.Longitude}
	there := geo.Point{Lat: last.Location.Latitude, Lon: last.Location.Longitude}
	speed := geo.SpeedKmh(here, there, elapsed)

	switch {
	case speed > extremeSpeedKmh:
		return Outcome{Floor: 95}
	case speed > geo.MaxTravelSpeedKmh:
		return Outcome{Floor: 85}
	case speed > 500:
		return Outcome{Raise: 20}
	}
	return Outcome{}
}

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

// countryChurnRule flags more than three distinct countries seen in the
// preceding 24 hours, including the current session's country.
type countryChurnRule struct{}

// CountryChurn builds the distinct-country-in-24h rule.
func CountryChurn() Rule { return countryChurnRule{} }

func (countryChurnRule) Name() string { return "CountryChurn" }

func (countryChurnRule) Description() string {
	return "Flags more than three distinct countries seen in the preceding 24 hours."
}

func (countryChurnRule) Evaluate(ctx Context) Outcome {
	if !ctx.Session.Location.Known() {
		return Outcome{}
	}
	seen := map[string]struct{}{}
	if ctx.Session.Location.Country != "" {
		seen[ctx.Session.Location.Country] = struct{}{}
	}
	cutoff := ctx.NowMs - 24*3_600_000
	for _, h := range ctx.History {
		if h.TimestampMs >= cutoff && h.TimestampMs <= ctx.NowMs && h.Location.Country != "" {
			seen[h.Location.Country] = struct{}{}
		}
	}
	if len(seen) > 3 {
		return Outcome{Raise: 20}
	}
	return Outcome{}
}

// highRiskCountryRule flags logins originating from a named high-risk
// country (geo.IsHighRiskCountry).
type highRiskCountryRule struct{}

// HighRiskCountry builds the named-high-risk-country rule.
func HighRiskCountry() Rule { return highRiskCountryRule{} }

func (highRiskCountryRule) Name() string { return "HighRiskCountry" }

func (highRiskCountryRule) Description() string {
	return "Flags logins originating from a named high-risk country."
}

func (highRiskCountryRule) Evaluate(ctx Context) Outcome {
	if geo.IsHighRiskCountry(ctx.Session.Location.Country) {
		return Outcome{Raise: 15}
	}
	return Outcome{}
}

// GeographyOverlay returns the geographic factor's default rule set, per
// spec.md §4.4.
func GeographyOverlay() []Rule {
	return []Rule{
		PhysicsFloor(),
		CountryChurn(),
		HighRiskCountry(),
	}
}
