package geo

// Country-risk classification is a static two-table lookup: a named
// low-risk set scores at or below 15, a named high-risk set scores at or
// above 50, and everything else defaults to 30 (spec.md §4.1, §4.2). The
// named sets below are carried over from the original implementation's
// GeoLocationAnalyzer.get_location_risk_factors high-risk country list,
// adapted to ISO country names as used throughout this service's
// Location.Country field.

// DefaultCountryRisk is the score assigned to a country in neither table.
const DefaultCountryRisk = 30

var lowRiskCountries = map[string]int{
	"United States":  10,
	"Canada":         10,
	"United Kingdom": 10,
	"Germany":        10,
	"France":         12,
	"Netherlands":    12,
	"Sweden":         10,
	"Norway":         10,
	"Switzerland":    10,
	"Japan":          12,
	"Australia":      12,
	"New Zealand":    10,
}

var highRiskCountries = map[string]int{
	"North Korea": 95,
	"Iran":        80,
	"Syria":       85,
	"Cuba":        60,
	"Sudan":       70,
	"Russia":      65,
	"Belarus":     60,
	"Myanmar":     70,
	"Venezuela":   60,
}

// CountryRisk returns the static per-country risk score in [0,100] used by
// the geographic feature extractor and the geographic rule overlay. Unknown
// or empty country names return DefaultCountryRisk.
func CountryRisk(country string) int {
	if country == "" {
		return DefaultCountryRisk
	}
	if score, ok := highRiskCountries[country]; ok {
		return score
	}
	if score, ok := lowRiskCountries[country]; ok {
		return score
	}
	return DefaultCountryRisk
}

// IsHighRiskCountry reports whether country is in the named high-risk set,
// used by the geographic rule overlay's +15 raise (spec.md §4.4).
func IsHighRiskCountry(country string) bool {
	_, ok := highRiskCountries[country]
	return ok
}
