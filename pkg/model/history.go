package model

// LoginStatus is the outcome of a historical login attempt.
type LoginStatus string

const (
	// StatusSuccess marks a historical login that succeeded.
	StatusSuccess LoginStatus = "success"
	// StatusFailure marks a historical login that failed (bad credentials,
	// MFA rejection, etc). Detectors use the failure ratio as a brute-force
	// signal.
	StatusFailure LoginStatus = "failure"
)

// Location is a resolved geolocation: country/city plus centroid
// coordinates. Latitude must lie in [-90,90] and longitude in [-180,180];
// the zero value ("", "", 0, 0) is the documented "unknown" placeholder
// used whenever lookup fails or times out.
type Location struct {
	Country   string
	City      string
	Latitude  float64
	Longitude float64
}

// Known reports whether this location carries any resolved identity. The
// zero value is indistinguishable from (0,0) off the coast of Ghana, but
// in this system (0,0) with an empty country is always the unknown
// placeholder, never a real lookup result.
func (l Location) Known() bool {
	return l.Country != "" || l.City != "" || l.Latitude != 0 || l.Longitude != 0
}

// LoginHistoryItem is one entry in a user's recent login history. The
// sequence passed to the engine is bounded to at most 1000 items and is
// not guaranteed to be sorted; detectors that care about order must sort
// by TimestampMs themselves.
type LoginHistoryItem struct {
	IPAddress   string
	UserAgent   string
	TimestampMs int64
	Location    Location
	Status      LoginStatus
}

// MaxHistoryItems is the hard bound on login history length enforced at
// request validation (§4.6 step 1).
const MaxHistoryItems = 1000
