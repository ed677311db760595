// Package model defines the data shapes that flow through the risk scoring
// engine: the current session, login history, the request envelope, and the
// score result. Nothing in this package talks to a network, a clock, or a
// database; it is the vocabulary the rest of the engine is written against.
package model

// ClientFingerprint carries the optional browser/device signals a caller may
// attach to a session. The bool and int fields are pointers so detectors can
// tell "not reported" apart from a legitimate zero value; the string and list
// fields use their empty value for "not reported".
type ClientFingerprint struct {
	ScreenResolution    string   // "WxH", e.g. "1920x1080"
	Timezone            string   // IANA label, e.g. "Europe/Istanbul"
	Platform            string   // navigator.platform style string
	WebGLRenderer       string   // rendering backend identifier
	Fonts               []string // declared font list
	Plugins             []string // declared plugin list
	CanvasFingerprint   string
	AudioFingerprint    string
	TouchSupport        *bool
	DeviceMemoryGiB     *int
	HardwareConcurrency *int
	CookieEnabled       *bool
}

// Session is one authentication attempt's context: the required core plus
// an optional fingerprint. Timestamp is milliseconds since the Unix epoch.
type Session struct {
	IPAddress   string
	UserAgent   string
	TimestampMs int64
	Fingerprint *ClientFingerprint

	// Location is populated by the engine during enrichment (§4.6 step 3);
	// it is not supplied by the caller and is zero-valued until then.
	Location Location
}

// Bool returns the dereferenced value of a *bool fingerprint field, or the
// supplied default when the field was not reported.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Int returns the dereferenced value of an *int fingerprint field, or the
// supplied default when the field was not reported.
func Int(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
