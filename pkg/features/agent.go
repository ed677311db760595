package features

import (
	"math"
	"strings"
	"unicode"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

// botKeywords mirrors the original FeatureExtractor's suspicious_patterns
// list (utils/feature_extractors.py), used for both the bot-keyword-count
// feature here and the rule overlay's floor signals.
var botKeywords = []string{
	"headless", "phantom", "selenium", "puppeteer",
	"scraper", "crawler", "bot", "spider",
}

const (
	maxAgentLength      = 512.0 // scale ceiling for raw string length
	maxPluginCount      = 20.0
	maxHardwareConcurrency = 32.0
	maxEntropyBits      = 6.0 // near-uniform ASCII printable entropy ceiling
)

// ParsedAgent is the minimal client-agent parse the feature extractor and
// rule overlay both need: device class, browser family + version, OS
// family, and bot indication. It is a lightweight keyword-based parser
// (grounded on the original source's user_agents-backed extraction,
// reimplemented without an external UA database since none of this
// service's dependency corpus ships one — see DESIGN.md).
type ParsedAgent struct {
	IsMobile bool
	IsTablet bool
	IsPC     bool
	IsBot    bool

	Browser        string // "Chrome", "Firefox", "Safari", "Edge", "" otherwise
	BrowserMajor   int
	OS             string // "Windows", "Mac", "Linux", "Android", "iOS", "" otherwise

	BotKeywordCount int
}

// MinBrowserMajorVersion lists the minimum major version this service
// still considers current for each recognized browser family, used by
// the rule overlay's "version below minimum" raise (spec.md §4.4).
var MinBrowserMajorVersion = map[string]int{
	"Chrome":  90,
	"Firefox": 90,
	"Safari":  14,
	"Edge":    90,
}

// ParseAgent performs the keyword-based client-agent parse.
func ParseAgent(ua string) ParsedAgent {
	lower := strings.ToLower(ua)
	var p ParsedAgent

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		p.IsTablet = true
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "iphone") || strings.Contains(lower, "android") && strings.Contains(lower, "mobile"):
		p.IsMobile = true
	default:
		p.IsPC = true
	}

	for _, kw := range botKeywords {
		if strings.Contains(lower, kw) {
			p.BotKeywordCount++
		}
	}
	p.IsBot = p.BotKeywordCount > 0

	p.Browser, p.BrowserMajor = detectBrowser(ua, lower)
	p.OS = detectOS(lower)

	return p
}

func detectBrowser(raw, lower string) (string, int) {
	// Edge identifies itself with "Edg/" (Chromium Edge) or "Edge/"
	// (legacy); check it before Chrome since Edge UAs also contain
	// "Chrome/".
	if v := versionAfter(raw, "Edg/"); v >= 0 {
		return "Edge", v
	}
	if v := versionAfter(raw, "Edge/"); v >= 0 {
		return "Edge", v
	}
	if v := versionAfter(raw, "Chrome/"); v >= 0 && !strings.Contains(lower, "chromium") {
		return "Chrome", v
	}
	if v := versionAfter(raw, "Firefox/"); v >= 0 {
		return "Firefox", v
	}
	if strings.Contains(lower, "safari") && !strings.Contains(lower, "chrome") {
		if v := versionAfter(raw, "Version/"); v >= 0 {
			return "Safari", v
		}
		return "Safari", 0
	}
	return "", 0
}

// versionAfter returns the major version number following marker in raw,
// or -1 if marker is absent or has no parseable numeric major component.
func versionAfter(raw, marker string) int {
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return -1
	}
	rest := raw[idx+len(marker):]
	end := 0
	for end < len(rest) && unicode.IsDigit(rune(rest[end])) {
		end++
	}
	if end == 0 {
		return -1
	}
	major := 0
	for _, c := range rest[:end] {
		major = major*10 + int(c-'0')
	}
	return major
}

func detectOS(lower string) string {
	switch {
	case strings.Contains(lower, "windows"):
		return "Windows"
	case strings.Contains(lower, "android"):
		return "Android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios"):
		return "iOS"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh"):
		return "Mac"
	case strings.Contains(lower, "linux"):
		return "Linux"
	}
	return ""
}

// shannonEntropy returns the Shannon entropy, in bits per character, of s.
func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	n := float64(total)
	var h float64
	for _, c := range counts {
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// Agent extracts the client-agent feature vector for session (spec.md
// §4.1 "Client-agent factor"):
//
//	0: is-mobile       7: edge            14: bot-keyword-count (scaled)
//	1: is-tablet       8: os-windows      15: shannon-entropy (scaled)
//	2: is-pc           9: os-mac          16: length (scaled)
//	3: is-bot          10: os-linux       17: has-canvas
//	4: chrome          11: os-android     18: plugin-count (scaled)
//	5: firefox         12: os-ios         19: cookie-enabled
//	6: safari          13: major-version  20: touch-support
//	                                      21: hardware-concurrency (scaled)
func Agent(session model.Session) [AgentLen]float64 {
	var v [AgentLen]float64
	ua := session.UserAgent
	p := ParseAgent(ua)

	v[0] = boolFeature(p.IsMobile)
	v[1] = boolFeature(p.IsTablet)
	v[2] = boolFeature(p.IsPC)
	v[3] = boolFeature(p.IsBot)

	v[4] = boolFeature(p.Browser == "Chrome")
	v[5] = boolFeature(p.Browser == "Firefox")
	v[6] = boolFeature(p.Browser == "Safari")
	v[7] = boolFeature(p.Browser == "Edge")

	v[8] = boolFeature(p.OS == "Windows")
	v[9] = boolFeature(p.OS == "Mac")
	v[10] = boolFeature(p.OS == "Linux")
	v[11] = boolFeature(p.OS == "Android")
	v[12] = boolFeature(p.OS == "iOS")

	if p.BrowserMajor > 0 {
		v[13] = clamp01(float64(p.BrowserMajor) / 200.0)
	}

	v[14] = clamp01(float64(p.BotKeywordCount) / float64(len(botKeywords)))
	v[15] = clamp01(shannonEntropy(ua) / maxEntropyBits)
	v[16] = clamp01(float64(len(ua)) / maxAgentLength)

	fp := session.Fingerprint
	if fp == nil {
		v[17] = UnknownPresence
		v[18] = UnknownPresence
		v[19] = UnknownPresence
		v[20] = UnknownPresence
		v[21] = UnknownPresence
		return v
	}

	v[17] = boolFeature(fp.CanvasFingerprint != "")
	v[18] = clamp01(float64(len(fp.Plugins)) / maxPluginCount)
	v[19] = boolFeature(model.Bool(fp.CookieEnabled, true))
	v[20] = boolFeature(model.Bool(fp.TouchSupport, false))
	v[21] = clamp01(float64(model.Int(fp.HardwareConcurrency, 0)) / maxHardwareConcurrency)

	return v
}
