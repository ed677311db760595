package rules

import (
	"strings"

	"github.com/gokaycavdar/riskguard/pkg/features"
	"github.com/gokaycavdar/riskguard/pkg/model"
)

// botKeywordFloorRule imposes an escalating floor based on which bot
// keyword family appears in the user agent: generic bot markers (bot,
// crawler, spider, scraper) floor at 80, "headless", "phantom" and
// "selenium" at 85, and "puppeteer" and "HeadlessChrome" at 90.
type botKeywordFloorRule struct{}

// BotKeywordFloor builds the bot-keyword floor rule.
func BotKeywordFloor() Rule { return botKeywordFloorRule{} }

func (botKeywordFloorRule) Name() string { return "BotKeywordFloor" }

func (botKeywordFloorRule) Description() string {
	return "Imposes a score floor when the user agent contains bot, headless-browser, or automation-framework markers."
}

func (botKeywordFloorRule) Evaluate(ctx Context) Outcome {
	lower := strings.ToLower(ctx.Session.UserAgent)
	switch {
	case strings.Contains(lower, "puppeteer") || strings.Contains(lower, "headlesschrome"):
		return Outcome{Floor: 90}
	case strings.Contains(lower, "headless") || strings.Contains(lower, "phantom") || strings.Contains(lower, "selenium"):
		return Outcome{Floor: 85}
	case strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") || strings.Contains(lower, "spider") || strings.Contains(lower, "scraper"):
		return Outcome{Floor: 80}
	}
	return Outcome{}
}

// belowMinVersionRule flags a recognized browser reporting a major
// version below features.MinBrowserMajorVersion.
type belowMinVersionRule struct{}

// BelowMinVersion builds the below-minimum-browser-version rule.
func BelowMinVersion() Rule { return belowMinVersionRule{} }

func (belowMinVersionRule) Name() string { return "BelowMinBrowserVersion" }

func (belowMinVersionRule) Description() string {
	return "Flags a recognized browser reporting a major version below the configured minimum."
}

func (belowMinVersionRule) Evaluate(ctx Context) Outcome {
	p := features.ParseAgent(ctx.Session.UserAgent)
	if p.Browser == "" || p.BrowserMajor == 0 {
		return Outcome{}
	}
	if min, ok := features.MinBrowserMajorVersion[p.Browser]; ok && p.BrowserMajor < min {
		return Outcome{Raise: 20}
	}
	return Outcome{}
}

// touchWindowsMismatchRule flags a fingerprint reporting touch support
// alongside a non-mobile Windows OS: plausible (touchscreen laptops
// exist) but uncommon enough to be a weak signal.
type touchWindowsMismatchRule struct{}

// TouchWindowsMismatch builds the touch-plus-desktop-Windows rule.
func TouchWindowsMismatch() Rule { return touchWindowsMismatchRule{} }

func (touchWindowsMismatchRule) Name() string { return "TouchWindowsMismatch" }

func (touchWindowsMismatchRule) Description() string {
	return "Flags touch support reported alongside a non-mobile Windows OS."
}

func (touchWindowsMismatchRule) Evaluate(ctx Context) Outcome {
	fp := ctx.Session.Fingerprint
	if fp == nil {
		return Outcome{}
	}
	p := features.ParseAgent(ctx.Session.UserAgent)
	if p.OS == "Windows" && !p.IsMobile && model.Bool(fp.TouchSupport, false) {
		return Outcome{Raise: 15}
	}
	return Outcome{}
}

// agentChurnRule flags more than five distinct user agents among the
// current session and the last ten history entries for this account.
type agentChurnRule struct{}

// AgentChurn builds the distinct-agent-churn rule.
func AgentChurn() Rule { return agentChurnRule{} }

func (agentChurnRule) Name() string { return "AgentChurn" }

func (agentChurnRule) Description() string {
	return "Flags more than five distinct user agents among the current session and the last ten history entries."
}

func (agentChurnRule) Evaluate(ctx Context) Outcome {
	sorted := sortedByTime(ctx.History)
	start := 0
	if len(sorted) > 10 {
		start = len(sorted) - 10
	}
	seen := map[string]struct{}{ctx.Session.UserAgent: {}}
	for _, h := range sorted[start:] {
		seen[h.UserAgent] = struct{}{}
	}
	if len(seen) > 5 {
		return Outcome{Raise: 10}
	}
	return Outcome{}
}

// shortAgentFloorRule imposes a floor when the user agent string is
// implausibly short to belong to a real browser.
type shortAgentFloorRule struct{}

// ShortAgentFloor builds the too-short-user-agent floor rule.
func ShortAgentFloor() Rule { return shortAgentFloorRule{} }

func (shortAgentFloorRule) Name() string { return "ShortAgentFloor" }

func (shortAgentFloorRule) Description() string {
	return "Imposes a score floor when the user agent string is under 20 characters."
}

func (shortAgentFloorRule) Evaluate(ctx Context) Outcome {
	if len(ctx.Session.UserAgent) < 20 {
		return Outcome{Floor: 75}
	}
	return Outcome{}
}

// AgentOverlay returns the client-agent factor's default rule set, per
// spec.md §4.4.
func AgentOverlay() []Rule {
	return []Rule{
		BotKeywordFloor(),
		BelowMinVersion(),
		TouchWindowsMismatch(),
		AgentChurn(),
		ShortAgentFloor(),
	}
}
