package rules

import "github.com/gokaycavdar/riskguard/pkg/netaddr"

// knownBadAddressRule implements spec.md §4.4's "known-bad address"
// signal: a static deny-list hit both adds a +30 raise and
// imposes a 90 floor, so it dominates even a confident inlier model score.
type knownBadAddressRule struct {
	BlacklistedIPs map[string]bool
}

// KnownBadAddress builds the known-bad-address rule from an explicit
// deny-list, mirroring the teacher's blacklist-rule constructor shape.
func KnownBadAddress(blacklist map[string]bool) Rule {
	return &knownBadAddressRule{BlacklistedIPs: blacklist}
}

func (r *knownBadAddressRule) Name() string { return "KnownBadAddress" }

func (r *knownBadAddressRule) Description() string {
	return "Flags IP addresses on an explicit deny-list."
}

func (r *knownBadAddressRule) Evaluate(ctx Context) Outcome {
	if r.BlacklistedIPs[ctx.Session.IPAddress] {
		return Outcome{Raise: 30, Floor: 90}
	}
	return Outcome{}
}

// datacenterRule detects connections from known cloud/hosting providers,
// grounded on the teacher's DataCenterRule (pkg/rules/datacenter.go), ported
// from ASN-blacklist matching to the netaddr.Classify CIDR classification
// this service's enrichment pipeline already computes.
type datacenterRule struct{}

// Datacenter builds the datacenter/CDN-range rule.
func Datacenter() Rule { return datacenterRule{} }

func (datacenterRule) Name() string { return "DataCenterRange" }

func (datacenterRule) Description() string {
	return "Flags IP addresses in known datacenter or CDN ranges."
}

func (datacenterRule) Evaluate(ctx Context) Outcome {
	if netaddr.Classify(ctx.Session.IPAddress).IsDatacenter {
		return Outcome{Raise: 20}
	}
	return Outcome{}
}

// torExitRule detects Tor exit-node addresses, grounded on the teacher's
// OpenProxyRule (pkg/rules/open_proxy.go).
type torExitRule struct{}

// TorExit builds the Tor exit-node rule.
func TorExit() Rule { return torExitRule{} }

func (torExitRule) Name() string { return "TorExitNode" }

func (torExitRule) Description() string {
	return "Flags IP addresses belonging to a known Tor exit node."
}

func (torExitRule) Evaluate(ctx Context) Outcome {
	if netaddr.Classify(ctx.Session.IPAddress).IsTorExit {
		return Outcome{Raise: 30}
	}
	return Outcome{}
}

// privateRangeRule flags private/loopback/link-local addresses, a much
// weaker signal than datacenter or Tor but still worth a small raise per
// spec.md §4.4.
type privateRangeRule struct{}

// PrivateRange builds the private-address-range rule.
func PrivateRange() Rule { return privateRangeRule{} }

func (privateRangeRule) Name() string { return "PrivateAddressRange" }

func (privateRangeRule) Description() string {
	return "Flags IP addresses in a private, loopback, or link-local range."
}

func (privateRangeRule) Evaluate(ctx Context) Outcome {
	if netaddr.Classify(ctx.Session.IPAddress).IsPrivate {
		return Outcome{Raise: 10}
	}
	return Outcome{}
}

// addressChurnRule flags more than three distinct addresses used by the
// same account within the preceding hour.
type addressChurnRule struct {
	WindowMs int64
	Max      int
}

// AddressChurn builds the distinct-address-churn rule over windowMs
// milliseconds, firing when more than max distinct addresses are seen.
func AddressChurn(windowMs int64, max int) Rule {
	return &addressChurnRule{WindowMs: windowMs, Max: max}
}

func (r *addressChurnRule) Name() string { return "AddressChurn" }

func (r *addressChurnRule) Description() string {
	return "Flags accounts using more than a threshold of distinct IP addresses in a recent window."
}

func (r *addressChurnRule) Evaluate(ctx Context) Outcome {
	seen := map[string]struct{}{ctx.Session.IPAddress: {}}
	cutoff := ctx.NowMs - r.WindowMs
	for _, h := range ctx.History {
		if h.TimestampMs >= cutoff && h.TimestampMs <= ctx.NowMs {
			seen[h.IPAddress] = struct{}{}
		}
	}
	if len(seen) > r.Max {
		return Outcome{Raise: 20}
	}
	return Outcome{}
}

// NetworkOverlay returns the network factor's default rule set, per
// spec.md §4.4.
func NetworkOverlay(knownBad map[string]bool) []Rule {
	return []Rule{
		KnownBadAddress(knownBad),
		Datacenter(),
		TorExit(),
		PrivateRange(),
		AddressChurn(3_600_000, 3),
	}
}
