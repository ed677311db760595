package features

import (
	"github.com/gokaycavdar/riskguard/pkg/model"
	"github.com/gokaycavdar/riskguard/pkg/netaddr"
)

// maxDistinctAddressesScale bounds the "distinct historical addresses"
// feature before it is scaled into [0,1]; beyond this count the feature
// saturates at 1.
const maxDistinctAddressesScale = 20.0

// Network extracts the 10-feature network vector for session given the
// user's login history (spec.md §4.1 "Network factor"):
//
//	0: is-new-address           5: distinct historical addresses (scaled)
//	1: is-datacenter-range      6: normalized numeric address value
//	2: is-tor-exit              7: is-IPv6
//	3: is-private-range         8: is-reserved
//	4: composite-suspicious     9: is-multicast
func Network(session model.Session, history []model.LoginHistoryItem) [NetworkLen]float64 {
	var v [NetworkLen]float64

	class := netaddr.Classify(session.IPAddress)
	if !class.Valid {
		// Unparseable address: neutral default for the whole vector,
		// never an exception to the caller.
		for i := range v {
			v[i] = UnknownPresence
		}
		return v
	}

	seen := make(map[string]struct{}, len(history))
	isNew := true
	for _, h := range history {
		seen[h.IPAddress] = struct{}{}
		if h.IPAddress == session.IPAddress {
			isNew = false
		}
	}

	v[0] = boolFeature(isNew)
	v[1] = boolFeature(class.IsDatacenter)
	v[2] = boolFeature(class.IsTorExit)
	v[3] = boolFeature(class.IsPrivate)
	v[4] = boolFeature(class.IsDatacenter || class.IsTorExit || class.IsPrivate)
	v[5] = clamp01(float64(len(seen)) / maxDistinctAddressesScale)

	num, max := netaddr.NumericValue(session.IPAddress)
	if max > 0 {
		v[6] = clamp01(num / max)
	}

	v[7] = boolFeature(class.IsIPv6)
	v[8] = boolFeature(class.IsReserved)
	v[9] = boolFeature(class.IsMulticast)

	return v
}

// DistinctAddressesInWindow counts distinct IP addresses seen in history
// within the last windowMs milliseconds before nowMs, inclusive of the
// current session's address. Used by the network rule overlay's
// "more than 3 distinct addresses in the last hour" signal.
func DistinctAddressesInWindow(session model.Session, history []model.LoginHistoryItem, nowMs, windowMs int64) int {
	seen := map[string]struct{}{session.IPAddress: {}}
	cutoff := nowMs - windowMs
	for _, h := range history {
		if h.TimestampMs >= cutoff && h.TimestampMs <= nowMs {
			seen[h.IPAddress] = struct{}{}
		}
	}
	return len(seen)
}
