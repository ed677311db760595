package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

func TestKnownBadAddressRule(t *testing.T) {
	r := KnownBadAddress(map[string]bool{"1.2.3.4": true})
	ctx := Context{Session: model.Session{IPAddress: "1.2.3.4"}}
	out := r.Evaluate(ctx)
	assert.Equal(t, 30, out.Raise)
	assert.Equal(t, 90, out.Floor)

	ctx2 := Context{Session: model.Session{IPAddress: "5.6.7.8"}}
	assert.Equal(t, Outcome{}, r.Evaluate(ctx2))
}

func TestDatacenterRule(t *testing.T) {
	r := Datacenter()
	ctx := Context{Session: model.Session{IPAddress: "104.16.1.1"}}
	assert.Equal(t, Outcome{Raise: 20}, r.Evaluate(ctx))

	ctx2 := Context{Session: model.Session{IPAddress: "1.1.1.1"}}
	assert.Equal(t, Outcome{}, r.Evaluate(ctx2))
}

func TestTorExitRule(t *testing.T) {
	r := TorExit()
	ctx := Context{Session: model.Session{IPAddress: "192.42.116.16"}}
	assert.Equal(t, Outcome{Raise: 30}, r.Evaluate(ctx))
}

func TestPrivateRangeRule(t *testing.T) {
	r := PrivateRange()
	ctx := Context{Session: model.Session{IPAddress: "10.0.0.1"}}
	assert.Equal(t, Outcome{Raise: 10}, r.Evaluate(ctx))
}

func TestAddressChurnRule(t *testing.T) {
	r := AddressChurn(3_600_000, 3)
	ctx := Context{
		Session: model.Session{IPAddress: "1.1.1.1", TimestampMs: 10_000_000},
		History: []model.LoginHistoryItem{
			{IPAddress: "2.2.2.2", TimestampMs: 9_000_000},
			{IPAddress: "3.3.3.3", TimestampMs: 9_500_000},
			{IPAddress: "4.4.4.4", TimestampMs: 9_800_000},
		},
		NowMs: 10_000_000,
	}
	assert.Equal(t, Outcome{Raise: 20}, r.Evaluate(ctx))
}

func TestAddressChurnRuleUnderThreshold(t *testing.T) {
	r := AddressChurn(3_600_000, 3)
	ctx := Context{
		Session: model.Session{IPAddress: "1.1.1.1", TimestampMs: 10_000_000},
		History: []model.LoginHistoryItem{{IPAddress: "2.2.2.2", TimestampMs: 9_900_000}},
		NowMs:   10_000_000,
	}
	assert.Equal(t, Outcome{}, r.Evaluate(ctx))
}

func TestNetworkOverlayComposition(t *testing.T) {
	overlay := NetworkOverlay(nil)
	assert.Len(t, overlay, 5)
}
