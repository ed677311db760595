package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gokaycavdar/riskguard/pkg/features"
	"github.com/gokaycavdar/riskguard/pkg/model"
)

func TestNewNetworkExtractsExpectedLength(t *testing.T) {
	d := NewNetwork(nil, nil)
	v := d.Extract(model.Session{IPAddress: "1.1.1.1"}, nil, 0)
	assert.Len(t, v, features.NetworkLen)
	assert.True(t, d.RulesOnly())
}

func TestNewTemporalExtractsExpectedLength(t *testing.T) {
	d := NewTemporal(nil)
	v := d.Extract(model.Session{}, nil, 0)
	assert.Len(t, v, features.TemporalLen)
}

func TestNewAgentExtractsExpectedLength(t *testing.T) {
	d := NewAgent(nil)
	v := d.Extract(model.Session{UserAgent: "x"}, nil, 0)
	assert.Len(t, v, features.AgentLen)
}

func TestNewGeographyExtractsExpectedLength(t *testing.T) {
	d := NewGeography(nil)
	v := d.Extract(model.Session{}, nil, 0)
	assert.Len(t, v, features.GeoLen)
}

func TestNewNetworkWiresKnownBadRule(t *testing.T) {
	d := NewNetwork(nil, map[string]bool{"9.9.9.9": true})
	score := d.Score(model.Session{IPAddress: "9.9.9.9"}, nil, 0)
	assert.GreaterOrEqual(t, score, 90)
}
