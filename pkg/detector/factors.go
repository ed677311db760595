package detector

import (
	"github.com/gokaycavdar/riskguard/pkg/anomaly"
	"github.com/gokaycavdar/riskguard/pkg/features"
	"github.com/gokaycavdar/riskguard/pkg/model"
	"github.com/gokaycavdar/riskguard/pkg/rules"
)

// NewNetwork builds the network factor's detector. m may be nil, in
// which case the detector runs rules-only. knownBad is the explicit IP
// deny-list backing the KnownBadAddress rule; it may also be nil.
func NewNetwork(m anomaly.Model, knownBad map[string]bool) *Detector {
	return &Detector{
		Extract: func(session model.Session, history []model.LoginHistoryItem, _ int64) []float64 {
			v := features.Network(session, history)
			return v[:]
		},
		Model:   m,
		Overlay: rules.NetworkOverlay(knownBad),
	}
}

// NewTemporal builds the temporal factor's detector.
func NewTemporal(m anomaly.Model) *Detector {
	return &Detector{
		Extract: func(session model.Session, history []model.LoginHistoryItem, _ int64) []float64 {
			v := features.Temporal(session, history)
			return v[:]
		},
		Model:   m,
		Overlay: rules.TemporalOverlay(),
	}
}

// NewAgent builds the client-agent factor's detector.
func NewAgent(m anomaly.Model) *Detector {
	return &Detector{
		Extract: func(session model.Session, _ []model.LoginHistoryItem, _ int64) []float64 {
			v := features.Agent(session)
			return v[:]
		},
		Model:   m,
		Overlay: rules.AgentOverlay(),
	}
}

// NewGeography builds the geographic factor's detector.
func NewGeography(m anomaly.Model) *Detector {
	return &Detector{
		Extract: func(session model.Session, history []model.LoginHistoryItem, nowMs int64) []float64 {
			v := features.Geography(session, history, nowMs)
			return v[:]
		},
		Model:   m,
		Overlay: rules.GeographyOverlay(),
	}
}
