// Package detector implements the per-factor detector façade (C5): an
// extractor, an optional trained anomaly model, and a rule overlay,
// composed into one Score call. Grounded on the teacher's GeoGuard engine
// (pkg/engine/engine.go), which ran a flat rule list over a LoginRecord;
// here that flat list is split per factor and given a model stage ahead
// of it.
package detector

import (
	"github.com/gokaycavdar/riskguard/pkg/anomaly"
	"github.com/gokaycavdar/riskguard/pkg/model"
	"github.com/gokaycavdar/riskguard/pkg/rules"
)

// NeutralBase is the score a factor contributes when no trained model is
// available for it (spec.md §4.3.5's rules-only fallback).
const NeutralBase = 50

// Detector composes one factor's feature extractor, anomaly model, and
// rule overlay. Model may be nil, in which case Score falls back to
// NeutralBase before the overlay runs — this is the "rules-only" mode
// spec.md requires when a bundle is missing or fails its mismatch check.
type Detector struct {
	Extract func(session model.Session, history []model.LoginHistoryItem, nowMs int64) []float64
	Model   anomaly.Model
	Overlay []rules.Rule
}

// RulesOnly reports whether this detector is currently running without a
// trained model. It is not included in the response metadata.
func (d *Detector) RulesOnly() bool { return d.Model == nil }

// Score runs the full per-factor pipeline: extract features, score them
// with the trained model (or NeutralBase if absent), then apply the rule
// overlay.
func (d *Detector) Score(session model.Session, history []model.LoginHistoryItem, nowMs int64) int {
	base := NeutralBase
	if d.Model != nil {
		features := d.Extract(session, history, nowMs)
		base = d.Model.Score(features)
	}
	ctx := rules.Context{Session: session, History: history, NowMs: nowMs}
	return rules.Apply(base, ctx, d.Overlay)
}
