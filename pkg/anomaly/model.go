// Package anomaly implements the four trained unsupervised anomaly models
// (C3): a normalizer plus an algorithm-specific scorer behind one uniform
// Model interface. Every model's Score output is an integer in [0,100]
// before rule overlay. None of these are real trained models — inference
// only needs the shapes spec.md §4.3 describes (decision functions,
// forward passes, nearest-core-sample distance); the engine treats each
// Model as a pluggable black box loaded from a Bundle (C8), exactly as
// spec.md §9 "library-only scientific calls" recommends.
package anomaly

import "math"

// Normalizer holds per-feature mean/scale parameters fit during training
// and applies them at inference time: z = (x - mean) / scale.
type Normalizer struct {
	Mean  []float64
	Scale []float64
}

// Apply returns the normalized copy of x. A zero-valued Scale entry is
// treated as 1 to avoid division by zero on a constant feature.
func (n Normalizer) Apply(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		mean, scale := 0.0, 1.0
		if i < len(n.Mean) {
			mean = n.Mean[i]
		}
		if i < len(n.Scale) && n.Scale[i] != 0 {
			scale = n.Scale[i]
		}
		out[i] = (v - mean) / scale
	}
	return out
}

// Model is the uniform contract every factor's anomaly detector implements:
// given a feature vector, produce a base risk score in [0,100]. Models
// never error; an internal problem degrades to the neutral base (see
// detector façade), never a panic or error return.
type Model interface {
	// Score maps a raw (unnormalized) feature vector to a base score.
	Score(features []float64) int
	// Algorithm returns the algorithm tag persisted in the model's bundle,
	// used by the load-time mismatch check (spec.md §4.3.5).
	Algorithm() string
}

// clampScore restricts x to the integer range [0,100].
func clampScore(x float64) int {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return int(x)
}

// boundaryRisk implements the shared "sample-score → risk curve" spec.md
// §4.3.1/§4.3.2 describe: a signed distance to a decision boundary, where
// signed >= 0 is the inlier/normal side and signed < 0 is the
// outlier/anomalous side. linearScale controls how quickly the inlier
// side decays from 30 toward 0 as it moves deeper into normal territory.
func boundaryRisk(signed, linearScale float64) int {
	if signed >= 0 {
		frac := signed / linearScale
		if frac > 1 {
			frac = 1
		}
		return clampScore(30 * (1 - frac))
	}
	excess := -signed
	return clampScore(30 + 70*(1-math.Exp(-excess)))
}
