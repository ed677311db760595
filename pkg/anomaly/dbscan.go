package anomaly

import "math"

// DBSCANCoreSet implements the geographic factor's density-clustering
// model (spec.md §4.3.4): DBSCAN (ε≈0.3, min-samples=5) fit on scaled
// location features during training; only the retained core-sample
// coordinates are needed for inference.
type DBSCANCoreSet struct {
	Normalizer  Normalizer
	CoreSamples [][]float64
	Epsilon     float64 // training ε, default 0.3
}

// Algorithm returns the bundle algorithm tag for this model.
func (d *DBSCANCoreSet) Algorithm() string { return "dbscan" }

// NearestCoreDistance returns the minimum Euclidean distance from the
// normalized feature vector to any retained core sample.
func (d *DBSCANCoreSet) NearestCoreDistance(x []float64) float64 {
	z := d.Normalizer.Apply(x)
	best := math.Inf(1)
	for _, core := range d.CoreSamples {
		dist := euclidean(z, core)
		if dist < best {
			best = dist
		}
	}
	return best
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Score applies spec.md §4.3.4's inference rule: distance ≤ ε → 0-30
// proportional; distance > ε → 30 + 70·(1−exp(−excess)). This base score
// is subject to the authoritative impossible-travel floor applied later
// by the geographic rule overlay, not here.
func (d *DBSCANCoreSet) Score(x []float64) int {
	if len(d.CoreSamples) == 0 {
		return 50 // no fitted core samples: neutral base
	}
	eps := d.Epsilon
	if eps <= 0 {
		eps = 0.3
	}
	dist := d.NearestCoreDistance(x)
	if dist <= eps {
		return clampScore(30 * (dist / eps))
	}
	excess := dist - eps
	return clampScore(30 + 70*(1-math.Exp(-excess)))
}
