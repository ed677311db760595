package anomaly

import "math"

// OneClassSVM implements the network factor's one-class boundary detector
// (spec.md §4.3.1): an RBF-kernel one-class SVM with ν≈0.05. Inference
// only needs the decision function, d(x) = Σ α_i·K(x, sv_i) − ρ, which is
// positive for inliers and negative for outliers; training (fitting
// α, the support vectors, and ρ) happens outside the request path and is
// loaded from a Bundle.
type OneClassSVM struct {
	Normalizer     Normalizer
	SupportVectors [][]float64
	Alpha          []float64
	Rho            float64
	Gamma          float64
	// LinearScale controls how quickly the inlier side of the risk curve
	// decays toward 0; fit alongside the other hyperparameters.
	LinearScale float64
}

// Algorithm returns the bundle algorithm tag for this model.
func (s *OneClassSVM) Algorithm() string { return "one_class_svm" }

// DecisionFunction returns d(x): positive means inlier, negative means
// outlier, matching spec.md §4.3.1.
func (s *OneClassSVM) DecisionFunction(x []float64) float64 {
	z := s.Normalizer.Apply(x)
	var sum float64
	for i, sv := range s.SupportVectors {
		sum += s.Alpha[i] * rbfKernel(z, sv, s.Gamma)
	}
	return sum - s.Rho
}

// Score maps the decision function to a base risk score in [0,100].
func (s *OneClassSVM) Score(x []float64) int {
	if len(s.SupportVectors) == 0 {
		return 50 // no fitted support vectors: neutral base
	}
	scale := s.LinearScale
	if scale <= 0 {
		scale = 1.0
	}
	return boundaryRisk(s.DecisionFunction(x), scale)
}

func rbfKernel(a, b []float64, gamma float64) float64 {
	if gamma <= 0 {
		gamma = 1.0
	}
	var sqDist float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sqDist += d * d
	}
	return math.Exp(-gamma * sqDist)
}
