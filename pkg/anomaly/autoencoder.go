package anomaly

import "math"

// DenseLayer is one fully-connected layer: y = activation(W·x + b). Weights
// is stored as [outputs][inputs].
type DenseLayer struct {
	Weights [][]float64
	Biases  []float64
}

func (l DenseLayer) forward(x []float64, activation func(float64) float64) []float64 {
	out := make([]float64, len(l.Weights))
	for o, row := range l.Weights {
		var sum float64
		n := len(row)
		if len(x) < n {
			n = len(x)
		}
		for i := 0; i < n; i++ {
			sum += row[i] * x[i]
		}
		if o < len(l.Biases) {
			sum += l.Biases[o]
		}
		out[o] = activation(sum)
	}
	return out
}

func relu(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Autoencoder implements the client-agent factor's reconstruction model
// (spec.md §4.3.3): input→64→32→16→32→64→input with ReLU hidden
// activations and a sigmoid output layer. Only a forward pass is needed
// for inference; the weights/biases per layer are loaded from a Bundle.
type Autoencoder struct {
	Normalizer Normalizer
	Layers     []DenseLayer // encoder + bottleneck + decoder, in order
	// Threshold is τ, the 95th percentile of per-sample reconstruction MSE
	// observed during training.
	Threshold float64
}

// Algorithm returns the bundle algorithm tag for this model.
func (a *Autoencoder) Algorithm() string { return "autoencoder" }

// reconstruct runs the full forward pass and returns the reconstructed
// vector, ReLU on every hidden layer and sigmoid on the final output
// layer.
func (a *Autoencoder) reconstruct(x []float64) []float64 {
	cur := x
	for i, layer := range a.Layers {
		if i == len(a.Layers)-1 {
			cur = layer.forward(cur, sigmoid)
		} else {
			cur = layer.forward(cur, relu)
		}
	}
	return cur
}

func mse(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(n)
}

// Score applies the exact inference formula from spec.md §4.3.3:
// base = floor(30·(m/τ)) if m ≤ τ, else 30 + floor(70·(1−exp(−5·(m/τ−1)))),
// clamped to [0,100].
func (a *Autoencoder) Score(x []float64) int {
	if len(a.Layers) == 0 || a.Threshold <= 0 {
		return 50 // no fitted network: neutral base
	}
	z := a.Normalizer.Apply(x)
	recon := a.reconstruct(z)
	m := mse(z, recon)
	ratio := m / a.Threshold

	var base float64
	if m <= a.Threshold {
		base = 30 * ratio
	} else {
		base = 30 + 70*(1-math.Exp(-5*(ratio-1)))
	}
	return clampScore(math.Floor(base))
}
