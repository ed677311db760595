// Package bundle implements model artifact persistence (C8): the atomic
// save/load of a detector's trained parameters and preprocessor state, and
// the load-time mismatch-as-missing contract spec.md §4.3.5 requires.
package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gokaycavdar/riskguard/pkg/anomaly"
)

// Meta is the artifact header every bundle carries, checked against the
// detector's expectations before the parameters are even decoded.
type Meta struct {
	Algorithm    string `json:"algorithm"`
	Version      string `json:"version"`
	FeatureCount int    `json:"featureCount"`
}

// Artifact is the full persisted model for one detector factor: the
// header, normalizer parameters, and an algorithm-specific parameter blob
// decoded by BuildModel once the header has been validated.
type Artifact struct {
	Meta       Meta            `json:"meta"`
	Normalizer anomaly.Normalizer `json:"normalizer"`
	Params     json.RawMessage `json:"params"`
}

// svmParams, isoForestParams, autoencoderParams, and dbscanParams are the
// algorithm-specific shapes decoded from Artifact.Params.
type svmParams struct {
	SupportVectors [][]float64 `json:"supportVectors"`
	Alpha          []float64   `json:"alpha"`
	Rho            float64     `json:"rho"`
	Gamma          float64     `json:"gamma"`
	LinearScale    float64     `json:"linearScale"`
}

type isoForestParams struct {
	Trees          []*anomaly.IsolationTree `json:"trees"`
	SampleSize     int                      `json:"sampleSize"`
	DecisionOffset float64                  `json:"decisionOffset"`
	LinearScale    float64                  `json:"linearScale"`
}

type autoencoderParams struct {
	Layers    []anomaly.DenseLayer `json:"layers"`
	Threshold float64              `json:"threshold"`
}

type dbscanParams struct {
	CoreSamples [][]float64 `json:"coreSamples"`
	Epsilon     float64     `json:"epsilon"`
}

// Save atomically writes artifact to path: it is marshaled to a temp file
// in the same directory, then renamed into place, so a reader never
// observes a partially written bundle.
func Save(path string, artifact Artifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal bundle")
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bundle-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp bundle file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp bundle file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp bundle file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "rename temp bundle file")
	}
	return nil
}

// Load reads and decodes the artifact at path, then validates its header
// against wantAlgorithm/wantFeatureCount. A feature-count, algorithm-tag,
// or read/parse failure all return a non-nil error; per spec.md §4.3.5
// the caller MUST treat any such error identically to "bundle missing"
// and fall back to rules-only scoring for that factor.
func Load(path, wantAlgorithm string, wantFeatureCount int) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read bundle file")
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, errors.Wrap(err, "parse bundle file")
	}
	if artifact.Meta.Algorithm != wantAlgorithm {
		return nil, errors.Errorf("bundle algorithm mismatch: got %q want %q", artifact.Meta.Algorithm, wantAlgorithm)
	}
	if artifact.Meta.FeatureCount != wantFeatureCount {
		return nil, errors.Errorf("bundle feature count mismatch: got %d want %d", artifact.Meta.FeatureCount, wantFeatureCount)
	}
	return &artifact, nil
}

// BuildModel decodes artifact.Params into the concrete anomaly.Model for
// artifact.Meta.Algorithm. The algorithm tag has already been validated
// by Load, so an unrecognized tag here indicates a corrupt bundle.
func BuildModel(artifact *Artifact) (anomaly.Model, error) {
	switch artifact.Meta.Algorithm {
	case "one_class_svm":
		var p svmParams
		if err := json.Unmarshal(artifact.Params, &p); err != nil {
			return nil, errors.Wrap(err, "decode svm params")
		}
		return &anomaly.OneClassSVM{
			Normalizer:     artifact.Normalizer,
			SupportVectors: p.SupportVectors,
			Alpha:          p.Alpha,
			Rho:            p.Rho,
			Gamma:          p.Gamma,
			LinearScale:    p.LinearScale,
		}, nil
	case "isolation_forest":
		var p isoForestParams
		if err := json.Unmarshal(artifact.Params, &p); err != nil {
			return nil, errors.Wrap(err, "decode isolation forest params")
		}
		return &anomaly.IsolationForest{
			Normalizer:     artifact.Normalizer,
			Trees:          p.Trees,
			SampleSize:     p.SampleSize,
			DecisionOffset: p.DecisionOffset,
			LinearScale:    p.LinearScale,
		}, nil
	case "autoencoder":
		var p autoencoderParams
		if err := json.Unmarshal(artifact.Params, &p); err != nil {
			return nil, errors.Wrap(err, "decode autoencoder params")
		}
		return &anomaly.Autoencoder{
			Normalizer: artifact.Normalizer,
			Layers:     p.Layers,
			Threshold:  p.Threshold,
		}, nil
	case "dbscan":
		var p dbscanParams
		if err := json.Unmarshal(artifact.Params, &p); err != nil {
			return nil, errors.Wrap(err, "decode dbscan params")
		}
		return &anomaly.DBSCANCoreSet{
			Normalizer:  artifact.Normalizer,
			CoreSamples: p.CoreSamples,
			Epsilon:     p.Epsilon,
		}, nil
	default:
		return nil, errors.Errorf("unknown bundle algorithm %q", artifact.Meta.Algorithm)
	}
}

// FactorFilename returns the conventional bundle filename for factor
// within dir, e.g. "<dir>/network.json".
func FactorFilename(dir, factor string) string {
	return filepath.Join(dir, factor+".json")
}
