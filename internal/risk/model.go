package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LogisticModel is a trained logistic classifier loaded from a JSON weights
// file (exported by the offline training pipeline). It implements
// schema.Classifier.
//
// File format:
//
//	{ "weights": [...8 floats...], "bias": -1.2,
//	  "means": [...], "scales": [...] }
//
// means/scales are optional; when present the feature vector is
// standardized before the dot product.
type LogisticModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means,omitempty"`
	Scales  []float64 `json:"scales,omitempty"`
}

// LoadModel reads and validates a weights file. A missing file is reported
// as an error; the caller decides whether to fall back to heuristic-only.
func LoadModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if len(m.Weights) != FeatureCount {
		return nil, fmt.Errorf("model %s: expected %d weights, got %d", path, FeatureCount, len(m.Weights))
	}
	if len(m.Means) > 0 && len(m.Means) != FeatureCount {
		return nil, fmt.Errorf("model %s: scaler means length %d", path, len(m.Means))
	}
	if len(m.Scales) > 0 && len(m.Scales) != FeatureCount {
		return nil, fmt.Errorf("model %s: scaler scales length %d", path, len(m.Scales))
	}
	return &m, nil
}

// PredictProba returns the logistic probability for one feature vector.
func (m *LogisticModel) PredictProba(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("feature vector length %d, model expects %d", len(features), len(m.Weights))
	}

	z := m.Bias
	for i, x := range features {
		if len(m.Means) == len(features) && len(m.Scales) == len(features) && m.Scales[i] != 0 {
			x = (x - m.Means[i]) / m.Scales[i]
		}
		z += m.Weights[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}
