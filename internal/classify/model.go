// Package classify trains and applies the binary relevance classifier:
// a regularized logistic regression over TF-IDF features.
package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/avolkov/threadsieve/internal/feature"
	"github.com/avolkov/threadsieve/internal/model"
)

// Model is an immutable trained snapshot. A retrain produces a new
// snapshot; weights are never mutated in place.
type Model struct {
	Vocabulary        map[string]int `json:"vocabulary"`
	IDF               []float64      `json:"idf"`
	NgramMax          int            `json:"ngram_max"`
	Weights           []float64      `json:"weights"`
	Bias              float64        `json:"bias"`
	DecisionThreshold float64        `json:"decision_threshold"`
	TrainedAt         time.Time      `json:"trained_at"`
	TrainExamples     int            `json:"train_examples"`
	HoldoutExamples   int            `json:"holdout_examples"`
	HoldoutAccuracy   float64        `json:"holdout_accuracy"`
}

// Extractor rebuilds the feature extractor frozen into this snapshot.
func (m *Model) Extractor() *feature.Extractor {
	return feature.Restore(m.Vocabulary, m.IDF, m.NgramMax)
}

// PredictProba returns the probability that the vector is relevant.
func (m *Model) PredictProba(v feature.Vector) float64 {
	z := m.Bias
	for idx, x := range v {
		if idx >= 0 && idx < len(m.Weights) {
			z += m.Weights[idx] * x
		}
	}
	return sigmoid(z)
}

// Predict applies the decision threshold. A probability exactly equal
// to the threshold classifies as relevant.
func (m *Model) Predict(v feature.Vector) model.Label {
	if m.PredictProba(v) >= m.DecisionThreshold {
		return model.LabelRelevant
	}
	return model.LabelIrrelevant
}

// Save writes the snapshot as JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(m.Weights) != len(m.IDF) || len(m.Weights) != len(m.Vocabulary) {
		return nil, fmt.Errorf("model %s: weight/vocabulary size mismatch", path)
	}
	return &m, nil
}

func sigmoid(z float64) float64 {
	if z < -35 {
		return 0
	}
	if z > 35 {
		return 1
	}
	return 1 / (1 + math.Exp(-z))
}
