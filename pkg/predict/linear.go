package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LinearModel is a single dense layer over the scaled window.
// Activation "tanh" squashes the output into (-1, 1); anything else is linear.
type LinearModel struct {
	Weights    []float64 `json:"weights"`
	Bias       float64   `json:"bias"`
	Activation string    `json:"activation,omitempty"`
}

// LoadLinearModel reads a LinearModel from a JSON file
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model file %s has no weights", path)
	}
	return &m, nil
}

// Predict returns activation(w·x + b)
func (m *LinearModel) Predict(ctx context.Context, window []float64) (float64, error) {
	if len(window) != len(m.Weights) {
		return 0, fmt.Errorf("model expects %d inputs, got %d", len(m.Weights), len(window))
	}

	sum := m.Bias
	for i, v := range window {
		sum += m.Weights[i] * v
	}
	if m.Activation == "tanh" {
		sum = math.Tanh(sum)
	}
	return sum, nil
}
