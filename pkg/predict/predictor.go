package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
)

// ErrMalformedOutput is returned when a model response does not have shape (1, 1)
var ErrMalformedOutput = errors.New("malformed model output")

// Func adapts a plain function to forecast.Predictor
type Func func(ctx context.Context, window []float64) (float64, error)

// Predict calls f
func (f Func) Predict(ctx context.Context, window []float64) (float64, error) {
	return f(ctx, window)
}

// Set holds one predictor per tier
type Set map[model.Tier]forecast.Predictor

// Config describes where each tier's model lives.
// A reference ending in ".json" is a local linear model file;
// anything else is a model name served at BaseURL.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Models  map[model.Tier]string
}

// DefaultConfig returns the model names used by the demo deployment
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8501",
		Timeout: 10 * time.Second,
		Models: map[model.Tier]string{
			model.TierLow:  "best_model_low",
			model.TierMid:  "best_model_mid",
			model.TierHigh: "best_model_high",
		},
	}
}

// Load builds the predictor set declared by cfg. Every tier must have a model.
func Load(cfg Config) (Set, error) {
	set := make(Set, len(model.Tiers))
	for _, t := range model.Tiers {
		ref := strings.TrimSpace(cfg.Models[t])
		if ref == "" {
			return nil, fmt.Errorf("no model configured for tier %s", t)
		}

		if strings.HasSuffix(ref, ".json") {
			lm, err := LoadLinearModel(ref)
			if err != nil {
				return nil, fmt.Errorf("tier %s: %w", t, err)
			}
			set[t] = lm
			continue
		}

		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("tier %s: model %q needs a model server URL", t, ref)
		}
		set[t] = NewHTTPPredictor(HTTPConfig{
			BaseURL: cfg.BaseURL,
			Model:   ref,
			Timeout: cfg.Timeout,
		})
	}
	return set, nil
}
