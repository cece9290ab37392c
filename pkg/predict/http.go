package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPConfig holds configuration for a remote model
type HTTPConfig struct {
	BaseURL    string        // model server root, e.g. "http://localhost:8501"
	Model      string        // served model name
	Timeout    time.Duration // per-request timeout
	RetryCount int           // retries on transport errors
}

// HTTPPredictor calls a TensorFlow-Serving style REST endpoint:
// POST {BaseURL}/v1/models/{Model}:predict with a (1, W, 1) instance.
type HTTPPredictor struct {
	client *resty.Client
	model  string
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// NewHTTPPredictor creates a predictor for one served model
func NewHTTPPredictor(cfg HTTPConfig) *HTTPPredictor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Content-Type", "application/json")

	return &HTTPPredictor{
		client: client,
		model:  cfg.Model,
	}
}

// Model returns the served model name
func (p *HTTPPredictor) Model() string {
	return p.model
}

// Predict sends the scaled window and returns the single scaled prediction
func (p *HTTPPredictor) Predict(ctx context.Context, window []float64) (float64, error) {
	instance := make([][]float64, len(window))
	for i, v := range window {
		instance[i] = []float64{v}
	}

	var out predictResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(predictRequest{Instances: [][][]float64{instance}}).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/v1/models/%s:predict", p.model))
	if err != nil {
		return 0, fmt.Errorf("failed to call model %s: %w", p.model, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("model %s returned HTTP %d: %s", p.model, resp.StatusCode(), out.Error)
	}

	if len(out.Predictions) != 1 || len(out.Predictions[0]) != 1 {
		return 0, fmt.Errorf("%w: model %s returned shape %s", ErrMalformedOutput, p.model, shapeOf(out.Predictions))
	}
	return out.Predictions[0][0], nil
}

func shapeOf(v [][]float64) string {
	if len(v) == 0 {
		return "(0)"
	}
	return fmt.Sprintf("(%d, %d)", len(v), len(v[0]))
}
