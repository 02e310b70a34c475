package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

// Client talks to the consumption prediction model. The model is an opaque
// HTTP service; requests are forwarded as-is and only the single
// predicted_consumption figure is read back.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// Iterative forecasting can take a while for long horizons.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Predict(ctx context.Context, preq domain.PredictionRequest) (float64, error) {
	b, err := json.Marshal(preq)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			return 0, fmt.Errorf("prediction failed: %s", body.Error)
		}
		return 0, fmt.Errorf("prediction failed: %s", resp.Status)
	}

	var out struct {
		PredictedConsumption *float64 `json:"predicted_consumption"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding prediction response: %w", err)
	}
	if out.PredictedConsumption == nil {
		return 0, fmt.Errorf("prediction response missing predicted_consumption")
	}
	return *out.PredictedConsumption, nil
}
