package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

func TestPredictPassesRequestThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		var req domain.PredictionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 48, req.HoursAhead)
		assert.Equal(t, 1, req.UserInputs.Winter)
		json.NewEncoder(w).Encode(map[string]float64{"predicted_consumption": 87.3})
	}))
	defer srv.Close()

	c := New(srv.URL)
	value, err := c.Predict(context.Background(), domain.PredictionRequest{
		HoursAhead: 48,
		UserInputs: domain.FeatureVector{Winter: 1, HVAC: 90},
	})
	require.NoError(t, err)
	assert.Equal(t, 87.3, value)
}

func TestPredictPropagatesModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not enough historical data"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Predict(context.Background(), domain.PredictionRequest{HoursAhead: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not enough historical data")
}

func TestPredictRejectsMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Predict(context.Background(), domain.PredictionRequest{HoursAhead: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predicted_consumption")
}
