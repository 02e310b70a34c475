package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

var (
	rangeStart = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)
)

func TestFetchMetricsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics", r.URL.Path)
		assert.Equal(t, "Hospital", r.URL.Query().Get("building"))
		assert.Equal(t, "2026-08-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2026-08-07", r.URL.Query().Get("end_date"))
		json.NewEncoder(w).Encode(map[string]any{
			"total_consumption":   456780.0,
			"peak_demand":         78.9,
			"peak_hour":           "14:00-16:00",
			"average_consumption": 54.2,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.FetchMetrics(context.Background(), "Hospital", rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, 456780.0, got.TotalConsumption)
	assert.Equal(t, 78.9, got.PeakDemand)
	assert.Equal(t, "14:00-16:00", got.PeakHour)
	assert.Equal(t, 54.2, got.AverageConsumption)
}

func TestFetchMetricsMissingFieldsIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"total_consumption": 1.0})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchMetrics(context.Background(), "Hospital", rangeStart, rangeEnd)
	var invalid *InvalidResponseError
	require.ErrorAs(t, err, &invalid)
}

func TestFetchMetricsServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "no such table"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchMetrics(context.Background(), "Hospital", rangeStart, rangeEnd)
	var invalid *InvalidResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "no such table", invalid.Reason)
}

func TestFetchMetricsTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening any more

	c := NewClient(srv.URL)
	_, err := c.FetchMetrics(context.Background(), "Hospital", rangeStart, rangeEnd)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestFetchConsumptionPassesViewType(t *testing.T) {
	var gotView string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotView = r.URL.Query().Get("view_type")
		json.NewEncoder(w).Encode([]domain.ConsumptionPoint{
			{Timestamp: "2026-08-01T00:00:00Z", Consumption: 45},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	points, err := c.FetchConsumption(context.Background(), "Hospital", rangeStart, rangeEnd, domain.ViewDaily)
	require.NoError(t, err)
	assert.Equal(t, "daily", gotView)
	require.Len(t, points, 1)
	assert.Equal(t, 45.0, points[0].Consumption)
}

func TestPredictEncodesSeasonOneHot(t *testing.T) {
	var captured map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			HoursAhead int                        `json:"hours_ahead"`
			UserInputs map[string]json.RawMessage `json:"user_inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 24, body.HoursAhead)
		captured = body.UserInputs
		json.NewEncoder(w).Encode(map[string]float64{"predicted_consumption": 321.5})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	value, err := c.Predict(context.Background(), PredictionInput{
		HoursAhead:  24,
		OutdoorTemp: 25,
		Humidity:    60,
		CloudCover:  30,
		Occupancy:   100,
		Lighting:    20,
		HVAC:        100,
		Season:      "autumn",
	})
	require.NoError(t, err)
	assert.Equal(t, 321.5, value)

	onehot := map[string]string{"Winter": "0", "Spring": "0", "Summer": "0", "Fall": "1"}
	for key, want := range onehot {
		require.Contains(t, captured, key)
		assert.Equal(t, want, string(captured[key]), key)
	}
	// The model's quirky training-column keys survive encoding.
	assert.Contains(t, captured, "Outdoor Temp (°C)")
	assert.Contains(t, captured, "HVAC [kW]")
}

func TestPredictValidatesHoursAhead(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]float64{"predicted_consumption": 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	base := PredictionInput{Season: "summer"}

	base.HoursAhead = 0
	_, err := c.Predict(context.Background(), base)
	assert.Error(t, err)

	base.HoursAhead = 200
	_, err = c.Predict(context.Background(), base)
	assert.Error(t, err)
	assert.Zero(t, calls, "invalid input must not reach the wire")

	base.HoursAhead = 168
	_, err = c.Predict(context.Background(), base)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPredictFailureCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Missing exogenous feature"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Predict(context.Background(), PredictionInput{HoursAhead: 24, Season: "summer"})
	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "Missing exogenous feature", failed.Message)
}

func TestPredictMissingFieldIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Predict(context.Background(), PredictionInput{HoursAhead: 24, Season: "summer"})
	var invalid *InvalidResponseError
	require.ErrorAs(t, err, &invalid)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Email == "restonqwer@gmail.com" && creds.Password == "123456" {
			json.NewEncoder(w).Encode(domain.LoginResponse{Email: creds.Email, Token: "tok"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid email or password"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Login(context.Background(), "restonqwer@gmail.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)

	_, err = c.Login(context.Background(), "restonqwer@gmail.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
