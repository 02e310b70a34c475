package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/restonqwer/energy-dashboard/internal/domain"
)

// Client is the dashboard's view of the backend API: aggregate metrics,
// the consumption time series, predictions, and the auth endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

const dateFormat = "2006-01-02"

// FetchMetrics loads the aggregate summary for one building and date range.
// One round trip, no retries. The building name is passed through as an
// opaque query key.
func (c *Client) FetchMetrics(ctx context.Context, building string, start, end time.Time) (*domain.MetricsSummary, error) {
	params := url.Values{}
	params.Set("building", building)
	params.Set("start_date", start.Format(dateFormat))
	params.Set("end_date", end.Format(dateFormat))

	body, err := c.get(ctx, "/metrics", params)
	if err != nil {
		return nil, err
	}

	// Required fields decode through pointers so a missing key is
	// distinguishable from a zero value.
	var raw struct {
		TotalConsumption   *float64 `json:"total_consumption"`
		PeakDemand         *float64 `json:"peak_demand"`
		PeakHour           *string  `json:"peak_hour"`
		AverageConsumption float64  `json:"average_consumption"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("malformed metrics payload: %v", err)}
	}
	if raw.TotalConsumption == nil || raw.PeakDemand == nil || raw.PeakHour == nil {
		return nil, &InvalidResponseError{Reason: "metrics payload missing required fields"}
	}
	return &domain.MetricsSummary{
		TotalConsumption:   *raw.TotalConsumption,
		PeakDemand:         *raw.PeakDemand,
		PeakHour:           *raw.PeakHour,
		AverageConsumption: raw.AverageConsumption,
	}, nil
}

// FetchConsumption loads the time series for one building, date range and
// granularity.
func (c *Client) FetchConsumption(ctx context.Context, building string, start, end time.Time, view domain.ViewType) ([]domain.ConsumptionPoint, error) {
	params := url.Values{}
	params.Set("building", building)
	params.Set("start_date", start.Format(dateFormat))
	params.Set("end_date", end.Format(dateFormat))
	params.Set("view_type", string(view))

	body, err := c.get(ctx, "/consumption", params)
	if err != nil {
		return nil, err
	}
	var points []domain.ConsumptionPoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("malformed consumption payload: %v", err)}
	}
	return points, nil
}

// PredictionInput is the operator-entered feature set before wire encoding.
type PredictionInput struct {
	HoursAhead       int
	OutdoorTemp      float64
	Humidity         float64
	CloudCover       float64
	Occupancy        float64
	SpecialEquipment float64
	Lighting         float64
	HVAC             float64
	Season           string
}

func (in PredictionInput) Validate() error {
	if in.HoursAhead < 1 || in.HoursAhead > 168 {
		return errors.New("hours ahead must be between 1 and 168")
	}
	switch in.Season {
	case "spring", "summer", "autumn", "winter":
	default:
		return fmt.Errorf("unknown season %q", in.Season)
	}
	return nil
}

// Encode builds the wire request, one-hot encoding the season.
func (in PredictionInput) Encode() domain.PredictionRequest {
	winter, spring, summer, fall := domain.SeasonVector(in.Season)
	return domain.PredictionRequest{
		HoursAhead: in.HoursAhead,
		UserInputs: domain.FeatureVector{
			Winter:           winter,
			Spring:           spring,
			Summer:           summer,
			Fall:             fall,
			OutdoorTemp:      in.OutdoorTemp,
			Humidity:         in.Humidity,
			CloudCover:       in.CloudCover,
			Occupancy:        in.Occupancy,
			SpecialEquipment: in.SpecialEquipment,
			Lighting:         in.Lighting,
			HVAC:             in.HVAC,
		},
	}
}

// Predict submits one forecast request and returns the predicted kWh figure.
func (c *Client) Predict(ctx context.Context, in PredictionInput) (float64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	b, err := json.Marshal(in.Encode())
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
		return 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &RequestFailedError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	var out struct {
		PredictedConsumption *float64 `json:"predicted_consumption"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.PredictedConsumption == nil {
		return 0, &InvalidResponseError{Reason: "prediction response missing predicted_consumption"}
	}
	return *out.PredictedConsumption, nil
}

// Login exchanges the operator credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	b, err := json.Marshal(domain.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RequestFailedError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	var out domain.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("malformed login response: %v", err)}
	}
	if out.Token == "" {
		return nil, &InvalidResponseError{Reason: "login response missing token"}
	}
	return &out, nil
}

// Profile verifies a bearer token against the protected profile route and
// returns the bound email.
func (c *Client) Profile(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/profile", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &RequestFailedError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	var out struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &InvalidResponseError{Reason: fmt.Sprintf("malformed profile response: %v", err)}
	}
	return out.Email, nil
}

// get performs one GET round trip and returns the raw body of a successful
// response. Non-success statuses surface the error body's message verbatim.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &InvalidResponseError{Reason: errorMessage(resp)}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &NetworkError{Err: err}
	}
	return buf.Bytes(), nil
}

func errorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("request failed: %s", resp.Status)
}
