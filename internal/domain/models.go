package domain

import (
	"encoding/json"
	"time"
)

type Building struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	TotalArea float64 `json:"totalArea"`
	Floors    int     `json:"floors"`
}

// Catalog is the static set of monitored buildings. Buildings are not
// created or removed at runtime.
var Catalog = []Building{
	{ID: "1", Name: "Hospital", Address: "123 Main St", TotalArea: 50000, Floors: 10},
	{ID: "2", Name: "School", Address: "456 Park Ave", TotalArea: 75000, Floors: 15},
	{ID: "3", Name: "Office", Address: "789 Oak Rd", TotalArea: 45000, Floors: 8},
	{ID: "4", Name: "Industry", Address: "321 Pine St", TotalArea: 60000, Floors: 12},
	{ID: "5", Name: "House 1", Address: "654 Elm St", TotalArea: 55000, Floors: 11},
	{ID: "6", Name: "House 2", Address: "987 Maple Ave", TotalArea: 70000, Floors: 14},
}

func FindBuilding(id string) (Building, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Building{}, false
}

type Reading struct {
	ID        int64     `db:"id" json:"id"`
	Building  string    `db:"building" json:"building"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	PowerKW   float64   `db:"power_kw" json:"power_kw"`
}

// MetricsSummary is the aggregate returned by GET /metrics.
// TotalConsumption is in Wh; the dashboard divides by 1000 for display.
type MetricsSummary struct {
	TotalConsumption   float64 `json:"total_consumption"`
	PeakDemand         float64 `json:"peak_demand"`
	PeakHour           string  `json:"peak_hour"`
	AverageConsumption float64 `json:"average_consumption"`
}

type ConsumptionPoint struct {
	Timestamp   string  `json:"timestamp"`
	Consumption float64 `json:"consumption"`
}

type ViewType string

const (
	ViewHourly ViewType = "hourly"
	ViewDaily  ViewType = "daily"
)

func ParseViewType(s string) (ViewType, bool) {
	switch ViewType(s) {
	case ViewHourly, ViewDaily:
		return ViewType(s), true
	}
	return "", false
}

// FeatureVector is the exogenous feature bag the prediction model expects.
// The wire keys are the column names the model was trained with; the degree
// sign in "Outdoor Temp (°C)" is not a valid struct tag character, so the
// mapping is done in MarshalJSON/UnmarshalJSON instead of tags.
type FeatureVector struct {
	Winter           int
	Spring           int
	Summer           int
	Fall             int
	OutdoorTemp      float64
	Humidity         float64
	CloudCover       float64
	Occupancy        float64
	SpecialEquipment float64
	Lighting         float64
	HVAC             float64
}

const (
	keyOutdoorTemp      = "Outdoor Temp (°C)"
	keyHumidity         = "Humidity (%)"
	keyCloudCover       = "Cloud Cover (%)"
	keyOccupancy        = "Occupancy"
	keySpecialEquipment = "Special Equipment [kW]"
	keyLighting         = "Lighting [kW]"
	keyHVAC             = "HVAC [kW]"
)

func (f FeatureVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"Winter":            f.Winter,
		"Spring":            f.Spring,
		"Summer":            f.Summer,
		"Fall":              f.Fall,
		keyOutdoorTemp:      f.OutdoorTemp,
		keyHumidity:         f.Humidity,
		keyCloudCover:       f.CloudCover,
		keyOccupancy:        f.Occupancy,
		keySpecialEquipment: f.SpecialEquipment,
		keyLighting:         f.Lighting,
		keyHVAC:             f.HVAC,
	})
}

func (f *FeatureVector) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Winter = int(raw["Winter"])
	f.Spring = int(raw["Spring"])
	f.Summer = int(raw["Summer"])
	f.Fall = int(raw["Fall"])
	f.OutdoorTemp = raw[keyOutdoorTemp]
	f.Humidity = raw[keyHumidity]
	f.CloudCover = raw[keyCloudCover]
	f.Occupancy = raw[keyOccupancy]
	f.SpecialEquipment = raw[keySpecialEquipment]
	f.Lighting = raw[keyLighting]
	f.HVAC = raw[keyHVAC]
	return nil
}

// SeasonVector one-hot encodes a season name into the four wire fields.
// Exactly one field is set for a recognized season.
func SeasonVector(season string) (winter, spring, summer, fall int) {
	switch season {
	case "winter":
		winter = 1
	case "spring":
		spring = 1
	case "summer":
		summer = 1
	case "autumn":
		fall = 1
	}
	return
}

type PredictionRequest struct {
	HoursAhead int           `json:"hours_ahead"`
	UserInputs FeatureVector `json:"user_inputs"`
}

type PredictionResponse struct {
	PredictedConsumption float64 `json:"predicted_consumption"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
