package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonVectorOneHot(t *testing.T) {
	cases := map[string][4]int{
		"winter": {1, 0, 0, 0},
		"spring": {0, 1, 0, 0},
		"summer": {0, 0, 1, 0},
		"autumn": {0, 0, 0, 1},
	}
	for season, want := range cases {
		winter, spring, summer, fall := SeasonVector(season)
		got := [4]int{winter, spring, summer, fall}
		assert.Equal(t, want, got, season)
		assert.Equal(t, 1, winter+spring+summer+fall, season)
	}
}

func TestSeasonVectorUnknownSeasonIsAllZero(t *testing.T) {
	winter, spring, summer, fall := SeasonVector("monsoon")
	assert.Zero(t, winter+spring+summer+fall)
}

func TestFeatureVectorWireKeys(t *testing.T) {
	b, err := json.Marshal(FeatureVector{Fall: 1, OutdoorTemp: 25.5, HVAC: 100})
	require.NoError(t, err)

	var m map[string]float64
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, 1.0, m["Fall"])
	assert.Equal(t, 25.5, m["Outdoor Temp (°C)"])
	assert.Equal(t, 100.0, m["HVAC [kW]"])

	var back FeatureVector
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, 1, back.Fall)
	assert.Equal(t, 25.5, back.OutdoorTemp)
}

func TestFindBuilding(t *testing.T) {
	b, ok := FindBuilding("1")
	assert.True(t, ok)
	assert.Equal(t, "Hospital", b.Name)

	_, ok = FindBuilding("99")
	assert.False(t, ok)
}

func TestParseViewType(t *testing.T) {
	v, ok := ParseViewType("hourly")
	assert.True(t, ok)
	assert.Equal(t, ViewHourly, v)

	v, ok = ParseViewType("daily")
	assert.True(t, ok)
	assert.Equal(t, ViewDaily, v)

	_, ok = ParseViewType("weekly")
	assert.False(t, ok)
}
