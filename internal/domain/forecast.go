package domain

import "time"

// PredictionResult pairs a county with its predicted expected annual loss
// under the active scenario.
type PredictionResult struct {
	Record    CountyRecord
	Predicted float64
	// Baseline is the prediction under the identity scenario.
	Baseline float64
}

// Delta is the change in predicted loss relative to the baseline.
func (p PredictionResult) Delta() float64 {
	return p.Predicted - p.Baseline
}

// FeatureImportance is a static per-feature weight shipped with the model.
type FeatureImportance struct {
	Feature string  `json:"feature"`
	Label   string  `json:"label"`
	Weight  float64 `json:"weight"`
}

// Location is geocoding output attached to a ranked county.
type Location struct {
	Lat              float64 `json:"lat,omitempty"`
	Lon              float64 `json:"lon,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Source           string  `json:"source,omitempty"` // "mapbox", "failed"
}

// RankedCounty is one row of the top-N table.
type RankedCounty struct {
	Rank      int       `json:"rank"`
	FIPS      string    `json:"fips"`
	County    string    `json:"county"`
	State     string    `json:"state"`
	Region    string    `json:"region"`
	Predicted float64   `json:"predicted"`
	Baseline  float64   `json:"baseline"`
	Delta     float64   `json:"delta"`
	Location  *Location `json:"location,omitempty"`
}

// MapPoint is a single county in the choropleth series.
type MapPoint struct {
	FIPS      string  `json:"fips"`
	Predicted float64 `json:"predicted"`
	Color     float64 `json:"color"`
}

// Summary aggregates a scored county set.
type Summary struct {
	TotalLoss     float64 `json:"total_loss"`
	MeanLoss      float64 `json:"mean_loss"`
	Counties      int     `json:"counties"`
	BaselineTotal float64 `json:"baseline_total"`
	ColorMin      float64 `json:"color_min"`
	ColorMax      float64 `json:"color_max"`
}

// Selection is the region/state filter a run was computed for.
type Selection struct {
	Regions []string `json:"regions,omitempty"`
	States  []string `json:"states,omitempty"`
}

// ForecastRun is the full output of one recomputation cycle.
type ForecastRun struct {
	ID          string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Preset      string             `json:"preset,omitempty"`
	Multipliers map[string]float64 `json:"multipliers"`
	Selection   Selection          `json:"selection"`
	Summary     Summary            `json:"summary"`
	Top         []RankedCounty     `json:"top"`
	Map         []MapPoint         `json:"counties,omitempty"`
}
