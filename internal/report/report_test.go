package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999.4, "$999"},
		{1234567.89, "$1,234,568"},
		{-2500, "-$2,500"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.in))
		})
	}
}

func TestCountAndMultiplier(t *testing.T) {
	assert.Equal(t, "3,143", Count(3143))
	assert.Equal(t, "2.5x", Multiplier(2.5))
	assert.Equal(t, "1.0x", Multiplier(1))
}

func sampleRun() domain.ForecastRun {
	s := domain.NewScenario().With(domain.Hurricane, 2)
	return domain.ForecastRun{
		ID:          "run-1",
		GeneratedAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Preset:      "Hurricane Season",
		Multipliers: s.Multipliers(),
		Selection:   domain.Selection{Regions: []string{"South"}},
		Summary:     domain.Summary{TotalLoss: 7000, MeanLoss: 2333.33, Counties: 3, BaselineTotal: 3500},
		Top: []domain.RankedCounty{
			{Rank: 1, FIPS: "48201", County: "Harris", State: "Texas", Predicted: 4000, Baseline: 2000, Delta: 2000},
			{Rank: 2, FIPS: "35013", County: "Doña Ana", State: "New Mexico", Predicted: 2000, Baseline: 1000, Delta: 1000},
		},
	}
}

func TestGenerate(t *testing.T) {
	importances := []domain.FeatureImportance{
		{Feature: "HRCN_EALT", Label: "Hurricane", Weight: 0.6},
		{Feature: "POPULATION", Label: "POPULATION", Weight: 0.4},
	}

	out, err := Generate(sampleRun(), importances)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output is a PDF document")
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestGenerate_EmptyRun(t *testing.T) {
	out, err := Generate(domain.ForecastRun{GeneratedAt: time.Now()}, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
