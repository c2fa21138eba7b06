package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestParseHazard(t *testing.T) {
	tests := []struct {
		column string
		want   Hazard
		ok     bool
	}{
		{"HRCN_EALT", Hurricane, true},
		{"AVLN_EALT", Avalanche, true},
		{"WNTW_EALT", WinterWeather, true},
		{"hrcn_ealt", 0, false},
		{"POPULATION", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := ParseHazard(tt.column)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHazardTableIsComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, h := range AllHazards() {
		assert.True(t, h.Valid())
		assert.NotEmpty(t, h.Label(), h.Column())
		assert.Contains(t, HazardGroups, h.Group(), h.Column())
		assert.False(t, seen[h.Column()], "duplicate column %s", h.Column())
		seen[h.Column()] = true

		back, ok := ParseHazard(h.Column())
		assert.True(t, ok)
		assert.Equal(t, h, back)
	}
	assert.Len(t, seen, 18)
}

func TestFeatureLabel(t *testing.T) {
	assert.Equal(t, "Hurricane", FeatureLabel("HRCN_EALT"))
	assert.Equal(t, "POPULATION", FeatureLabel("POPULATION"))
}

func TestScenario(t *testing.T) {
	s := NewScenario()
	assert.True(t, s.IsIdentity())
	for _, h := range AllHazards() {
		assert.Equal(t, 1.0, s.Multiplier(h))
	}

	s2 := s.With(Hurricane, 2.5)
	assert.False(t, s2.IsIdentity())
	assert.Equal(t, 2.5, s2.Multiplier(Hurricane))
	assert.Equal(t, 1.0, s.Multiplier(Hurricane), "With must not mutate the receiver")

	m := s2.Multipliers()
	assert.Len(t, m, HazardCount)
	assert.Equal(t, 2.5, m["HRCN_EALT"])
	assert.Equal(t, 1.0, m["TRND_EALT"])
}

func TestCountyRecordValue(t *testing.T) {
	var r CountyRecord
	r.Hazards[Tornado] = 42
	r.Aux = map[string]float64{"POPULATION": 1000}

	v, ok := r.Value("TRND_EALT")
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)

	v, ok = r.Value("POPULATION")
	assert.True(t, ok)
	assert.Equal(t, 1000.0, v)

	_, ok = r.Value("BUILDVALUE")
	assert.False(t, ok)
}

func TestRegionForState(t *testing.T) {
	assert.Equal(t, "South", RegionForState("TX"))
	assert.Equal(t, "West", RegionForState("CA"))
	assert.Equal(t, "Northeast", RegionForState("NY"))
	assert.Equal(t, "Midwest", RegionForState("OH"))
	assert.Equal(t, "Unknown", RegionForState("ZZ"))
}

func TestStateAbbrevFor(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Texas", "TX", true},
		{"  new york ", "NY", true},
		{"District of Columbia", "DC", true},
		{"Puerto Rico", "PR", true},
		{"ca", "CA", true},
		{"Atlantis", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := StateAbbrevFor(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredictionResultDelta(t *testing.T) {
	p := PredictionResult{Predicted: 150, Baseline: 100}
	assert.Equal(t, 50.0, p.Delta())
}

func TestNowUsesPackageClock(t *testing.T) {
	fixed := time.Date(2024, 4, 26, 12, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	assert.Equal(t, fixed, Now())
}
