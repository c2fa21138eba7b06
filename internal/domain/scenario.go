package domain

// Scenario carries one multiplier per hazard. A multiplier of 1.0 leaves the
// hazard score unchanged. The zero value is not usable; build scenarios with
// NewScenario or the scenario package.
type Scenario struct {
	Preset      string
	multipliers [HazardCount]float64
}

// NewScenario returns the identity scenario with every multiplier at 1.0.
func NewScenario() Scenario {
	var s Scenario
	for i := range s.multipliers {
		s.multipliers[i] = 1.0
	}
	return s
}

// Multiplier returns the multiplier applied to h.
func (s Scenario) Multiplier(h Hazard) float64 {
	if !h.Valid() {
		return 1.0
	}
	return s.multipliers[h]
}

// With returns a copy of s with h's multiplier replaced.
func (s Scenario) With(h Hazard, m float64) Scenario {
	if h.Valid() {
		s.multipliers[h] = m
	}
	return s
}

// IsIdentity reports whether every multiplier is exactly 1.0.
func (s Scenario) IsIdentity() bool {
	for _, m := range s.multipliers {
		if m != 1.0 {
			return false
		}
	}
	return true
}

// Multipliers returns the scenario keyed by NRI column name.
func (s Scenario) Multipliers() map[string]float64 {
	out := make(map[string]float64, HazardCount)
	for i, m := range s.multipliers {
		out[Hazard(i).Column()] = m
	}
	return out
}
