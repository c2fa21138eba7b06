package domain

import "fmt"

// Hazard identifies one of the 18 National Risk Index hazard categories.
// Its string form is the NRI expected-annual-loss column name.
type Hazard int

// The 18 NRI hazards, in column-name order.
const (
	Avalanche Hazard = iota
	CoastalFlooding
	ColdWave
	Drought
	Earthquake
	Hail
	HeatWave
	Hurricane
	IceStorm
	Landslide
	Lightning
	RiverineFlooding
	StrongWind
	Tornado
	Tsunami
	VolcanicActivity
	Wildfire
	WinterWeather

	// HazardCount is the number of recognized hazards.
	HazardCount = int(WinterWeather) + 1
)

// HazardGroup clusters hazards for display.
type HazardGroup string

const (
	GroupGeophysical    HazardGroup = "Geophysical Hazards"
	GroupHydroMeteo     HazardGroup = "Hydrological & Meteorological Hazards"
	GroupClimatological HazardGroup = "Climatological Hazards"
)

// HazardGroups lists the display groups in render order.
var HazardGroups = []HazardGroup{GroupGeophysical, GroupHydroMeteo, GroupClimatological}

type hazardInfo struct {
	column string
	label  string
	group  HazardGroup
}

var hazardTable = [HazardCount]hazardInfo{
	Avalanche:        {"AVLN_EALT", "Avalanche", GroupGeophysical},
	CoastalFlooding:  {"CFLD_EALT", "Coastal Flooding", GroupHydroMeteo},
	ColdWave:         {"CWAV_EALT", "Cold Wave", GroupClimatological},
	Drought:          {"DRGT_EALT", "Drought", GroupClimatological},
	Earthquake:       {"ERQK_EALT", "Earthquake", GroupGeophysical},
	Hail:             {"HAIL_EALT", "Hail", GroupHydroMeteo},
	HeatWave:         {"HWAV_EALT", "Heat Wave", GroupClimatological},
	Hurricane:        {"HRCN_EALT", "Hurricane", GroupHydroMeteo},
	IceStorm:         {"ISTM_EALT", "Ice Storm", GroupClimatological},
	Landslide:        {"LNDS_EALT", "Landslide", GroupGeophysical},
	Lightning:        {"LTNG_EALT", "Lightning", GroupHydroMeteo},
	RiverineFlooding: {"RFLD_EALT", "Riverine Flooding", GroupHydroMeteo},
	StrongWind:       {"SWND_EALT", "Strong Wind", GroupHydroMeteo},
	Tornado:          {"TRND_EALT", "Tornado", GroupHydroMeteo},
	Tsunami:          {"TSUN_EALT", "Tsunami", GroupGeophysical},
	VolcanicActivity: {"VLCN_EALT", "Volcanic Activity", GroupGeophysical},
	Wildfire:         {"WFIR_EALT", "Wildfire", GroupClimatological},
	WinterWeather:    {"WNTW_EALT", "Winter Weather", GroupClimatological},
}

var hazardByColumn = func() map[string]Hazard {
	m := make(map[string]Hazard, HazardCount)
	for i, info := range hazardTable {
		m[info.column] = Hazard(i)
	}
	return m
}()

// AllHazards returns every hazard in column-name order.
func AllHazards() []Hazard {
	hs := make([]Hazard, HazardCount)
	for i := range hs {
		hs[i] = Hazard(i)
	}
	return hs
}

// ParseHazard resolves an NRI column name such as "HRCN_EALT".
func ParseHazard(column string) (Hazard, bool) {
	h, ok := hazardByColumn[column]
	return h, ok
}

// Valid reports whether h is one of the 18 recognized hazards.
func (h Hazard) Valid() bool {
	return h >= 0 && int(h) < HazardCount
}

// Column returns the NRI dataset column for the hazard.
func (h Hazard) Column() string {
	if !h.Valid() {
		return fmt.Sprintf("Hazard(%d)", int(h))
	}
	return hazardTable[h].column
}

func (h Hazard) String() string { return h.Column() }

// Label is the human-readable hazard name shown next to its slider.
func (h Hazard) Label() string {
	if !h.Valid() {
		return h.Column()
	}
	return hazardTable[h].label
}

// Group is the display group the hazard's slider belongs to.
func (h Hazard) Group() HazardGroup {
	if !h.Valid() {
		return ""
	}
	return hazardTable[h].group
}

// FeatureLabel returns a display label for a model feature name: the hazard
// label for hazard columns, the raw name otherwise.
func FeatureLabel(feature string) string {
	if h, ok := ParseHazard(feature); ok {
		return h.Label()
	}
	return feature
}
