package domain

import "strings"

// CountyRecord is one row of the NRI county dataset. Records are built once
// by the dataset loader and never mutated afterwards.
type CountyRecord struct {
	ID          string `json:"fips"`
	County      string `json:"county"`
	State       string `json:"state"`
	StateAbbrev string `json:"state_abbrev,omitempty"`
	Region      string `json:"region"`

	Hazards [HazardCount]float64 `json:"-"`

	// Aux holds every other numeric column (POPULATION, BUILDVALUE, ...) so
	// the model can consume them as pass-through features.
	Aux map[string]float64 `json:"-"`
}

// Value returns the named feature: a hazard score for hazard columns, an
// auxiliary attribute otherwise.
func (r CountyRecord) Value(feature string) (float64, bool) {
	if h, ok := ParseHazard(feature); ok {
		return r.Hazards[h], true
	}
	v, ok := r.Aux[feature]
	return v, ok
}

// HazardScore returns the record's score for h.
func (r CountyRecord) HazardScore(h Hazard) float64 {
	if !h.Valid() {
		return 0
	}
	return r.Hazards[h]
}

// censusRegions maps USPS state abbreviations to their U.S. Census region.
var censusRegions = map[string]string{
	"CT": "Northeast", "ME": "Northeast", "MA": "Northeast", "NH": "Northeast",
	"RI": "Northeast", "VT": "Northeast", "NJ": "Northeast", "NY": "Northeast",
	"PA": "Northeast",

	"IL": "Midwest", "IN": "Midwest", "MI": "Midwest", "OH": "Midwest",
	"WI": "Midwest", "IA": "Midwest", "KS": "Midwest", "MN": "Midwest",
	"MO": "Midwest", "NE": "Midwest", "ND": "Midwest", "SD": "Midwest",

	"DE": "South", "DC": "South", "FL": "South", "GA": "South", "MD": "South",
	"NC": "South", "SC": "South", "VA": "South", "WV": "South", "AL": "South",
	"KY": "South", "MS": "South", "TN": "South", "AR": "South", "LA": "South",
	"OK": "South", "TX": "South",

	"AZ": "West", "CO": "West", "ID": "West", "MT": "West", "NV": "West",
	"NM": "West", "UT": "West", "WY": "West", "AK": "West", "CA": "West",
	"HI": "West", "OR": "West", "WA": "West",

	"PR": "Territories", "GU": "Territories", "VI": "Territories",
	"AS": "Territories", "MP": "Territories",
}

// stateAbbrevs maps lower-cased state and territory names to USPS codes.
var stateAbbrevs = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
	"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
	"nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI",
	"south carolina": "SC", "south dakota": "SD", "tennessee": "TN", "texas": "TX",
	"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",

	"puerto rico": "PR", "guam": "GU", "virgin islands": "VI",
	"united states virgin islands": "VI", "american samoa": "AS",
	"northern mariana islands": "MP", "commonwealth of the northern mariana islands": "MP",
}

// StateAbbrevFor returns the USPS code for a state name, case-insensitively.
// A value that already is a known code is returned upper-cased.
func StateAbbrevFor(state string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(state))
	if a, ok := stateAbbrevs[key]; ok {
		return a, true
	}
	if a := strings.ToUpper(key); censusRegions[a] != "" {
		return a, true
	}
	return "", false
}

// RegionForState returns the Census region for a state abbreviation, or
// "Unknown" when the abbreviation is not recognized.
func RegionForState(abbrev string) string {
	if r, ok := censusRegions[abbrev]; ok {
		return r
	}
	return "Unknown"
}
