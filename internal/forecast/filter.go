package forecast

import "github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"

// Filter restricts the county set by region and state. An empty list does
// not restrict; a record must match both lists to pass.
type Filter struct {
	Regions []string
	States  []string
}

// Apply returns the matching records in input order.
func (f Filter) Apply(records []domain.CountyRecord) []domain.CountyRecord {
	if len(f.Regions) == 0 && len(f.States) == 0 {
		return records
	}

	regions := toSet(f.Regions)
	states := toSet(f.States)

	out := make([]domain.CountyRecord, 0, len(records))
	for _, r := range records {
		if len(regions) > 0 && !regions[r.Region] {
			continue
		}
		if len(states) > 0 && !states[r.State] && !states[r.StateAbbrev] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Selection is the filter as reported in a forecast run.
func (f Filter) Selection() domain.Selection {
	return domain.Selection{Regions: f.Regions, States: f.States}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
