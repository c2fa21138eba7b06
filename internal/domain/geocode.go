package domain

import (
	"context"
	"log/slog"
)

// EnrichWithLocations attaches coordinates to ranked counties. A nil locator
// leaves the rows untouched; a failed lookup marks the row's location source
// as "failed" and moves on to the next county.
func EnrichWithLocations(ctx context.Context, rows []RankedCounty, locator CountyLocator, logger *slog.Logger) []RankedCounty {
	if locator == nil {
		return rows
	}

	for i := range rows {
		if ctx.Err() != nil {
			return rows
		}
		row := &rows[i]
		if row.County == "" || row.State == "" {
			continue
		}

		result, err := locator.LocateCounty(ctx, row.County, row.State)
		if err != nil {
			logger.Warn("county geocoding failed",
				"fips", row.FIPS,
				"county", row.County,
				"state", row.State,
				"error", err,
			)
			row.Location = &Location{Source: "failed"}
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			continue
		}
		row.Location = &Location{
			Lat:              result.Lat,
			Lon:              result.Lon,
			FormattedAddress: result.FormattedAddress,
			Confidence:       result.Confidence,
			Source:           "mapbox",
		}
	}
	return rows
}
