// Package domain models FEMA National Risk Index (NRI) county data and the
// loss forecasts computed from it.
//
// # Data Source
//
// The NRI publishes one row per U.S. county with an expected annual loss
// (EAL) for each of 18 natural hazards. The dashboard ships a static extract
// of that table together with a regression model trained offline to predict
// total county EAL (EAL_VALT) from the hazard columns plus a few auxiliary
// attributes.
//
// # NRI Data Conventions
//
// County identifiers:
//
//	NRI_ID is the letter "C" followed by the 5-digit state+county FIPS code,
//	e.g. "C01001" → FIPS "01001" (Autauga County, AL). STCOFIPS carries the
//	bare FIPS code and is used when NRI_ID is absent.
//
// Hazard columns:
//
//	<CODE>_EALT is the total expected annual loss in dollars for one hazard,
//	e.g. HRCN_EALT (hurricane), TRND_EALT (tornado). The 18 codes are listed in
//	[Hazard]. Empty cells mean the hazard does not apply to the county and are
//	read as 0.
//
// Regions:
//
//	NRI has no region column. When the extract lacks a REGION column the U.S.
//	Census region (Northeast, Midwest, South, West) is derived from the state
//	abbreviation; territories map to "Territories".
//
// # Scenarios
//
// A [Scenario] scales hazard columns before they reach the model. Only the
// 18 hazard columns are scaled; population, building value and any other
// model feature pass through unchanged. Multipliers of 1.0 everywhere
// reproduce the baseline prediction exactly.
package domain
