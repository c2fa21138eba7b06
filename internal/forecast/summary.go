package forecast

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

// colorQuantile caps the choropleth colour scale so a handful of extreme
// counties do not wash out the rest of the map.
const colorQuantile = 0.95

// Rank sorts results by predicted loss, highest first, and returns the top n.
// Equal predictions keep their input order. n <= 0 returns every result.
func Rank(results []domain.PredictionResult, n int) []domain.RankedCounty {
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return results[idx[a]].Predicted > results[idx[b]].Predicted
	})

	if n <= 0 || n > len(idx) {
		n = len(idx)
	}
	out := make([]domain.RankedCounty, n)
	for i := 0; i < n; i++ {
		r := results[idx[i]]
		out[i] = domain.RankedCounty{
			Rank:      i + 1,
			FIPS:      r.Record.ID,
			County:    r.Record.County,
			State:     r.Record.State,
			Region:    r.Record.Region,
			Predicted: r.Predicted,
			Baseline:  r.Baseline,
			Delta:     r.Delta(),
		}
	}
	return out
}

// Summarize aggregates a scored county set. The colour range spans the
// smallest sqrt(loss) to its 95th percentile, the scale the choropleth is
// drawn on.
func Summarize(results []domain.PredictionResult) domain.Summary {
	if len(results) == 0 {
		return domain.Summary{}
	}

	preds := make([]float64, len(results))
	colors := make([]float64, len(results))
	var baseTotal float64
	for i, r := range results {
		preds[i] = r.Predicted
		colors[i] = colorValue(r.Predicted)
		baseTotal += r.Baseline
	}
	sort.Float64s(colors)

	return domain.Summary{
		TotalLoss:     floats.Sum(preds),
		MeanLoss:      stat.Mean(preds, nil),
		Counties:      len(results),
		BaselineTotal: baseTotal,
		ColorMin:      colors[0],
		ColorMax:      quantile(colorQuantile, colors),
	}
}

// quantile interpolates linearly at position p*(n-1) of sorted. This is not
// stat.LinInterp, which uses position p*n.
func quantile(p float64, sorted []float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// MapSeries returns one choropleth point per result, in input order.
func MapSeries(results []domain.PredictionResult) []domain.MapPoint {
	out := make([]domain.MapPoint, len(results))
	for i, r := range results {
		out[i] = domain.MapPoint{
			FIPS:      r.Record.ID,
			Predicted: r.Predicted,
			Color:     colorValue(r.Predicted),
		}
	}
	return out
}

func colorValue(pred float64) float64 {
	return math.Sqrt(math.Max(pred, 0))
}
