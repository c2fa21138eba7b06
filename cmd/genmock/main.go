// Command genmock writes a synthetic NRI county extract and a matching linear
// model so the dashboard can run without the real FEMA download. Hazard
// levels follow rough regional patterns (hurricanes in the South, wildfire
// in the West, and so on); the output is seeded and reproducible.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -dataset-out data/nri_counties.csv \
//	  -model-out data/model.json.gz \
//	  -per-state 12 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/dataset"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/model"
)

// Auxiliary columns carried alongside the hazard scores and fed to the model.
const (
	colPopulation = "POPULATION"
	colBuildValue = "BUILDVALUE"
)

type stateDef struct {
	fips   int
	abbrev string
	name   string
}

var states = []stateDef{
	{1, "AL", "Alabama"}, {4, "AZ", "Arizona"}, {6, "CA", "California"},
	{8, "CO", "Colorado"}, {12, "FL", "Florida"}, {13, "GA", "Georgia"},
	{17, "IL", "Illinois"}, {19, "IA", "Iowa"}, {20, "KS", "Kansas"},
	{22, "LA", "Louisiana"}, {25, "MA", "Massachusetts"}, {27, "MN", "Minnesota"},
	{28, "MS", "Mississippi"}, {30, "MT", "Montana"}, {36, "NY", "New York"},
	{37, "NC", "North Carolina"}, {39, "OH", "Ohio"}, {40, "OK", "Oklahoma"},
	{41, "OR", "Oregon"}, {42, "PA", "Pennsylvania"}, {45, "SC", "South Carolina"},
	{48, "TX", "Texas"}, {53, "WA", "Washington"}, {55, "WI", "Wisconsin"},
}

// County names shared by many states.
var countyNames = []string{
	"Washington", "Jefferson", "Franklin", "Lincoln", "Jackson", "Madison",
	"Clay", "Montgomery", "Marion", "Monroe", "Union", "Greene", "Warren",
	"Wayne", "Grant", "Lake", "Carroll", "Polk", "Marshall", "Douglas",
}

// baseLoss is the median expected annual loss in dollars per hazard before
// regional scaling.
var baseLoss = [domain.HazardCount]float64{
	domain.Avalanche:        2e3,
	domain.CoastalFlooding:  4e5,
	domain.ColdWave:         1.5e5,
	domain.Drought:          3e5,
	domain.Earthquake:       6e5,
	domain.Hail:             8e5,
	domain.HeatWave:         2.5e5,
	domain.Hurricane:        1.2e6,
	domain.IceStorm:         2e5,
	domain.Landslide:        5e4,
	domain.Lightning:        1e5,
	domain.RiverineFlooding: 9e5,
	domain.StrongWind:       5e5,
	domain.Tornado:          1e6,
	domain.Tsunami:          1e4,
	domain.VolcanicActivity: 5e3,
	domain.Wildfire:         7e5,
	domain.WinterWeather:    4e5,
}

// regionFactor scales baseLoss per Census region. Missing entries are 1.
var regionFactor = map[string]map[domain.Hazard]float64{
	"South": {
		domain.Hurricane: 4, domain.CoastalFlooding: 3, domain.Tornado: 2,
		domain.HeatWave: 1.5, domain.Avalanche: 0, domain.VolcanicActivity: 0,
		domain.WinterWeather: 0.4, domain.ColdWave: 0.5,
	},
	"West": {
		domain.Wildfire: 5, domain.Earthquake: 6, domain.Drought: 2.5,
		domain.Landslide: 4, domain.Avalanche: 10, domain.VolcanicActivity: 8,
		domain.Tsunami: 6, domain.Hurricane: 0.05, domain.Tornado: 0.2,
	},
	"Midwest": {
		domain.Tornado: 2.5, domain.Hail: 3, domain.RiverineFlooding: 2,
		domain.ColdWave: 2, domain.WinterWeather: 2, domain.Hurricane: 0.02,
		domain.CoastalFlooding: 0.1, domain.Avalanche: 0, domain.VolcanicActivity: 0,
		domain.Tsunami: 0,
	},
	"Northeast": {
		domain.WinterWeather: 3, domain.IceStorm: 2, domain.CoastalFlooding: 1.5,
		domain.Hurricane: 0.6, domain.Wildfire: 0.2, domain.VolcanicActivity: 0,
		domain.Avalanche: 0.2,
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	datasetOut := flag.String("dataset-out", "data/nri_counties.csv", "output path for the county CSV")
	modelOut := flag.String("model-out", "data/model.json.gz", "output path for the gzip-compressed model")
	perState := flag.Int("per-state", 12, "counties generated per state")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *perState <= 0 || *perState > len(countyNames)*5 {
		return fmt.Errorf("-per-state must be between 1 and %d", len(countyNames)*5)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	header, rows := generateCounties(rng, *perState)

	if err := writeCSV(*datasetOut, header, rows); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote dataset: %s (%d counties)", *datasetOut, len(rows))

	features, coef, importances := linearModel(rng, header, rows)
	if err := writeModel(*modelOut, features, coef, importances); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	log.Printf("wrote model: %s (%d features)", *modelOut, len(features))
	return nil
}

func generateCounties(rng *rand.Rand, perState int) ([]string, [][]string) {
	header := []string{dataset.ColNRIID, dataset.ColSTCOFIPS, dataset.ColCounty, dataset.ColState, dataset.ColStateAbbrev}
	for _, h := range domain.AllHazards() {
		header = append(header, h.Column())
	}
	header = append(header, colPopulation, colBuildValue)

	rows := make([][]string, 0, len(states)*perState)
	for _, st := range states {
		region := domain.RegionForState(st.abbrev)
		for i := 0; i < perState; i++ {
			fips := fmt.Sprintf("%02d%03d", st.fips, 2*i+1)
			name := countyNames[i%len(countyNames)]
			if i >= len(countyNames) {
				name = fmt.Sprintf("%s %d", name, i/len(countyNames)+1)
			}

			// Larger counties carry more exposure across every hazard.
			population := math.Round(math.Exp(rng.NormFloat64()*1.1 + 10.5))
			exposure := population / 36000

			row := []string{"C" + fips, fips, name, st.name, st.abbrev}
			for _, h := range domain.AllHazards() {
				factor := 1.0
				if f, ok := regionFactor[region][h]; ok {
					factor = f
				}
				eal := baseLoss[h] * factor * exposure * math.Exp(rng.NormFloat64()*0.6)
				row = append(row, strconv.FormatFloat(math.Round(eal*100)/100, 'f', 2, 64))
			}
			buildValue := population * (150000 + rng.Float64()*250000)
			row = append(row,
				strconv.FormatFloat(population, 'f', 0, 64),
				strconv.FormatFloat(math.Round(buildValue), 'f', 0, 64),
			)
			rows = append(rows, row)
		}
	}
	return header, rows
}

// linearModel builds a hand-weighted model: a loss coefficient near 1.0 per
// hazard and small positive weights on the auxiliary columns. Importances
// are each feature's share of the mean prediction.
func linearModel(rng *rand.Rand, header []string, rows [][]string) ([]string, []float64, []float64) {
	features := header[5:]
	coef := make([]float64, len(features))
	contrib := make([]float64, len(features))

	for j, f := range features {
		switch f {
		case colPopulation:
			coef[j] = 2.5
		case colBuildValue:
			coef[j] = 1e-5
		default:
			coef[j] = 0.9 + rng.Float64()*0.6
		}

		col := make([]float64, len(rows))
		for i, row := range rows {
			col[i], _ = strconv.ParseFloat(row[5+j], 64)
		}
		contrib[j] = coef[j] * stat.Mean(col, nil)
	}

	importances := make([]float64, len(features))
	copy(importances, contrib)
	if total := floats.Sum(importances); total > 0 {
		floats.Scale(1/total, importances)
	}
	return features, coef, importances
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func writeModel(path string, features []string, coef, importances []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := model.WriteLinear(f, features, 0, coef, importances); err != nil {
		return err
	}
	return f.Close()
}
