// Command validate checks a county dataset and a loss model offline before
// they are deployed behind the dashboard. It verifies the dataset contents,
// the model's feature schema, baseline scoring, and the scenario laws every
// preset relies on, then prints baseline statistics.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dataset data/nri_counties.csv \
//	  -model data/model.json.gz \
//	  -presets internal/scenario/presets.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/dataset"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/forecast"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/model"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/report"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/scenario"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetPath := flag.String("dataset", "data/nri_counties.csv", "path to the NRI county CSV")
	modelPath := flag.String("model", "data/model.json.gz", "path to the model file")
	presetsPath := flag.String("presets", "", "path to a presets YAML file (embedded defaults when empty)")
	topN := flag.Int("top", 5, "number of baseline counties to list")
	flag.Parse()

	os.Exit(run(os.Stdout, observability.NewMetrics(), *datasetPath, *modelPath, *presetsPath, *topN))
}

func run(out io.Writer, metrics *observability.Metrics, datasetPath, modelPath, presetsPath string, topN int) int {
	fmt.Fprintln(out, "=== Loss Forecast Input Validation ===")
	fmt.Fprintln(out)

	ds, err := dataset.Load(datasetPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	m, err := model.Load(modelPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	presets, err := scenario.LoadPresets(presetsPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	scenarios, err := scenario.New(presets)
	if err != nil {
		fmt.Fprintf(out, "FATAL: presets: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDataset(ds),
		validateModelSchema(m, ds),
	}

	// Scoring needs every model feature, so it only runs on a matching schema.
	var engine *forecast.Engine
	if phases[1].passed() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		engine, err = forecast.New(m, ds.Records, logger, metrics, forecast.Options{})
		scoring := &phase{name: "Phase 3: Baseline Scoring"}
		if err != nil {
			scoring.errorf("%v", err)
		} else {
			checkBaseline(scoring, engine)
		}
		phases = append(phases, scoring)
		if scoring.passed() {
			phases = append(phases, validateScenarioLaws(engine, scenarios))
		}
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Counties: %s in %d states, %d regions\n", report.Count(len(ds.Records)), len(ds.States()), len(ds.Regions()))
	fmt.Fprintf(out, "Model: %s, %d features\n", m.Kind, len(m.Features()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if engine != nil && allPassed {
		printBaseline(out, engine, scenarios, topN)
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Dataset ──

func validateDataset(ds *dataset.Dataset) *phase {
	p := &phase{name: "Phase 1: Dataset Contents"}

	for _, rec := range ds.Records {
		if len(rec.ID) != 5 {
			p.errorf("county %q: id is not a 5-digit FIPS code", rec.ID)
		}
		if rec.County == "" {
			p.errorf("county %s: empty county name", rec.ID)
		}
		if rec.Region == "Unknown" {
			p.errorf("county %s: state %q has no Census region", rec.ID, rec.StateAbbrev)
		}
		for _, h := range domain.AllHazards() {
			if v := rec.HazardScore(h); v < 0 || math.IsInf(v, 0) {
				p.errorf("county %s: %s = %g", rec.ID, h.Column(), v)
			}
		}
	}
	return p
}

// ── Phase 2: Model schema ──

func validateModelSchema(m *model.Model, ds *dataset.Dataset) *phase {
	p := &phase{name: "Phase 2: Model Feature Schema"}
	if err := m.ValidateSchema(ds); err != nil {
		p.errorf("%v", err)
	}
	return p
}

// ── Phase 3: Baseline scoring ──

func checkBaseline(p *phase, e *forecast.Engine) {
	results, err := e.Score(e.Records(), domain.NewScenario())
	if err != nil {
		p.errorf("%v", err)
		return
	}
	for _, r := range results {
		switch {
		case math.IsNaN(r.Predicted) || math.IsInf(r.Predicted, 0):
			p.errorf("county %s: non-finite prediction %g", r.Record.ID, r.Predicted)
		case r.Predicted < 0:
			p.errorf("county %s: negative prediction %g", r.Record.ID, r.Predicted)
		}
	}
}

// ── Phase 4: Scenario laws ──
// Identity: all-1.0 multipliers reproduce the baseline prediction.
// Single hazard: a multiplier changes exactly one feature of the input.
// Determinism: the same scenario yields the same totals.

func validateScenarioLaws(e *forecast.Engine, c *scenario.Configurator) *phase {
	p := &phase{name: "Phase 4: Scenario Laws"}
	records := e.Records()

	results, err := e.Score(records, domain.NewScenario())
	if err != nil {
		p.errorf("baseline: %v", err)
		return p
	}
	for _, r := range results {
		if r.Predicted != r.Baseline {
			p.errorf("identity: county %s predicted %g, baseline %g", r.Record.ID, r.Predicted, r.Baseline)
		}
	}

	rec := records[0]
	base, err := e.FeatureVector(rec, domain.NewScenario())
	if err != nil {
		p.errorf("feature vector: %v", err)
		return p
	}
	for _, h := range domain.AllHazards() {
		scaled, err := e.FeatureVector(rec, domain.NewScenario().With(h, 2))
		if err != nil {
			p.errorf("feature vector: %v", err)
			return p
		}
		for i := range base {
			want := base[i]
			if i == featureIndex(e, h) {
				want = base[i] * 2
			}
			if scaled[i] != want {
				p.errorf("single hazard %s: feature %d is %g, want %g", h.Column(), i, scaled[i], want)
			}
		}
	}

	for _, name := range c.PresetNames() {
		s, _ := c.FromPreset(name)
		first, err := e.Score(records, s)
		if err != nil {
			p.errorf("preset %q: %v", name, err)
			continue
		}
		second, _ := e.Score(records, s)
		if forecast.Summarize(first).TotalLoss != forecast.Summarize(second).TotalLoss {
			p.errorf("preset %q: totals differ between identical runs", name)
		}
	}
	return p
}

func featureIndex(e *forecast.Engine, h domain.Hazard) int {
	for i, f := range e.Features() {
		if f == h.Column() {
			return i
		}
	}
	return -1
}

// ── Baseline statistics ──

func printBaseline(out io.Writer, e *forecast.Engine, c *scenario.Configurator, topN int) {
	run, err := e.Run(context.Background(), forecast.Request{Scenario: domain.NewScenario(), TopN: topN})
	if err != nil {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Baseline forecast:")
	fmt.Fprintf(out, "  Total loss:       %s\n", report.Currency(run.Summary.TotalLoss))
	fmt.Fprintf(out, "  Avg per county:   %s\n", report.Currency(run.Summary.MeanLoss))
	fmt.Fprintf(out, "  Top %d counties:\n", len(run.Top))
	for _, r := range run.Top {
		fmt.Fprintf(out, "    %2d. %-24s %-16s %s\n", r.Rank, r.County, r.State, report.Currency(r.Predicted))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Preset totals:")
	for _, name := range c.PresetNames() {
		s, _ := c.FromPreset(name)
		results, err := e.Score(e.Records(), s)
		if err != nil {
			continue
		}
		sum := forecast.Summarize(results)
		change := 0.0
		if sum.BaselineTotal != 0 {
			change = (sum.TotalLoss/sum.BaselineTotal - 1) * 100
		}
		fmt.Fprintf(out, "  %-30s %18s  %+6.1f%%\n", name, report.Currency(sum.TotalLoss), change)
	}
}
