// Package forecast scores county records under a hazard scenario and turns
// the predictions into ranked, summarized forecast runs.
package forecast

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
)

// DefaultTopN is the number of counties shown in the ranked table.
const DefaultTopN = 10

// Predictor is a loaded regression model.
type Predictor interface {
	Features() []string
	Predict(x []float64) float64
}

// Publisher ships finished forecast runs to an external sink.
type Publisher interface {
	Publish(ctx context.Context, run domain.ForecastRun) error
}

// Options carries the optional collaborators of an Engine. Nil fields are
// skipped.
type Options struct {
	Locator   domain.CountyLocator
	Publisher Publisher
}

// Engine scores county records with a model. The records, the model and the
// baseline predictions are read-only after New, so one Engine serves all
// requests concurrently.
type Engine struct {
	predictor Predictor
	features  []string
	inputs    []input
	records   []domain.CountyRecord
	baseline  map[string]float64

	locator   domain.CountyLocator
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// input says where one model feature comes from: a scaled hazard score or a
// pass-through auxiliary column.
type input struct {
	feature string
	hazard  domain.Hazard
	scaled  bool
}

// New builds an Engine over the full county set and computes the baseline
// prediction of every county under the identity scenario.
func New(p Predictor, records []domain.CountyRecord, logger *slog.Logger, metrics *observability.Metrics, opts Options) (*Engine, error) {
	features := p.Features()
	inputs := make([]input, len(features))
	for i, f := range features {
		h, ok := domain.ParseHazard(f)
		inputs[i] = input{feature: f, hazard: h, scaled: ok}
	}

	e := &Engine{
		predictor: p,
		features:  features,
		inputs:    inputs,
		records:   records,
		locator:   opts.Locator,
		publisher: opts.Publisher,
		logger:    logger,
		metrics:   metrics,
	}

	base, err := e.Score(records, domain.NewScenario())
	if err != nil {
		return nil, err
	}
	e.baseline = make(map[string]float64, len(base))
	for _, r := range base {
		e.baseline[r.Record.ID] = r.Predicted
	}

	metrics.DatasetCounties.Set(float64(len(records)))
	metrics.ModelFeatures.Set(float64(len(features)))
	return e, nil
}

// Features returns the model's input features in order.
func (e *Engine) Features() []string {
	return append([]string(nil), e.features...)
}

// Records returns the full county set the engine was built with.
func (e *Engine) Records() []domain.CountyRecord {
	return e.records
}

// CheckReadiness reports whether the engine has counties to score.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if len(e.records) == 0 {
		return errors.New("no county records loaded")
	}
	return nil
}

// FeatureVector assembles the model input for one record in the model's
// feature order. Hazard features are multiplied by the scenario; every
// other feature passes through unchanged.
func (e *Engine) FeatureVector(rec domain.CountyRecord, s domain.Scenario) ([]float64, error) {
	x := make([]float64, len(e.inputs))
	if err := e.fill(x, rec, s); err != nil {
		return nil, err
	}
	return x, nil
}

func (e *Engine) fill(x []float64, rec domain.CountyRecord, s domain.Scenario) error {
	for i, in := range e.inputs {
		if in.scaled {
			x[i] = rec.HazardScore(in.hazard) * s.Multiplier(in.hazard)
			continue
		}
		v, ok := rec.Aux[in.feature]
		if !ok {
			return &domain.ScoringError{CountyID: rec.ID, Feature: in.feature}
		}
		x[i] = v
	}
	return nil
}

// Score returns one PredictionResult per record, in input order.
func (e *Engine) Score(records []domain.CountyRecord, s domain.Scenario) ([]domain.PredictionResult, error) {
	out := make([]domain.PredictionResult, len(records))
	x := make([]float64, len(e.inputs))
	identity := s.IsIdentity()

	for i, rec := range records {
		if err := e.fill(x, rec, s); err != nil {
			return nil, err
		}
		pred := e.predictor.Predict(x)

		base, ok := e.baseline[rec.ID]
		switch {
		case ok:
		case identity:
			base = pred
		default:
			if err := e.fill(x, rec, domain.NewScenario()); err != nil {
				return nil, err
			}
			base = e.predictor.Predict(x)
		}

		out[i] = domain.PredictionResult{Record: rec, Predicted: pred, Baseline: base}
	}
	return out, nil
}

// Request is one recomputation: a scenario, a county filter and what to
// include in the result.
type Request struct {
	Scenario   domain.Scenario
	Filter     Filter
	TopN       int
	IncludeMap bool
}

// Run filters the county set, scores it, ranks and summarizes the results,
// locates the top counties and publishes the run when those collaborators
// are configured.
func (e *Engine) Run(ctx context.Context, req Request) (domain.ForecastRun, error) {
	start := time.Now()

	subset := req.Filter.Apply(e.records)
	results, err := e.Score(subset, req.Scenario)
	if err != nil {
		e.metrics.ForecastRuns.WithLabelValues("error").Inc()
		var scoringErr *domain.ScoringError
		if errors.As(err, &scoringErr) {
			e.metrics.ScoringErrors.Inc()
		}
		return domain.ForecastRun{}, err
	}
	e.metrics.CountiesScored.Add(float64(len(results)))

	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	run := domain.ForecastRun{
		ID:          uuid.NewString(),
		GeneratedAt: domain.Now(),
		Preset:      req.Scenario.Preset,
		Multipliers: req.Scenario.Multipliers(),
		Selection:   req.Filter.Selection(),
		Summary:     Summarize(results),
		Top:         Rank(results, topN),
	}
	if req.IncludeMap {
		run.Map = MapSeries(results)
	}

	if e.locator != nil {
		run.Top = domain.EnrichWithLocations(ctx, run.Top, e.locator, e.logger)
	}

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, run); err != nil {
			e.logger.Warn("publish forecast run failed", "run_id", run.ID, "error", err)
			e.metrics.PublishErrors.Inc()
		} else {
			e.metrics.PublishedRuns.Inc()
		}
	}

	e.metrics.ForecastRuns.WithLabelValues("success").Inc()
	e.metrics.ForecastDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug("forecast computed",
		"run_id", run.ID,
		"preset", run.Preset,
		"counties", len(results),
		"total_loss", run.Summary.TotalLoss,
	)
	return run, nil
}
