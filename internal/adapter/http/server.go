package http

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/dataset"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/forecast"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/report"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/scenario"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"multiplier": report.Multiplier,
}).Parse(indexHTML))

// Forecaster runs one full recomputation. *forecast.Engine implements it.
type Forecaster interface {
	Run(ctx context.Context, req forecast.Request) (domain.ForecastRun, error)
}

// Dependencies is everything the dashboard needs to answer requests. All of
// it is read-only after startup.
type Dependencies struct {
	Forecaster  Forecaster
	Scenarios   *scenario.Configurator
	Sliders     scenario.SliderBounds
	Importances []domain.FeatureImportance
	Regions     []string
	States      []dataset.StateOption
	TopN        int
	Ready       sharedobs.ReadinessChecker
	Metrics     *observability.Metrics
}

// Server serves the dashboard page, its JSON API, the PDF report and the
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Dependencies
	logger     *slog.Logger
}

// NewServer creates the dashboard HTTP server.
func NewServer(addr string, deps Dependencies, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.instrument("index", s.handleIndex))
	mux.HandleFunc("GET /api/options", s.instrument("options", s.handleOptions))
	mux.HandleFunc("GET /api/forecast", s.instrument("forecast", s.handleForecast))
	mux.HandleFunc("GET /api/importance", s.instrument("importance", s.handleImportance))
	mux.HandleFunc("GET /api/report.pdf", s.instrument("report", s.handleReport))

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type hazardOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group"`
}

type sliderGroup struct {
	Name    string
	Hazards []hazardOption
}

type optionsResponse struct {
	Hazards []hazardOption        `json:"hazards"`
	Groups  []string              `json:"groups"`
	Presets []scenario.Preset     `json:"presets"`
	Regions []string              `json:"regions"`
	States  []dataset.StateOption `json:"states"`
	Slider  scenario.SliderBounds `json:"slider"`
	TopN    int                   `json:"top_n"`
}

type pageData struct {
	Groups  []sliderGroup
	Presets []scenario.Preset
	Regions []string
	States  []dataset.StateOption
	Slider  scenario.SliderBounds
	TopN    int
}

func hazardOptions() []hazardOption {
	out := make([]hazardOption, 0, domain.HazardCount)
	for _, h := range domain.AllHazards() {
		out = append(out, hazardOption{Key: h.Column(), Label: h.Label(), Group: string(h.Group())})
	}
	return out
}

func sliderGroups() []sliderGroup {
	groups := make([]sliderGroup, len(domain.HazardGroups))
	for i, g := range domain.HazardGroups {
		groups[i].Name = string(g)
		for _, opt := range hazardOptions() {
			if opt.Group == string(g) {
				groups[i].Hazards = append(groups[i].Hazards, opt)
			}
		}
	}
	return groups
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, pageData{
		Groups:  sliderGroups(),
		Presets: s.deps.Scenarios.Presets(),
		Regions: s.deps.Regions,
		States:  s.deps.States,
		Slider:  s.deps.Sliders,
		TopN:    s.topN(),
	})
	if err != nil {
		s.logger.Error("render dashboard", "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	groups := make([]string, len(domain.HazardGroups))
	for i, g := range domain.HazardGroups {
		groups[i] = string(g)
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		Hazards: hazardOptions(),
		Groups:  groups,
		Presets: s.deps.Scenarios.Presets(),
		Regions: s.deps.Regions,
		States:  s.deps.States,
		Slider:  s.deps.Sliders,
		TopN:    s.topN(),
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	run, err := s.deps.Forecaster.Run(r.Context(), req)
	if err != nil {
		s.forecastFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleImportance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Importances)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.IncludeMap = false

	run, err := s.deps.Forecaster.Run(r.Context(), req)
	if err != nil {
		s.forecastFailed(w, err)
		return
	}
	pdf, err := report.Generate(run, s.deps.Importances)
	if err != nil {
		s.logger.Error("generate report", "run_id", run.ID, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("generate report: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"loss-forecast-%s.pdf\"", run.ID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Write(pdf) //nolint:errcheck // client went away
}

func (s *Server) forecastFailed(w http.ResponseWriter, err error) {
	var scoringErr *domain.ScoringError
	if errors.As(err, &scoringErr) {
		s.logger.Error("scoring failed", "county", scoringErr.CountyID, "feature", scoringErr.Feature)
	} else {
		s.logger.Error("forecast failed", "error", err)
	}
	writeError(w, http.StatusInternalServerError, err)
}

// parseRequest reads a forecast request from the query string. A preset,
// when given, is the starting point; explicit hazard parameters override
// it and are clamped to the slider range. Overrides that change the preset
// drop its name from the scenario.
func (s *Server) parseRequest(r *http.Request) (forecast.Request, error) {
	q := r.URL.Query()

	sc := domain.NewScenario()
	if name := q.Get("preset"); name != "" {
		p, ok := s.deps.Scenarios.FromPreset(name)
		if !ok {
			return forecast.Request{}, fmt.Errorf("unknown preset %q", name)
		}
		sc = p
	}
	preset := sc

	for _, h := range domain.AllHazards() {
		raw := q.Get(h.Column())
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return forecast.Request{}, fmt.Errorf("invalid multiplier %s=%q", h.Column(), raw)
		}
		sc = sc.With(h, s.deps.Sliders.Clamp(v))
	}
	if sc != preset {
		sc.Preset = ""
	}

	return forecast.Request{
		Scenario: sc,
		Filter: forecast.Filter{
			Regions: q["region"],
			States:  q["state"],
		},
		TopN:       s.topN(),
		IncludeMap: q.Get("counties") == "1",
	}, nil
}

func (s *Server) topN() int {
	if s.deps.TopN <= 0 {
		return forecast.DefaultTopN
	}
	return s.deps.TopN
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts responses per route and status code.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.deps.Metrics.APIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
