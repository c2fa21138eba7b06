package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/adapter/http"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/dataset"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/forecast"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/scenario"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type fakeForecaster struct {
	calls int
	last  forecast.Request
	err   error
}

func (f *fakeForecaster) Run(_ context.Context, req forecast.Request) (domain.ForecastRun, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return domain.ForecastRun{}, f.err
	}
	return domain.ForecastRun{
		ID:          "run-42",
		GeneratedAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Preset:      req.Scenario.Preset,
		Multipliers: req.Scenario.Multipliers(),
		Selection:   req.Filter.Selection(),
		Summary:     domain.Summary{TotalLoss: 7000, MeanLoss: 3500, Counties: 2, BaselineTotal: 3500},
		Top: []domain.RankedCounty{
			{Rank: 1, FIPS: "48201", County: "Harris", State: "Texas", Region: "South", Predicted: 4000, Baseline: 2000, Delta: 2000},
			{Rank: 2, FIPS: "12086", County: "Miami-Dade", State: "Florida", Region: "South", Predicted: 3000, Baseline: 1500, Delta: 1500},
		},
	}, nil
}

type testServer struct {
	*httpadapter.Server
	forecaster *fakeForecaster
	metrics    *observability.Metrics
}

func newTestServer(t *testing.T, readyErr error) testServer {
	t.Helper()
	presets, err := scenario.LoadPresets("")
	require.NoError(t, err)
	configurator, err := scenario.New(presets)
	require.NoError(t, err)

	f := &fakeForecaster{}
	m := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(":0", httpadapter.Dependencies{
		Forecaster: f,
		Scenarios:  configurator,
		Sliders:    scenario.SliderBounds{Min: 0, Max: 5, Step: 0.1},
		Importances: []domain.FeatureImportance{
			{Feature: "HRCN_EALT", Label: "Hurricane", Weight: 0.6},
			{Feature: "POPULATION", Label: "POPULATION", Weight: 0.4},
		},
		Regions: []string{"South", "West"},
		States: []dataset.StateOption{
			{Name: "Florida", Abbrev: "FL", Region: "South"},
			{Name: "Texas", Abbrev: "TX", Region: "South"},
		},
		TopN:    10,
		Ready:   &mockReadiness{err: readyErr},
		Metrics: m,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return testServer{Server: srv, forecaster: f, metrics: m}
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexRendersDashboard(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(srv, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Forecasted Disaster Losses by County")
	assert.Contains(t, body, "Reset All Multipliers")
	assert.Contains(t, body, "Hydrological &amp; Meteorological Hazards")
	assert.Contains(t, body, `data-hazard="HRCN_EALT"`)
	assert.Contains(t, body, "Hurricane Season")
	assert.Contains(t, body, "Top 10 Counties")
}

func TestUnknownPathReturns404(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, get(srv, "/nope").Code)
}

func TestOptions(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(srv, "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Hazards []struct {
			Key   string `json:"key"`
			Label string `json:"label"`
			Group string `json:"group"`
		} `json:"hazards"`
		Groups  []string              `json:"groups"`
		Presets []scenario.Preset     `json:"presets"`
		Regions []string              `json:"regions"`
		States  []dataset.StateOption `json:"states"`
		Slider  scenario.SliderBounds `json:"slider"`
		TopN    int                   `json:"top_n"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Len(t, body.Hazards, domain.HazardCount)
	assert.Len(t, body.Groups, 3)
	assert.Equal(t, scenario.BaselinePreset, body.Presets[0].Name)
	assert.Equal(t, []string{"South", "West"}, body.Regions)
	assert.Len(t, body.States, 2)
	assert.Equal(t, 5.0, body.Slider.Max)
	assert.Equal(t, 10, body.TopN)
	for _, h := range body.Hazards {
		assert.NotEmpty(t, h.Label, h.Key)
		assert.Contains(t, body.Groups, h.Group, h.Key)
	}
}

func TestForecast_PresetAndFilter(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(srv, "/api/forecast?preset=Hurricane+Season&region=South&state=TX&state=Florida&counties=1")
	require.Equal(t, http.StatusOK, rec.Code)

	req := srv.forecaster.last
	assert.Equal(t, "Hurricane Season", req.Scenario.Preset)
	assert.Equal(t, 2.0, req.Scenario.Multiplier(domain.Hurricane))
	assert.Equal(t, 1.0, req.Scenario.Multiplier(domain.Tornado))
	assert.Equal(t, []string{"South"}, req.Filter.Regions)
	assert.Equal(t, []string{"TX", "Florida"}, req.Filter.States)
	assert.True(t, req.IncludeMap)
	assert.Equal(t, 10, req.TopN)

	var run domain.ForecastRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "run-42", run.ID)
	assert.Equal(t, 7000.0, run.Summary.TotalLoss)
	assert.Len(t, run.Top, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.APIRequests.WithLabelValues("forecast", "200")))
}

func TestForecast_Multipliers(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		hazard     domain.Hazard
		want       float64
		wantPreset string
	}{
		{"no params is identity", "", domain.Hurricane, 1, ""},
		{"slider value", "?TRND_EALT=2.5", domain.Tornado, 2.5, ""},
		{"clamped above max", "?HRCN_EALT=9", domain.Hurricane, 5, ""},
		{"clamped below min", "?HRCN_EALT=-1", domain.Hurricane, 0, ""},
		{"override drops preset name", "?preset=Hurricane+Season&HRCN_EALT=3", domain.Hurricane, 3, ""},
		{"matching value keeps preset name", "?preset=Hurricane+Season&HRCN_EALT=2", domain.Hurricane, 2, "Hurricane Season"},
		{"unknown keys ignored", "?FOO=7", domain.Hurricane, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			rec := get(srv, "/api/forecast"+tt.query)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, srv.forecaster.last.Scenario.Multiplier(tt.hazard))
			assert.Equal(t, tt.wantPreset, srv.forecaster.last.Scenario.Preset)
		})
	}
}

func TestForecast_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"unparsable multiplier", "?HRCN_EALT=abc", "invalid multiplier HRCN_EALT"},
		{"NaN multiplier", "?HRCN_EALT=NaN", "invalid multiplier HRCN_EALT"},
		{"unknown preset", "?preset=Nope", `unknown preset "Nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			rec := get(srv, "/api/forecast"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.wantErr)
			assert.Zero(t, srv.forecaster.calls)
			assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.APIRequests.WithLabelValues("forecast", "400")))
		})
	}
}

func TestForecast_ScoringErrorReturns500(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.forecaster.err = &domain.ScoringError{CountyID: "48201", Feature: "POPULATION"}

	rec := get(srv, "/api/forecast")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], `missing feature "POPULATION"`)

	// The next request is served normally.
	srv.forecaster.err = nil
	assert.Equal(t, http.StatusOK, get(srv, "/api/forecast").Code)
}

func TestForecast_OtherErrorReturns500(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.forecaster.err = errors.New("boom")

	rec := get(srv, "/api/forecast")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}

func TestImportance(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(srv, "/api/importance")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []domain.FeatureImportance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Hurricane", rows[0].Label)
	assert.GreaterOrEqual(t, rows[0].Weight, rows[1].Weight)
}

func TestReportPDF(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(srv, "/api/report.pdf?preset=Hurricane+Season&counties=1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "loss-forecast-run-42.pdf")
	assert.True(t, len(rec.Body.Bytes()) > 5)
	assert.Equal(t, "%PDF-", rec.Body.String()[:5])
	assert.False(t, srv.forecaster.last.IncludeMap, "report never needs the map series")
}

func TestReportPDF_BadRequest(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/report.pdf?preset=Nope").Code)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, get(srv, "/healthz").Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, get(srv, "/readyz").Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(t, errors.New("no counties loaded"))
	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
