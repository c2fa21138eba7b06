package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/adapter/http"
	kafkaadapter "github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/adapter/kafka"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/adapter/mapbox"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/adapter/postgres"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/config"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/dataset"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/forecast"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/model"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := loadInputs(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	sliders := scenario.SliderBounds{Min: cfg.SliderMin, Max: cfg.SliderMax, Step: cfg.SliderStep}
	if err := sliders.Validate(); err != nil {
		logger.Error("invalid slider configuration", "error", err)
		os.Exit(1)
	}
	if err := in.scenarios.CheckBounds(sliders); err != nil {
		logger.Error("presets do not fit the slider range", "error", err)
		os.Exit(1)
	}

	// Geocoding of the top-N counties (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var opts forecast.Options
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRPS, metrics, logger)
		opts.Locator = mapbox.NewCachedLocator(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout, "rps", cfg.MapboxRPS)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var publisher *kafkaadapter.Publisher
	if cfg.PublishEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts.Publisher = publisher
		logger.Info("forecast publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaForecastTopic)
	}

	engine, err := forecast.New(in.model, in.dataset.Records, logger, metrics, opts)
	if err != nil {
		logger.Error("baseline scoring failed", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Dependencies{
		Forecaster:  engine,
		Scenarios:   in.scenarios,
		Sliders:     sliders,
		Importances: in.model.Importances(),
		Regions:     in.dataset.Regions(),
		States:      in.dataset.States(),
		TopN:        cfg.TopN,
		Ready:       engine,
		Metrics:     metrics,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

type inputs struct {
	dataset   *dataset.Dataset
	model     *model.Model
	scenarios *scenario.Configurator
}

// loadInputs reads the dataset, the model and the presets concurrently and
// checks the model's features against the dataset schema.
func loadInputs(ctx context.Context, cfg *config.Config, logger *slog.Logger) (inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ds, err := loadDataset(gctx, cfg)
		if err != nil {
			return err
		}
		in.dataset = ds
		logger.Info("dataset loaded", "source", ds.Source, "counties", len(ds.Records))
		return nil
	})
	g.Go(func() error {
		m, err := model.Load(cfg.ModelPath)
		if err != nil {
			return err
		}
		in.model = m
		logger.Info("model loaded", "path", cfg.ModelPath, "kind", m.Kind, "features", len(m.Features()))
		return nil
	})
	g.Go(func() error {
		presets, err := scenario.LoadPresets(cfg.PresetsPath)
		if err != nil {
			return err
		}
		c, err := scenario.New(presets)
		if err != nil {
			return err
		}
		in.scenarios = c
		logger.Info("presets loaded", "presets", c.PresetNames())
		return nil
	})

	if err := g.Wait(); err != nil {
		return inputs{}, err
	}
	if err := in.model.ValidateSchema(in.dataset); err != nil {
		return inputs{}, err
	}
	return in, nil
}

// loadDataset reads the county table from Postgres when DATASET_DSN is set,
// from the CSV at DATASET_PATH otherwise.
func loadDataset(ctx context.Context, cfg *config.Config) (*dataset.Dataset, error) {
	if cfg.DatasetDSN == "" {
		return dataset.Load(cfg.DatasetPath)
	}

	src, err := postgres.Open(ctx, cfg.DatasetDSN, cfg.DatasetTable)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Load(ctx)
}
