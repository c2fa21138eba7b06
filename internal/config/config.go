package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Input data.
	DatasetPath  string
	DatasetDSN   string
	DatasetTable string
	ModelPath    string
	PresetsPath  string

	// Dashboard controls.
	SliderMin  float64
	SliderMax  float64
	SliderStep float64
	TopN       int

	// Mapbox geocoding of the top-N counties.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxRPS       float64

	// Forecast run publishing.
	KafkaBrokers       []string
	KafkaForecastTopic string
	PublishEnabled     bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	sliderMin, err := parseFloat("SLIDER_MIN", 0)
	if err != nil {
		return nil, err
	}
	sliderMax, err := parseFloat("SLIDER_MAX", 5)
	if err != nil {
		return nil, err
	}
	sliderStep, err := parseFloat("SLIDER_STEP", 0.1)
	if err != nil {
		return nil, err
	}
	mapboxRPS, err := parseFloat("MAPBOX_RPS", 5)
	if err != nil {
		return nil, err
	}
	topN, err := parsePositiveInt("TOP_N", 10)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	publishEnabled := len(brokers) > 0
	if v := os.Getenv("PUBLISH_ENABLED"); v != "" {
		publishEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8501"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetPath:  sharedcfg.EnvOrDefault("DATASET_PATH", "data/nri_counties.csv"),
		DatasetDSN:   os.Getenv("DATASET_DSN"),
		DatasetTable: sharedcfg.EnvOrDefault("DATASET_TABLE", "nri_counties"),
		ModelPath:    sharedcfg.EnvOrDefault("MODEL_PATH", "data/model.json.gz"),
		PresetsPath:  os.Getenv("PRESETS_PATH"),

		SliderMin:  sliderMin,
		SliderMax:  sliderMax,
		SliderStep: sliderStep,
		TopN:       topN,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		MapboxRPS:       mapboxRPS,

		KafkaBrokers:       brokers,
		KafkaForecastTopic: sharedcfg.EnvOrDefault("KAFKA_FORECAST_TOPIC", "loss-forecast-runs"),
		PublishEnabled:     publishEnabled,
	}

	if cfg.DatasetPath == "" && cfg.DatasetDSN == "" {
		return nil, errors.New("DATASET_PATH or DATASET_DSN is required")
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.SliderMax <= cfg.SliderMin || cfg.SliderMin < 0 {
		return nil, fmt.Errorf("SLIDER_MIN %v and SLIDER_MAX %v do not form a range", cfg.SliderMin, cfg.SliderMax)
	}
	if cfg.SliderStep <= 0 {
		return nil, errors.New("SLIDER_STEP must be positive")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.MapboxRPS <= 0 {
		return nil, errors.New("MAPBOX_RPS must be positive")
	}
	if cfg.PublishEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("PUBLISH_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.PublishEnabled && cfg.KafkaForecastTopic == "" {
		return nil, errors.New("KAFKA_FORECAST_TOPIC is required")
	}

	return cfg, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
