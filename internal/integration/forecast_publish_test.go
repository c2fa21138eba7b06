//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/adapter/kafka"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/config"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/forecast"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/model"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
)

const testForecastTopic = "test-forecast-runs"

func counties() []domain.CountyRecord {
	mk := func(id, name, state string, hurricane float64) domain.CountyRecord {
		r := domain.CountyRecord{ID: id, County: name, State: state, StateAbbrev: state, Region: domain.RegionForState(state)}
		r.Hazards[domain.Hurricane] = hurricane
		return r
	}
	return []domain.CountyRecord{
		mk("12086", "Miami-Dade", "FL", 10),
		mk("48201", "Harris", "TX", 20),
		mk("06037", "Los Angeles", "CA", 5),
	}
}

// TestForecastRunPublished runs a forecast with the Kafka publisher attached
// and reads the run back from the topic.
func TestForecastRunPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testForecastTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaForecastTopic: testForecastTopic,
	}
	pub := kafka.NewPublisher(cfg, logger)
	defer pub.Close()

	m, err := model.NewLinear([]string{"HRCN_EALT"}, 0, []float64{100}, nil)
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	engine, err := forecast.New(m, counties(), logger, metrics, forecast.Options{Publisher: pub})
	require.NoError(t, err)

	scenario := domain.NewScenario().With(domain.Hurricane, 2)
	scenario.Preset = "Hurricane Season"
	run, err := engine.Run(ctx, forecast.Request{Scenario: scenario, TopN: 1})
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testForecastTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
	})
	defer consumer.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from forecast topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, run.ID, string(msg.Key))
	assert.Equal(t, "Hurricane Season", headers["preset"])

	var got domain.ForecastRun
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 7000.0, got.Summary.TotalLoss)
	require.Len(t, got.Top, 1)
	assert.Equal(t, "48201", got.Top[0].FIPS)
	assert.Equal(t, 4000.0, got.Top[0].Predicted)
}
