package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/config"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

// Publisher writes finished forecast runs to a Kafka topic.
// It implements forecast.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured forecast topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaForecastTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes a run and writes it keyed by run ID.
func (p *Publisher) Publish(ctx context.Context, run domain.ForecastRun) error {
	msg, err := serializeToMessage(run)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write forecast run %s: %w", run.ID, err)
	}
	p.logger.Debug("forecast run published", "run_id", run.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a ForecastRun into a Kafka message.
func serializeToMessage(run domain.ForecastRun) (kafkago.Message, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast run: %w", err)
	}
	preset := run.Preset
	if preset == "" {
		preset = "custom"
	}
	return kafkago.Message{
		Key:   []byte(run.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "preset", Value: []byte(preset)},
			{Key: "generated_at", Value: []byte(run.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
