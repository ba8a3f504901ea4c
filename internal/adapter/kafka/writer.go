package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/snotel-etl/internal/config"
	"github.com/couchcryptid/snotel-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes station observations to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Load publishes every observation of the report in a single WriteMessages
// call. Messages are keyed by observation ID so re-runs for the same day land
// on the same partition.
func (w *Writer) Load(ctx context.Context, report domain.StationReport) error {
	if len(report.Observations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(report.Observations))
	for i := range report.Observations {
		msg, err := serializeToMessage(report.Observations[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish observations: %w", err)
	}
	w.logger.Debug("observations published",
		"station_id", string(report.StationID),
		"count", len(msgs),
		"topic", w.writer.Topic,
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_id", Value: []byte(strconv.Itoa(obs.StationID))},
			{Key: "processed_at", Value: []byte(obs.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
