// Package kafka publishes exported weather records to a sink topic. The sink
// is optional and feature-flagged via config.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-history-etl/internal/config"
	"github.com/couchcryptid/weather-history-etl/internal/domain"
)

// Writer produces daily weather records to a Kafka topic. It implements
// pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Load serializes and publishes the city's records in a single WriteMessages
// call. An empty batch is a no-op.
func (w *Writer) Load(ctx context.Context, citySlug string, records []domain.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(citySlug, records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DailyRecord into a Kafka message keyed by
// city and record date, so replays of the same window overwrite in compacted
// topics instead of duplicating.
func serializeToMessage(citySlug string, rec domain.DailyRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily record: %w", err)
	}
	date := rec.Date.Format("2006-01-02")
	return kafkago.Message{
		Key:   []byte(citySlug + "-" + date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "city", Value: []byte(citySlug)},
			{Key: "record_date", Value: []byte(date)},
		},
	}, nil
}
