package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/config"
	"github.com/couchcryptid/city-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces band change messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured band topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes a batch of band updates in a single
// WriteMessages call. Messages are keyed by city and indicator so changes
// for the same band stay ordered within a partition.
func (w *Writer) Publish(ctx context.Context, updates []domain.BandUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(updates))
	for i := range updates {
		msg, err := serializeToMessage(updates[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write band updates: %w", err)
	}
	w.logger.Debug("published band updates", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a BandUpdate into a Kafka message.
func serializeToMessage(u domain.BandUpdate) (kafkago.Message, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize band update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(u)),
		Value: data,
		Time:  u.CommittedAt,
		Headers: []kafkago.Header{
			{Key: "indicator", Value: []byte(u.Change.Indicator)},
			{Key: "level", Value: []byte(u.Change.To.Level)},
			{Key: "committed_at", Value: []byte(u.CommittedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}

// MessageKey is the partition key for a band update: "city|indicator".
func MessageKey(u domain.BandUpdate) string {
	return u.City.Name + "|" + string(u.Change.Indicator)
}
