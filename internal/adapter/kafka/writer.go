// Package kafka publishes assessment records to the sink topic consumed by
// the dashboard and downstream analytics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// Writer produces assessment records to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one assessment record, keyed by subject so
// a subject's history stays on one partition.
func (w *Writer) Publish(ctx context.Context, rec domain.AssessmentRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// PublishBatch writes multiple records in a single WriteMessages call.
func (w *Writer) PublishBatch(ctx context.Context, recs []domain.AssessmentRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(recs))
	for i := range recs {
		msg, err := serializeToMessage(recs[i])
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

// serializeToMessage marshals an AssessmentRecord into a Kafka message.
func serializeToMessage(rec domain.AssessmentRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.SubjectID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_category", Value: []byte(rec.Scores.Category)},
			{Key: "assessed_at", Value: []byte(rec.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
