//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/supply-risk-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

const testSinkTopic = "test-risk-assessments"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka in a container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readAssessment reads and deserializes one message from the sink topic.
func readAssessment(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (domain.AssessmentRecord, kafkago.Message) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	var rec domain.AssessmentRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal sink message")
	return rec, msg
}

func testAssessment(subjectID string, overall float64, category string) domain.AssessmentRecord {
	return domain.AssessmentRecord{
		ID:        fmt.Sprintf("%s-%d", subjectID, time.Now().UnixNano()),
		SubjectID: subjectID,
		Scores: domain.RiskScoreSet{
			Weather:  0.8,
			Overall:  overall,
			Category: category,
		},
		Recommendations: []string{"Increase safety stock levels and identify backup suppliers to mitigate supply risks."},
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
	}
}

// TestPublishRoundTrip verifies that a published assessment record arrives on
// the sink topic with the subject key and the category and timestamp headers.
func TestPublishRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	writer := kafka.NewWriter([]string{broker}, testSinkTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	sent := testAssessment("tsmc", 0.72, domain.RiskHigh)
	require.NoError(t, writer.Publish(ctx, sent))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	rec, msg := readAssessment(ctx, t, consumer)

	assert.Equal(t, "tsmc", string(msg.Key))
	assert.Equal(t, sent.ID, rec.ID)
	assert.Equal(t, sent.Scores, rec.Scores)
	assert.Equal(t, sent.Recommendations, rec.Recommendations)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, domain.RiskHigh, headers["risk_category"])
	stamped, err := time.Parse(time.RFC3339, headers["assessed_at"])
	require.NoError(t, err, "assessed_at should be valid RFC3339")
	assert.True(t, stamped.Equal(sent.CreatedAt))
}

// TestPublishBatch verifies that a batch lands as one message per record,
// keyed per subject.
func TestPublishBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	writer := kafka.NewWriter([]string{broker}, testSinkTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	batch := []domain.AssessmentRecord{
		testAssessment("tsmc", 0.72, domain.RiskHigh),
		testAssessment("umc", 0.42, domain.RiskMedium),
		testAssessment("micron", 0.21, domain.RiskLow),
	}
	require.NoError(t, writer.PublishBatch(ctx, batch))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	bySubject := make(map[string]domain.AssessmentRecord, len(batch))
	for range batch {
		rec, msg := readAssessment(ctx, t, consumer)
		assert.Equal(t, rec.SubjectID, string(msg.Key))
		bySubject[rec.SubjectID] = rec
	}

	require.Len(t, bySubject, 3)
	assert.Equal(t, domain.RiskHigh, bySubject["tsmc"].Scores.Category)
	assert.Equal(t, domain.RiskMedium, bySubject["umc"].Scores.Category)
	assert.Equal(t, domain.RiskLow, bySubject["micron"].Scores.Category)
}
