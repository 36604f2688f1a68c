package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	createdAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rec := domain.AssessmentRecord{
		ID:        "a1b2c3",
		SubjectID: "tsmc",
		Scores: domain.RiskScoreSet{
			Weather:  0.8,
			Overall:  0.72,
			Category: domain.RiskHigh,
		},
		Recommendations: []string{"Increase safety stock levels."},
		CreatedAt:       createdAt,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	t.Run("keyed by subject", func(t *testing.T) {
		assert.Equal(t, []byte("tsmc"), msg.Key)
	})

	t.Run("headers carry category and capture time", func(t *testing.T) {
		require.Len(t, msg.Headers, 2)
		assert.Equal(t, "risk_category", msg.Headers[0].Key)
		assert.Equal(t, []byte(domain.RiskHigh), msg.Headers[0].Value)
		assert.Equal(t, "assessed_at", msg.Headers[1].Key)
		assert.Equal(t, []byte("2025-06-15T12:00:00Z"), msg.Headers[1].Value)
	})

	t.Run("value round-trips the record", func(t *testing.T) {
		var decoded domain.AssessmentRecord
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, rec.ID, decoded.ID)
		assert.Equal(t, rec.SubjectID, decoded.SubjectID)
		assert.Equal(t, rec.Scores, decoded.Scores)
		assert.Equal(t, rec.Recommendations, decoded.Recommendations)
	})
}

func TestNewWriter(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "supplier-risk-assessments", nil)
	require.NotNil(t, w)
	assert.Equal(t, "supplier-risk-assessments", w.writer.Topic)
	assert.NoError(t, w.Close())
}
