package domain

import "time"

// Risk category labels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskScoreSet holds the per-category scores, the weighted composite, and
// its categorical label. Every score lies in [0,1]; Overall is a pure
// function of the category scores and the configured weight table.
// NewsSentiment is reported but carries no composite weight.
type RiskScoreSet struct {
	Weather       float64 `json:"weather"`
	Political     float64 `json:"political"`
	Economic      float64 `json:"economic"`
	Supply        float64 `json:"supply"`
	Demand        float64 `json:"demand"`
	NewsSentiment float64 `json:"news_sentiment"`
	Overall       float64 `json:"overall"`
	Category      string  `json:"category"`
}

// AssessmentRecord is the persistable result of scoring one subject in one
// cycle. The originating bundle is retained for audit and replay. Records
// are never mutated after creation.
type AssessmentRecord struct {
	ID              string       `json:"id"`
	SubjectID       string       `json:"subject_id"`
	Scores          RiskScoreSet `json:"scores"`
	Recommendations []string     `json:"recommendations"`
	Bundle          DataBundle   `json:"bundle"`
	CreatedAt       time.Time    `json:"created_at"`
}

// DisruptionEvent marks a window during which a subject scored High overall.
// EndTime is zero while the disruption is still active.
type DisruptionEvent struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Description string    `json:"description"`
	Overall     float64   `json:"overall"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time,omitempty"`
}

// Active reports whether the disruption has not yet been closed.
func (d DisruptionEvent) Active() bool {
	return d.EndTime.IsZero()
}
