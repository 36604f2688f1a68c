// Package assessment packages engine output into immutable, persistable
// records.
package assessment

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// Builder creates AssessmentRecords with generated IDs and capture
// timestamps. Records are insert-only; each scoring cycle produces a new
// record and never rewrites history.
type Builder struct {
	clock clockwork.Clock
}

// NewBuilder creates a Builder. A nil clock selects the real clock.
func NewBuilder(clock clockwork.Clock) *Builder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Builder{clock: clock}
}

// Build wraps one scoring result with its subject, capture time, and the
// originating bundle for audit and replay.
func (b *Builder) Build(subjectID string, scores domain.RiskScoreSet, recommendations []string, bundle domain.DataBundle) domain.AssessmentRecord {
	return domain.AssessmentRecord{
		ID:              uuid.NewString(),
		SubjectID:       subjectID,
		Scores:          scores,
		Recommendations: recommendations,
		Bundle:          bundle,
		CreatedAt:       b.clock.Now().UTC(),
	}
}
