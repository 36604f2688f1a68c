// Package cycle drives one complete assessment pass: collect evidence for
// every subject, score it, persist the records, and publish them to the
// sink topic.
package cycle

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
	"github.com/couchcryptid/supply-risk-monitor/internal/observability"
)

// Collector assembles one DataBundle per subject.
type Collector interface {
	Collect(ctx context.Context, subjects []domain.Subject) (map[string]domain.DataBundle, error)
}

// Scorer maps a bundle to scores and recommendations.
type Scorer interface {
	Score(bundle domain.DataBundle) domain.RiskScoreSet
	Recommend(scores domain.RiskScoreSet, bundle domain.DataBundle) []string
}

// Builder wraps engine output into a persistable record.
type Builder interface {
	Build(subjectID string, scores domain.RiskScoreSet, recommendations []string, bundle domain.DataBundle) domain.AssessmentRecord
}

// Store is the insert-only persistence sink for records and disruptions.
type Store interface {
	SaveAssessment(rec domain.AssessmentRecord) error
	ActiveDisruption(subjectID string) (*domain.DisruptionEvent, error)
	OpenDisruption(ev domain.DisruptionEvent) error
	CloseDisruption(subjectID string, end time.Time) error
}

// Publisher hands a record to the dashboard feed.
type Publisher interface {
	Publish(ctx context.Context, rec domain.AssessmentRecord) error
}

// Runner executes assessment cycles over a fixed subject registry.
type Runner struct {
	subjects  []domain.Subject
	collector Collector
	scorer    Scorer
	builder   Builder
	store     Store
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// NewRunner creates a Runner. A nil clock selects the real clock.
func NewRunner(subjects []domain.Subject, collector Collector, scorer Scorer, builder Builder, store Store, publisher Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		subjects:  subjects,
		collector: collector,
		scorer:    scorer,
		builder:   builder,
		store:     store,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one cycle has completed, or an
// error describing why the service is not yet ready.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no assessment cycle has completed yet")
	}
	return nil
}

// RunCycle executes one collect-score-persist-publish pass. Per-subject
// persistence or publish failures are logged and counted but never abort the
// cycle; only a collection failure (empty registry, cancelled context) does.
func (r *Runner) RunCycle(ctx context.Context) error {
	start := time.Now()
	r.metrics.CycleRunning.Set(1)
	defer r.metrics.CycleRunning.Set(0)

	r.logger.Info("assessment cycle starting", "subjects", len(r.subjects))

	bundles, err := r.collector.Collect(ctx, r.subjects)
	if err != nil {
		return err
	}

	for _, subject := range r.subjects {
		bundle, ok := bundles[subject.ID]
		if !ok {
			// Collect returns a bundle for every subject; a miss here is a
			// programming defect, not a data condition.
			r.logger.Error("no bundle collected for subject", "subject", subject.ID)
			continue
		}
		r.assessSubject(ctx, subject, bundle)
	}

	r.metrics.CyclesTotal.Inc()
	r.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	r.ready.Store(true)

	r.logger.Info("assessment cycle complete", "subjects", len(r.subjects), "duration", time.Since(start))
	return nil
}

// assessSubject scores one bundle, persists and publishes the record, and
// reconciles the subject's disruption state.
func (r *Runner) assessSubject(ctx context.Context, subject domain.Subject, bundle domain.DataBundle) {
	scores := r.scorer.Score(bundle)
	recommendations := r.scorer.Recommend(scores, bundle)
	rec := r.builder.Build(subject.ID, scores, recommendations, bundle)

	if err := r.store.SaveAssessment(rec); err != nil {
		r.logger.Error("save assessment failed", "subject", subject.ID, "error", err)
		r.metrics.StoreErrors.Inc()
	}

	if err := r.publisher.Publish(ctx, rec); err != nil {
		r.logger.Error("publish assessment failed", "subject", subject.ID, "error", err)
		r.metrics.PublishErrors.Inc()
	} else {
		r.metrics.RecordsPublished.Inc()
	}

	r.metrics.SubjectsAssessed.Inc()
	r.metrics.OverallRisk.WithLabelValues(subject.ID, scores.Category).Set(scores.Overall)

	r.reconcileDisruption(subject, scores, recommendations)
}

// reconcileDisruption opens a disruption event when a subject enters High
// and closes the active one when it drops back below.
func (r *Runner) reconcileDisruption(subject domain.Subject, scores domain.RiskScoreSet, recommendations []string) {
	active, err := r.store.ActiveDisruption(subject.ID)
	if err != nil {
		r.logger.Error("disruption lookup failed", "subject", subject.ID, "error", err)
		r.metrics.StoreErrors.Inc()
		return
	}

	switch {
	case scores.Category == domain.RiskHigh && active == nil:
		description := "overall risk High"
		if len(recommendations) > 0 {
			description = recommendations[0]
		}
		ev := domain.DisruptionEvent{
			ID:          uuid.NewString(),
			SubjectID:   subject.ID,
			Description: description,
			Overall:     scores.Overall,
			StartTime:   r.clock.Now().UTC(),
		}
		if err := r.store.OpenDisruption(ev); err != nil {
			r.logger.Error("open disruption failed", "subject", subject.ID, "error", err)
			r.metrics.StoreErrors.Inc()
			return
		}
		r.metrics.ActiveDisruptions.Inc()
		r.logger.Warn("disruption opened", "subject", subject.ID, "overall", scores.Overall)

	case scores.Category != domain.RiskHigh && active != nil:
		if err := r.store.CloseDisruption(subject.ID, r.clock.Now().UTC()); err != nil {
			r.logger.Error("close disruption failed", "subject", subject.ID, "error", err)
			r.metrics.StoreErrors.Inc()
			return
		}
		r.metrics.ActiveDisruptions.Dec()
		r.logger.Info("disruption closed", "subject", subject.ID, "overall", scores.Overall)
	}
}
