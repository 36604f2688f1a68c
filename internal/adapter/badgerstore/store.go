// Package badgerstore persists assessment history and disruption events in
// an embedded Badger key-value store. Assessments are insert-only and keyed
// by subject and capture time so history queries are a single prefix scan.
package badgerstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// tsLayout is a fixed-width RFC3339 variant; unlike RFC3339Nano it never
// trims zeros, so lexicographic key order equals chronological order.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

const (
	assessmentPrefix = "assessment/"
	disruptionPrefix = "disruption/"
)

// Store wraps a Badger database with the assessment and disruption schema.
type Store struct {
	db    *badger.DB
	clock clockwork.Clock
}

// Open opens (or creates) the store at path. A nil clock selects the real
// clock.
func Open(path string, clock clockwork.Clock, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty for service logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	if logger != nil {
		logger.Info("assessment store opened", "path", path)
	}
	return newStore(db, clock), nil
}

// OpenInMemory opens an ephemeral store, used by tests.
func OpenInMemory(clock clockwork.Clock) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return newStore(db, clock), nil
}

func newStore(db *badger.DB, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, clock: clock}
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAssessment appends a record to the subject's history. Keys embed the
// capture time, so repeated saves never overwrite earlier records.
func (s *Store) SaveAssessment(rec domain.AssessmentRecord) error {
	key := assessmentKey(rec.SubjectID, rec.CreatedAt)
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// History returns the subject's assessments from the last N days, newest
// first.
func (s *Store) History(subjectID string, days int) ([]domain.AssessmentRecord, error) {
	cutoff := s.clock.Now().UTC().AddDate(0, 0, -days)
	prefix := []byte(assessmentPrefix + subjectID + "/")

	var records []domain.AssessmentRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts past the last key under the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var rec domain.AssessmentRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("unmarshal assessment: %w", err)
			}
			if rec.CreatedAt.Before(cutoff) {
				break
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Latest returns the subject's most recent assessment. The second return is
// false when the subject has no history.
func (s *Store) Latest(subjectID string) (domain.AssessmentRecord, bool, error) {
	prefix := []byte(assessmentPrefix + subjectID + "/")

	var rec domain.AssessmentRecord
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		it.Seek(seek)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		found = true
		return it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return domain.AssessmentRecord{}, false, err
	}
	return rec, found, nil
}

// OpenDisruption stores a new disruption event.
func (s *Store) OpenDisruption(ev domain.DisruptionEvent) error {
	return s.putDisruption(ev)
}

// CloseDisruption stamps the end time on a subject's active disruption.
// Closing when nothing is active is a no-op.
func (s *Store) CloseDisruption(subjectID string, end time.Time) error {
	active, err := s.ActiveDisruption(subjectID)
	if err != nil {
		return err
	}
	if active == nil {
		return nil
	}
	active.EndTime = end.UTC()
	return s.putDisruption(*active)
}

// ActiveDisruption returns the subject's open disruption, or nil.
func (s *Store) ActiveDisruption(subjectID string) (*domain.DisruptionEvent, error) {
	events, err := s.disruptions(disruptionPrefix + subjectID + "/")
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].Active() {
			return &events[i], nil
		}
	}
	return nil, nil
}

// ActiveDisruptions returns every open disruption across all subjects.
func (s *Store) ActiveDisruptions() ([]domain.DisruptionEvent, error) {
	events, err := s.disruptions(disruptionPrefix)
	if err != nil {
		return nil, err
	}
	active := events[:0]
	for _, ev := range events {
		if ev.Active() {
			active = append(active, ev)
		}
	}
	return active, nil
}

func (s *Store) putDisruption(ev domain.DisruptionEvent) error {
	key := disruptionKey(ev.SubjectID, ev.StartTime)
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal disruption: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *Store) disruptions(prefix string) ([]domain.DisruptionEvent, error) {
	p := []byte(prefix)
	var events []domain.DisruptionEvent
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var ev domain.DisruptionEvent
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				return fmt.Errorf("unmarshal disruption: %w", err)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func assessmentKey(subjectID string, t time.Time) []byte {
	return []byte(assessmentPrefix + subjectID + "/" + t.UTC().Format(tsLayout))
}

func disruptionKey(subjectID string, start time.Time) []byte {
	return []byte(disruptionPrefix + subjectID + "/" + start.UTC().Format(tsLayout))
}
