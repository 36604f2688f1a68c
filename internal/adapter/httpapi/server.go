// Package httpapi exposes health, readiness, and metrics endpoints plus the
// read-only assessment API consumed by the dashboard.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// defaultHistoryDays is the window for history queries without a days param.
const defaultHistoryDays = 30

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// AssessmentReader is the read-only view of the assessment store.
type AssessmentReader interface {
	History(subjectID string, days int) ([]domain.AssessmentRecord, error)
	Latest(subjectID string) (domain.AssessmentRecord, bool, error)
	ActiveDisruptions() ([]domain.DisruptionEvent, error)
}

// Server exposes the service's HTTP endpoints.
type Server struct {
	httpServer *http.Server
	subjects   []domain.Subject
	reader     AssessmentReader
	logger     *slog.Logger
}

// NewServer creates the HTTP server with health, metrics, and API routes.
func NewServer(addr string, subjects []domain.Subject, ready ReadinessChecker, reader AssessmentReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		subjects: subjects,
		reader:   reader,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/subjects", s.handleSubjects)
	mux.HandleFunc("GET /api/subjects/{id}/assessments", s.handleHistory)
	mux.HandleFunc("GET /api/subjects/{id}/assessments/latest", s.handleLatest)
	mux.HandleFunc("GET /api/disruptions/active", s.handleActiveDisruptions)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleSubjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.subjects)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")
	if !s.knownSubject(subjectID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown subject"})
		return
	}

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	records, err := s.reader.History(subjectID, days)
	if err != nil {
		s.logger.Error("history query failed", "subject", subjectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history query failed"})
		return
	}
	if records == nil {
		records = []domain.AssessmentRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")
	if !s.knownSubject(subjectID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown subject"})
		return
	}

	rec, found, err := s.reader.Latest(subjectID)
	if err != nil {
		s.logger.Error("latest query failed", "subject", subjectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "latest query failed"})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no assessments yet"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleActiveDisruptions(w http.ResponseWriter, _ *http.Request) {
	events, err := s.reader.ActiveDisruptions()
	if err != nil {
		s.logger.Error("disruption query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "disruption query failed"})
		return
	}
	if events == nil {
		events = []domain.DisruptionEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) knownSubject(id string) bool {
	for _, subject := range s.subjects {
		if subject.ID == id {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
