// Package httpapi exposes calculator sessions as a JSON API over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zephyrtronium/calculator"
	"github.com/zephyrtronium/calculator/internal/dto"
	"github.com/zephyrtronium/calculator/internal/logging"
	"github.com/zephyrtronium/calculator/internal/metrics"
	"github.com/zephyrtronium/calculator/session"
)

// maxBody limits request bodies.
const maxBody = 1 << 16

// Server handles API requests against a session manager.
type Server struct {
	sessions    *session.Manager
	metrics     *metrics.Recorder
	metricsPath string
	logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for requests and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records evaluations in rec and serves its registry at path.
// An empty path records without serving.
func WithMetrics(rec *metrics.Recorder, path string) Option {
	return func(s *Server) {
		s.metrics = rec
		s.metricsPath = path
	}
}

// NewHandler creates the HTTP handler for the API.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.Health)
	r.Post("/evaluate", s.Evaluate)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Get("/{id}", s.GetSession)
		r.Post("/{id}/actions", s.PostActions)
		r.Delete("/{id}", s.DeleteSession)
	})
	if s.metrics != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metrics.Handler())
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Evaluate handles POST /evaluate.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body dto.EvaluateRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	v, err := calculator.EvalString(body.Expression)
	if s.metrics != nil {
		s.metrics.ObserveEvaluate(start, err)
	}
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewEvaluate(body.Expression, v))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.SessionList{Sessions: ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, sessionStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewSnapshot(id, snap))
}

// PostActions handles POST /sessions/{id}/actions. The body is one action
// object or an array of them. The session is created if needed.
func (s *Server) PostActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var batch dto.ActionBatch
	if err := s.decode(w, r, &batch); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	acts, err := batch.Actions()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.sessions.Dispatch(r.Context(), id, acts...)
	if err != nil {
		s.writeError(w, sessionStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewSnapshot(id, snap))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, sessionStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionStatus maps session manager errors to status codes.
func sessionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrEmptyID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errors.New("content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, dto.NewError(err))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}
