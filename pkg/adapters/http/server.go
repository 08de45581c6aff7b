// Package http exposes the history of recorded transitions as a read-only JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/fsmtrail/internal/logging"
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/history"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// History defines the queries served by the API. *history.Service implements it.
type History interface {
	GetHistory(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error)
	Replay(ctx context.Context, entityType, entityID, attribute string) (history.Result, error)
	Validate(ctx context.Context, entityType, entityID, attribute string) (history.Validation, error)
	Statistics(ctx context.Context, entityType, entityID, attribute string) (history.Stats, error)
	Report(ctx context.Context, entityType, entityID, attribute string) (history.Report, error)
}

var _ History = (*history.Service)(nil)

// Server serves History over HTTP.
type Server struct {
	History History
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*options)

type options struct {
	logger *slog.Logger
	mounts map[string]http.Handler
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMount serves handler at pattern next to the API, e.g. "/metrics".
func WithMount(pattern string, handler http.Handler) Option {
	return func(o *options) {
		o.mounts[pattern] = handler
	}
}

// NewHandler creates a new HTTP handler for h.
//
//	GET /healthz
//	GET /entities/{entityType}/{entityID}/{attribute}/history
//	GET /entities/{entityType}/{entityID}/{attribute}/replay
//	GET /entities/{entityType}/{entityID}/{attribute}/validate
//	GET /entities/{entityType}/{entityID}/{attribute}/statistics
//	GET /entities/{entityType}/{entityID}/{attribute}/report
func NewHandler(h History, opts ...Option) http.Handler {
	o := &options{logger: logging.NewNop(), mounts: make(map[string]http.Handler)}
	for _, opt := range opts {
		opt(o)
	}
	s := &Server{History: h, logger: o.logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/entities/{entityType}/{entityID}/{attribute}", func(r chi.Router) {
		r.Get("/history", s.serve(func(ctx context.Context, t, id, attr string) (any, error) {
			records, err := s.History.GetHistory(ctx, t, id, attr)
			if records == nil && err == nil {
				records = []domain.TransitionRecord{}
			}
			return records, err
		}))
		r.Get("/replay", s.serve(func(ctx context.Context, t, id, attr string) (any, error) {
			return s.History.Replay(ctx, t, id, attr)
		}))
		r.Get("/validate", s.serve(func(ctx context.Context, t, id, attr string) (any, error) {
			return s.History.Validate(ctx, t, id, attr)
		}))
		r.Get("/statistics", s.serve(func(ctx context.Context, t, id, attr string) (any, error) {
			return s.History.Statistics(ctx, t, id, attr)
		}))
		r.Get("/report", s.serve(func(ctx context.Context, t, id, attr string) (any, error) {
			return s.History.Report(ctx, t, id, attr)
		}))
	})

	for pattern, handler := range o.mounts {
		r.Handle(pattern, handler)
	}

	return enableCORS(r)
}

type query func(ctx context.Context, entityType, entityID, attribute string) (any, error)

func (s *Server) serve(q query) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityType := chi.URLParam(r, "entityType")
		entityID := chi.URLParam(r, "entityID")
		attribute := chi.URLParam(r, "attribute")

		result, err := q(r.Context(), entityType, entityID, attribute)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrInvalidArgument) {
				status = http.StatusBadRequest
			}
			if status >= 500 {
				s.logger.ErrorContext(r.Context(), "history query failed",
					"path", r.URL.Path,
					"entity_type", entityType,
					"entity_id", entityID,
					"attribute", attribute,
					"err", err,
				)
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
