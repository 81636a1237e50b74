package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/campusnet/internal/repo"
)

const maxListLimit = 500

// Server exposes the daemon's attempt history read-only.
type Server struct {
	Logger   *zap.Logger
	Attempts repo.AttemptStore
}

func NewServer(l *zap.Logger, attempts repo.AttemptStore) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Attempts: attempts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/attempts", func(r chi.Router) {
		r.Get("/", s.handleListAttempts)
		r.Get("/latest", s.handleLatestAttempt)
	})
	return r
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	list, err := s.Attempts.List(r.Context(), limit)
	if err != nil {
		s.Logger.Warn("api_list_attempts_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list error"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleLatestAttempt(w http.ResponseWriter, r *http.Request) {
	a, err := s.Attempts.Latest(r.Context())
	if err != nil {
		s.Logger.Warn("api_latest_attempt_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "latest error"})
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no attempts yet"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
