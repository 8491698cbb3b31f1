package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/logger"
	"github.com/spigell/mentor-matcher/internal/matching"
	"github.com/spigell/mentor-matcher/internal/profiles"
)

type matchRequest struct {
	Seeker *matching.SeekerPreferences `json:"seeker"`
	// Candidates overrides the loaded pool when present, even if empty.
	// Entries without an ID get a stable one.
	Candidates []matching.CandidateProfile `json:"candidates"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status   string `json:"status"`
	PoolSize int    `json:"pool_size"`
}

func respondJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	if err := respondJSON(w, status, errorResponse{Error: message}); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := respondJSON(w, http.StatusOK, healthResponse{Status: "ok", PoolSize: s.Pool().Len()}); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Seeker == nil {
		s.respondError(w, http.StatusBadRequest, "seeker is required")
		return
	}

	prefs, err := req.Seeker.Normalize()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot := s.Pool()
	if req.Candidates != nil {
		snapshot, err = (&profiles.StaticSource{Candidates: req.Candidates}).Load(r.Context())
		if err != nil {
			s.logger.Error("loading inline candidates", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	if snapshot == nil {
		s.respondError(w, http.StatusServiceUnavailable, "candidate pool is not loaded")
		return
	}
	pool := snapshot.Items

	start := time.Now()
	results, err := s.engine.FindMatches(&prefs, pool)
	s.metrics.matchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, matching.ErrInvalidInput) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("ranking failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.metrics.shortlistSize.Observe(float64(len(results)))

	log := logger.WithSeeker(s.logger, &prefs)
	log.Debug("ranked candidates", zap.Int("pool", len(pool)), zap.Int("matches", len(results)))
	for _, res := range results {
		log.Debug("match", logger.ResultFields(res)...)
	}

	if err := respondJSON(w, http.StatusOK, results); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snapshot := s.Pool()
	candidate := snapshot.FindByID(id)
	if candidate == nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("candidate %q not found", id))
		return
	}

	if err := respondJSON(w, http.StatusOK, candidate); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
