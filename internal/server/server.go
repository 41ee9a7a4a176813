// Package server exposes the aggregation operation to the dashboard panel
// frontend over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/issuetrail/issuetrail/internal/timeline"
)

// Server wires the panel API handlers.
type Server struct {
	aggregator *timeline.Aggregator
	logger     *slog.Logger
}

// New builds the panel API handler stack: request-id assignment, access
// logging, then routing.
func New(aggregator *timeline.Aggregator, logger *slog.Logger) http.Handler {
	s := &Server{aggregator: aggregator, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/activity", s.handleActivity)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return withRequestID(withAccessLog(logger, mux))
}

// handleActivity runs one aggregation. A body that is not valid JSON is a
// transport problem and gets a 400; everything past decoding follows the
// degrade-to-empty contract, so the panel always receives an envelope.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var req timeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	env := s.aggregator.Aggregate(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Error("failed to encode envelope", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
