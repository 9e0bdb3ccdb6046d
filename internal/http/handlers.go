package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dsjohal14/propstats/internal/scope/db"
	"github.com/rs/zerolog"
)

// DefaultStatsTimeout bounds the stats query when no timeout is configured.
const DefaultStatsTimeout = 5 * time.Second

// Handler contains HTTP handlers for the API
type Handler struct {
	store        db.PropositionCounter
	logger       zerolog.Logger
	statsTimeout time.Duration
}

// NewHandler creates a new HTTP handler. The store is shared by every
// request and is never closed by the handler.
func NewHandler(store db.PropositionCounter, logger zerolog.Logger, statsTimeout time.Duration) *Handler {
	if statsTimeout <= 0 {
		statsTimeout = DefaultStatsTimeout
	}
	return &Handler{
		store:        store,
		logger:       logger,
		statsTimeout: statsTimeout,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
